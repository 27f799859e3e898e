package table

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// IndexKind tells whether a secondary index shares the table's partition key.
// Kinds are always declared, never inferred from the key attribute names.
type IndexKind string

const (
	// IndexKindLocal indexes keep the table's partition key and only
	// change the sort key.
	IndexKindLocal IndexKind = "LOCAL"
	// IndexKindGlobal indexes have their own partition and sort keys.
	IndexKindGlobal IndexKind = "GLOBAL"
)

func ParseIndexKind(s string) (IndexKind, error) {
	switch k := IndexKind(strings.ToUpper(s)); k {
	case IndexKindLocal, IndexKindGlobal:
		return k, nil
	case "LSI":
		return IndexKindLocal, nil
	case "GSI":
		return IndexKindGlobal, nil
	}
	return "", fmt.Errorf("unknown index kind %q, want LOCAL or GLOBAL", s)
}

// IndexDefinition is a secondary index on a table.
//
// Secondary indexes can not be written to directly, they are maintained by
// writes to the table. Items lacking any of the index key attributes are
// left out of the index.
type IndexDefinition struct {
	Name           string
	Kind           IndexKind
	KeyDefinitions PrimaryKeyDefinition
	Projection     Projection
}

func (i IndexDefinition) IsLocal() bool  { return i.Kind == IndexKindLocal }
func (i IndexDefinition) IsGlobal() bool { return i.Kind == IndexKindGlobal }

// ExtractPrimaryKey extracts the index key values from a document.
func (i IndexDefinition) ExtractPrimaryKey(doc map[string]types.AttributeValue) (PrimaryKey, error) {
	return i.KeyDefinitions.ExtractPrimaryKey(doc)
}

// Guarantees reports whether every item read through the index is certain
// to carry attr. Index keys and table keys are always projected, anything
// else only when the projection includes it. Presence of non-key attributes
// is not guaranteed even then, so only key attributes count.
func (i IndexDefinition) Guarantees(attr string, tbl TableDefinition) bool {
	return i.KeyDefinitions.Has(attr) || tbl.KeyDefinitions.Has(attr)
}

func (i IndexDefinition) validate(tbl TableDefinition) error {
	if i.Name == "" {
		return fmt.Errorf("index name is required")
	}
	switch i.Kind {
	case IndexKindLocal:
		if i.KeyDefinitions.PartitionKey != tbl.KeyDefinitions.PartitionKey {
			return fmt.Errorf("local index %q must use the table partition key %q, got %q",
				i.Name, tbl.KeyDefinitions.PartitionKey.Name, i.KeyDefinitions.PartitionKey.Name)
		}
		if !i.KeyDefinitions.HasSortKey() {
			return fmt.Errorf("local index %q requires a sort key", i.Name)
		}
		if !tbl.KeyDefinitions.HasSortKey() {
			return fmt.Errorf("local index %q requires the table to have a sort key", i.Name)
		}
	case IndexKindGlobal:
	default:
		return fmt.Errorf("index %q has invalid kind %q", i.Name, i.Kind)
	}
	if err := i.KeyDefinitions.validate(); err != nil {
		return fmt.Errorf("index %q: %v", i.Name, err)
	}
	return i.Projection.validate()
}
