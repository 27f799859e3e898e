// Package table describes DynamoDB tables: their primary key, their local and
// global secondary indexes, and the registry that holds those definitions for
// the lifetime of a process.
package table

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type TableDefinition struct {
	Name           string
	KeyDefinitions PrimaryKeyDefinition
	Indexes        []IndexDefinition
}

// Index returns the index with the given name.
func (t TableDefinition) Index(name string) (IndexDefinition, bool) {
	for _, idx := range t.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return IndexDefinition{}, false
}

func (t TableDefinition) ExtractPrimaryKey(doc map[string]types.AttributeValue) (PrimaryKey, error) {
	return t.KeyDefinitions.ExtractPrimaryKey(doc)
}

// Validate checks the table and all of its indexes.
func (t TableDefinition) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("%w: table name is required", ErrInvalidDefinition)
	}
	if err := t.KeyDefinitions.validate(); err != nil {
		return fmt.Errorf("%w: table %q: %v", ErrInvalidDefinition, t.Name, err)
	}
	seen := make(map[string]bool, len(t.Indexes))
	for _, idx := range t.Indexes {
		if seen[idx.Name] {
			return fmt.Errorf("%w: table %q: duplicate index %q", ErrInvalidDefinition, t.Name, idx.Name)
		}
		seen[idx.Name] = true
		if err := idx.validate(t); err != nil {
			return fmt.Errorf("%w: table %q: %v", ErrInvalidDefinition, t.Name, err)
		}
	}
	return nil
}

func (k PrimaryKeyDefinition) validate() error {
	if k.PartitionKey.Name == "" {
		return fmt.Errorf("partition key name is required")
	}
	if !k.PartitionKey.Kind.Valid() {
		return fmt.Errorf("partition key %q has invalid kind %q", k.PartitionKey.Name, k.PartitionKey.Kind)
	}
	if !k.HasSortKey() {
		return nil
	}
	if k.SortKey.Name == k.PartitionKey.Name {
		return fmt.Errorf("sort key %q must differ from the partition key", k.SortKey.Name)
	}
	if !k.SortKey.Kind.Valid() {
		return fmt.Errorf("sort key %q has invalid kind %q", k.SortKey.Name, k.SortKey.Kind)
	}
	return nil
}

func (k PrimaryKeyDefinition) ExtractPrimaryKey(doc map[string]types.AttributeValue) (PrimaryKey, error) {
	part, ok := doc[k.PartitionKey.Name]
	if !ok {
		return PrimaryKey{}, fmt.Errorf("partition key %q not found", k.PartitionKey.Name)
	}
	if err := attributeMatchesDefinition(k.PartitionKey.Kind, part); err != nil {
		return PrimaryKey{}, fmt.Errorf("document key %q kind does not match definition: %w", k.PartitionKey.Name, err)
	}
	if isEmptyKeyValue(part) {
		return PrimaryKey{}, fmt.Errorf("partition key %q must not be empty", k.PartitionKey.Name)
	}
	pk := PrimaryKey{
		Definition: k,
		Values: PrimaryKeyValues{
			PartitionKey: keyValueFromAV(part),
		},
	}
	if !k.HasSortKey() {
		return pk, nil
	}
	sort, ok := doc[k.SortKey.Name]
	if !ok {
		return PrimaryKey{}, fmt.Errorf("sort key %q not found on document", k.SortKey.Name)
	}
	if err := attributeMatchesDefinition(k.SortKey.Kind, sort); err != nil {
		return PrimaryKey{}, fmt.Errorf("sort key %q kind does not match definition: %w", k.SortKey.Name, err)
	}
	if isEmptyKeyValue(sort) {
		return PrimaryKey{}, fmt.Errorf("sort key %q must not be empty", k.SortKey.Name)
	}
	pk.Values.SortKey = keyValueFromAV(sort)
	return pk, nil
}

func isEmptyKeyValue(av types.AttributeValue) bool {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value == ""
	case *types.AttributeValueMemberB:
		return len(v.Value) == 0
	}
	return false
}

// keyValueFromAV is only called after attributeMatchesDefinition.
func keyValueFromAV(av types.AttributeValue) any {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value
	case *types.AttributeValueMemberN:
		return v.Value
	case *types.AttributeValueMemberB:
		return v.Value
	default:
		panic(fmt.Sprintf("unsupported attribute value %T for dynamodb keys", v))
	}
}
