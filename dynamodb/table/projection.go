package table

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type ProjectionKind string

const (
	ProjectAll      ProjectionKind = "ALL"
	ProjectOnlyKeys ProjectionKind = "KEYS_ONLY"
	// In addition to the attributes described in KEYS_ONLY, the secondary index will include other non-key attributes that you specify.
	ProjectSubset ProjectionKind = "INCLUDE"
)

// Projection is the set of attributes copied into a secondary index.
// The zero value projects all attributes.
type Projection struct {
	Kind ProjectionKind
	// Only used if Kind is ProjectSubset.
	NonKeyAttributes []string
}

func (p Projection) kind() ProjectionKind {
	if p.Kind == "" {
		return ProjectAll
	}
	return p.Kind
}

func (p Projection) validate() error {
	switch p.kind() {
	case ProjectAll, ProjectOnlyKeys:
		if len(p.NonKeyAttributes) > 0 {
			return fmt.Errorf("non-key attributes are only allowed for %s projections", ProjectSubset)
		}
	case ProjectSubset:
		if len(p.NonKeyAttributes) == 0 {
			return fmt.Errorf("%s projection requires non-key attributes", ProjectSubset)
		}
	default:
		return fmt.Errorf("invalid projection kind %q", p.Kind)
	}
	return nil
}

// Project copies the projected attributes of doc. Key attributes of every
// given key definition are always kept.
func (p Projection) Project(doc map[string]types.AttributeValue, keys ...PrimaryKeyDefinition) map[string]types.AttributeValue {
	if p.kind() == ProjectAll {
		return doc
	}
	proj := make(map[string]types.AttributeValue)
	for _, k := range keys {
		for _, attr := range k.Attributes() {
			if v, ok := doc[attr]; ok {
				proj[attr] = v
			}
		}
	}
	if p.kind() == ProjectSubset {
		for _, attr := range p.NonKeyAttributes {
			if v, ok := doc[attr]; ok {
				proj[attr] = v
			}
		}
	}
	return proj
}
