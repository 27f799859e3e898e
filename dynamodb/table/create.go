package table

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// CreateTableInput describes the table as a pay-per-request CreateTable call.
func (t TableDefinition) CreateTableInput() *dynamodb.CreateTableInput {
	attrs := make(map[string]KeyKind)
	var order []string
	addAttr := func(k KeyDef) {
		if k.Name == "" {
			return
		}
		if _, ok := attrs[k.Name]; !ok {
			order = append(order, k.Name)
		}
		attrs[k.Name] = k.Kind
	}
	addKey := func(k PrimaryKeyDefinition) {
		addAttr(k.PartitionKey)
		addAttr(k.SortKey)
	}

	addKey(t.KeyDefinitions)
	in := &dynamodb.CreateTableInput{
		TableName:   aws.String(t.Name),
		KeySchema:   keySchema(t.KeyDefinitions),
		BillingMode: types.BillingModePayPerRequest,
	}
	for _, idx := range t.Indexes {
		addKey(idx.KeyDefinitions)
		switch idx.Kind {
		case IndexKindLocal:
			in.LocalSecondaryIndexes = append(in.LocalSecondaryIndexes, types.LocalSecondaryIndex{
				IndexName:  aws.String(idx.Name),
				KeySchema:  keySchema(idx.KeyDefinitions),
				Projection: projection(idx.Projection),
			})
		case IndexKindGlobal:
			in.GlobalSecondaryIndexes = append(in.GlobalSecondaryIndexes, types.GlobalSecondaryIndex{
				IndexName:  aws.String(idx.Name),
				KeySchema:  keySchema(idx.KeyDefinitions),
				Projection: projection(idx.Projection),
			})
		}
	}
	for _, name := range order {
		in.AttributeDefinitions = append(in.AttributeDefinitions, types.AttributeDefinition{
			AttributeName: aws.String(name),
			AttributeType: types.ScalarAttributeType(attrs[name]),
		})
	}
	return in
}

// FromCreateTableInput is the inverse of CreateTableInput.
func FromCreateTableInput(in *dynamodb.CreateTableInput) (TableDefinition, error) {
	if in == nil || in.TableName == nil {
		return TableDefinition{}, fmt.Errorf("%w: table name is required", ErrInvalidDefinition)
	}
	kinds := make(map[string]KeyKind, len(in.AttributeDefinitions))
	for _, ad := range in.AttributeDefinitions {
		kinds[aws.ToString(ad.AttributeName)] = KeyKind(ad.AttributeType)
	}
	keyDefs := func(schema []types.KeySchemaElement) (PrimaryKeyDefinition, error) {
		var k PrimaryKeyDefinition
		for _, el := range schema {
			name := aws.ToString(el.AttributeName)
			kind, ok := kinds[name]
			if !ok {
				return k, fmt.Errorf("%w: attribute %q has no attribute definition", ErrInvalidDefinition, name)
			}
			switch el.KeyType {
			case types.KeyTypeHash:
				k.PartitionKey = KeyDef{Name: name, Kind: kind}
			case types.KeyTypeRange:
				k.SortKey = KeyDef{Name: name, Kind: kind}
			}
		}
		return k, nil
	}

	def := TableDefinition{Name: aws.ToString(in.TableName)}
	var err error
	if def.KeyDefinitions, err = keyDefs(in.KeySchema); err != nil {
		return TableDefinition{}, err
	}
	for _, lsi := range in.LocalSecondaryIndexes {
		k, err := keyDefs(lsi.KeySchema)
		if err != nil {
			return TableDefinition{}, err
		}
		def.Indexes = append(def.Indexes, IndexDefinition{
			Name:           aws.ToString(lsi.IndexName),
			Kind:           IndexKindLocal,
			KeyDefinitions: k,
			Projection:     fromProjection(lsi.Projection),
		})
	}
	for _, gsi := range in.GlobalSecondaryIndexes {
		k, err := keyDefs(gsi.KeySchema)
		if err != nil {
			return TableDefinition{}, err
		}
		def.Indexes = append(def.Indexes, IndexDefinition{
			Name:           aws.ToString(gsi.IndexName),
			Kind:           IndexKindGlobal,
			KeyDefinitions: k,
			Projection:     fromProjection(gsi.Projection),
		})
	}
	return def, def.Validate()
}

func keySchema(k PrimaryKeyDefinition) []types.KeySchemaElement {
	schema := []types.KeySchemaElement{
		{AttributeName: aws.String(k.PartitionKey.Name), KeyType: types.KeyTypeHash},
	}
	if k.HasSortKey() {
		schema = append(schema, types.KeySchemaElement{AttributeName: aws.String(k.SortKey.Name), KeyType: types.KeyTypeRange})
	}
	return schema
}

func projection(p Projection) *types.Projection {
	return &types.Projection{
		ProjectionType:   types.ProjectionType(p.kind()),
		NonKeyAttributes: p.NonKeyAttributes,
	}
}

func fromProjection(p *types.Projection) Projection {
	if p == nil {
		return Projection{Kind: ProjectAll}
	}
	return Projection{Kind: ProjectionKind(p.ProjectionType), NonKeyAttributes: p.NonKeyAttributes}
}
