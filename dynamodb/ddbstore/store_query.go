package ddbstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/acksell/highscores/dynamodb/ddbstore/keyconditionexpr"
	"github.com/acksell/highscores/dynamodb/ddbstore/keyconditionexpr/ast"
	"github.com/acksell/highscores/dynamodb/table"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dgraph-io/badger/v4"
)

// queryTarget is the table or index a query reads.
type queryTarget struct {
	tabl  *tableSchema
	index *indexSchema // nil for the table itself
}

func (q queryTarget) encoder() *keyEncoder {
	if q.index != nil {
		return q.index.encoder
	}
	return q.tabl.encoder
}

// keyAttributes lists the attributes that make up LastEvaluatedKey.
func (q queryTarget) keyAttributes() []table.PrimaryKeyDefinition {
	if q.index != nil {
		return []table.PrimaryKeyDefinition{q.index.definition.KeyDefinitions, q.tabl.definition.KeyDefinitions}
	}
	return []table.PrimaryKeyDefinition{q.tabl.definition.KeyDefinitions}
}

// startKey encodes an ExclusiveStartKey into the key it refers to.
func (q queryTarget) startKey(esk map[string]types.AttributeValue) ([]byte, error) {
	tpk, err := q.tabl.definition.ExtractPrimaryKey(esk)
	if err != nil {
		return nil, fmt.Errorf("%w: exclusive start key: %v", ErrValidation, err)
	}
	tableKey, err := q.tabl.encoder.encode(tpk)
	if err != nil {
		return nil, err
	}
	if q.index == nil {
		return tableKey, nil
	}
	ipk, err := q.index.definition.ExtractPrimaryKey(esk)
	if err != nil {
		return nil, fmt.Errorf("%w: exclusive start key: %v", ErrValidation, err)
	}
	return q.index.encoder.encodeIndexEntry(ipk, tableKey, q.tabl.encoder.prefix)
}

func (s *Store) queryTarget(params *dynamodb.QueryInput) (queryTarget, error) {
	tabl, err := s.getTable(params.TableName)
	if err != nil {
		return queryTarget{}, err
	}
	indexName := aws.ToString(params.IndexName)
	if indexName == "" {
		return queryTarget{tabl: tabl}, nil
	}
	idx, ok := tabl.indexes[indexName]
	if !ok {
		return queryTarget{}, fmt.Errorf("%w: index %s not found on table %s", ErrValidation, indexName, tabl.definition.Name)
	}
	if idx.definition.IsGlobal() && aws.ToBool(params.ConsistentRead) {
		return queryTarget{}, fmt.Errorf("%w: consistent reads are not supported on global secondary indexes", ErrValidation)
	}
	return queryTarget{tabl: tabl, index: idx}, nil
}

// Query retrieves items matching a key condition expression.
func (s *Store) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if params == nil {
		return nil, fmt.Errorf("params is required")
	}
	if params.KeyConditionExpression == nil {
		return nil, fmt.Errorf("%w: key condition expression is required", ErrValidation)
	}
	if params.FilterExpression != nil {
		return nil, fmt.Errorf("%w: filter expressions are not supported", ErrValidation)
	}
	if params.Limit != nil && *params.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrValidation, *params.Limit)
	}

	target, err := s.queryTarget(params)
	if err != nil {
		return nil, err
	}
	enc := target.encoder()

	keyCond, err := keyconditionexpr.Parse(*params.KeyConditionExpression, keyconditionexpr.ParseParams{
		ExpressionAttributeNames:  params.ExpressionAttributeNames,
		ExpressionAttributeValues: params.ExpressionAttributeValues,
		TableKeys:                 enc.keys,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: parse key condition: %v", ErrValidation, err)
	}

	prefix, err := enc.partitionPrefix(keyCond.PartitionKeyCond.Value.Value)
	if err != nil {
		return nil, fmt.Errorf("encode partition key prefix: %w", err)
	}

	var startKey []byte
	if params.ExclusiveStartKey != nil {
		startKey, err = target.startKey(params.ExclusiveStartKey)
		if err != nil {
			return nil, err
		}
	}

	limit := 0
	if params.Limit != nil {
		limit = int(*params.Limit)
	}
	scanForward := params.ScanIndexForward == nil || *params.ScanIndexForward

	var items []map[string]types.AttributeValue
	var lastKey map[string]types.AttributeValue

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = !scanForward
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		switch {
		case startKey != nil:
			it.Seek(startKey)
			// exclusive start
			if it.Valid() && bytes.Equal(it.Item().Key(), startKey) {
				it.Next()
			}
		case scanForward:
			it.Seek(prefix)
		default:
			// For reverse iteration, seek to end of prefix range
			it.Seek(incrementBytes(prefix))
		}

		for ; it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := it.Item().Key()
			if !bytes.HasPrefix(key, prefix) {
				break
			}

			if keyCond.SortKeyCond != nil {
				sk, err := enc.sortKeyValue(key, prefix)
				if err != nil {
					return err
				}
				matches, err := keyCond.SortKeyCond.Matches(sk)
				if err != nil {
					return err
				}
				if !matches {
					if canStopEarly(keyCond.SortKeyCond, scanForward) {
						break
					}
					continue
				}
			}

			var item map[string]types.AttributeValue
			if err := it.Item().Value(func(val []byte) error {
				var err error
				item, err = DeserializeItem(val)
				return err
			}); err != nil {
				return err
			}
			items = append(items, item)

			if limit > 0 && len(items) >= limit {
				// Set LastEvaluatedKey for pagination
				lastKey = extractKeyAttributes(item, target.keyAttributes()...)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	items, err = projectAll(items, params.ProjectionExpression, params.ExpressionAttributeNames)
	if err != nil {
		return nil, err
	}

	count := int32(len(items))
	return &dynamodb.QueryOutput{
		Items:            items,
		Count:            count,
		ScannedCount:     count,
		LastEvaluatedKey: lastKey,
	}, nil
}

// canStopEarly reports whether the first non-matching key ends the scan.
// Keys are visited in sort order, so once a one-sided bound fails in the
// scan direction no later key can match.
func canStopEarly(cond *ast.SortKeyCondition, scanForward bool) bool {
	if cond.Compare != nil {
		switch cond.Compare.Comp {
		case ast.LessThan, ast.LessOrEqual:
			return scanForward
		case ast.GreaterThan, ast.GreaterOrEqual:
			return !scanForward
		}
	}
	return false
}
