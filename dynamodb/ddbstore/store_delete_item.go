package ddbstore

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dgraph-io/badger/v4"
)

// DeleteItem removes an item by its primary key, along with its index
// entries. Deleting a missing item succeeds.
func (s *Store) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if params == nil {
		return nil, fmt.Errorf("params is required")
	}
	if params.Key == nil {
		return nil, fmt.Errorf("key is required")
	}
	if params.ConditionExpression != nil {
		return nil, fmt.Errorf("%w: condition expressions are not supported", ErrValidation)
	}

	tabl, err := s.getTable(params.TableName)
	if err != nil {
		return nil, err
	}

	var oldItem map[string]types.AttributeValue
	err = s.db.Update(func(txn *badger.Txn) error {
		var err error
		oldItem, err = s.removeItem(txn, tabl, params.Key)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := &dynamodb.DeleteItemOutput{}
	if params.ReturnValues == types.ReturnValueAllOld && oldItem != nil {
		out.Attributes = oldItem
	}
	return out, nil
}

func (s *Store) removeItem(txn *badger.Txn, tabl *tableSchema, keyAttrs map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	key, err := tabl.itemKey(keyAttrs)
	if err != nil {
		return nil, err
	}

	oldItem, err := getItem(txn, key)
	if err != nil || oldItem == nil {
		return nil, err
	}
	if err := txn.Delete(key); err != nil {
		return nil, err
	}
	for _, idx := range tabl.indexes {
		if err := s.deleteIndexEntry(txn, tabl, idx, key, oldItem); err != nil {
			return nil, fmt.Errorf("update index %s: %w", idx.definition.Name, err)
		}
	}
	return oldItem, nil
}
