package ddbstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dgraph-io/badger/v4"
)

// GetItem retrieves a single item by its primary key. A missing item is not
// an error, the output Item is nil like in DynamoDB.
func (s *Store) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if params == nil {
		return nil, fmt.Errorf("params is required")
	}
	if params.Key == nil {
		return nil, fmt.Errorf("key is required")
	}

	tabl, err := s.getTable(params.TableName)
	if err != nil {
		return nil, err
	}
	key, err := tabl.itemKey(params.Key)
	if err != nil {
		return nil, err
	}

	out := &dynamodb.GetItemOutput{}
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := getItem(txn, key)
		if err != nil || item == nil {
			return err
		}
		out.Item, err = project(item, params.ProjectionExpression, params.ExpressionAttributeNames)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// getItem reads and decodes the item stored at key, or returns nil when
// there is none.
func getItem(txn *badger.Txn, key []byte) (map[string]types.AttributeValue, error) {
	stored, err := txn.Get(key)
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	}
	val, err := stored.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	return DeserializeItem(val)
}
