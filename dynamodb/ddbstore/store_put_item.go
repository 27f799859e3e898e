package ddbstore

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dgraph-io/badger/v4"
)

// PutItem creates or replaces an item. Condition expressions are not
// supported.
func (s *Store) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if params == nil {
		return nil, fmt.Errorf("params is required")
	}
	if params.Item == nil {
		return nil, fmt.Errorf("item is required")
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
		oldItem, err = s.writeItem(txn, tabl, params.Item)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := &dynamodb.PutItemOutput{}
	if params.ReturnValues == types.ReturnValueAllOld && oldItem != nil {
		out.Attributes = oldItem
	}
	return out, nil
}

// writeItem stores item in the table and updates every index. It returns the
// item it replaced, if any.
func (s *Store) writeItem(txn *badger.Txn, tabl *tableSchema, item map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	key, err := tabl.itemKey(item)
	if err != nil {
		return nil, err
	}
	itemBytes, err := SerializeItem(item)
	if err != nil {
		return nil, fmt.Errorf("serialize item: %w", err)
	}

	oldItem, err := getItem(txn, key)
	if err != nil {
		return nil, err
	}
	if err := txn.Set(key, itemBytes); err != nil {
		return nil, err
	}

	for _, idx := range tabl.indexes {
		if oldItem != nil {
			if err := s.deleteIndexEntry(txn, tabl, idx, key, oldItem); err != nil {
				return nil, fmt.Errorf("update index %s: %w", idx.definition.Name, err)
			}
		}
		if err := s.putIndexEntry(txn, tabl, idx, key, item); err != nil {
			return nil, fmt.Errorf("update index %s: %w", idx.definition.Name, err)
		}
	}
	return oldItem, nil
}

// indexEntryKey returns the key of item's entry in idx. ok is false when the
// item lacks an index key attribute and so is not part of the index.
func indexEntryKey(tabl *tableSchema, idx *indexSchema, tableKey []byte, item map[string]types.AttributeValue) (key []byte, ok bool, err error) {
	for _, attr := range idx.definition.KeyDefinitions.Attributes() {
		if _, present := item[attr]; !present {
			return nil, false, nil
		}
	}
	pk, err := idx.definition.ExtractPrimaryKey(item)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	key, err = idx.encoder.encodeIndexEntry(pk, tableKey, tabl.encoder.prefix)
	if err != nil {
		return nil, false, fmt.Errorf("encode index key: %w", err)
	}
	return key, true, nil
}

func (s *Store) putIndexEntry(txn *badger.Txn, tabl *tableSchema, idx *indexSchema, tableKey []byte, item map[string]types.AttributeValue) error {
	key, ok, err := indexEntryKey(tabl, idx, tableKey, item)
	if err != nil || !ok {
		return err
	}
	projected := idx.definition.Projection.Project(item, tabl.definition.KeyDefinitions, idx.definition.KeyDefinitions)
	val, err := SerializeItem(projected)
	if err != nil {
		return fmt.Errorf("serialize index item: %w", err)
	}
	return txn.Set(key, val)
}

func (s *Store) deleteIndexEntry(txn *badger.Txn, tabl *tableSchema, idx *indexSchema, tableKey []byte, item map[string]types.AttributeValue) error {
	key, ok, err := indexEntryKey(tabl, idx, tableKey, item)
	if err != nil || !ok {
		// stored items were validated on write
		return nil
	}
	return txn.Delete(key)
}
