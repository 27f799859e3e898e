package ddbstore

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dgraph-io/badger/v4"
)

// maxBatchWriteItems is the DynamoDB limit on requests per BatchWriteItem call.
const maxBatchWriteItems = 25

// BatchWriteItem performs multiple put/delete operations in one transaction.
// The local store has no throughput limits, so UnprocessedItems is always
// empty on success.
func (s *Store) BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	if params == nil {
		return nil, fmt.Errorf("params is required")
	}
	if len(params.RequestItems) == 0 {
		return nil, fmt.Errorf("%w: request items is required", ErrValidation)
	}
	var n int
	for _, reqs := range params.RequestItems {
		n += len(reqs)
	}
	if n > maxBatchWriteItems {
		return nil, fmt.Errorf("%w: too many items in batch write: %d > %d", ErrValidation, n, maxBatchWriteItems)
	}

	tables := make(map[string]*tableSchema, len(params.RequestItems))
	for tableName := range params.RequestItems {
		tabl, err := s.getTable(&tableName)
		if err != nil {
			return nil, err
		}
		tables[tableName] = tabl
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		for tableName, writeRequests := range params.RequestItems {
			tabl := tables[tableName]
			for _, req := range writeRequests {
				switch {
				case req.PutRequest != nil:
					if _, err := s.writeItem(txn, tabl, req.PutRequest.Item); err != nil {
						return err
					}
				case req.DeleteRequest != nil:
					if _, err := s.removeItem(txn, tabl, req.DeleteRequest.Key); err != nil {
						return err
					}
				default:
					return fmt.Errorf("%w: empty write request, must be put or delete", ErrValidation)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dynamodb.BatchWriteItemOutput{
		UnprocessedItems: map[string][]types.WriteRequest{},
	}, nil
}
