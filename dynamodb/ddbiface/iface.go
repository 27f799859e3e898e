// Package ddbiface provides the DynamoDB client interfaces used across the
// repository. They are satisfied by both the AWS SDK v2 DynamoDB client and by
// ddbstore.Store, so lookups run against real DynamoDB or the local
// BadgerDB-backed store without changes.
package ddbiface

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// AWSDynamoClientV2 is the subset of the AWS SDK v2 *dynamodb.Client method
// set used for reads and seeding.
type AWSDynamoClientV2 interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// TableCreator creates tables from their control-plane description.
type TableCreator interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

var (
	_ AWSDynamoClientV2 = (*dynamodb.Client)(nil)
	_ TableCreator      = (*dynamodb.Client)(nil)
)
