package ddbsdk

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// PutItem marshals item with attributevalue.MarshalMap and writes it,
// replacing any item with the same primary key.
func (c *Client) PutItem(ctx context.Context, tableName string, item any) error {
	av, err := marshalItem(item)
	if err != nil {
		return err
	}
	_, err = c.awsddb.PutItem(ctx, &dynamodbv2.PutItemInput{
		TableName: aws.String(tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("put item into %s failed: %w", tableName, err)
	}
	return nil
}

func marshalItem(item any) (Item, error) {
	if av, ok := item.(Item); ok {
		return av, nil
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", item, err)
	}
	return av, nil
}
