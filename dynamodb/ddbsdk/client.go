// Package ddbsdk executes query plans and seeding writes through a DynamoDB
// client.
package ddbsdk

import (
	"github.com/acksell/highscores/dynamodb/ddbiface"
	"github.com/acksell/highscores/dynamodb/planner"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Item represents a raw DynamoDB item as returned from queries.
// Callers should use attributevalue.UnmarshalMap to convert to their struct.
type Item = map[string]types.AttributeValue

func New(awsddb ddbiface.AWSDynamoClientV2) *Client {
	return &Client{
		awsddb: awsddb,
	}
}

type Client struct {
	awsddb ddbiface.AWSDynamoClientV2
}

// NewQuery creates a querier for plan.
//
// Configure with method chaining: WithEventuallyConsistentReads(), WithPageSize(n).
func (c *Client) NewQuery(plan planner.Plan) *Querier {
	return NewQuerier(c.awsddb, plan)
}
