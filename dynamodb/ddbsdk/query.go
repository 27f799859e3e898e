package ddbsdk

import (
	"context"
	"fmt"

	"github.com/acksell/highscores/dynamodb/ddbiface"
	"github.com/acksell/highscores/dynamodb/planner"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const defaultPageSize = 10

type Querier struct {
	awsddb ddbiface.AWSDynamoClientV2
	plan   planner.Plan

	//internal, not exposed to user
	lastCursor map[string]types.AttributeValue
	returned   int32
	done       bool

	opts queryOptions
}

type queryOptions struct {
	// default to consistent reads
	// because if you don't know what you're doing you may introduce race conditions.
	eventuallyConsistent bool
	pageSize             int32
}

func NewQuerier(ddb ddbiface.AWSDynamoClientV2, plan planner.Plan) *Querier {
	return &Querier{
		awsddb: ddb,
		plan:   plan,
		opts: queryOptions{
			pageSize: defaultPageSize,
		},
	}
}

type QueryResult struct {
	Items  []Item
	IsDone bool
}

// Next fetches one page. A page never holds more items than the plan's
// remaining limit.
func (q *Querier) Next(ctx context.Context) (*QueryResult, error) {
	if q.done {
		return &QueryResult{IsDone: true}, nil
	}
	in, err := q.plan.QueryInput()
	if err != nil {
		return nil, err
	}

	pageSize := q.opts.pageSize
	if q.plan.Limit != nil {
		remaining := *q.plan.Limit - q.returned
		if remaining < pageSize {
			pageSize = remaining
		}
	}
	in.Limit = aws.Int32(pageSize)
	in.ExclusiveStartKey = q.lastCursor
	// global secondary indexes only support eventually consistent reads
	if q.plan.Path != planner.PathGlobal {
		in.ConsistentRead = aws.Bool(!q.opts.eventuallyConsistent)
	}

	res, err := q.awsddb.Query(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("query %s failed: %w", q.plan, err)
	}

	q.lastCursor = res.LastEvaluatedKey
	q.returned += int32(len(res.Items))
	q.done = res.LastEvaluatedKey == nil || (q.plan.Limit != nil && q.returned >= *q.plan.Limit)
	return &QueryResult{
		Items:  res.Items,
		IsDone: q.done,
	}, nil
}

// QueryAll follows pagination until the partition is exhausted or the plan's
// limit is reached.
func (q *Querier) QueryAll(ctx context.Context) (*QueryResult, error) {
	var allItems []Item
	for {
		res, err := q.Next(ctx)
		if err != nil {
			return nil, err
		}
		allItems = append(allItems, res.Items...)
		if res.IsDone {
			break
		}
	}
	return &QueryResult{
		Items:  allItems,
		IsDone: true,
	}, nil
}

// WithEventuallyConsistentReads has no effect on global index plans, which
// are always eventually consistent.
func (q *Querier) WithEventuallyConsistentReads() *Querier {
	q.opts.eventuallyConsistent = true
	return q
}

func (q *Querier) WithPageSize(n int) *Querier {
	if n > 0 {
		q.opts.pageSize = int32(n)
	}
	return q
}
