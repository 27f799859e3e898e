package ddbsdk

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// maxBatchWriteItems is the DynamoDB limit on requests per BatchWriteItem call.
const maxBatchWriteItems = 25

const defaultMaxRetries = 8

// PutItems writes items to tableName with BatchWriteItem, 25 at a time.
// Unprocessed items are resubmitted with backoff until written or the retry
// limit is hit.
//
// Example:
//
//	err := client.PutItems(ctx, "HighScores", items, ddbsdk.WithMaxRetries(5))
func (c *Client) PutItems(ctx context.Context, tableName string, items []any, opts ...BatchOption) error {
	o := batchOpts{maxRetries: defaultMaxRetries, backoff: DefaultBackoff}
	for _, opt := range opts {
		opt(&o)
	}

	reqs := make([]types.WriteRequest, 0, len(items))
	for _, item := range items {
		av, err := marshalItem(item)
		if err != nil {
			return err
		}
		reqs = append(reqs, types.WriteRequest{PutRequest: &types.PutRequest{Item: av}})
	}

	for start := 0; start < len(reqs); start += maxBatchWriteItems {
		end := min(start+maxBatchWriteItems, len(reqs))
		pending := map[string][]types.WriteRequest{tableName: reqs[start:end]}
		if err := c.writeBatch(ctx, pending, o); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) writeBatch(ctx context.Context, pending map[string][]types.WriteRequest, o batchOpts) error {
	for retries := 0; ; retries++ {
		res, err := c.awsddb.BatchWriteItem(ctx, &dynamodbv2.BatchWriteItemInput{
			RequestItems: pending,
		})
		if err != nil {
			return fmt.Errorf("batch write failed: %w", err)
		}
		pending = res.UnprocessedItems
		if countRequests(pending) == 0 {
			return nil
		}
		if retries >= o.maxRetries {
			return fmt.Errorf("max retries (%d) exceeded: %d items unprocessed", o.maxRetries, countRequests(pending))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(o.backoff(retries)):
		}
	}
}

func countRequests(m map[string][]types.WriteRequest) int {
	var n int
	for _, reqs := range m {
		n += len(reqs)
	}
	return n
}

type BatchOption func(*batchOpts)

// BackoffFunc returns the duration to wait before retry attempt n.
type BackoffFunc func(attempt int) time.Duration

// WithMaxRetries sets how many times unprocessed items are resubmitted.
func WithMaxRetries(n int) BatchOption {
	return func(o *batchOpts) {
		o.maxRetries = n
	}
}

func WithBackoff(fn BackoffFunc) BatchOption {
	return func(o *batchOpts) {
		o.backoff = fn
	}
}

// ExponentialBackoff returns a capped exponential backoff with full jitter.
// Wait time is: rand(0, min(cap, base * multiplier^attempt))
// https://aws.amazon.com/blogs/architecture/exponential-backoff-and-jitter/
func ExponentialBackoff(base time.Duration, multiplier float64, cap time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		factor := 1.0
		for i := 0; i < attempt; i++ {
			factor *= multiplier
		}
		backoff := time.Duration(float64(base) * factor)
		if backoff > cap {
			backoff = cap
		}
		if backoff <= 0 {
			return 0
		}
		return time.Duration(rand.Int64N(int64(backoff)))
	}
}

// DefaultBackoff is [ExponentialBackoff] with 50ms base, 2x multiplier, 5s cap.
var DefaultBackoff = ExponentialBackoff(50*time.Millisecond, 2.0, 5*time.Second)

type batchOpts struct {
	maxRetries int
	backoff    BackoffFunc
}
