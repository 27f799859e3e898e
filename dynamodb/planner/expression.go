package planner

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

func (c Condition) builder() expression.KeyConditionBuilder {
	key := expression.Key(c.Key.Name)
	switch c.Op {
	case SortLessThan:
		return expression.KeyLessThan(key, expression.Value(c.Values[0]))
	case SortLessOrEqual:
		return expression.KeyLessThanEqual(key, expression.Value(c.Values[0]))
	case SortGreaterThan:
		return expression.KeyGreaterThan(key, expression.Value(c.Values[0]))
	case SortGreaterOrEqual:
		return expression.KeyGreaterThanEqual(key, expression.Value(c.Values[0]))
	case SortBetween:
		return expression.KeyBetween(key, expression.Value(c.Values[0]), expression.Value(c.Values[1]))
	case SortBeginsWith:
		return expression.KeyBeginsWith(key, c.Values[0].(string))
	default:
		return expression.KeyEqual(key, expression.Value(c.Values[0]))
	}
}

// KeyCondition returns the plan's key condition as an expression builder.
func (p Plan) KeyCondition() expression.KeyConditionBuilder {
	key := p.Partition.builder()
	if p.Sort != nil {
		key = key.And(p.Sort.builder())
	}
	return key
}

// Expression builds the key condition with its name and value placeholders.
func (p Plan) Expression() (expression.Expression, error) {
	expr, err := expression.NewBuilder().WithKeyCondition(p.KeyCondition()).Build()
	if err != nil {
		return expression.Expression{}, fmt.Errorf("failed to build key condition expression: %w", err)
	}
	return expr, nil
}

// QueryInput renders the plan as a DynamoDB Query request.
func (p Plan) QueryInput() (*dynamodb.QueryInput, error) {
	expr, err := p.Expression()
	if err != nil {
		return nil, err
	}
	in := &dynamodb.QueryInput{
		TableName:                 aws.String(p.Table.Name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(p.Direction != Descending),
	}
	if p.Index != nil {
		in.IndexName = aws.String(p.Index.Name)
	}
	if p.Limit != nil {
		in.Limit = aws.Int32(*p.Limit)
	}
	return in, nil
}
