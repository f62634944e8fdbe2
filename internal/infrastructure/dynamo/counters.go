package dynamo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// CounterRepo manages the per-year invoice sequence rows.
type CounterRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCounterRepo(client *dynamodb.Client, tableName string) *CounterRepo {
	return &CounterRepo{client: client, tableName: tableName}
}

// NextSequence atomically increments the sequence for the given year and
// returns the new value. The ADD action is applied server-side, so concurrent
// callers always receive distinct, contiguous values; a missing row for a new
// year is created implicitly with seq starting at 1.
func (r *CounterRepo) NextSequence(ctx context.Context, year int) (int64, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      numKey("year", int64(year)),
		UpdateExpression:         aws.String("ADD #s :one"),
		ExpressionAttributeNames: map[string]string{"#s": "seq"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("increment invoice counter for %d: %w", year, err)
	}

	n, ok := out.Attributes["seq"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("invoice counter for %d returned no seq attribute", year)
	}
	seq, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse invoice counter seq %q: %w", n.Value, err)
	}
	return seq, nil
}
