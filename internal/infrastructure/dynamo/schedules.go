package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/trainingdesk-api/internal/domain"
)

// ScheduleRepo provides typed DynamoDB operations for the schedules table.
type ScheduleRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewScheduleRepo(client *dynamodb.Client, tableName string) *ScheduleRepo {
	return &ScheduleRepo{client: client, tableName: tableName}
}

func (r *ScheduleRepo) Put(ctx context.Context, s *domain.Schedule) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal schedule: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ScheduleRepo) Get(ctx context.Context, scheduleID string) (*domain.Schedule, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("schedule_id", scheduleID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("schedule not found: %w", domain.ErrNotFound)
	}
	var s domain.Schedule
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByCourse returns all runs of a course, ordered by start date via the
// course_id-start_date-index GSI.
func (r *ScheduleRepo) ListByCourse(ctx context.Context, courseID string) ([]domain.Schedule, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("course_id-start_date-index"),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": "course_id"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: courseID}},
	})
	if err != nil {
		return nil, err
	}
	var schedules []domain.Schedule
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *ScheduleRepo) Update(ctx context.Context, scheduleID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("schedule_id", scheduleID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *ScheduleRepo) SoftDelete(ctx context.Context, scheduleID string) error {
	return r.Update(ctx, scheduleID, map[string]interface{}{"enable": false})
}
