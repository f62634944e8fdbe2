package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/trainingdesk-api/internal/domain"
)

// EnquiryRepo provides typed DynamoDB operations for the enquiries table.
type EnquiryRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewEnquiryRepo(client *dynamodb.Client, tableName string) *EnquiryRepo {
	return &EnquiryRepo{client: client, tableName: tableName}
}

func (r *EnquiryRepo) Put(ctx context.Context, e *domain.Enquiry) error {
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal enquiry: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *EnquiryRepo) Scan(ctx context.Context) ([]domain.Enquiry, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	if err != nil {
		return nil, err
	}
	var enquiries []domain.Enquiry
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &enquiries); err != nil {
		return nil, err
	}
	return enquiries, nil
}
