package dynamo

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/trainingdesk-api/internal/domain"
)

// InvoiceRepo provides typed DynamoDB operations for the invoices table.
type InvoiceRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewInvoiceRepo(client *dynamodb.Client, tableName string) *InvoiceRepo {
	return &InvoiceRepo{client: client, tableName: tableName}
}

func (r *InvoiceRepo) Put(ctx context.Context, inv *domain.Invoice) error {
	item, err := attributevalue.MarshalMap(inv)
	if err != nil {
		return fmt.Errorf("marshal invoice: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *InvoiceRepo) Get(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("invoice_id", invoiceID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("invoice not found: %w", domain.ErrNotFound)
	}
	var inv domain.Invoice
	if err := attributevalue.UnmarshalMap(out.Item, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepo) GetByNumber(ctx context.Context, invoiceNo string) (*domain.Invoice, error) {
	return r.queryGSI(ctx, "invoice_no-index", "invoice_no", invoiceNo)
}

// GetByRegistration returns the invoice issued for a registration, if any.
// This backs the at-most-one-invoice-per-registration guard.
func (r *InvoiceRepo) GetByRegistration(ctx context.Context, registrationID string) (*domain.Invoice, error) {
	return r.queryGSI(ctx, "registration_id-index", "registration_id", registrationID)
}

// Update backfills the PDF key and promotes the status once the artifact
// exists. Invoices are otherwise immutable.
func (r *InvoiceRepo) Update(ctx context.Context, invoiceID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("invoice_id", invoiceID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// ScanPage returns a page of invoices. cursor is a base64-encoded invoice_id
// used as ExclusiveStartKey. Returns items, a next cursor (empty when no more
// pages), and any error.
func (r *InvoiceRepo) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Invoice, string, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
		Limit:     aws.Int32(limit),
	}
	if cursor != "" {
		invoiceID, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = strKey("invoice_id", invoiceID)
	}
	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, "", err
	}
	var invoices []domain.Invoice
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &invoices); err != nil {
		return nil, "", err
	}
	nextCursor := ""
	if v, ok := out.LastEvaluatedKey["invoice_id"].(*types.AttributeValueMemberS); ok {
		nextCursor = encodeCursor(v.Value)
	}
	return invoices, nextCursor, nil
}

func (r *InvoiceRepo) queryGSI(ctx context.Context, index, attr, value string) (*domain.Invoice, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("invoice not found: %w", domain.ErrNotFound)
	}
	var inv domain.Invoice
	if err := attributevalue.UnmarshalMap(out.Items[0], &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func encodeCursor(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

func decodeCursor(cursor string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
