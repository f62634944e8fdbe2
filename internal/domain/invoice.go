package domain

import (
	"fmt"
	"time"
)

// Invoice statuses. An invoice is persisted as PENDING_ARTIFACT first and
// promoted to PAID only once its PDF has been rendered and stored, so a
// failed render never leaves a row that looks complete.
const (
	InvoicePendingArtifact = "PENDING_ARTIFACT"
	InvoicePaid            = "PAID"
)

// Invoice is an issued, immutable billing record. Customer and course fields
// are snapshots taken at issuance.
type Invoice struct {
	InvoiceID      string    `json:"id" dynamodbav:"invoice_id"`
	InvoiceNo      string    `json:"invoice_no" dynamodbav:"invoice_no"`
	Status         string    `json:"status" dynamodbav:"status"`
	CourseID       *string   `json:"course_id" dynamodbav:"course_id"`
	ScheduleID     *string   `json:"schedule_id" dynamodbav:"schedule_id"`
	RegistrationID *string   `json:"registration_id" dynamodbav:"registration_id"`
	CourseTitle    string    `json:"course_title" dynamodbav:"course_title"`
	CustomerName   string    `json:"customer_name" dynamodbav:"customer_name"`
	CustomerEmail  string    `json:"customer_email" dynamodbav:"customer_email"`
	CustomerPhone  *string   `json:"customer_phone" dynamodbav:"customer_phone"`
	Address        *string   `json:"address" dynamodbav:"address"`
	UnitPrice      float64   `json:"unit_price" dynamodbav:"unit_price"`
	Participants   int       `json:"participants" dynamodbav:"participants"`
	TotalAmount    float64   `json:"total_amount" dynamodbav:"total_amount"`
	IssueDate      time.Time `json:"issue_date" dynamodbav:"issue_date"`
	DueDate        time.Time `json:"due_date" dynamodbav:"due_date"`
	PDFKey         *string   `json:"pdf_key" dynamodbav:"pdf_key"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated" dynamodbav:"updated_at"`
}

// InvoiceCounter is the per-calendar-year sequence row. The sequence is the
// sole source of invoice-number uniqueness and must only ever be advanced via
// a storage-level atomic increment.
type InvoiceCounter struct {
	Year int   `json:"year" dynamodbav:"year"`
	Seq  int64 `json:"seq" dynamodbav:"seq"`
}

// FormatInvoiceNumber builds the human-readable business identifier,
// INV-{year}-{seq} with the sequence zero-padded to four digits. Sequences
// past 9999 widen the number rather than truncate it; uniqueness comes from
// the counter, not the padding.
func FormatInvoiceNumber(year int, seq int64) string {
	return fmt.Sprintf("INV-%d-%04d", year, seq)
}

// CreateInvoiceRequest carries everything the issuer needs. Explicit values
// win over looked-up ones: CourseTitle over the course record, the schedule
// fee over Amount, the registration's participant count over Participants.
type CreateInvoiceRequest struct {
	PaymentStatus  string   `json:"payment_status" validate:"required"`
	CourseID       *string  `json:"course_id"`
	ScheduleID     *string  `json:"schedule_id"`
	RegistrationID *string  `json:"registration_id"`
	CourseTitle    *string  `json:"course_title"`
	Amount         *float64 `json:"amount" validate:"omitempty,gte=0"`
	Participants   *int     `json:"participants" validate:"omitempty,gte=1"`
	CustomerName   string   `json:"customer_name" validate:"required"`
	CustomerEmail  string   `json:"customer_email" validate:"required,email"`
	CustomerPhone  *string  `json:"customer_phone"`
	Address        *string  `json:"address"`

	// SuppressEmail skips the customer notification, e.g. when the PDF will be
	// attached to a different outbound email.
	SuppressEmail bool `json:"suppress_email"`
}
