package domain

import "time"

// Registration statuses.
const (
	RegistrationPending   = "PENDING"
	RegistrationCompleted = "COMPLETED"
	RegistrationCancelled = "CANCELLED"
)

// Payment statuses carried on a registration.
const (
	PaymentUnpaid = "UNPAID"
	PaymentPaid   = "PAID"
)

// Registration is a course booking with a customer snapshot. The snapshot is
// copied onto the invoice at issuance and never re-derived afterwards.
type Registration struct {
	RegistrationID string    `json:"id" dynamodbav:"registration_id"`
	CourseID       string    `json:"course_id" dynamodbav:"course_id"`
	ScheduleID     *string   `json:"schedule_id" dynamodbav:"schedule_id"`
	CustomerName   string    `json:"customer_name" dynamodbav:"customer_name"`
	CustomerEmail  string    `json:"customer_email" dynamodbav:"customer_email"`
	CustomerPhone  *string   `json:"customer_phone" dynamodbav:"customer_phone"`
	Company        *string   `json:"company" dynamodbav:"company"`
	Address        *string   `json:"address" dynamodbav:"address"`
	Participants   int       `json:"participants" dynamodbav:"participants"`
	Amount         float64   `json:"amount" dynamodbav:"amount"` // quoted per-participant fee at booking time
	PaymentStatus  string    `json:"payment_status" dynamodbav:"payment_status"`
	Status         string    `json:"status" dynamodbav:"status"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateRegistrationRequest struct {
	CourseID      string  `json:"course_id" validate:"required"`
	ScheduleID    *string `json:"schedule_id"`
	CustomerName  string  `json:"customer_name" validate:"required"`
	CustomerEmail string  `json:"customer_email" validate:"required,email"`
	CustomerPhone *string `json:"customer_phone"`
	Company       *string `json:"company"`
	Address       *string `json:"address"`
	Participants  int     `json:"participants" validate:"omitempty,gte=1"`
}
