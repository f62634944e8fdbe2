package domain

import "time"

type Enquiry struct {
	EnquiryID string    `json:"id" dynamodbav:"enquiry_id"`
	Name      string    `json:"name" dynamodbav:"name"`
	Email     string    `json:"email" dynamodbav:"email"`
	Phone     *string   `json:"phone" dynamodbav:"phone"`
	Subject   string    `json:"subject" dynamodbav:"subject"`
	Message   string    `json:"message" dynamodbav:"message"`
	CourseID  *string   `json:"course_id" dynamodbav:"course_id"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}

type EnquiryInput struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone"`
	Subject  string  `json:"subject" validate:"required"`
	Message  string  `json:"message" validate:"required"`
	CourseID *string `json:"course_id"`
}
