package domain

import "time"

type Course struct {
	CourseID  string    `json:"id" dynamodbav:"course_id"`
	Slug      string    `json:"slug" dynamodbav:"slug"`
	Title     string    `json:"title" dynamodbav:"title"`
	Summary   string    `json:"summary" dynamodbav:"summary"`
	Category  string    `json:"category" dynamodbav:"category"`
	Fee       float64   `json:"fee" dynamodbav:"fee"` // default fee; schedules may override
	Enable    bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CourseInput struct {
	Slug     string   `json:"slug" validate:"required"`
	Title    string   `json:"title" validate:"required"`
	Summary  string   `json:"summary"`
	Category string   `json:"category"`
	Fee      *float64 `json:"fee" validate:"omitempty,gte=0"`
	Enable   *bool    `json:"enable"`
}

type UpdateCourseRequest struct {
	Slug     *string  `json:"slug"`
	Title    *string  `json:"title"`
	Summary  *string  `json:"summary"`
	Category *string  `json:"category"`
	Fee      *float64 `json:"fee" validate:"omitempty,gte=0"`
	Enable   *bool    `json:"enable"`
}
