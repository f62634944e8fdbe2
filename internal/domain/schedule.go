package domain

import "time"

// Schedule is a dated run of a course. Fee is the per-participant price for
// this run and takes precedence over the course's default fee when invoicing.
type Schedule struct {
	ScheduleID string    `json:"id" dynamodbav:"schedule_id"`
	CourseID   string    `json:"course_id" dynamodbav:"course_id"`
	StartDate  string    `json:"start_date" dynamodbav:"start_date"` // YYYY-MM-DD
	EndDate    string    `json:"end_date" dynamodbav:"end_date"`     // YYYY-MM-DD
	Venue      string    `json:"venue" dynamodbav:"venue"`
	Mode       string    `json:"mode" dynamodbav:"mode"` // "classroom" | "online" | "hybrid"
	Fee        float64   `json:"fee" dynamodbav:"fee"`
	Seats      int       `json:"seats" dynamodbav:"seats"`
	Enable     bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

type ScheduleInput struct {
	CourseID  string   `json:"course_id" validate:"required"`
	StartDate string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string   `json:"end_date" validate:"required,datetime=2006-01-02"`
	Venue     string   `json:"venue"`
	Mode      string   `json:"mode" validate:"omitempty,oneof=classroom online hybrid"`
	Fee       float64  `json:"fee" validate:"gte=0"`
	Seats     int      `json:"seats" validate:"gte=0"`
	Enable    *bool    `json:"enable"`
}

type UpdateScheduleRequest struct {
	StartDate *string  `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   *string  `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Venue     *string  `json:"venue"`
	Mode      *string  `json:"mode" validate:"omitempty,oneof=classroom online hybrid"`
	Fee       *float64 `json:"fee" validate:"omitempty,gte=0"`
	Seats     *int     `json:"seats" validate:"omitempty,gte=0"`
	Enable    *bool    `json:"enable"`
}
