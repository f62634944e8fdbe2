package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/trainingdesk-api/internal/domain"
	"github.com/trainingdesk-api/internal/pkg/id"
	"github.com/trainingdesk-api/internal/pkg/validate"
)

type CourseStore interface {
	Put(ctx context.Context, c *domain.Course) error
	Get(ctx context.Context, courseID string) (*domain.Course, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Course, error)
	Scan(ctx context.Context) ([]domain.Course, error)
	Update(ctx context.Context, courseID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, courseID string) error
}

type ScheduleStore interface {
	Put(ctx context.Context, s *domain.Schedule) error
	Get(ctx context.Context, scheduleID string) (*domain.Schedule, error)
	ListByCourse(ctx context.Context, courseID string) ([]domain.Schedule, error)
	Update(ctx context.Context, scheduleID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, scheduleID string) error
}

// Service manages the public course catalog and its scheduled runs.
type Service interface {
	CreateCourse(ctx context.Context, in domain.CourseInput) (*domain.Course, error)
	GetCourse(ctx context.Context, courseID string) (*domain.Course, error)
	GetCourseBySlug(ctx context.Context, slug string) (*domain.Course, error)
	ListCourses(ctx context.Context, includeDisabled bool) ([]domain.Course, error)
	UpdateCourse(ctx context.Context, courseID string, req domain.UpdateCourseRequest) error
	DisableCourse(ctx context.Context, courseID string) error

	CreateSchedule(ctx context.Context, in domain.ScheduleInput) (*domain.Schedule, error)
	GetSchedule(ctx context.Context, scheduleID string) (*domain.Schedule, error)
	ListSchedules(ctx context.Context, courseID string, includeDisabled bool) ([]domain.Schedule, error)
	UpdateSchedule(ctx context.Context, scheduleID string, req domain.UpdateScheduleRequest) error
	DisableSchedule(ctx context.Context, scheduleID string) error
}

type ServiceDeps struct {
	Courses   CourseStore
	Schedules ScheduleStore
}

type service struct {
	courses   CourseStore
	schedules ScheduleStore
}

func NewService(deps ServiceDeps) Service {
	return &service{courses: deps.Courses, schedules: deps.Schedules}
}

func (s *service) CreateCourse(ctx context.Context, in domain.CourseInput) (*domain.Course, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}

	// Slugs are the public lookup key and must stay unique.
	if _, err := s.courses.GetBySlug(ctx, in.Slug); err == nil {
		return nil, fmt.Errorf("slug %q already in use: %w", in.Slug, domain.ErrConflict)
	}

	now := time.Now().UTC()
	c := &domain.Course{
		CourseID:  id.New(),
		Slug:      in.Slug,
		Title:     in.Title,
		Summary:   in.Summary,
		Category:  in.Category,
		Enable:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Fee != nil {
		c.Fee = *in.Fee
	}
	if in.Enable != nil {
		c.Enable = *in.Enable
	}
	if err := s.courses.Put(ctx, c); err != nil {
		return nil, fmt.Errorf("persist course: %w", err)
	}
	return c, nil
}

func (s *service) GetCourse(ctx context.Context, courseID string) (*domain.Course, error) {
	return s.courses.Get(ctx, courseID)
}

func (s *service) GetCourseBySlug(ctx context.Context, slug string) (*domain.Course, error) {
	c, err := s.courses.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !c.Enable {
		return nil, fmt.Errorf("course disabled: %w", domain.ErrNotFound)
	}
	return c, nil
}

func (s *service) ListCourses(ctx context.Context, includeDisabled bool) ([]domain.Course, error) {
	courses, err := s.courses.Scan(ctx)
	if err != nil {
		return nil, err
	}
	if includeDisabled {
		return courses, nil
	}
	visible := courses[:0]
	for _, c := range courses {
		if c.Enable {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

func (s *service) UpdateCourse(ctx context.Context, courseID string, req domain.UpdateCourseRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	if _, err := s.courses.Get(ctx, courseID); err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if req.Slug != nil {
		if existing, err := s.courses.GetBySlug(ctx, *req.Slug); err == nil && existing.CourseID != courseID {
			return fmt.Errorf("slug %q already in use: %w", *req.Slug, domain.ErrConflict)
		}
		updates["slug"] = *req.Slug
	}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Summary != nil {
		updates["summary"] = *req.Summary
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Fee != nil {
		updates["fee"] = *req.Fee
	}
	if req.Enable != nil {
		updates["enable"] = *req.Enable
	}
	if len(updates) == 0 {
		return fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}
	return s.courses.Update(ctx, courseID, updates)
}

func (s *service) DisableCourse(ctx context.Context, courseID string) error {
	if _, err := s.courses.Get(ctx, courseID); err != nil {
		return err
	}
	return s.courses.SoftDelete(ctx, courseID)
}

func (s *service) CreateSchedule(ctx context.Context, in domain.ScheduleInput) (*domain.Schedule, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	// Every schedule hangs off an existing course.
	if _, err := s.courses.Get(ctx, in.CourseID); err != nil {
		return nil, err
	}
	if in.EndDate < in.StartDate {
		return nil, fmt.Errorf("end date before start date: %w", domain.ErrBadRequest)
	}

	now := time.Now().UTC()
	sch := &domain.Schedule{
		ScheduleID: id.New(),
		CourseID:   in.CourseID,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		Venue:      in.Venue,
		Mode:       in.Mode,
		Fee:        in.Fee,
		Seats:      in.Seats,
		Enable:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.Enable != nil {
		sch.Enable = *in.Enable
	}
	if err := s.schedules.Put(ctx, sch); err != nil {
		return nil, fmt.Errorf("persist schedule: %w", err)
	}
	return sch, nil
}

func (s *service) GetSchedule(ctx context.Context, scheduleID string) (*domain.Schedule, error) {
	return s.schedules.Get(ctx, scheduleID)
}

func (s *service) ListSchedules(ctx context.Context, courseID string, includeDisabled bool) ([]domain.Schedule, error) {
	schedules, err := s.schedules.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if includeDisabled {
		return schedules, nil
	}
	visible := schedules[:0]
	for _, sch := range schedules {
		if sch.Enable {
			visible = append(visible, sch)
		}
	}
	return visible, nil
}

func (s *service) UpdateSchedule(ctx context.Context, scheduleID string, req domain.UpdateScheduleRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	if _, err := s.schedules.Get(ctx, scheduleID); err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		updates["end_date"] = *req.EndDate
	}
	if req.Venue != nil {
		updates["venue"] = *req.Venue
	}
	if req.Mode != nil {
		updates["mode"] = *req.Mode
	}
	if req.Fee != nil {
		updates["fee"] = *req.Fee
	}
	if req.Seats != nil {
		updates["seats"] = *req.Seats
	}
	if req.Enable != nil {
		updates["enable"] = *req.Enable
	}
	if len(updates) == 0 {
		return fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}
	return s.schedules.Update(ctx, scheduleID, updates)
}

func (s *service) DisableSchedule(ctx context.Context, scheduleID string) error {
	if _, err := s.schedules.Get(ctx, scheduleID); err != nil {
		return err
	}
	return s.schedules.SoftDelete(ctx, scheduleID)
}
