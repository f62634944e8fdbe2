package registration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/trainingdesk-api/internal/application/invoice"
	"github.com/trainingdesk-api/internal/domain"
	"github.com/trainingdesk-api/internal/infrastructure/sns"
	"github.com/trainingdesk-api/internal/pkg/id"
	"github.com/trainingdesk-api/internal/pkg/validate"
)

type RegistrationStore interface {
	Put(ctx context.Context, reg *domain.Registration) error
	Get(ctx context.Context, registrationID string) (*domain.Registration, error)
	ListByCourse(ctx context.Context, courseID string) ([]domain.Registration, error)
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Registration, string, error)
	Update(ctx context.Context, registrationID string, updates map[string]interface{}) error
}

type CourseStore interface {
	Get(ctx context.Context, courseID string) (*domain.Course, error)
}

type ScheduleStore interface {
	Get(ctx context.Context, scheduleID string) (*domain.Schedule, error)
}

// Issuer is the invoicing collaborator invoked when a registration completes.
type Issuer interface {
	Create(ctx context.Context, req domain.CreateInvoiceRequest) (*invoice.Result, error)
}

// CompletionResult reports a completed registration together with the outcome
// of the invoicing attempt, if one was made.
type CompletionResult struct {
	Registration *domain.Registration `json:"registration"`
	Invoice      *invoice.Result      `json:"invoice,omitempty"`
	InvoiceError string               `json:"invoice_error,omitempty"`
}

// Service handles course bookings and their lifecycle.
type Service interface {
	Create(ctx context.Context, req domain.CreateRegistrationRequest) (*domain.Registration, error)
	Get(ctx context.Context, registrationID string) (*domain.Registration, error)
	List(ctx context.Context, limit int, cursor string) ([]domain.Registration, string, error)
	ListByCourse(ctx context.Context, courseID string) ([]domain.Registration, error)
	MarkPaid(ctx context.Context, registrationID string) (*domain.Registration, error)
	MarkCompleted(ctx context.Context, registrationID string) (*CompletionResult, error)
	Cancel(ctx context.Context, registrationID string) (*domain.Registration, error)
}

type ServiceDeps struct {
	Registrations RegistrationStore
	Courses       CourseStore
	Schedules     ScheduleStore
	Issuer        Issuer
	SMS           sns.SMSSender // optional
	OpsPhone      string
}

type service struct {
	registrations RegistrationStore
	courses       CourseStore
	schedules     ScheduleStore
	issuer        Issuer
	sms           sns.SMSSender
	opsPhone      string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		registrations: deps.Registrations,
		courses:       deps.Courses,
		schedules:     deps.Schedules,
		issuer:        deps.Issuer,
		sms:           deps.SMS,
		opsPhone:      deps.OpsPhone,
	}
}

// Create books a course. New registrations always start PENDING and UNPAID;
// payment is reconciled out of band and recorded via MarkPaid. The quoted
// per-participant amount is snapshotted from the schedule (or the course's
// default fee) at booking time.
func (s *service) Create(ctx context.Context, req domain.CreateRegistrationRequest) (*domain.Registration, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}

	course, err := s.courses.Get(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if !course.Enable {
		return nil, fmt.Errorf("course not open for registration: %w", domain.ErrNotFound)
	}

	amount := course.Fee
	if req.ScheduleID != nil {
		sch, err := s.schedules.Get(ctx, *req.ScheduleID)
		if err != nil {
			return nil, err
		}
		if sch.CourseID != req.CourseID {
			return nil, fmt.Errorf("schedule does not belong to course: %w", domain.ErrBadRequest)
		}
		amount = sch.Fee
	}

	participants := req.Participants
	if participants < 1 {
		participants = 1
	}

	now := time.Now().UTC()
	reg := &domain.Registration{
		RegistrationID: id.New(),
		CourseID:       req.CourseID,
		ScheduleID:     req.ScheduleID,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		CustomerPhone:  req.CustomerPhone,
		Company:        req.Company,
		Address:        req.Address,
		Participants:   participants,
		Amount:         amount,
		PaymentStatus:  domain.PaymentUnpaid,
		Status:         domain.RegistrationPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.registrations.Put(ctx, reg); err != nil {
		return nil, fmt.Errorf("persist registration: %w", err)
	}

	s.notifyOps(ctx, fmt.Sprintf("New registration: %s, %s x%d", course.Title, reg.CustomerName, participants))
	return reg, nil
}

func (s *service) Get(ctx context.Context, registrationID string) (*domain.Registration, error) {
	return s.registrations.Get(ctx, registrationID)
}

func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.Registration, string, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.registrations.ScanPage(ctx, int32(limit), cursor)
}

func (s *service) ListByCourse(ctx context.Context, courseID string) ([]domain.Registration, error) {
	return s.registrations.ListByCourse(ctx, courseID)
}

func (s *service) MarkPaid(ctx context.Context, registrationID string) (*domain.Registration, error) {
	reg, err := s.registrations.Get(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.Status == domain.RegistrationCancelled {
		return nil, fmt.Errorf("registration is cancelled: %w", domain.ErrConflict)
	}
	if err := s.registrations.Update(ctx, registrationID, map[string]interface{}{
		"payment_status": domain.PaymentPaid,
	}); err != nil {
		return nil, err
	}
	reg.PaymentStatus = domain.PaymentPaid
	return reg, nil
}

// MarkCompleted closes out a registration and, when it is paid, issues the
// invoice. The status update always wins: an invoicing failure is reported in
// the result but never rolls the registration back.
func (s *service) MarkCompleted(ctx context.Context, registrationID string) (*CompletionResult, error) {
	reg, err := s.registrations.Get(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.Status == domain.RegistrationCancelled {
		return nil, fmt.Errorf("registration is cancelled: %w", domain.ErrConflict)
	}

	if err := s.registrations.Update(ctx, registrationID, map[string]interface{}{
		"status": domain.RegistrationCompleted,
	}); err != nil {
		return nil, err
	}
	reg.Status = domain.RegistrationCompleted

	res := &CompletionResult{Registration: reg}
	// Amount is the per-participant fee snapshotted at booking time; it is the
	// pricing fallback when the registration has no schedule.
	inv, err := s.issuer.Create(ctx, domain.CreateInvoiceRequest{
		PaymentStatus:  reg.PaymentStatus,
		CourseID:       &reg.CourseID,
		ScheduleID:     reg.ScheduleID,
		RegistrationID: &reg.RegistrationID,
		Amount:         &reg.Amount,
		CustomerName:   reg.CustomerName,
		CustomerEmail:  reg.CustomerEmail,
		CustomerPhone:  reg.CustomerPhone,
		Address:        reg.Address,
	})
	if err != nil {
		slog.Warn("invoicing failed after completion", "registration_id", registrationID, "err", err)
		res.InvoiceError = err.Error()
		return res, nil
	}
	res.Invoice = inv
	return res, nil
}

func (s *service) Cancel(ctx context.Context, registrationID string) (*domain.Registration, error) {
	reg, err := s.registrations.Get(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.Status == domain.RegistrationCompleted {
		return nil, fmt.Errorf("registration already completed: %w", domain.ErrConflict)
	}
	if err := s.registrations.Update(ctx, registrationID, map[string]interface{}{
		"status": domain.RegistrationCancelled,
	}); err != nil {
		return nil, err
	}
	reg.Status = domain.RegistrationCancelled
	return reg, nil
}

// notifyOps sends a best-effort SMS heads-up. Failures are logged only.
func (s *service) notifyOps(ctx context.Context, message string) {
	if s.sms == nil || s.opsPhone == "" {
		return
	}
	if err := s.sms.SendSMS(ctx, s.opsPhone, message); err != nil {
		slog.Warn("failed to send ops sms", "err", err)
	}
}
