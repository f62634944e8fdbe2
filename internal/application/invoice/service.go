package invoice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/trainingdesk-api/internal/domain"
	"github.com/trainingdesk-api/internal/pkg/id"
	"github.com/trainingdesk-api/internal/pkg/validate"
)

// dueAfter is how long after issuance an invoice falls due. Invoices are only
// ever issued for already-paid orders, so this is informational.
const dueAfter = 7 * 24 * time.Hour

// CounterStore allocates per-year sequence values. Implementations must make
// the increment atomic at the storage layer — this is the sole source of
// invoice-number uniqueness.
type CounterStore interface {
	NextSequence(ctx context.Context, year int) (int64, error)
}

type InvoiceStore interface {
	Put(ctx context.Context, inv *domain.Invoice) error
	Get(ctx context.Context, invoiceID string) (*domain.Invoice, error)
	GetByNumber(ctx context.Context, invoiceNo string) (*domain.Invoice, error)
	GetByRegistration(ctx context.Context, registrationID string) (*domain.Invoice, error)
	Update(ctx context.Context, invoiceID string, updates map[string]interface{}) error
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Invoice, string, error)
}

type CourseStore interface {
	Get(ctx context.Context, courseID string) (*domain.Course, error)
}

type ScheduleStore interface {
	Get(ctx context.Context, scheduleID string) (*domain.Schedule, error)
}

type RegistrationStore interface {
	Get(ctx context.Context, registrationID string) (*domain.Registration, error)
}

// Renderer produces the PDF artifact for an invoice.
type Renderer interface {
	Render(inv *domain.Invoice) ([]byte, error)
}

// ObjectStore persists PDF artifacts.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Mailer is the subset of the mail collaborator invoicing needs.
type Mailer interface {
	SendEmailWithAttachment(to, subject, htmlBody, filename string, attachment []byte) error
}

// Result reports the outcome of an invoice creation.
type Result struct {
	InvoiceID      string `json:"invoice_id"`
	InvoiceNo      string `json:"invoice_no"`
	PDFKey         string `json:"pdf_key"`
	EmailSent      bool   `json:"email_sent"`
	AlreadyExisted bool   `json:"already_existed"`
}

// Service issues numbered, priced, rendered invoices.
type Service interface {
	AllocateNumber(ctx context.Context) (string, error)
	Create(ctx context.Context, req domain.CreateInvoiceRequest) (*Result, error)
	Get(ctx context.Context, invoiceID string) (*domain.Invoice, error)
	GetByNumber(ctx context.Context, invoiceNo string) (*domain.Invoice, error)
	GetByRegistration(ctx context.Context, registrationID string) (*domain.Invoice, error)
	List(ctx context.Context, limit int, cursor string) ([]domain.Invoice, string, error)
	PDFURL(ctx context.Context, invoiceID string) (string, error)
}

type ServiceDeps struct {
	Counters      CounterStore
	Invoices      InvoiceStore
	Courses       CourseStore
	Schedules     ScheduleStore
	Registrations RegistrationStore
	Renderer      Renderer
	Artifacts     ObjectStore
	Mailer        Mailer
}

type service struct {
	counters      CounterStore
	invoices      InvoiceStore
	courses       CourseStore
	schedules     ScheduleStore
	registrations RegistrationStore
	renderer      Renderer
	artifacts     ObjectStore
	mailer        Mailer
}

func NewService(deps ServiceDeps) Service {
	return &service{
		counters:      deps.Counters,
		invoices:      deps.Invoices,
		courses:       deps.Courses,
		schedules:     deps.Schedules,
		registrations: deps.Registrations,
		renderer:      deps.Renderer,
		artifacts:     deps.Artifacts,
		mailer:        deps.Mailer,
	}
}

// AllocateNumber reserves the next invoice number for the current calendar
// year. Safe under concurrent callers: the underlying counter increment is
// atomic, so no two calls ever see the same sequence value.
func (s *service) AllocateNumber(ctx context.Context) (string, error) {
	year := time.Now().UTC().Year()
	seq, err := s.counters.NextSequence(ctx, year)
	if err != nil {
		return "", err
	}
	return domain.FormatInvoiceNumber(year, seq), nil
}

// Create issues an invoice for a paid order: resolves the course title, unit
// price and participant count, allocates a number, persists the row as
// PENDING_ARTIFACT, renders and stores the PDF, promotes to PAID, and
// finally emails the customer (best effort).
func (s *service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (*Result, error) {
	if !strings.EqualFold(req.PaymentStatus, domain.PaymentPaid) {
		return nil, fmt.Errorf("invoice requires a paid order, got %q: %w", req.PaymentStatus, domain.ErrUnpaidOrder)
	}
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}

	// At most one invoice per registration. The guard lives here so no
	// caller can bypass it.
	if req.RegistrationID != nil {
		existing, err := s.invoices.GetByRegistration(ctx, *req.RegistrationID)
		if err == nil {
			return &Result{
				InvoiceID:      existing.InvoiceID,
				InvoiceNo:      existing.InvoiceNo,
				PDFKey:         derefOr(existing.PDFKey, ""),
				AlreadyExisted: true,
			}, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	title, err := s.resolveTitle(ctx, req)
	if err != nil {
		return nil, err
	}
	unitPrice, err := s.resolveUnitPrice(ctx, req)
	if err != nil {
		return nil, err
	}
	participants, err := s.resolveParticipants(ctx, req)
	if err != nil {
		return nil, err
	}

	invoiceNo, err := s.AllocateNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate invoice number: %w", err)
	}

	now := time.Now().UTC()
	inv := &domain.Invoice{
		InvoiceID:      id.New(),
		InvoiceNo:      invoiceNo,
		Status:         domain.InvoicePendingArtifact,
		CourseID:       req.CourseID,
		ScheduleID:     req.ScheduleID,
		RegistrationID: req.RegistrationID,
		CourseTitle:    title,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		CustomerPhone:  req.CustomerPhone,
		Address:        req.Address,
		UnitPrice:      unitPrice,
		Participants:   participants,
		TotalAmount:    unitPrice * float64(participants),
		IssueDate:      now,
		DueDate:        now.Add(dueAfter),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.invoices.Put(ctx, inv); err != nil {
		return nil, fmt.Errorf("persist invoice %s: %w", invoiceNo, err)
	}

	pdfBytes, err := s.renderer.Render(inv)
	if err != nil {
		// The row stays PENDING_ARTIFACT and is visibly incomplete.
		return nil, fmt.Errorf("render pdf for invoice %s: %w", invoiceNo, err)
	}

	pdfKey := fmt.Sprintf("invoices/%s.pdf", invoiceNo)
	if _, err := s.artifacts.Upload(ctx, pdfKey, bytes.NewReader(pdfBytes), "application/pdf"); err != nil {
		return nil, fmt.Errorf("store pdf for invoice %s: %w", invoiceNo, err)
	}

	if err := s.invoices.Update(ctx, inv.InvoiceID, map[string]interface{}{
		"pdf_key": pdfKey,
		"status":  domain.InvoicePaid,
	}); err != nil {
		return nil, fmt.Errorf("finalize invoice %s: %w", invoiceNo, err)
	}
	inv.PDFKey = &pdfKey
	inv.Status = domain.InvoicePaid

	emailSent := false
	if !req.SuppressEmail {
		body := fmt.Sprintf(
			"<p>Dear %s,</p><p>Thank you for your booking. Your invoice <b>%s</b> for <b>%s</b> is attached.</p>",
			inv.CustomerName, inv.InvoiceNo, inv.CourseTitle,
		)
		err := s.mailer.SendEmailWithAttachment(inv.CustomerEmail, "Invoice "+inv.InvoiceNo, body, invoiceNo+".pdf", pdfBytes)
		if err != nil {
			// The invoice and its PDF are the source of truth; the email is a
			// best-effort notification.
			slog.Warn("failed to email invoice", "invoice_no", invoiceNo, "email", inv.CustomerEmail, "err", err)
		} else {
			emailSent = true
		}
	}

	return &Result{
		InvoiceID: inv.InvoiceID,
		InvoiceNo: inv.InvoiceNo,
		PDFKey:    pdfKey,
		EmailSent: emailSent,
	}, nil
}

func (s *service) Get(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	return s.invoices.Get(ctx, invoiceID)
}

func (s *service) GetByNumber(ctx context.Context, invoiceNo string) (*domain.Invoice, error) {
	return s.invoices.GetByNumber(ctx, invoiceNo)
}

func (s *service) GetByRegistration(ctx context.Context, registrationID string) (*domain.Invoice, error) {
	return s.invoices.GetByRegistration(ctx, registrationID)
}

func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.Invoice, string, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.invoices.ScanPage(ctx, int32(limit), cursor)
}

// PDFURL returns a short-lived presigned download URL for the invoice PDF.
func (s *service) PDFURL(ctx context.Context, invoiceID string) (string, error) {
	inv, err := s.invoices.Get(ctx, invoiceID)
	if err != nil {
		return "", err
	}
	if inv.PDFKey == nil {
		return "", fmt.Errorf("invoice %s has no pdf artifact: %w", inv.InvoiceNo, domain.ErrNotFound)
	}
	return s.artifacts.PresignedURL(ctx, *inv.PDFKey, 15*time.Minute)
}

// resolveTitle prefers an explicit title, falling back to the course record.
func (s *service) resolveTitle(ctx context.Context, req domain.CreateInvoiceRequest) (string, error) {
	if req.CourseTitle != nil && *req.CourseTitle != "" {
		return *req.CourseTitle, nil
	}
	if req.CourseID != nil {
		c, err := s.courses.Get(ctx, *req.CourseID)
		if err != nil {
			return "", fmt.Errorf("resolve course title: %w", err)
		}
		return c.Title, nil
	}
	return "", fmt.Errorf("course title or course id required: %w", domain.ErrBadRequest)
}

// resolveUnitPrice prefers the schedule's fee, falling back to the
// caller-supplied amount.
func (s *service) resolveUnitPrice(ctx context.Context, req domain.CreateInvoiceRequest) (float64, error) {
	if req.ScheduleID != nil {
		sch, err := s.schedules.Get(ctx, *req.ScheduleID)
		if err != nil {
			return 0, fmt.Errorf("resolve schedule fee: %w", err)
		}
		return sch.Fee, nil
	}
	if req.Amount != nil {
		return *req.Amount, nil
	}
	return 0, fmt.Errorf("amount required when no schedule is given: %w", domain.ErrBadRequest)
}

// resolveParticipants prefers the registration record, then the request,
// defaulting to 1.
func (s *service) resolveParticipants(ctx context.Context, req domain.CreateInvoiceRequest) (int, error) {
	if req.RegistrationID != nil {
		reg, err := s.registrations.Get(ctx, *req.RegistrationID)
		if err != nil {
			return 0, fmt.Errorf("resolve registration: %w", err)
		}
		if reg.Participants > 0 {
			return reg.Participants, nil
		}
	}
	if req.Participants != nil && *req.Participants > 0 {
		return *req.Participants, nil
	}
	return 1, nil
}

func derefOr(s *string, fallback string) string {
	if s != nil {
		return *s
	}
	return fallback
}
