package enquiry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/trainingdesk-api/internal/domain"
	"github.com/trainingdesk-api/internal/infrastructure/sns"
	"github.com/trainingdesk-api/internal/pkg/id"
	"github.com/trainingdesk-api/internal/pkg/validate"
)

type EnquiryStore interface {
	Put(ctx context.Context, e *domain.Enquiry) error
	Scan(ctx context.Context) ([]domain.Enquiry, error)
}

// Mailer is the subset of the mail collaborator enquiries need.
type Mailer interface {
	SendEmail(to, subject, htmlBody string) error
}

// Service records public contact-form enquiries and relays them to ops.
type Service interface {
	Create(ctx context.Context, in domain.EnquiryInput) (*domain.Enquiry, error)
	List(ctx context.Context) ([]domain.Enquiry, error)
}

type ServiceDeps struct {
	Enquiries EnquiryStore
	Mailer    Mailer
	SMS       sns.SMSSender // optional
	OpsEmail  string
	OpsPhone  string
}

type service struct {
	enquiries EnquiryStore
	mailer    Mailer
	sms       sns.SMSSender
	opsEmail  string
	opsPhone  string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		enquiries: deps.Enquiries,
		mailer:    deps.Mailer,
		sms:       deps.SMS,
		opsEmail:  deps.OpsEmail,
		opsPhone:  deps.OpsPhone,
	}
}

// Create persists the enquiry, then relays it to the ops inbox and phone.
// The stored row is the source of truth; both relays are best effort.
func (s *service) Create(ctx context.Context, in domain.EnquiryInput) (*domain.Enquiry, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}

	e := &domain.Enquiry{
		EnquiryID: id.New(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Subject:   in.Subject,
		Message:   in.Message,
		CourseID:  in.CourseID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.enquiries.Put(ctx, e); err != nil {
		return nil, fmt.Errorf("persist enquiry: %w", err)
	}

	if s.opsEmail != "" {
		body := fmt.Sprintf(
			"<p><b>From:</b> %s &lt;%s&gt;</p><p><b>Subject:</b> %s</p><p>%s</p>",
			e.Name, e.Email, e.Subject, e.Message,
		)
		if err := s.mailer.SendEmail(s.opsEmail, "New enquiry: "+e.Subject, body); err != nil {
			slog.Warn("failed to relay enquiry email", "enquiry_id", e.EnquiryID, "err", err)
		}
	}
	if s.sms != nil && s.opsPhone != "" {
		msg := fmt.Sprintf("New enquiry from %s: %s", e.Name, e.Subject)
		if err := s.sms.SendSMS(ctx, s.opsPhone, msg); err != nil {
			slog.Warn("failed to send enquiry sms", "enquiry_id", e.EnquiryID, "err", err)
		}
	}
	return e, nil
}

func (s *service) List(ctx context.Context) ([]domain.Enquiry, error) {
	return s.enquiries.Scan(ctx)
}
