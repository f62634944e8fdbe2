package http

import (
	"github.com/trainingdesk-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/trainingdesk-api/internal/infrastructure/jwt"
	"github.com/trainingdesk-api/internal/infrastructure/otpstore"
	"github.com/trainingdesk-api/internal/infrastructure/pdf"
	s3infra "github.com/trainingdesk-api/internal/infrastructure/s3"
	"github.com/trainingdesk-api/internal/infrastructure/smtp"
	"github.com/trainingdesk-api/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	CourseRepo       *dynamo.CourseRepo
	ScheduleRepo     *dynamo.ScheduleRepo
	RegistrationRepo *dynamo.RegistrationRepo
	InvoiceRepo      *dynamo.InvoiceRepo
	CounterRepo      *dynamo.CounterRepo
	EnquiryRepo      *dynamo.EnquiryRepo
	OTPStore         otpstore.Store
	S3Store          *s3infra.Store
	Mailer           smtp.Mailer
	SMSSender        sns.SMSSender // optional
	JWTProvider      *jwtinfra.Provider
	PDFRenderer      *pdf.Renderer
}
