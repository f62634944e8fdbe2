package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/trainingdesk-api/internal/application/auth"
	"github.com/trainingdesk-api/internal/application/catalog"
	"github.com/trainingdesk-api/internal/application/enquiry"
	"github.com/trainingdesk-api/internal/application/invoice"
	"github.com/trainingdesk-api/internal/application/registration"
	"github.com/trainingdesk-api/internal/config"
	"github.com/trainingdesk-api/internal/domain"
	"github.com/trainingdesk-api/internal/transport/http/handler"
	appmiddleware "github.com/trainingdesk-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	catalogSvc := catalog.NewService(catalog.ServiceDeps{
		Courses:   deps.CourseRepo,
		Schedules: deps.ScheduleRepo,
	})
	invoiceSvc := invoice.NewService(invoice.ServiceDeps{
		Counters:      deps.CounterRepo,
		Invoices:      deps.InvoiceRepo,
		Courses:       deps.CourseRepo,
		Schedules:     deps.ScheduleRepo,
		Registrations: deps.RegistrationRepo,
		Renderer:      deps.PDFRenderer,
		Artifacts:     deps.S3Store,
		Mailer:        deps.Mailer,
	})
	registrationSvc := registration.NewService(registration.ServiceDeps{
		Registrations: deps.RegistrationRepo,
		Courses:       deps.CourseRepo,
		Schedules:     deps.ScheduleRepo,
		Issuer:        invoiceSvc,
		SMS:           deps.SMSSender,
		OpsPhone:      cfg.OpsPhone,
	})
	enquirySvc := enquiry.NewService(enquiry.ServiceDeps{
		Enquiries: deps.EnquiryRepo,
		Mailer:    deps.Mailer,
		SMS:       deps.SMSSender,
		OpsEmail:  cfg.OpsEmail,
		OpsPhone:  cfg.OpsPhone,
	})
	authDeps := auth.ServiceDeps{
		Store:         deps.OTPStore,
		Mailer:        deps.Mailer,
		AllowedEmails: cfg.AdminEmails,
	}
	if deps.JWTProvider != nil {
		authDeps.Signer = deps.JWTProvider
	}
	authSvc := auth.NewService(authDeps)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	courseH := handler.NewCourseHandler(catalogSvc)
	scheduleH := handler.NewScheduleHandler(catalogSvc)
	registrationH := handler.NewRegistrationHandler(registrationSvc)
	invoiceH := handler.NewInvoiceHandler(invoiceSvc)
	enquiryH := handler.NewEnquiryHandler(enquirySvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check", healthH.Ping)
		r.Get("/courses", courseH.List)
		r.Get("/courses/{slug}", courseH.GetBySlug)
		r.Get("/courses/{slug}/schedules", scheduleH.ListByCourseSlug)
		r.With(sensitiveRL.Limit).Post("/registrations", registrationH.Create)
		r.With(sensitiveRL.Limit).Post("/enquiries", enquiryH.Create)
		r.With(sensitiveRL.Limit).Post("/auth/send-code", authH.SendCode)
		r.With(sensitiveRL.Limit).Post("/auth/verify-code", authH.VerifyCode)

		// ── Admin routes ─────────────────────────────────────────────────────
		r.Route("/admin", func(r chi.Router) {
			r.Use(authMw)
			r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

			r.Post("/courses", courseH.Create)
			r.Get("/courses/{id}", courseH.Get)
			r.Put("/courses/{id}", courseH.Update)
			r.Delete("/courses/{id}", courseH.Delete)

			r.Post("/schedules", scheduleH.Create)
			r.Get("/schedules/{id}", scheduleH.Get)
			r.Put("/schedules/{id}", scheduleH.Update)
			r.Delete("/schedules/{id}", scheduleH.Delete)

			r.Get("/registrations", registrationH.List)
			r.Get("/registrations/{id}", registrationH.Get)
			r.Get("/courses/{id}/schedules", scheduleH.ListByCourse)
			r.Post("/registrations/{id}/actions/{action}", registrationH.Action)

			r.Post("/invoices", invoiceH.Create)
			r.Get("/invoices", invoiceH.List)
			r.Get("/invoices/{id}", invoiceH.Get)
			r.Get("/invoices/{id}/pdf", invoiceH.PDF)

			r.Get("/enquiries", enquiryH.List)
		})
	})

	return r
}
