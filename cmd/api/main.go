package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/trainingdesk-api/internal/config"
	"github.com/trainingdesk-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/trainingdesk-api/internal/infrastructure/jwt"
	"github.com/trainingdesk-api/internal/infrastructure/otpstore"
	"github.com/trainingdesk-api/internal/infrastructure/pdf"
	s3infra "github.com/trainingdesk-api/internal/infrastructure/s3"
	"github.com/trainingdesk-api/internal/infrastructure/smtp"
	"github.com/trainingdesk-api/internal/infrastructure/sns"
	transporthttp "github.com/trainingdesk-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional — graceful fallback if keys are missing; the
	// admin surface is unusable until keys are provided).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// S3 store for invoice PDFs.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// SNS SMS sender (optional — graceful fallback).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	// In-memory login-code store with periodic expiry sweep.
	otpStore := otpstore.NewMemoryStore(5 * time.Minute)
	defer otpStore.Stop()

	deps := &transporthttp.Deps{
		CourseRepo:       dynamo.NewCourseRepo(dynamoClient, cfg.DynamoTables.Courses),
		ScheduleRepo:     dynamo.NewScheduleRepo(dynamoClient, cfg.DynamoTables.Schedules),
		RegistrationRepo: dynamo.NewRegistrationRepo(dynamoClient, cfg.DynamoTables.Registrations),
		InvoiceRepo:      dynamo.NewInvoiceRepo(dynamoClient, cfg.DynamoTables.Invoices),
		CounterRepo:      dynamo.NewCounterRepo(dynamoClient, cfg.DynamoTables.InvoiceCounters),
		EnquiryRepo:      dynamo.NewEnquiryRepo(dynamoClient, cfg.DynamoTables.Enquiries),
		OTPStore:         otpStore,
		S3Store:          s3Store,
		Mailer:           mailer,
		SMSSender:        smsSender,
		JWTProvider:      jwtProvider,
		PDFRenderer:      pdf.NewRenderer(cfg.CompanyName, cfg.CompanyAddress),
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
