package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTables DynamoTables
	S3BucketName string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion string

	// AdminEmails is the allow-list of addresses permitted to request a login code.
	AdminEmails []string

	// OpsEmail receives enquiry notifications; OpsPhone (optional, E.164)
	// receives SMS alerts for new registrations and enquiries.
	OpsEmail string
	OpsPhone string

	CompanyName    string
	CompanyAddress string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Courses         string
	Schedules       string
	Registrations   string
	Invoices        string
	InvoiceCounters string
	Enquiries       string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			Courses:         getEnv("DYNAMO_TABLE_COURSES", "courses"),
			Schedules:       getEnv("DYNAMO_TABLE_SCHEDULES", "schedules"),
			Registrations:   getEnv("DYNAMO_TABLE_REGISTRATIONS", "course_registrations"),
			Invoices:        getEnv("DYNAMO_TABLE_INVOICES", "invoices"),
			InvoiceCounters: getEnv("DYNAMO_TABLE_INVOICE_COUNTERS", "invoice_counters"),
			Enquiries:       getEnv("DYNAMO_TABLE_ENQUIRIES", "enquiries"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "trainingdesk-artifacts"),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 12)) * time.Hour,

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@trainingdesk.example"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion: getEnv("SNS_REGION", "us-east-1"),

		AdminEmails: splitNonEmpty(getEnv("ADMIN_ALLOWED_EMAILS", "")),

		OpsEmail: getEnv("OPS_EMAIL", ""),
		OpsPhone: getEnv("OPS_PHONE", ""),

		CompanyName:    getEnv("COMPANY_NAME", "TrainingDesk Ltd"),
		CompanyAddress: getEnv("COMPANY_ADDRESS", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitNonEmpty(csv string) []string {
	var out []string
	for _, p := range strings.Split(csv, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
