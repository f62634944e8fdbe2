package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"
	"unicode"

	"github.com/trainingdesk-api/internal/domain"
	"github.com/trainingdesk-api/internal/infrastructure/otpstore"
)

// codeTTL is the fixed validity window for a login code.
const codeTTL = 10 * time.Minute

type SendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

// TokenSigner mints the bearer token handed out after a successful
// verification.
type TokenSigner interface {
	Sign(email, role string) (string, error)
}

// Service gates admin access behind an emailed 6-digit code.
type Service interface {
	IsAllowedEmail(email string) bool
	RequestCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) (string, error)
}

type ServiceDeps struct {
	Store         otpstore.Store
	Mailer        Mailer
	Signer        TokenSigner
	AllowedEmails []string
}

// Mailer is the subset of the mail collaborator the login flow needs.
type Mailer interface {
	SendEmail(to, subject, htmlBody string) error
}

type service struct {
	store   otpstore.Store
	mailer  Mailer
	signer  TokenSigner
	allowed map[string]struct{}
}

func NewService(deps ServiceDeps) Service {
	allowed := make(map[string]struct{}, len(deps.AllowedEmails))
	for _, e := range deps.AllowedEmails {
		allowed[normalizeEmail(e)] = struct{}{}
	}
	return &service{
		store:   deps.Store,
		mailer:  deps.Mailer,
		signer:  deps.Signer,
		allowed: allowed,
	}
}

// IsAllowedEmail checks the address against the static allow-list,
// case-insensitively. Addresses off the list never get a code generated,
// so the mailer can't be used to probe arbitrary inboxes.
func (s *service) IsAllowedEmail(email string) bool {
	_, ok := s.allowed[normalizeEmail(email)]
	return ok
}

// RequestCode issues a fresh login code for an allowed address, replacing any
// prior code ("resend" semantics). A mail delivery failure is logged but does
// not fail the request.
func (s *service) RequestCode(ctx context.Context, email string) error {
	if !s.IsAllowedEmail(email) {
		return fmt.Errorf("email not on the admin allow-list: %w", domain.ErrForbidden)
	}
	key := normalizeEmail(email)

	code, err := generateCode()
	if err != nil {
		return err
	}

	now := time.Now()
	s.store.Put(&domain.OTPEntry{
		Email:     key,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(codeTTL),
	})

	body := fmt.Sprintf(
		"<p>Your admin login code is:</p><h2>%s</h2><p>It expires in 10 minutes.</p>",
		code,
	)
	if err := s.mailer.SendEmail(key, "Your admin login code", body); err != nil {
		slog.Warn("failed to send login code email", "email", key, "err", err)
	}
	return nil
}

// VerifyCode consumes a login code. Every failure mode — no code issued,
// expired code, wrong code — collapses to the same ErrUnauthorized so the
// caller can't distinguish them. On success the entry is deleted (one-shot)
// and a signed admin session token is returned.
func (s *service) VerifyCode(ctx context.Context, email, code string) (string, error) {
	key := normalizeEmail(email)
	code = normalizeCode(code)

	entry, ok := s.store.Get(key)
	if !ok {
		return "", fmt.Errorf("no login code issued: %w", domain.ErrUnauthorized)
	}
	if entry.Expired(time.Now()) {
		// Expired entries are equivalent to absent ones; drop eagerly.
		s.store.Delete(key)
		return "", fmt.Errorf("login code expired: %w", domain.ErrUnauthorized)
	}
	// Exact string equality: "012345" submitted as "12345" must not match.
	if entry.Code != code {
		return "", fmt.Errorf("login code mismatch: %w", domain.ErrUnauthorized)
	}

	// Don't consume the code when no signer is configured: the failure is
	// operational, and the code should still work once keys are in place.
	if s.signer == nil {
		return "", fmt.Errorf("session signing not configured: %w", domain.ErrUnauthorized)
	}

	s.store.Delete(key)

	token, err := s.signer.Sign(key, domain.RoleAdmin)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// generateCode returns a uniformly random 6-digit code, left-padded with
// zeros (000000–999999).
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate login code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeCode strips all whitespace, including runs in the middle
// ("123 456" pasted from the email body).
func normalizeCode(code string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, code)
}
