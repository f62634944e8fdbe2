package auth

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trainingdesk-api/internal/domain"
)

// --- fakes and mocks ---

// fakeStore is a plain map-backed store; the auth tests need stateful
// issue-then-verify behavior, which is awkward to script with mock.Mock.
type fakeStore struct {
	entries map[string]*domain.OTPEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]*domain.OTPEntry)}
}

func (f *fakeStore) Get(email string) (*domain.OTPEntry, bool) {
	e, ok := f.entries[email]
	return e, ok
}
func (f *fakeStore) Put(e *domain.OTPEntry) { f.entries[e.Email] = e }
func (f *fakeStore) Delete(email string)    { delete(f.entries, email) }

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, htmlBody string) error {
	return m.Called(to, subject, htmlBody).Error(0)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(email, role string) (string, error) {
	args := m.Called(email, role)
	return args.String(0), args.Error(1)
}

func newService(store *fakeStore, ml *mockMailer, sg *mockSigner) Service {
	deps := ServiceDeps{
		Store:         store,
		AllowedEmails: []string{"Admin@Allowed.com", "second@allowed.com"},
	}
	// A nil *mockMailer stored in the interface field would not compare equal
	// to nil inside the service; only set the fields for real mocks.
	if ml != nil {
		deps.Mailer = ml
	}
	if sg != nil {
		deps.Signer = sg
	}
	return NewService(deps)
}

// --- IsAllowedEmail ---

func TestIsAllowedEmail_CaseInsensitive(t *testing.T) {
	svc := newService(newFakeStore(), nil, nil)

	assert.True(t, svc.IsAllowedEmail("admin@allowed.com"))
	assert.True(t, svc.IsAllowedEmail("ADMIN@ALLOWED.COM"))
	assert.True(t, svc.IsAllowedEmail("  admin@allowed.com  "))
	assert.False(t, svc.IsAllowedEmail("intruder@evil.com"))
	assert.False(t, svc.IsAllowedEmail(""))
}

// --- RequestCode ---

func TestRequestCode_DisallowedEmail_NoStateNoEmail(t *testing.T) {
	store := newFakeStore()
	ml := &mockMailer{}

	svc := newService(store, ml, nil)
	err := svc.RequestCode(context.Background(), "intruder@evil.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	assert.Empty(t, store.entries)
	ml.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestCode_StoresEntryAndSendsEmail(t *testing.T) {
	store := newFakeStore()
	ml := &mockMailer{}
	ml.On("SendEmail", "admin@allowed.com", mock.Anything, mock.Anything).Return(nil)

	svc := newService(store, ml, nil)
	before := time.Now()
	err := svc.RequestCode(context.Background(), "Admin@Allowed.com")

	require.NoError(t, err)
	e, ok := store.Get("admin@allowed.com")
	require.True(t, ok)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), e.Code)
	assert.WithinDuration(t, before.Add(10*time.Minute), e.ExpiresAt, 2*time.Second)
	ml.AssertExpectations(t)
}

func TestRequestCode_EmailFailureDoesNotFailRequest(t *testing.T) {
	store := newFakeStore()
	ml := &mockMailer{}
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	svc := newService(store, ml, nil)
	err := svc.RequestCode(context.Background(), "admin@allowed.com")

	require.NoError(t, err)
	_, ok := store.Get("admin@allowed.com")
	assert.True(t, ok)
}

func TestRequestCode_ResendReplacesPriorCode(t *testing.T) {
	store := newFakeStore()
	ml := &mockMailer{}
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sg := &mockSigner{}

	svc := newService(store, ml, sg)
	require.NoError(t, svc.RequestCode(context.Background(), "admin@allowed.com"))
	first := store.entries["admin@allowed.com"].Code

	require.NoError(t, svc.RequestCode(context.Background(), "admin@allowed.com"))
	second := store.entries["admin@allowed.com"].Code

	if first == second {
		// One-in-a-million collision; the replacement semantics are what we
		// assert on, not code inequality.
		t.Log("codes collided, skipping old-code check")
		return
	}

	// The first code must no longer verify.
	_, err := svc.VerifyCode(context.Background(), "admin@allowed.com", first)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestRequestCode_CodesAreAlwaysSixDigits(t *testing.T) {
	store := newFakeStore()
	ml := &mockMailer{}
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newService(store, ml, nil)
	sixDigits := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 1500; i++ {
		require.NoError(t, svc.RequestCode(context.Background(), "admin@allowed.com"))
		code := store.entries["admin@allowed.com"].Code
		require.Regexp(t, sixDigits, code, "code %q is not 6 ASCII digits", code)
	}
}

// --- VerifyCode ---

func TestVerifyCode_NoEntry(t *testing.T) {
	svc := newService(newFakeStore(), nil, nil)
	_, err := svc.VerifyCode(context.Background(), "admin@allowed.com", "123456")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestVerifyCode_HappyPath_OneShot(t *testing.T) {
	store := newFakeStore()
	ml := &mockMailer{}
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sg := &mockSigner{}
	sg.On("Sign", "admin@allowed.com", domain.RoleAdmin).Return("bearer-token", nil)

	svc := newService(store, ml, sg)
	require.NoError(t, svc.RequestCode(context.Background(), "admin@allowed.com"))
	code := store.entries["admin@allowed.com"].Code

	token, err := svc.VerifyCode(context.Background(), "admin@allowed.com", code)
	require.NoError(t, err)
	assert.Equal(t, "bearer-token", token)

	// Entry consumed: the same code must fail a second time.
	_, err = svc.VerifyCode(context.Background(), "admin@allowed.com", code)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestVerifyCode_Expired_DeletesEntry(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	store.Put(&domain.OTPEntry{
		Email:     "admin@allowed.com",
		Code:      "123456",
		IssuedAt:  now.Add(-11 * time.Minute),
		ExpiresAt: now.Add(-1 * time.Minute),
	})

	svc := newService(store, nil, nil)
	_, err := svc.VerifyCode(context.Background(), "admin@allowed.com", "123456")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	_, ok := store.Get("admin@allowed.com")
	assert.False(t, ok, "expired entry must be removed as a side effect")
}

func TestVerifyCode_ExactStringEquality(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	store.Put(&domain.OTPEntry{
		Email:     "admin@allowed.com",
		Code:      "012345",
		IssuedAt:  now,
		ExpiresAt: now.Add(10 * time.Minute),
	})

	svc := newService(store, nil, nil)

	// Numeric equality is not enough: the leading zero matters.
	_, err := svc.VerifyCode(context.Background(), "admin@allowed.com", "12345")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestVerifyCode_NormalizesEmailAndCode(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	store.Put(&domain.OTPEntry{
		Email:     "admin@allowed.com",
		Code:      "123456",
		IssuedAt:  now,
		ExpiresAt: now.Add(10 * time.Minute),
	})
	sg := &mockSigner{}
	sg.On("Sign", "admin@allowed.com", domain.RoleAdmin).Return("bearer-token", nil)

	svc := newService(store, nil, sg)
	token, err := svc.VerifyCode(context.Background(), "  ADMIN@Allowed.com ", " 123 456 ")

	require.NoError(t, err)
	assert.Equal(t, "bearer-token", token)
}

func TestVerifyCode_NoSignerConfigured_DoesNotConsumeCode(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	store.Put(&domain.OTPEntry{
		Email:     "admin@allowed.com",
		Code:      "123456",
		IssuedAt:  now,
		ExpiresAt: now.Add(10 * time.Minute),
	})

	svc := newService(store, nil, nil)
	_, err := svc.VerifyCode(context.Background(), "admin@allowed.com", "123456")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	_, ok := store.Get("admin@allowed.com")
	assert.True(t, ok, "a correct code must survive an operational signing failure")
}

func TestVerifyCode_SignerFailure(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	store.Put(&domain.OTPEntry{
		Email:     "admin@allowed.com",
		Code:      "123456",
		IssuedAt:  now,
		ExpiresAt: now.Add(10 * time.Minute),
	})
	sg := &mockSigner{}
	sg.On("Sign", mock.Anything, mock.Anything).Return("", errors.New("no key"))

	svc := newService(store, nil, sg)
	_, err := svc.VerifyCode(context.Background(), "admin@allowed.com", "123456")
	require.Error(t, err)
}
