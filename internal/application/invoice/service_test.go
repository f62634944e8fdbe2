package invoice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trainingdesk-api/internal/domain"
)

// --- mocks ---

type mockCounterStore struct{ mock.Mock }

func (m *mockCounterStore) NextSequence(ctx context.Context, year int) (int64, error) {
	args := m.Called(ctx, year)
	return args.Get(0).(int64), args.Error(1)
}

type mockInvoiceStore struct{ mock.Mock }

func (m *mockInvoiceStore) Put(ctx context.Context, inv *domain.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}
func (m *mockInvoiceStore) Get(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if inv, _ := args.Get(0).(*domain.Invoice); inv != nil {
		return inv, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockInvoiceStore) GetByNumber(ctx context.Context, invoiceNo string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceNo)
	if inv, _ := args.Get(0).(*domain.Invoice); inv != nil {
		return inv, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockInvoiceStore) GetByRegistration(ctx context.Context, registrationID string) (*domain.Invoice, error) {
	args := m.Called(ctx, registrationID)
	if inv, _ := args.Get(0).(*domain.Invoice); inv != nil {
		return inv, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockInvoiceStore) Update(ctx context.Context, invoiceID string, updates map[string]interface{}) error {
	return m.Called(ctx, invoiceID, updates).Error(0)
}
func (m *mockInvoiceStore) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Invoice, string, error) {
	args := m.Called(ctx, limit, cursor)
	return args.Get(0).([]domain.Invoice), args.String(1), args.Error(2)
}

type mockCourseStore struct{ mock.Mock }

func (m *mockCourseStore) Get(ctx context.Context, courseID string) (*domain.Course, error) {
	args := m.Called(ctx, courseID)
	if c, _ := args.Get(0).(*domain.Course); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockScheduleStore struct{ mock.Mock }

func (m *mockScheduleStore) Get(ctx context.Context, scheduleID string) (*domain.Schedule, error) {
	args := m.Called(ctx, scheduleID)
	if s, _ := args.Get(0).(*domain.Schedule); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockRegistrationStore struct{ mock.Mock }

func (m *mockRegistrationStore) Get(ctx context.Context, registrationID string) (*domain.Registration, error) {
	args := m.Called(ctx, registrationID)
	if r, _ := args.Get(0).(*domain.Registration); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockRenderer struct{ mock.Mock }

func (m *mockRenderer) Render(inv *domain.Invoice) ([]byte, error) {
	args := m.Called(inv)
	if b, _ := args.Get(0).([]byte); b != nil {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockObjectStore struct{ mock.Mock }

func (m *mockObjectStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, key, r, contentType)
	return args.String(0), args.Error(1)
}
func (m *mockObjectStore) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmailWithAttachment(to, subject, htmlBody, filename string, attachment []byte) error {
	return m.Called(to, subject, htmlBody, filename, attachment).Error(0)
}

// atomicCounter is a thread-safe fake for the concurrency property test.
type atomicCounter struct {
	mu  sync.Mutex
	seq int64
}

func (c *atomicCounter) NextSequence(ctx context.Context, year int) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq, nil
}

// --- helpers ---

type deps struct {
	counters  *mockCounterStore
	invoices  *mockInvoiceStore
	courses   *mockCourseStore
	schedules *mockScheduleStore
	regs      *mockRegistrationStore
	renderer  *mockRenderer
	artifacts *mockObjectStore
	mailer    *mockMailer
}

func newDeps() *deps {
	return &deps{
		counters:  &mockCounterStore{},
		invoices:  &mockInvoiceStore{},
		courses:   &mockCourseStore{},
		schedules: &mockScheduleStore{},
		regs:      &mockRegistrationStore{},
		renderer:  &mockRenderer{},
		artifacts: &mockObjectStore{},
		mailer:    &mockMailer{},
	}
}

func (d *deps) service() Service {
	return NewService(ServiceDeps{
		Counters:      d.counters,
		Invoices:      d.invoices,
		Courses:       d.courses,
		Schedules:     d.schedules,
		Registrations: d.regs,
		Renderer:      d.renderer,
		Artifacts:     d.artifacts,
		Mailer:        d.mailer,
	})
}

// happyPath wires every collaborator for a successful creation.
func (d *deps) happyPath() {
	d.counters.On("NextSequence", mock.Anything, mock.Anything).Return(int64(1), nil)
	d.invoices.On("Put", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	d.renderer.On("Render", mock.AnythingOfType("*domain.Invoice")).Return([]byte("%PDF-fake"), nil)
	d.artifacts.On("Upload", mock.Anything, mock.Anything, mock.Anything, "application/pdf").Return("s3://bucket/key", nil)
	d.invoices.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	d.mailer.On("SendEmailWithAttachment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(n int) *int           { return &n }

func paidRequest() domain.CreateInvoiceRequest {
	return domain.CreateInvoiceRequest{
		PaymentStatus: "PAID",
		CourseTitle:   strPtr("Advanced Scrum Master"),
		Amount:        floatPtr(450),
		CustomerName:  "Jane Doe",
		CustomerEmail: "jane@example.com",
	}
}

// --- payment status precondition ---

func TestCreate_UnpaidOrder_RejectedBeforeAnySideEffect(t *testing.T) {
	for _, status := range []string{"Unpaid", "UNPAID", "pending", "refunded", ""} {
		t.Run(fmt.Sprintf("status=%q", status), func(t *testing.T) {
			d := newDeps()
			svc := d.service()

			req := paidRequest()
			req.PaymentStatus = status
			_, err := svc.Create(context.Background(), req)

			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrUnpaidOrder))
			d.counters.AssertNotCalled(t, "NextSequence", mock.Anything, mock.Anything)
			d.invoices.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
		})
	}
}

func TestCreate_PaidStatusIsCaseInsensitive(t *testing.T) {
	for _, status := range []string{"PAID", "paid", "Paid"} {
		d := newDeps()
		d.happyPath()
		svc := d.service()

		req := paidRequest()
		req.PaymentStatus = status
		res, err := svc.Create(context.Background(), req)

		require.NoError(t, err, "status %q must be accepted", status)
		assert.False(t, res.AlreadyExisted)
	}
}

// --- amount / participants / title resolution ---

func TestCreate_TotalIsUnitPriceTimesParticipants(t *testing.T) {
	d := newDeps()
	d.happyPath()
	svc := d.service()

	var persisted *domain.Invoice
	d.invoices.ExpectedCalls = nil
	d.invoices.On("Put", mock.Anything, mock.AnythingOfType("*domain.Invoice")).
		Run(func(args mock.Arguments) { persisted = args.Get(1).(*domain.Invoice) }).
		Return(nil)
	d.invoices.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := paidRequest()
	req.Amount = floatPtr(450)
	req.Participants = intPtr(3)
	_, err := svc.Create(context.Background(), req)

	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, 450.0, persisted.UnitPrice)
	assert.Equal(t, 3, persisted.Participants)
	assert.Equal(t, 1350.0, persisted.TotalAmount)
}

func TestCreate_ParticipantsDefaultToOne(t *testing.T) {
	d := newDeps()
	d.happyPath()
	svc := d.service()

	var persisted *domain.Invoice
	d.invoices.ExpectedCalls = nil
	d.invoices.On("Put", mock.Anything, mock.AnythingOfType("*domain.Invoice")).
		Run(func(args mock.Arguments) { persisted = args.Get(1).(*domain.Invoice) }).
		Return(nil)
	d.invoices.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Create(context.Background(), paidRequest())

	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, 1, persisted.Participants)
	assert.Equal(t, 450.0, persisted.TotalAmount)
}

func TestCreate_ScheduleFeeWinsOverAmount(t *testing.T) {
	d := newDeps()
	d.happyPath()
	d.schedules.On("Get", mock.Anything, "sch1").Return(&domain.Schedule{ScheduleID: "sch1", Fee: 999}, nil)
	svc := d.service()

	var persisted *domain.Invoice
	d.invoices.ExpectedCalls = nil
	d.invoices.On("Put", mock.Anything, mock.AnythingOfType("*domain.Invoice")).
		Run(func(args mock.Arguments) { persisted = args.Get(1).(*domain.Invoice) }).
		Return(nil)
	d.invoices.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := paidRequest()
	req.ScheduleID = strPtr("sch1")
	req.Amount = floatPtr(450) // must lose to the schedule fee
	_, err := svc.Create(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 999.0, persisted.UnitPrice)
}

func TestCreate_RegistrationParticipantsWinOverRequest(t *testing.T) {
	d := newDeps()
	d.happyPath()
	d.invoices.On("GetByRegistration", mock.Anything, "reg1").Return(nil, domain.ErrNotFound)
	d.regs.On("Get", mock.Anything, "reg1").Return(&domain.Registration{RegistrationID: "reg1", Participants: 5}, nil)
	svc := d.service()

	var persisted *domain.Invoice
	d.invoices.ExpectedCalls = nil
	d.invoices.On("GetByRegistration", mock.Anything, "reg1").Return(nil, domain.ErrNotFound)
	d.invoices.On("Put", mock.Anything, mock.AnythingOfType("*domain.Invoice")).
		Run(func(args mock.Arguments) { persisted = args.Get(1).(*domain.Invoice) }).
		Return(nil)
	d.invoices.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := paidRequest()
	req.RegistrationID = strPtr("reg1")
	req.Participants = intPtr(2) // must lose to the registration record
	_, err := svc.Create(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 5, persisted.Participants)
	assert.Equal(t, 450.0*5, persisted.TotalAmount)
}

func TestCreate_TitleLookedUpFromCourse(t *testing.T) {
	d := newDeps()
	d.happyPath()
	d.courses.On("Get", mock.Anything, "c1").Return(&domain.Course{CourseID: "c1", Title: "Lean Six Sigma"}, nil)
	svc := d.service()

	var persisted *domain.Invoice
	d.invoices.ExpectedCalls = nil
	d.invoices.On("Put", mock.Anything, mock.AnythingOfType("*domain.Invoice")).
		Run(func(args mock.Arguments) { persisted = args.Get(1).(*domain.Invoice) }).
		Return(nil)
	d.invoices.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := paidRequest()
	req.CourseTitle = nil
	req.CourseID = strPtr("c1")
	_, err := svc.Create(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "Lean Six Sigma", persisted.CourseTitle)
}

func TestCreate_MissingAmountAndSchedule_FailsBeforeCounter(t *testing.T) {
	d := newDeps()
	svc := d.service()

	req := paidRequest()
	req.Amount = nil
	_, err := svc.Create(context.Background(), req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	d.counters.AssertNotCalled(t, "NextSequence", mock.Anything, mock.Anything)
}

// --- artifact pipeline ---

func TestCreate_NumberFormatAndStatusTransitions(t *testing.T) {
	d := newDeps()
	year := time.Now().UTC().Year()
	d.counters.On("NextSequence", mock.Anything, year).Return(int64(7), nil)

	// Status captured by value: the service promotes the same struct to PAID
	// after upload, so holding the pointer would see the final state.
	var persistedStatus string
	d.invoices.On("Put", mock.Anything, mock.AnythingOfType("*domain.Invoice")).
		Run(func(args mock.Arguments) { persistedStatus = args.Get(1).(*domain.Invoice).Status }).
		Return(nil)
	d.renderer.On("Render", mock.Anything).Return([]byte("%PDF-fake"), nil)
	d.artifacts.On("Upload", mock.Anything, mock.Anything, mock.Anything, "application/pdf").Return("s3://b/k", nil)

	wantNo := domain.FormatInvoiceNumber(year, 7)
	d.invoices.On("Update", mock.Anything, mock.Anything, map[string]interface{}{
		"pdf_key": "invoices/" + wantNo + ".pdf",
		"status":  domain.InvoicePaid,
	}).Return(nil)
	d.mailer.On("SendEmailWithAttachment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	res, err := d.service().Create(context.Background(), paidRequest())

	require.NoError(t, err)
	assert.Equal(t, wantNo, res.InvoiceNo)
	assert.Equal(t, "invoices/"+wantNo+".pdf", res.PDFKey)
	// Persisted first as PENDING_ARTIFACT, promoted only after upload.
	assert.Equal(t, domain.InvoicePendingArtifact, persistedStatus)
	d.invoices.AssertExpectations(t)
}

func TestCreate_RenderFailure_AbortsBeforePromotionAndEmail(t *testing.T) {
	d := newDeps()
	d.counters.On("NextSequence", mock.Anything, mock.Anything).Return(int64(1), nil)
	d.invoices.On("Put", mock.Anything, mock.Anything).Return(nil)
	d.renderer.On("Render", mock.Anything).Return(nil, errors.New("font missing"))

	_, err := d.service().Create(context.Background(), paidRequest())

	require.Error(t, err)
	d.artifacts.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	d.invoices.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	d.mailer.AssertNotCalled(t, "SendEmailWithAttachment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_UploadFailure_Aborts(t *testing.T) {
	d := newDeps()
	d.counters.On("NextSequence", mock.Anything, mock.Anything).Return(int64(1), nil)
	d.invoices.On("Put", mock.Anything, mock.Anything).Return(nil)
	d.renderer.On("Render", mock.Anything).Return([]byte("%PDF-fake"), nil)
	d.artifacts.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("bucket gone"))

	_, err := d.service().Create(context.Background(), paidRequest())

	require.Error(t, err)
	d.invoices.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_EmailFailure_IsNonFatal(t *testing.T) {
	d := newDeps()
	d.happyPath()
	d.mailer.ExpectedCalls = nil
	d.mailer.On("SendEmailWithAttachment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp down"))

	res, err := d.service().Create(context.Background(), paidRequest())

	require.NoError(t, err)
	assert.False(t, res.EmailSent)
	assert.NotEmpty(t, res.InvoiceNo)
}

func TestCreate_SuppressEmail_SkipsMailer(t *testing.T) {
	d := newDeps()
	d.happyPath()
	svc := d.service()

	req := paidRequest()
	req.SuppressEmail = true
	res, err := svc.Create(context.Background(), req)

	require.NoError(t, err)
	assert.False(t, res.EmailSent)
	d.mailer.AssertNotCalled(t, "SendEmailWithAttachment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- idempotency ---

func TestCreate_ExistingInvoiceForRegistration_ReturnedWithoutNewAllocation(t *testing.T) {
	d := newDeps()
	key := "invoices/INV-2026-0001.pdf"
	d.invoices.On("GetByRegistration", mock.Anything, "reg1").Return(&domain.Invoice{
		InvoiceID: "inv1",
		InvoiceNo: "INV-2026-0001",
		PDFKey:    &key,
	}, nil)
	svc := d.service()

	req := paidRequest()
	req.RegistrationID = strPtr("reg1")
	res, err := svc.Create(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, res.AlreadyExisted)
	assert.Equal(t, "INV-2026-0001", res.InvoiceNo)
	assert.Equal(t, key, res.PDFKey)
	d.counters.AssertNotCalled(t, "NextSequence", mock.Anything, mock.Anything)
	d.invoices.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

// --- number allocation ---

func TestAllocateNumber_Format(t *testing.T) {
	d := newDeps()
	year := time.Now().UTC().Year()
	d.counters.On("NextSequence", mock.Anything, year).Return(int64(1), nil)

	no, err := d.service().AllocateNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("INV-%d-0001", year), no)
}

func TestAllocateNumber_ConcurrentCallersGetDistinctContiguousValues(t *testing.T) {
	svc := NewService(ServiceDeps{Counters: &atomicCounter{}})

	const n = 100
	results := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			no, err := svc.AllocateNumber(context.Background())
			assert.NoError(t, err)
			results <- no
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool, n)
	for no := range results {
		assert.False(t, seen[no], "duplicate invoice number %s", no)
		seen[no] = true
	}
	require.Len(t, seen, n)

	// Contiguous: every sequence 1..n must be present.
	year := time.Now().UTC().Year()
	for seq := int64(1); seq <= n; seq++ {
		assert.True(t, seen[domain.FormatInvoiceNumber(year, seq)], "missing sequence %d", seq)
	}
}
