package create_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshnest-app/booking-core/internal/domain"
	lockRepo "github.com/freshnest-app/booking-core/internal/infra/storage/slotlock"
	"github.com/freshnest-app/booking-core/pkg/ptr"
)

type fakeBookingRepo struct {
	busy    []*domain.Booking
	created *domain.Booking
	nextID  int64
}

func (r *fakeBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	r.nextID++
	created := *b
	created.ID = r.nextID
	created.Version = 1
	r.created = &created
	return &created, nil
}

func (r *fakeBookingRepo) GetByProfessionalWithFilter(_ context.Context, _ domain.BookingsFilter) ([]*domain.Booking, error) {
	return r.busy, nil
}

type fakeSlotLockRepo struct {
	lock     *domain.SlotLock
	released []string
}

func (r *fakeSlotLockRepo) GetByID(_ context.Context, id string) (*domain.SlotLock, error) {
	if r.lock == nil || r.lock.ID != id {
		return nil, lockRepo.ErrLockNotFound
	}
	return r.lock, nil
}

func (r *fakeSlotLockRepo) Release(_ context.Context, id string) error {
	r.released = append(r.released, id)
	return nil
}

// fakeTxManager прозрачно выполняет функцию без реальной транзакции
type fakeTxManager struct{}

func (m *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *fakeTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time {
	return p.now
}

type nopLogger struct{}

func (l *nopLogger) Info(format string, v ...interface{})  {}
func (l *nopLogger) Warn(format string, v ...interface{})  {}
func (l *nopLogger) Error(format string, v ...interface{}) {}

var (
	testNow   = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC) // Понедельник
	testStart = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
)

func newTestUseCase(bookings *fakeBookingRepo, locks *fakeSlotLockRepo) *UseCase {
	uc := NewUseCase(bookings, locks, &fakeTxManager{}, nil, nil, time.UTC, 0.15, 0.07, &nopLogger{})
	uc.SetTimeProvider(&fixedTimeProvider{now: testNow})
	return uc
}

func liveLock(professionalID int64, start time.Time) *domain.SlotLock {
	return &domain.SlotLock{
		ID:             "lock-1",
		ProfessionalID: professionalID,
		SlotKey:        domain.SlotKey(start),
		HolderID:       42,
		ExpiresAt:      testNow.Add(5 * time.Minute),
	}
}

func directRequest() *Request {
	return &Request{
		CustomerID:      42,
		ProfessionalID:  ptr.Ptr(int64(7)),
		LockID:          "lock-1",
		ServiceType:     "standard",
		ScheduledStart:  testStart,
		DurationMinutes: 120,
		BasePrice:       100,
		AddonsTotal:     20,
		Tip:             10,
		PaymentRef:      "pay-1",
	}
}

func TestExecuteDirectBooking(t *testing.T) {
	bookings := &fakeBookingRepo{}
	locks := &fakeSlotLockRepo{lock: liveLock(7, testStart)}

	uc := newTestUseCase(bookings, locks)

	resp, err := uc.Execute(context.Background(), directRequest())
	require.NoError(t, err)

	assert.Equal(t, "confirmed", resp.Status)
	require.NotNil(t, resp.ProfessionalID)
	assert.Equal(t, int64(7), *resp.ProfessionalID)

	// Будний день без коэффициента: 100 + 20 = 120, fee 18, tax 8.40
	assert.Equal(t, 156.40, resp.Money.Total)

	// Лок освобождён после коммита
	assert.Equal(t, []string{"lock-1"}, locks.released)
}

func TestExecuteOpenJobWithoutLock(t *testing.T) {
	bookings := &fakeBookingRepo{}
	uc := newTestUseCase(bookings, &fakeSlotLockRepo{})

	req := directRequest()
	req.ProfessionalID = nil
	req.LockID = ""

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "pending", resp.Status)
	assert.Nil(t, resp.ProfessionalID)
}

func TestExecuteDirectBookingRequiresLock(t *testing.T) {
	uc := newTestUseCase(&fakeBookingRepo{}, &fakeSlotLockRepo{})

	req := directRequest()
	req.LockID = ""

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrLockRequired)
}

func TestExecuteMissingLock(t *testing.T) {
	uc := newTestUseCase(&fakeBookingRepo{}, &fakeSlotLockRepo{})

	_, err := uc.Execute(context.Background(), directRequest())
	assert.ErrorIs(t, err, ErrLockRequired)
}

func TestExecuteExpiredLock(t *testing.T) {
	lock := liveLock(7, testStart)
	lock.ExpiresAt = testNow.Add(-time.Minute)

	uc := newTestUseCase(&fakeBookingRepo{}, &fakeSlotLockRepo{lock: lock})

	_, err := uc.Execute(context.Background(), directRequest())
	assert.ErrorIs(t, err, ErrLockRequired)
}

func TestExecuteForeignLock(t *testing.T) {
	lock := liveLock(7, testStart)
	lock.HolderID = 99

	uc := newTestUseCase(&fakeBookingRepo{}, &fakeSlotLockRepo{lock: lock})

	_, err := uc.Execute(context.Background(), directRequest())
	assert.ErrorIs(t, err, ErrLockRequired)
}

func TestExecuteLockMismatch(t *testing.T) {
	tests := []struct {
		name string
		lock *domain.SlotLock
	}{
		{name: "another professional", lock: liveLock(8, testStart)},
		{name: "another slot", lock: liveLock(7, testStart.Add(time.Hour))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := newTestUseCase(&fakeBookingRepo{}, &fakeSlotLockRepo{lock: tt.lock})

			_, err := uc.Execute(context.Background(), directRequest())
			assert.ErrorIs(t, err, ErrLockMismatch)
		})
	}
}

func TestExecuteSlotTakenOnRecheck(t *testing.T) {
	// Лок есть, но слот успело занять другое активное бронирование
	bookings := &fakeBookingRepo{busy: []*domain.Booking{
		{
			ID:             5,
			ProfessionalID: ptr.Ptr(int64(7)),
			Status:         domain.StatusConfirmed,
			ScheduledStart: testStart,
			DurationMin:    60,
		},
	}}
	locks := &fakeSlotLockRepo{lock: liveLock(7, testStart)}

	uc := newTestUseCase(bookings, locks)

	_, err := uc.Execute(context.Background(), directRequest())
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.Empty(t, locks.released, "lock is kept when booking fails")
}

func TestExecuteLeadTimeViolation(t *testing.T) {
	uc := newTestUseCase(&fakeBookingRepo{}, &fakeSlotLockRepo{lock: liveLock(7, testNow.Add(time.Hour))})

	req := directRequest()
	req.ScheduledStart = testNow.Add(time.Hour)

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecuteValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{name: "missing customer", mutate: func(r *Request) { r.CustomerID = 0 }},
		{name: "missing service type", mutate: func(r *Request) { r.ServiceType = "" }},
		{name: "zero duration", mutate: func(r *Request) { r.DurationMinutes = 0 }},
		{name: "negative tip", mutate: func(r *Request) { r.Tip = -1 }},
		{name: "missing payment ref", mutate: func(r *Request) { r.PaymentRef = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := newTestUseCase(&fakeBookingRepo{}, &fakeSlotLockRepo{lock: liveLock(7, testStart)})

			req := directRequest()
			tt.mutate(req)

			_, err := uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
