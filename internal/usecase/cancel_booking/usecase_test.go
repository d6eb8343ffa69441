package cancel_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshnest-app/booking-core/internal/domain"
	bookingRepo "github.com/freshnest-app/booking-core/internal/infra/storage/booking"
	"github.com/freshnest-app/booking-core/pkg/ptr"
)

type fakeBookingRepo struct {
	booking *domain.Booking

	cancelCalled bool
	gotVersion   int64
	gotActor     domain.CancelActor
	gotDecision  domain.RefundDecision
	cancelErr    error
	getErr       error
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.booking == nil || r.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return r.booking, nil
}

func (r *fakeBookingRepo) CancelWithRefund(
	_ context.Context,
	id int64,
	expectedVersion int64,
	actor domain.CancelActor,
	reason string,
	decision domain.RefundDecision,
	now time.Time,
) (*domain.Booking, error) {
	r.cancelCalled = true
	r.gotVersion = expectedVersion
	r.gotActor = actor
	r.gotDecision = decision

	if r.cancelErr != nil {
		return nil, r.cancelErr
	}

	cancelled := *r.booking
	cancelled.Status = domain.StatusCancelled
	cancelled.Version++
	cancelled.CancelledBy = &actor
	cancelled.CancelledAt = &now
	cancelled.CancellationReason = &reason
	cancelled.RefundPct = ptr.Ptr(decision.RefundPct)
	cancelled.RefundAmount = ptr.Ptr(decision.RefundAmount)
	return &cancelled, nil
}

type fakeReversalRepo struct {
	created []*domain.PaymentReversal
	err     error
}

func (r *fakeReversalRepo) Create(_ context.Context, rev *domain.PaymentReversal) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, rev)
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

func confirmedBooking(start time.Time) *domain.Booking {
	return &domain.Booking{
		ID:             1,
		CustomerID:     42,
		ProfessionalID: ptr.Ptr(int64(7)),
		Status:         domain.StatusConfirmed,
		ServiceType:    "standard",
		ScheduledStart: start,
		DurationMin:    120,
		Money:          domain.MoneyBreakdown{Total: 200.0},
		PaymentRef:     "pay-1",
		Version:        3,
	}
}

func newTestUseCase(repo *fakeBookingRepo, reversals *fakeReversalRepo, now time.Time) *UseCase {
	uc := NewUseCase(repo, reversals, &fakeTxManager{}, nil, nil, &nopLogger{})
	uc.SetTimeProvider(&fixedTimeProvider{now: now})
	return uc
}

func TestExecuteCancelsWithFullRefund(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	repo := &fakeBookingRepo{booking: confirmedBooking(now.Add(48 * time.Hour))}
	reversals := &fakeReversalRepo{}

	uc := newTestUseCase(repo, reversals, now)

	resp, err := uc.Execute(context.Background(), &Request{
		BookingID:   1,
		RequesterID: 42,
		Actor:       "customer",
		Reason:      "plans changed",
	})
	require.NoError(t, err)

	assert.Equal(t, 100, resp.RefundPct)
	assert.Equal(t, 200.0, resp.RefundAmount)
	assert.Equal(t, "cancelled", resp.Booking.Status)

	// Версия зафиксирована из прочитанного бронирования
	assert.Equal(t, int64(3), repo.gotVersion)
	assert.Equal(t, domain.ActorCustomer, repo.gotActor)

	// Заявка на возврат создана в той же транзакции
	require.Len(t, reversals.created, 1)
	rev := reversals.created[0]
	assert.Equal(t, int64(1), rev.BookingID)
	assert.Equal(t, "pay-1", rev.PaymentRef)
	assert.Equal(t, int64(20000), rev.AmountCents)
	assert.Equal(t, domain.ReversalPending, rev.Status)
	assert.Equal(t, now, rev.NextAttemptAt)
}

func TestExecuteZeroRefundSkipsReversal(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	// Меньше двух часов до начала: возврат клиенту 0%
	repo := &fakeBookingRepo{booking: confirmedBooking(now.Add(90 * time.Minute))}
	reversals := &fakeReversalRepo{}

	uc := newTestUseCase(repo, reversals, now)

	resp, err := uc.Execute(context.Background(), &Request{
		BookingID:   1,
		RequesterID: 42,
		Actor:       "customer",
		Reason:      "too late",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, resp.RefundPct)
	assert.Zero(t, resp.RefundAmount)
	assert.Empty(t, reversals.created)
	assert.True(t, repo.cancelCalled)
}

func TestExecuteProfessionalCancelFullRefund(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	// Отмена исполнителем: полный возврат независимо от срока
	repo := &fakeBookingRepo{booking: confirmedBooking(now.Add(30 * time.Minute))}
	reversals := &fakeReversalRepo{}

	uc := newTestUseCase(repo, reversals, now)

	resp, err := uc.Execute(context.Background(), &Request{
		BookingID:   1,
		RequesterID: 7,
		Actor:       "professional",
		Reason:      "sick",
	})
	require.NoError(t, err)
	assert.Equal(t, 100, resp.RefundPct)
	require.Len(t, reversals.created, 1)
}

func TestExecuteCannotCancelTerminal(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status domain.BookingStatus
	}{
		{name: "completed", status: domain.StatusCompleted},
		{name: "already cancelled", status: domain.StatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := confirmedBooking(now.Add(48 * time.Hour))
			b.Status = tt.status
			repo := &fakeBookingRepo{booking: b}

			uc := newTestUseCase(repo, &fakeReversalRepo{}, now)

			_, err := uc.Execute(context.Background(), &Request{
				BookingID:   1,
				RequesterID: 42,
				Actor:       "customer",
				Reason:      "reason",
			})
			assert.ErrorIs(t, err, ErrCannotCancel)
			assert.False(t, repo.cancelCalled)
		})
	}
}

func TestExecuteAccessDenied(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		actor       string
		requesterID int64
	}{
		{name: "foreign customer", actor: "customer", requesterID: 99},
		{name: "not assigned professional", actor: "professional", requesterID: 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeBookingRepo{booking: confirmedBooking(now.Add(48 * time.Hour))}
			uc := newTestUseCase(repo, &fakeReversalRepo{}, now)

			_, err := uc.Execute(context.Background(), &Request{
				BookingID:   1,
				RequesterID: tt.requesterID,
				Actor:       tt.actor,
				Reason:      "reason",
			})
			assert.ErrorIs(t, err, ErrAccessDenied)
			assert.False(t, repo.cancelCalled)
		})
	}
}

func TestExecuteBookingNotFound(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	uc := newTestUseCase(&fakeBookingRepo{}, &fakeReversalRepo{}, now)

	_, err := uc.Execute(context.Background(), &Request{
		BookingID:   99,
		RequesterID: 42,
		Actor:       "customer",
		Reason:      "reason",
	})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecuteInvalidActor(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	uc := newTestUseCase(&fakeBookingRepo{}, &fakeReversalRepo{}, now)

	_, err := uc.Execute(context.Background(), &Request{
		BookingID:   1,
		RequesterID: 42,
		Actor:       "admin",
		Reason:      "reason",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
