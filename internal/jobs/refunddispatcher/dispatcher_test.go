package refunddispatcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshnest-app/booking-core/internal/domain"
	"github.com/freshnest-app/booking-core/internal/integrations/paymentservice"
)

type fakeReversalRepo struct {
	due []*domain.PaymentReversal

	succeeded []int64
	failed    map[int64]string
	retried   map[int64]retryMark
}

type retryMark struct {
	attempts      int
	nextAttemptAt time.Time
}

func newFakeReversalRepo(due ...*domain.PaymentReversal) *fakeReversalRepo {
	return &fakeReversalRepo{
		due:     due,
		failed:  make(map[int64]string),
		retried: make(map[int64]retryMark),
	}
}

func (r *fakeReversalRepo) GetDue(_ context.Context, _ time.Time, _ int) ([]*domain.PaymentReversal, error) {
	return r.due, nil
}

func (r *fakeReversalRepo) MarkSucceeded(_ context.Context, bookingID int64) error {
	r.succeeded = append(r.succeeded, bookingID)
	return nil
}

func (r *fakeReversalRepo) MarkFailed(_ context.Context, bookingID int64, lastError string) error {
	r.failed[bookingID] = lastError
	return nil
}

func (r *fakeReversalRepo) MarkRetry(_ context.Context, bookingID int64, attempts int, nextAttemptAt time.Time, _ string) error {
	r.retried[bookingID] = retryMark{attempts: attempts, nextAttemptAt: nextAttemptAt}
	return nil
}

type fakePaymentClient struct {
	err   error
	calls int
}

func (c *fakePaymentClient) ReverseCharge(_ context.Context, _ string, _ int64, _ int64) error {
	c.calls++
	return c.err
}

type nopLogger struct{}

func (l *nopLogger) Info(format string, v ...interface{})  {}
func (l *nopLogger) Warn(format string, v ...interface{})  {}
func (l *nopLogger) Error(format string, v ...interface{}) {}

func pendingReversal(bookingID int64, attempts int) *domain.PaymentReversal {
	return &domain.PaymentReversal{
		BookingID:   bookingID,
		PaymentRef:  "pay-1",
		AmountCents: 10000,
		Status:      domain.ReversalPending,
		Attempts:    attempts,
	}
}

func newTestDispatcher(repo ReversalRepository, client PaymentServiceClient, maxAttempts int) *Dispatcher {
	return New(repo, client, time.Second, maxAttempts, 30*time.Second, nil, &nopLogger{})
}

func TestDispatchSuccess(t *testing.T) {
	repo := newFakeReversalRepo(pendingReversal(1, 0))
	client := &fakePaymentClient{}

	d := newTestDispatcher(repo, client, 5)
	d.dispatchDue(context.Background())

	assert.Equal(t, 1, client.calls)
	assert.Equal(t, []int64{1}, repo.succeeded)
	assert.Empty(t, repo.failed)
	assert.Empty(t, repo.retried)
}

func TestDispatchRetryableFailureSchedulesRetry(t *testing.T) {
	repo := newFakeReversalRepo()
	client := &fakePaymentClient{err: errors.New("gateway timeout")}

	d := newTestDispatcher(repo, client, 5)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	d.dispatch(context.Background(), pendingReversal(1, 0), now)

	require.Contains(t, repo.retried, int64(1))
	mark := repo.retried[1]
	assert.Equal(t, 1, mark.attempts)
	assert.Equal(t, now.Add(time.Minute), mark.nextAttemptAt)
	assert.Empty(t, repo.succeeded)
	assert.Empty(t, repo.failed)
}

func TestDispatchBackoffGrowsWithAttempts(t *testing.T) {
	repo := newFakeReversalRepo()
	client := &fakePaymentClient{err: errors.New("gateway timeout")}

	d := newTestDispatcher(repo, client, 10)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	d.dispatch(context.Background(), pendingReversal(1, 2), now)

	mark := repo.retried[1]
	assert.Equal(t, 3, mark.attempts)
	assert.Equal(t, now.Add(4*time.Minute), mark.nextAttemptAt)
}

func TestDispatchPermanentErrorMarksFailed(t *testing.T) {
	repo := newFakeReversalRepo()
	client := &fakePaymentClient{err: paymentservice.ErrPermanent}

	d := newTestDispatcher(repo, client, 5)
	d.dispatch(context.Background(), pendingReversal(1, 0), time.Now().UTC())

	assert.Contains(t, repo.failed, int64(1))
	assert.Empty(t, repo.retried)
}

func TestDispatchExhaustedAttemptsMarksFailed(t *testing.T) {
	repo := newFakeReversalRepo()
	client := &fakePaymentClient{err: errors.New("gateway timeout")}

	d := newTestDispatcher(repo, client, 3)
	// Третья попытка последняя: после неё заявка уходит в failed
	d.dispatch(context.Background(), pendingReversal(1, 2), time.Now().UTC())

	assert.Contains(t, repo.failed, int64(1))
	assert.Empty(t, repo.retried)
}
