package slotlocks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshnest-app/booking-core/internal/domain"
	lockRepo "github.com/freshnest-app/booking-core/internal/infra/storage/slotlock"
	"github.com/freshnest-app/booking-core/internal/service/slotlocks/models"
)

// fakeLockRepo хранит локи в памяти и повторяет контракт репозитория:
// живой чужой лок на тот же слот даёт ErrSlotContested,
// просроченный перехватывается
type fakeLockRepo struct {
	locks map[string]*domain.SlotLock
	now   func() time.Time
}

func newFakeLockRepo(now time.Time) *fakeLockRepo {
	return &fakeLockRepo{
		locks: make(map[string]*domain.SlotLock),
		now:   func() time.Time { return now },
	}
}

func (r *fakeLockRepo) Acquire(_ context.Context, lock *domain.SlotLock) (*domain.SlotLock, error) {
	for id, existing := range r.locks {
		if existing.ProfessionalID != lock.ProfessionalID || !existing.SlotKey.Equal(lock.SlotKey) {
			continue
		}
		if !existing.IsExpired(r.now()) {
			return nil, lockRepo.ErrSlotContested
		}
		delete(r.locks, id)
	}

	stored := *lock
	stored.CreatedAt = r.now()
	r.locks[stored.ID] = &stored
	return &stored, nil
}

func (r *fakeLockRepo) GetByID(_ context.Context, id string) (*domain.SlotLock, error) {
	lock, ok := r.locks[id]
	if !ok {
		return nil, lockRepo.ErrLockNotFound
	}
	return lock, nil
}

func (r *fakeLockRepo) Release(_ context.Context, id string) error {
	delete(r.locks, id)
	return nil
}

func (r *fakeLockRepo) Extend(_ context.Context, id string, additional time.Duration) (*domain.SlotLock, error) {
	lock, ok := r.locks[id]
	if !ok || lock.IsExpired(r.now()) {
		return nil, lockRepo.ErrLockNotFound
	}
	lock.ExpiresAt = lock.ExpiresAt.Add(additional)
	return lock, nil
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

func newTestService(repo SlotLockRepository, now time.Time) *Service {
	svc := NewService(repo, domain.DefaultLockTTL, &nopLogger{})
	svc.SetTimeProvider(&fixedTimeProvider{now: now})
	return svc
}

func TestAcquireNormalizesSlotKey(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc := newTestService(newFakeLockRepo(now), now)

	resp, err := svc.Acquire(context.Background(), &models.AcquireLockRequest{
		HolderID:       42,
		ProfessionalID: 7,
		SlotStart:      time.Date(2026, 3, 2, 10, 17, 45, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), resp.SlotStart)
	assert.Equal(t, now.Add(domain.DefaultLockTTL), resp.ExpiresAt)
}

func TestAcquireContestedSlot(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo := newFakeLockRepo(now)
	svc := newTestService(repo, now)

	slot := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	_, err := svc.Acquire(context.Background(), &models.AcquireLockRequest{
		HolderID: 42, ProfessionalID: 7, SlotStart: slot,
	})
	require.NoError(t, err)

	_, err = svc.Acquire(context.Background(), &models.AcquireLockRequest{
		HolderID: 99, ProfessionalID: 7, SlotStart: slot,
	})
	assert.ErrorIs(t, err, ErrSlotContested)

	// Тот же слот у другого исполнителя свободен
	_, err = svc.Acquire(context.Background(), &models.AcquireLockRequest{
		HolderID: 99, ProfessionalID: 8, SlotStart: slot,
	})
	assert.NoError(t, err)
}

func TestAcquireStealsExpiredLock(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo := newFakeLockRepo(start.Add(domain.DefaultLockTTL + time.Minute))
	slot := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	// Первый лок создаётся в прошлом и к текущему моменту просрочен
	svc := newTestService(repo, start)
	_, err := svc.Acquire(context.Background(), &models.AcquireLockRequest{
		HolderID: 42, ProfessionalID: 7, SlotStart: slot,
	})
	require.NoError(t, err)

	later := newTestService(repo, start.Add(domain.DefaultLockTTL+time.Minute))
	resp, err := later.Acquire(context.Background(), &models.AcquireLockRequest{
		HolderID: 99, ProfessionalID: 7, SlotStart: slot,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(99), resp.HolderID)
}

func TestAcquireClampsRequestedTTL(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc := newTestService(newFakeLockRepo(now), now)

	resp, err := svc.Acquire(context.Background(), &models.AcquireLockRequest{
		HolderID:       42,
		ProfessionalID: 7,
		SlotStart:      time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		TTLMinutes:     120,
	})
	require.NoError(t, err)
	assert.Equal(t, now.Add(domain.MaxLockTTL), resp.ExpiresAt)
}

func TestReleaseIsIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo := newFakeLockRepo(now)
	svc := newTestService(repo, now)

	resp, err := svc.Acquire(context.Background(), &models.AcquireLockRequest{
		HolderID: 42, ProfessionalID: 7, SlotStart: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Release(context.Background(), resp.ID, &models.ReleaseLockRequest{HolderID: 42}))
	require.NoError(t, svc.Release(context.Background(), resp.ID, &models.ReleaseLockRequest{HolderID: 42}))
}

func TestReleaseForeignLockDenied(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo := newFakeLockRepo(now)
	svc := newTestService(repo, now)

	resp, err := svc.Acquire(context.Background(), &models.AcquireLockRequest{
		HolderID: 42, ProfessionalID: 7, SlotStart: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	err = svc.Release(context.Background(), resp.ID, &models.ReleaseLockRequest{HolderID: 99})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestExtendCapsTotalTTL(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo := newFakeLockRepo(now)
	svc := newTestService(repo, now)

	resp, err := svc.Acquire(context.Background(), &models.AcquireLockRequest{
		HolderID: 42, ProfessionalID: 7, SlotStart: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	// Запрошенное продление выводит за максимум: TTL обрезается
	extended, err := svc.Extend(context.Background(), resp.ID, &models.ExtendLockRequest{
		HolderID:          42,
		AdditionalMinutes: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, now.Add(domain.MaxLockTTL), extended.ExpiresAt)

	// Лок уже на максимуме: повторное продление ничего не меняет
	again, err := svc.Extend(context.Background(), resp.ID, &models.ExtendLockRequest{
		HolderID:          42,
		AdditionalMinutes: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, extended.ExpiresAt, again.ExpiresAt)
}

func TestExtendValidation(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc := newTestService(newFakeLockRepo(now), now)

	_, err := svc.Extend(context.Background(), "missing", &models.ExtendLockRequest{
		HolderID:          42,
		AdditionalMinutes: 0,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Extend(context.Background(), "missing", &models.ExtendLockRequest{
		HolderID:          42,
		AdditionalMinutes: 5,
	})
	assert.ErrorIs(t, err, ErrLockNotFound)
}
