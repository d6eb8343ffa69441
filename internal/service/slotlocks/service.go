package slotlocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/freshnest-app/booking-core/internal/domain"
	lockRepo "github.com/freshnest-app/booking-core/internal/infra/storage/slotlock"
	"github.com/freshnest-app/booking-core/internal/service/slotlocks/models"
)

// Service сервис слот-локов: временных резерваций слотов
// на время оформления бронирования
type Service struct {
	lockRepo     SlotLockRepository
	defaultTTL   time.Duration
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса слот-локов
func NewService(lockRepo SlotLockRepository, defaultTTL time.Duration, logger Logger) *Service {
	return &Service{
		lockRepo:     lockRepo,
		defaultTTL:   domain.ClampLockTTL(defaultTTL),
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// SetTimeProvider устанавливает провайдер времени (для тестирования)
func (s *Service) SetTimeProvider(tp TimeProvider) {
	s.timeProvider = tp
}

// Acquire захватывает слот-лок для пары (исполнитель, слот)
// Начало слота приводится к границе бакета. Захват атомарный:
// живой чужой лок приводит к ErrSlotContested, просроченный перехватывается
func (s *Service) Acquire(ctx context.Context, req *models.AcquireLockRequest) (*models.LockResponse, error) {
	s.logger.Info("Acquire: holder=%d professional=%d slot=%s",
		req.HolderID, req.ProfessionalID, req.SlotStart.Format(time.RFC3339))

	if req.SlotStart.IsZero() {
		return nil, fmt.Errorf("%w: slot start is required", ErrInvalidInput)
	}

	ttl := s.defaultTTL
	if req.TTLMinutes > 0 {
		ttl = domain.ClampLockTTL(time.Duration(req.TTLMinutes) * time.Minute)
	}

	now := s.timeProvider.Now().UTC()
	lock := &domain.SlotLock{
		ID:             uuid.NewString(),
		ProfessionalID: req.ProfessionalID,
		SlotKey:        domain.SlotKey(req.SlotStart),
		HolderID:       req.HolderID,
		ExpiresAt:      now.Add(ttl),
	}

	acquired, err := s.lockRepo.Acquire(ctx, lock)
	if err != nil {
		if errors.Is(err, lockRepo.ErrSlotContested) {
			s.logger.Warn("Acquire: slot contested for professional=%d slot=%s",
				req.ProfessionalID, lock.SlotKey.Format(time.RFC3339))
			return nil, ErrSlotContested
		}
		s.logger.Error("Acquire: repository error for professional=%d: %v", req.ProfessionalID, err)
		return nil, fmt.Errorf("%w: Acquire - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Acquire: lock id=%s acquired, expires at %s",
		acquired.ID, acquired.ExpiresAt.Format(time.RFC3339))
	return models.FromDomainLock(acquired), nil
}

// Release освобождает слот-лок
// Освобождение идемпотентно: уже отсутствующий лок не ошибка
func (s *Service) Release(ctx context.Context, lockID string, req *models.ReleaseLockRequest) error {
	s.logger.Info("Release: lock id=%s by holder=%d", lockID, req.HolderID)

	lock, err := s.lockRepo.GetByID(ctx, lockID)
	if err != nil {
		if errors.Is(err, lockRepo.ErrLockNotFound) {
			return nil
		}
		s.logger.Error("Release: repository error for lock id=%s: %v", lockID, err)
		return fmt.Errorf("%w: Release - repository error: %v", ErrInternal, err)
	}

	if lock.HolderID != req.HolderID {
		s.logger.Warn("Release: lock id=%s held by another customer", lockID)
		return ErrAccessDenied
	}

	if err := s.lockRepo.Release(ctx, lockID); err != nil {
		s.logger.Error("Release: repository error for lock id=%s: %v", lockID, err)
		return fmt.Errorf("%w: Release - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Release: lock id=%s released", lockID)
	return nil
}

// Extend продлевает живой слот-лок
// Просроченный лок продлить нельзя: возвращается ErrLockNotFound
func (s *Service) Extend(ctx context.Context, lockID string, req *models.ExtendLockRequest) (*models.LockResponse, error) {
	s.logger.Info("Extend: lock id=%s by holder=%d, additional=%dm", lockID, req.HolderID, req.AdditionalMinutes)

	if req.AdditionalMinutes <= 0 {
		return nil, fmt.Errorf("%w: additional minutes must be positive", ErrInvalidInput)
	}

	lock, err := s.lockRepo.GetByID(ctx, lockID)
	if err != nil {
		if errors.Is(err, lockRepo.ErrLockNotFound) {
			return nil, ErrLockNotFound
		}
		s.logger.Error("Extend: repository error for lock id=%s: %v", lockID, err)
		return nil, fmt.Errorf("%w: Extend - repository error: %v", ErrInternal, err)
	}

	if lock.HolderID != req.HolderID {
		s.logger.Warn("Extend: lock id=%s held by another customer", lockID)
		return nil, ErrAccessDenied
	}

	// Суммарный TTL от текущего момента не должен выйти за максимум
	now := s.timeProvider.Now().UTC()
	additional := time.Duration(req.AdditionalMinutes) * time.Minute
	if remaining := lock.ExpiresAt.Sub(now); remaining+additional > domain.MaxLockTTL {
		additional = domain.MaxLockTTL - remaining
		if additional <= 0 {
			s.logger.Warn("Extend: lock id=%s already at max TTL", lockID)
			return models.FromDomainLock(lock), nil
		}
	}

	extended, err := s.lockRepo.Extend(ctx, lockID, additional)
	if err != nil {
		if errors.Is(err, lockRepo.ErrLockNotFound) {
			return nil, ErrLockNotFound
		}
		s.logger.Error("Extend: repository error for lock id=%s: %v", lockID, err)
		return nil, fmt.Errorf("%w: Extend - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Extend: lock id=%s extended to %s", lockID, extended.ExpiresAt.Format(time.RFC3339))
	return models.FromDomainLock(extended), nil
}
