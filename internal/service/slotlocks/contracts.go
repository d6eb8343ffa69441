package slotlocks

import (
	"context"
	"time"

	"github.com/freshnest-app/booking-core/internal/domain"
)

// SlotLockRepository интерфейс репозитория слот-локов
type SlotLockRepository interface {
	Acquire(ctx context.Context, lock *domain.SlotLock) (*domain.SlotLock, error)
	GetByID(ctx context.Context, id string) (*domain.SlotLock, error)
	Release(ctx context.Context, id string) error
	Extend(ctx context.Context, id string, additional time.Duration) (*domain.SlotLock, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
