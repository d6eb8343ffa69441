package create_booking

import (
	"context"
	"time"

	"github.com/freshnest-app/booking-core/internal/domain"
	"github.com/freshnest-app/booking-core/pkg/events"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	GetByProfessionalWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
}

// SlotLockRepository интерфейс репозитория слот-локов
type SlotLockRepository interface {
	GetByID(ctx context.Context, id string) (*domain.SlotLock, error)
	Release(ctx context.Context, id string) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher интерфейс публикации доменных событий
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// NotifyServiceClient интерфейс клиента сервиса уведомлений
type NotifyServiceClient interface {
	Notify(ctx context.Context, userID int64, notifType string, payload interface{}) error
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
