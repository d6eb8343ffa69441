package cancel_booking

import (
	"context"
	"time"

	"github.com/freshnest-app/booking-core/internal/domain"
	"github.com/freshnest-app/booking-core/pkg/events"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	CancelWithRefund(
		ctx context.Context,
		id int64,
		expectedVersion int64,
		actor domain.CancelActor,
		reason string,
		decision domain.RefundDecision,
		now time.Time,
	) (*domain.Booking, error)
}

// ReversalRepository интерфейс репозитория возвратов платежей
type ReversalRepository interface {
	Create(ctx context.Context, rev *domain.PaymentReversal) error
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
