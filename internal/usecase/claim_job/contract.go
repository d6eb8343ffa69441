package claim_job

import (
	"context"

	"github.com/freshnest-app/booking-core/internal/domain"
	"github.com/freshnest-app/booking-core/pkg/events"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Claim(ctx context.Context, bookingID, professionalID int64) (*domain.Booking, error)
}

// EventPublisher интерфейс публикации доменных событий
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// NotifyServiceClient интерфейс клиента сервиса уведомлений
type NotifyServiceClient interface {
	Notify(ctx context.Context, userID int64, notifType string, payload interface{}) error
}

// ChatServiceClient интерфейс клиента чат-сервиса
type ChatServiceClient interface {
	EnsureThread(ctx context.Context, customerID, professionalID, bookingID int64) (string, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
