package bookings

import (
	"context"

	"github.com/freshnest-app/booking-core/internal/domain"
	"github.com/freshnest-app/booking-core/pkg/events"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByCustomerID(ctx context.Context, customerID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	GetByProfessionalWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	UpdateStatusCAS(ctx context.Context, id int64, status domain.BookingStatus, expectedVersion int64) (*domain.Booking, error)
}

// EventPublisher интерфейс публикации доменных событий
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// NotifyServiceClient интерфейс клиента сервиса уведомлений
type NotifyServiceClient interface {
	Notify(ctx context.Context, userID int64, notifType string, payload interface{}) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
