package get_available_slots

import (
	"context"
	"time"

	"github.com/freshnest-app/booking-core/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByProfessionalWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
}

// AvailabilityRepository интерфейс репозитория окон доступности
type AvailabilityRepository interface {
	GetActiveByProfessionalAndWeekday(ctx context.Context, professionalID int64, weekday time.Weekday) ([]*domain.AvailabilityWindow, error)
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
