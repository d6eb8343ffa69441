package advance_status

import (
	"context"

	"github.com/freshnest-app/booking-core/internal/service/bookings/models"
)

type BookingService interface {
	AdvanceStatus(ctx context.Context, bookingID int64, req *models.AdvanceStatusRequest) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
