package create_booking

import (
	"fmt"
	"time"

	"github.com/freshnest-app/booking-core/internal/domain"
)

// validateRequest проверяет входные данные запроса
func validateRequest(req *Request, now time.Time) error {
	if req.CustomerID <= 0 {
		return fmt.Errorf("%w: customer id is required", ErrInvalidInput)
	}
	if req.ServiceType == "" {
		return fmt.Errorf("%w: service type is required", ErrInvalidInput)
	}
	if req.ScheduledStart.IsZero() {
		return fmt.Errorf("%w: scheduled start is required", ErrInvalidInput)
	}
	if req.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidInput)
	}
	if req.BasePrice < 0 || req.AddonsTotal < 0 || req.Tip < 0 {
		return fmt.Errorf("%w: money amounts must not be negative", ErrInvalidInput)
	}
	if req.PaymentRef == "" {
		return fmt.Errorf("%w: payment ref is required", ErrInvalidInput)
	}
	if req.ProfessionalID != nil && req.LockID == "" {
		return fmt.Errorf("%w: lock id is required for direct booking", ErrLockRequired)
	}
	if req.ScheduledStart.Before(now.Add(domain.BookingLeadTime)) {
		return fmt.Errorf("%w: scheduled start violates minimum lead time", ErrInvalidInput)
	}
	return nil
}
