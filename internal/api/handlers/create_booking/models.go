package create_booking

import (
	"time"

	createBooking "github.com/freshnest-app/booking-core/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ProfessionalID  *int64  `json:"professionalId,omitempty"`
	LockID          string  `json:"lockId,omitempty"`
	ServiceType     string  `json:"serviceType" validate:"required"`
	ScheduledStart  string  `json:"scheduledStart" validate:"required"` // RFC 3339
	DurationMinutes int     `json:"durationMinutes" validate:"required,gt=0"`
	BasePrice       float64 `json:"basePrice" validate:"gte=0"`
	AddonsTotal     float64 `json:"addonsTotal" validate:"gte=0"`
	Tip             float64 `json:"tip" validate:"gte=0"`
	PackageRef      *string `json:"packageRef,omitempty"`
	PaymentRef      string  `json:"paymentRef" validate:"required"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(customerID int64) (*createBooking.Request, error) {
	scheduledStart, err := time.Parse(time.RFC3339, r.ScheduledStart)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		CustomerID:      customerID,
		ProfessionalID:  r.ProfessionalID,
		LockID:          r.LockID,
		ServiceType:     r.ServiceType,
		ScheduledStart:  scheduledStart,
		DurationMinutes: r.DurationMinutes,
		BasePrice:       r.BasePrice,
		AddonsTotal:     r.AddonsTotal,
		Tip:             r.Tip,
		PackageRef:      r.PackageRef,
		PaymentRef:      r.PaymentRef,
	}, nil
}
