package cancel_booking

import (
	cancelBooking "github.com/freshnest-app/booking-core/internal/usecase/cancel_booking"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	Actor  string `json:"actor" validate:"required,oneof=customer professional system"`
	Reason string `json:"reason" validate:"required"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CancelBookingRequest) ToUseCaseRequest(bookingID, requesterID int64) *cancelBooking.Request {
	return &cancelBooking.Request{
		BookingID:   bookingID,
		RequesterID: requesterID,
		Actor:       r.Actor,
		Reason:      r.Reason,
	}
}
