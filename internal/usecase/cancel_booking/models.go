package cancel_booking

import "github.com/freshnest-app/booking-core/internal/service/bookings/models"

// Request модель запроса на отмену бронирования
type Request struct {
	BookingID   int64  // ID бронирования
	RequesterID int64  // ID пользователя, инициирующего отмену
	Actor       string // Инициатор: customer, professional или system
	Reason      string // Причина отмены
}

// Response модель ответа с отменённым бронированием и решением о возврате
type Response struct {
	Booking      *models.BookingResponse `json:"booking"`
	RefundPct    int                     `json:"refundPct"`
	RefundAmount float64                 `json:"refundAmount"`
}
