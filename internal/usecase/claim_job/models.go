package claim_job

import "github.com/freshnest-app/booking-core/internal/service/bookings/models"

// Request модель запроса на взятие открытой заявки
type Request struct {
	BookingID      int64 // ID заявки
	ProfessionalID int64 // ID исполнителя, который берёт заявку
}

// Response модель ответа с обновлённым бронированием
type Response struct {
	Booking  *models.BookingResponse `json:"booking"`
	ThreadID string                  `json:"threadId,omitempty"` // ID чат-треда клиент-исполнитель
}
