package create_booking

import (
	"time"

	"github.com/freshnest-app/booking-core/internal/domain"
	"github.com/freshnest-app/booking-core/internal/service/bookings/models"
)

// Request модель запроса на создание бронирования
//
// ProfessionalID и LockID задаются вместе: прямое бронирование слота
// исполнителя требует действующего слот-лока. Без исполнителя создаётся
// открытая заявка, которую исполнители берут через claim
type Request struct {
	CustomerID      int64      // ID клиента
	ProfessionalID  *int64     // ID исполнителя (опционально)
	LockID          string     // ID слот-лока (обязателен при ProfessionalID)
	ServiceType     string     // Тип услуги
	ScheduledStart  time.Time  // Начало уборки
	DurationMinutes int        // Длительность в минутах
	BasePrice       float64    // Базовая цена услуги
	AddonsTotal     float64    // Сумма дополнительных услуг
	Tip             float64    // Чаевые
	PackageRef      *string    // Ссылка на пакет бронирований (опционально)
	PaymentRef      string     // Ссылка на платёж
}

// Response модель ответа с созданным бронированием
type Response = models.BookingResponse

// toDomainBooking собирает domain модель из запроса
func (r *Request) toDomainBooking(money domain.MoneyBreakdown, status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		CustomerID:     r.CustomerID,
		ProfessionalID: r.ProfessionalID,
		ServiceType:    r.ServiceType,
		ScheduledStart: r.ScheduledStart.UTC(),
		DurationMin:    r.DurationMinutes,
		Money:          money,
		Status:         status,
		PackageRef:     r.PackageRef,
		PaymentRef:     r.PaymentRef,
	}
}
