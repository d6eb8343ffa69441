package models

import (
	"errors"
	"time"

	"github.com/freshnest-app/booking-core/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// GetCustomerBookingsRequest запрос на получение бронирований клиента
type GetCustomerBookingsRequest struct {
	CustomerID int64   `json:"customerId"`
	Status     *string `json:"status,omitempty"`
}

// GetProfessionalBookingsRequest запрос на получение бронирований исполнителя
type GetProfessionalBookingsRequest struct {
	ProfessionalID int64      `json:"professionalId"`
	From           *time.Time `json:"from,omitempty"` // Начало периода пересечения (опционально)
	To             *time.Time `json:"to,omitempty"`   // Конец периода пересечения (опционально)
	OnlyActive     bool       `json:"onlyActive,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetProfessionalBookingsRequest) ToDomainFilter() domain.BookingsFilter {
	return domain.BookingsFilter{
		ProfessionalID: r.ProfessionalID,
		From:           r.From,
		To:             r.To,
		OnlyActive:     r.OnlyActive,
	}
}

// AdvanceStatusRequest запрос на перевод бронирования в новый статус
type AdvanceStatusRequest struct {
	RequesterID int64  `json:"requesterId"`
	Status      string `json:"status"`
	Version     int64  `json:"version"`
}

// Response модели

// MoneyResponse денежная разбивка бронирования
type MoneyResponse struct {
	BasePrice          float64 `json:"basePrice"`
	AddonsTotal        float64 `json:"addonsTotal"`
	PlatformFee        float64 `json:"platformFee"`
	Tax                float64 `json:"tax"`
	Tip                float64 `json:"tip"`
	Total              float64 `json:"total"`
	ProfessionalPayout float64 `json:"professionalPayout"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              int64         `json:"id"`
	CustomerID      int64         `json:"customerId"`
	ProfessionalID  *int64        `json:"professionalId,omitempty"`
	ServiceType     string        `json:"serviceType"`
	ScheduledStart  time.Time     `json:"scheduledStart"`
	ScheduledEnd    time.Time     `json:"scheduledEnd"`
	DurationMinutes int           `json:"durationMinutes"`
	Status          string        `json:"status"`
	Money           MoneyResponse `json:"money"`
	PackageRef      *string       `json:"packageRef,omitempty"`

	RefundPct          *int     `json:"refundPct,omitempty"`
	RefundAmount       *float64 `json:"refundAmount,omitempty"`
	CancellationReason *string  `json:"cancellationReason,omitempty"`
	CancelledBy        *string  `json:"cancelledBy,omitempty"`
	CancelledAt        *string  `json:"cancelledAt,omitempty"` // ISO 8601

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:              b.ID,
		CustomerID:      b.CustomerID,
		ProfessionalID:  b.ProfessionalID,
		ServiceType:     b.ServiceType,
		ScheduledStart:  b.ScheduledStart,
		ScheduledEnd:    b.ScheduledEnd(),
		DurationMinutes: b.DurationMin,
		Status:          string(b.Status),
		Money: MoneyResponse{
			BasePrice:          b.Money.BasePrice,
			AddonsTotal:        b.Money.AddonsTotal,
			PlatformFee:        b.Money.PlatformFee,
			Tax:                b.Money.Tax,
			Tip:                b.Money.Tip,
			Total:              b.Money.Total,
			ProfessionalPayout: b.Money.ProfessionalPayout,
		},
		PackageRef:         b.PackageRef,
		RefundPct:          b.RefundPct,
		RefundAmount:       b.RefundAmount,
		CancellationReason: b.CancellationReason,
		Version:            b.Version,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	if b.CancelledBy != nil {
		actor := string(*b.CancelledBy)
		resp.CancelledBy = &actor
	}
	if b.CancelledAt != nil {
		cancelledAt := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledAt
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}
	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, *FromDomainBooking(b))
	}
	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus
func ToDomainBookingStatus(s string) (domain.BookingStatus, error) {
	status := domain.BookingStatus(s)
	if !domain.IsValidStatus(status) {
		return "", ErrInvalidStatus
	}
	return status, nil
}
