package domain

import (
	"time"

	"github.com/freshnest-app/booking-core/pkg/types"
)

// AvailabilityWindow повторяющееся окно доступности исполнителя
// Создаётся и редактируется исполнителем вне ядра; движок слотов только читает
type AvailabilityWindow struct {
	ID             int64
	ProfessionalID int64
	Weekday        time.Weekday // 0 (Sunday) - 6 (Saturday)
	StartTime      types.TimeString
	EndTime        types.TimeString
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AvailableSlot кандидат на бронирование: начало слота и ценовой коэффициент
type AvailableSlot struct {
	StartAt       time.Time
	PriceModifier float64
}
