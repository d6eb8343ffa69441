package domain

import "time"

// Параметры генерации слотов
const (
	// SlotStepMinutes шаг курсора при генерации слотов и размер бакета slot key
	SlotStepMinutes = 30

	// BookingLeadTime минимальный отступ от текущего момента до начала слота
	// Применяется только когда запрошенная дата - сегодня
	BookingLeadTime = 2 * time.Hour
)

// Параметры slot lock
const (
	DefaultLockTTL = 7 * time.Minute
	MinLockTTL     = 1 * time.Minute
	MaxLockTTL     = 15 * time.Minute
)

// Параметры отправки возвратов платежей
const (
	DefaultReversalMaxAttempts = 8
	DefaultReversalBackoffBase = 30 * time.Second
	DefaultReversalBackoffCeil = 30 * time.Minute
)

// Границы тарифов возврата (от момента отмены до начала заказа)
const (
	FullRefundNotice = 24 * time.Hour
	HalfRefundNotice = 2 * time.Hour
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Business validation constants
const (
	MinServiceDurationMinutes   = 30
	MaxServiceDurationMinutes   = 480 // 8 hours
	MaxCancellationReasonLength = 500
)

// ActiveStatuses статусы, занимающие календарь исполнителя
// Используются при проверке пересечений слотов
var ActiveStatuses = []BookingStatus{
	StatusConfirmed,
	StatusAssigned,
	StatusEnRoute,
	StatusArrived,
	StatusInProgress,
}
