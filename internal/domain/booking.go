package domain

import "time"

// BookingStatus статус бронирования
type BookingStatus string

const (
	StatusPending       BookingStatus = "pending"
	StatusConfirmed     BookingStatus = "confirmed"
	StatusAssigned      BookingStatus = "assigned"
	StatusEnRoute       BookingStatus = "en_route"
	StatusArrived       BookingStatus = "arrived"
	StatusInProgress    BookingStatus = "in_progress"
	StatusCompleted     BookingStatus = "completed"
	StatusCancelled     BookingStatus = "cancelled"
	StatusPaymentFailed BookingStatus = "payment_failed"
)

// CancelActor инициатор отмены бронирования
type CancelActor string

const (
	ActorCustomer     CancelActor = "customer"
	ActorProfessional CancelActor = "professional"
	ActorSystem       CancelActor = "system"
)

// transitions закрытая таблица допустимых переходов статусов
// Единственное место, где определён граф жизненного цикла:
// никаких сравнений статусов-строк по коду быть не должно
var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:       {StatusConfirmed, StatusAssigned, StatusCancelled, StatusPaymentFailed},
	StatusConfirmed:     {StatusAssigned, StatusCancelled, StatusPaymentFailed},
	StatusAssigned:      {StatusEnRoute, StatusCancelled, StatusPaymentFailed},
	StatusEnRoute:       {StatusArrived, StatusCancelled, StatusPaymentFailed},
	StatusArrived:       {StatusInProgress, StatusCancelled, StatusPaymentFailed},
	StatusInProgress:    {StatusCompleted, StatusCancelled, StatusPaymentFailed},
	StatusCompleted:     {},
	StatusCancelled:     {},
	StatusPaymentFailed: {StatusConfirmed, StatusCancelled},
}

// CanTransition возвращает true, если переход from -> to допустим
func CanTransition(from, to BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsValidStatus возвращает true, если статус входит в закрытый набор
func IsValidStatus(s BookingStatus) bool {
	_, ok := transitions[s]
	return ok
}

// Booking центральная сущность: бронирование уборки
type Booking struct {
	ID             int64
	CustomerID     int64
	ProfessionalID *int64 // nil пока заявка не назначена исполнителю
	ServiceType    string
	ScheduledStart time.Time // UTC
	DurationMin    int
	Money          MoneyBreakdown
	Status         BookingStatus
	PackageRef     *string
	PaymentRef     string

	RefundPct          *int
	RefundAmount       *float64
	CancellationReason *string
	CancelledBy        *CancelActor
	CancelledAt        *time.Time

	// Version монотонный штамп версии, увеличивается на каждой мутации.
	// Обновление с устаревшей версией отклоняется (optimistic concurrency)
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ScheduledEnd возвращает конец запланированного интервала (полуоткрытого)
func (b *Booking) ScheduledEnd() time.Time {
	return b.ScheduledStart.Add(time.Duration(b.DurationMin) * time.Minute)
}

// IsTerminal возвращает true для завершённых и отменённых бронирований
// Терминальная запись неизменяема, кроме аудит-полей
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCompleted || b.Status == StatusCancelled
}

// IsActive возвращает true, если бронирование занимает календарь исполнителя
// Pending-заявки без исполнителя календарь не блокируют
func (b *Booking) IsActive() bool {
	for _, s := range ActiveStatuses {
		if b.Status == s {
			return true
		}
	}
	return false
}

// IsUnassigned возвращает true для открытой заявки без исполнителя
// Только такие заявки могут быть взяты через claim
func (b *Booking) IsUnassigned() bool {
	return b.Status == StatusPending && b.ProfessionalID == nil
}

// CanBeCancelled возвращает true, если бронирование ещё можно отменить
// Отмена допустима из любого нетерминального статуса
func (b *Booking) CanBeCancelled() bool {
	return CanTransition(b.Status, StatusCancelled)
}

// BookingsFilter фильтр для выборки бронирований исполнителя
type BookingsFilter struct {
	ProfessionalID int64
	From           *time.Time // Начало интервала пересечения (опционально)
	To             *time.Time // Конец интервала пересечения (опционально)
	OnlyActive     bool       // Только бронирования, занимающие календарь
}
