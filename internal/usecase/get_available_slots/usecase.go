package get_available_slots

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/freshnest-app/booking-core/internal/domain"
	"github.com/freshnest-app/booking-core/pkg/ptr"
)

// UseCase use case для получения доступных слотов исполнителя
type UseCase struct {
	bookingRepo      BookingRepository
	availabilityRepo AvailabilityRepository
	location         *time.Location
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	availabilityRepo AvailabilityRepository,
	location *time.Location,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:      bookingRepo,
		availabilityRepo: availabilityRepo,
		location:         location,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// SetTimeProvider устанавливает провайдер времени (для тестирования)
func (uc *UseCase) SetTimeProvider(tp TimeProvider) {
	uc.timeProvider = tp
}

// Execute выполняет use case получения доступных слотов
//
// Слоты генерируются по окнам доступности исполнителя на запрошенную дату.
// Кандидаты, пересекающиеся с активными бронированиями, исключаются.
// На сегодняшнюю дату действует минимальный отступ от текущего момента,
// округлённый вверх до границы шага слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: professional=%d, date=%s, duration=%dm",
		req.ProfessionalID, req.Date.Format(domain.DateFormat), req.DurationMinutes)

	now := uc.timeProvider.Now().In(uc.location)

	// Запрошенная дата - календарный день в регионе работы исполнителя,
	// независимо от таймзоны, в которой её распарсил транспорт
	date := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, uc.location)

	if err := validateRequest(req, date, now); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// Окна доступности на день недели запрошенной даты
	windows, err := uc.availabilityRepo.GetActiveByProfessionalAndWeekday(ctx, req.ProfessionalID, date.Weekday())
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get availability windows: %v", err)
		return nil, fmt.Errorf("%w: failed to get availability windows: %v", ErrInternal, err)
	}

	if len(windows) == 0 {
		uc.logger.Info("GetAvailableSlots: no availability windows for professional=%d on %s",
			req.ProfessionalID, date.Weekday())
		return uc.emptyResponse(req, date), nil
	}

	// Активные бронирования, пересекающие запрошенный день
	dayStart := date
	dayEnd := dayStart.AddDate(0, 0, 1)

	busy, err := uc.bookingRepo.GetByProfessionalWithFilter(ctx, domain.BookingsFilter{
		ProfessionalID: req.ProfessionalID,
		From:           ptr.Ptr(dayStart),
		To:             ptr.Ptr(dayEnd),
		OnlyActive:     true,
	})
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	// Минимально допустимое начало слота
	minStart := dayStart
	if isSameDay(date, now) {
		minStart = ceilToStep(now.Add(domain.BookingLeadTime))
	}

	duration := time.Duration(req.DurationMinutes) * time.Minute
	slots := make([]Slot, 0)

	for _, window := range windows {
		windowSlots, err := generateWindowSlots(window, date, uc.location, duration, minStart, busy)
		if err != nil {
			uc.logger.Error("GetAvailableSlots: failed to generate slots for window id=%d: %v", window.ID, err)
			return nil, fmt.Errorf("%w: failed to generate slots: %v", ErrInternal, err)
		}
		slots = append(slots, windowSlots...)
	}

	sort.Slice(slots, func(i, j int) bool {
		return slots[i].StartAt.Before(slots[j].StartAt)
	})

	uc.logger.Info("GetAvailableSlots: generated %d slots for professional=%d", len(slots), req.ProfessionalID)
	return &Response{
		ProfessionalID:  req.ProfessionalID,
		Date:            date.Format(domain.DateFormat),
		DurationMinutes: req.DurationMinutes,
		Slots:           slots,
	}, nil
}

// emptyResponse возвращает ответ без слотов
func (uc *UseCase) emptyResponse(req *Request, date time.Time) *Response {
	return &Response{
		ProfessionalID:  req.ProfessionalID,
		Date:            date.Format(domain.DateFormat),
		DurationMinutes: req.DurationMinutes,
		Slots:           []Slot{},
	}
}
