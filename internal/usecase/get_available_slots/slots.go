package get_available_slots

import (
	"time"

	"github.com/freshnest-app/booking-core/internal/domain"
)

// generateWindowSlots генерирует кандидатов внутри одного окна доступности
// Курсор шагает с фиксированным шагом от начала окна; кандидат попадает
// в результат, если услуга целиком помещается в окно, начало не раньше
// minStart и интервал не пересекается ни с одним активным бронированием
func generateWindowSlots(
	window *domain.AvailabilityWindow,
	date time.Time,
	loc *time.Location,
	duration time.Duration,
	minStart time.Time,
	busy []*domain.Booking,
) ([]Slot, error) {
	windowStart, err := window.StartTime.At(date, loc)
	if err != nil {
		return nil, err
	}
	windowEnd, err := window.EndTime.At(date, loc)
	if err != nil {
		return nil, err
	}

	step := time.Duration(domain.SlotStepMinutes) * time.Minute
	slots := make([]Slot, 0)

	for cursor := windowStart; !cursor.Add(duration).After(windowEnd); cursor = cursor.Add(step) {
		if cursor.Before(minStart) {
			continue
		}
		if overlapsAny(cursor, cursor.Add(duration), busy) {
			continue
		}
		slots = append(slots, Slot{
			StartAt:       cursor.UTC(),
			PriceModifier: domain.PriceModifier(cursor),
		})
	}

	return slots, nil
}

// overlapsAny возвращает true, если интервал пересекается
// хотя бы с одним из бронирований (полуоткрытые интервалы)
func overlapsAny(start, end time.Time, busy []*domain.Booking) bool {
	for _, b := range busy {
		if domain.Overlaps(start, end, b.ScheduledStart, b.ScheduledEnd()) {
			return true
		}
	}
	return false
}

// ceilToStep округляет время вверх до ближайшей границы шага слотов
func ceilToStep(t time.Time) time.Time {
	step := time.Duration(domain.SlotStepMinutes) * time.Minute
	truncated := t.Truncate(step)
	if truncated.Equal(t) {
		return t
	}
	return truncated.Add(step)
}

// isSameDay возвращает true, если обе даты приходятся на один календарный день
func isSameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
