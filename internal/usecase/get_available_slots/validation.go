package get_available_slots

import (
	"fmt"
	"time"
)

// validateRequest проверяет входные данные запроса
// date и now приведены к региону работы исполнителя
func validateRequest(req *Request, date, now time.Time) error {
	if req.ProfessionalID <= 0 {
		return fmt.Errorf("%w: professional id is required", ErrInvalidDate)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidDate)
	}
	if req.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidDuration)
	}
	if isDateInPast(date, now) {
		return fmt.Errorf("%w: date is in the past", ErrInvalidDate)
	}
	return nil
}

// isDateInPast возвращает true, если дата раньше сегодняшнего дня
func isDateInPast(date, now time.Time) bool {
	y1, m1, d1 := date.Date()
	y2, m2, d2 := now.Date()
	if y1 != y2 {
		return y1 < y2
	}
	if m1 != m2 {
		return m1 < m2
	}
	return d1 < d2
}
