package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidTimeFormat возвращается при некорректном формате времени
	ErrInvalidTimeFormat = errors.New("types: invalid time string format, expected HH:MM")
)

const timeLayout = "15:04"

// TimeString время суток в формате "HH:MM" (без даты и таймзоны)
// Используется для границ окон доступности
type TimeString string

// NewTimeString создает TimeString из time.Time (берёт только часы и минуты)
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format(timeLayout))
}

// NewTimeStringFromString создает TimeString из строки с валидацией формата
func NewTimeStringFromString(s string) (TimeString, error) {
	ts := TimeString(s)
	if err := ts.Validate(); err != nil {
		return "", err
	}
	return ts, nil
}

// Validate проверяет, что строка соответствует формату HH:MM
func (t TimeString) Validate() error {
	if _, err := time.Parse(timeLayout, string(t)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimeFormat, string(t))
	}
	return nil
}

// IsZero возвращает true, если значение не задано
func (t TimeString) IsZero() bool {
	return t == ""
}

// String возвращает строковое представление времени
func (t TimeString) String() string {
	return string(t)
}

// Minutes возвращает количество минут с начала суток
func (t TimeString) Minutes() (int, error) {
	parsed, err := time.Parse(timeLayout, string(t))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, string(t))
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// IsBefore возвращает true, если t раньше other
func (t TimeString) IsBefore(other TimeString) bool {
	return string(t) < string(other)
}

// IsAfter возвращает true, если t позже other
func (t TimeString) IsAfter(other TimeString) bool {
	return string(t) > string(other)
}

// AddMinutes возвращает новое время, сдвинутое на minutes минут вперед
// Возвращает ошибку при выходе за пределы суток
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	total, err := t.Minutes()
	if err != nil {
		return "", err
	}

	total += minutes
	if total < 0 || total >= 24*60 {
		return "", fmt.Errorf("%w: %q + %d minutes is out of day range", ErrInvalidTimeFormat, string(t), minutes)
	}

	return TimeString(fmt.Sprintf("%02d:%02d", total/60, total%60)), nil
}

// At привязывает время суток к конкретной дате в указанной таймзоне
func (t TimeString) At(date time.Time, loc *time.Location) (time.Time, error) {
	parsed, err := time.Parse(timeLayout, string(t))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, string(t))
	}
	return time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), 0, 0, loc), nil
}

// Value реализует driver.Valuer для записи в БД
func (t TimeString) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return string(t), nil
}

// Scan реализует sql.Scanner для чтения из БД
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = ""
		return nil
	case string:
		// Postgres TIME приходит как "HH:MM:SS", обрезаем секунды
		if len(v) > 5 {
			v = v[:5]
		}
		*t = TimeString(v)
		return t.Validate()
	case []byte:
		return t.Scan(string(v))
	case time.Time:
		*t = NewTimeString(v)
		return nil
	default:
		return fmt.Errorf("%w: unsupported source type %T", ErrInvalidTimeFormat, src)
	}
}

// MarshalJSON реализует json.Marshaler
func (t TimeString) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

// UnmarshalJSON реализует json.Unmarshaler с валидацией формата
func (t *TimeString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	ts := TimeString(s)
	if err := ts.Validate(); err != nil {
		return err
	}
	*t = ts
	return nil
}
