package get_available_slots

import "errors"

var (
	// ErrInvalidDate возвращается при некорректной или прошедшей дате
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidDuration возвращается при некорректной длительности услуги
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("usecase: internal error")
)
