package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrIllegalTransition возвращается при недопустимом переходе статуса
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrInvalidStatus возвращается при неизвестном статусе
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
