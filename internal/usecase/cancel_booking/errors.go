package cancel_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав на отмену
	ErrAccessDenied = errors.New("access denied")

	// ErrCannotCancel возвращается при попытке отменить бронирование
	// в терминальном статусе
	ErrCannotCancel = errors.New("booking cannot be cancelled")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("usecase: internal error")
)
