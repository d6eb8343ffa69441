package create_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrLockRequired возвращается, когда бронирование к исполнителю
	// оформляется без действующего слот-лока
	ErrLockRequired = errors.New("valid slot lock is required")

	// ErrLockMismatch возвращается, когда лок не соответствует
	// запрошенному исполнителю или слоту
	ErrLockMismatch = errors.New("slot lock does not match requested slot")

	// ErrSlotTaken возвращается, когда слот уже занят активным бронированием
	ErrSlotTaken = errors.New("slot is already booked")

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("usecase: internal error")
)
