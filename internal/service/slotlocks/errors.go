package slotlocks

import "errors"

var (
	// ErrSlotContested возвращается, когда слот уже удержан другим клиентом
	ErrSlotContested = errors.New("slot is held by another customer")

	// ErrLockNotFound возвращается, когда лок не найден или уже истёк
	ErrLockNotFound = errors.New("slot lock not found")

	// ErrAccessDenied возвращается, когда лок принадлежит другому клиенту
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
