package slotlock

import "errors"

var (
	// ErrSlotContested возвращается, когда живой лок на пару
	// (professional_id, slot_key) уже держит другая сторона.
	// Ошибка retryable: вызывающая сторона выбирает другой слот
	// или повторяет попытку после истечения TTL
	ErrSlotContested = errors.New("slotlock.repository: slot is locked by another holder")

	// ErrLockNotFound возвращается, когда лок не найден или уже истёк
	ErrLockNotFound = errors.New("slotlock.repository: lock not found or expired")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("slotlock.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("slotlock.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("slotlock.repository: failed to scan row")
)
