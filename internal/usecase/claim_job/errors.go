package claim_job

import "errors"

var (
	// ErrJobNotFound возвращается, когда заявка не найдена
	ErrJobNotFound = errors.New("job not found")

	// ErrJobUnavailable возвращается, когда заявку уже взял другой исполнитель
	// или она больше не открыта
	ErrJobUnavailable = errors.New("job is no longer available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("usecase: internal error")
)
