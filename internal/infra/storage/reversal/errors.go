package reversal

import "errors"

var (
	// ErrReversalNotFound возвращается, когда заявка на возврат не найдена
	ErrReversalNotFound = errors.New("reversal.repository: reversal not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("reversal.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("reversal.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("reversal.repository: failed to scan row")
)
