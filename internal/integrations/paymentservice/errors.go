package paymentservice

import "errors"

var (
	// ErrRetryable возвращается при временной ошибке платёжного шлюза
	// Диспетчер возвратов повторит отправку с экспоненциальной задержкой
	ErrRetryable = errors.New("paymentservice client: transient failure, retry later")

	// ErrPermanent возвращается при ошибке, которую повтор не исправит
	// (некорректный payment reference, возврат отклонён шлюзом)
	ErrPermanent = errors.New("paymentservice client: permanent failure")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("paymentservice client: internal error")
)
