package domain

import "time"

// ReversalStatus статус асинхронного возврата платежа
type ReversalStatus string

const (
	ReversalPending   ReversalStatus = "pending"
	ReversalSucceeded ReversalStatus = "succeeded"
	ReversalFailed    ReversalStatus = "failed"
)

// PaymentReversal заявка на возврат средств клиенту после отмены
//
// Создаётся в одной транзакции с отменой бронирования, обрабатывается
// асинхронно диспетчером возвратов. BookingID - первичный ключ: на одну
// отмену не может быть больше одного возврата (идемпотентность)
type PaymentReversal struct {
	BookingID     int64
	PaymentRef    string
	AmountCents   int64
	Status        ReversalStatus
	Attempts      int
	NextAttemptAt time.Time
	LastError     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReversalBackoff возвращает задержку перед следующей попыткой отправки
// Экспоненциальный рост от base с ограничением сверху
func ReversalBackoff(attempts int, base, ceil time.Duration) time.Duration {
	backoff := base
	for i := 0; i < attempts; i++ {
		backoff *= 2
		if backoff >= ceil {
			return ceil
		}
	}
	return backoff
}

// AmountToCents конвертирует сумму в копейки для платёжного шлюза
func AmountToCents(amount float64) int64 {
	return int64(amount*100 + 0.5)
}
