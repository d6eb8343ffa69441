package refunddispatcher

import (
	"context"
	"errors"
	"time"

	"github.com/freshnest-app/booking-core/internal/domain"
	"github.com/freshnest-app/booking-core/internal/integrations/paymentservice"
)

// batchSize максимум заявок за один проход диспетчера
const batchSize = 50

// ReversalRepository интерфейс репозитория возвратов
type ReversalRepository interface {
	GetDue(ctx context.Context, now time.Time, limit int) ([]*domain.PaymentReversal, error)
	MarkSucceeded(ctx context.Context, bookingID int64) error
	MarkFailed(ctx context.Context, bookingID int64, lastError string) error
	MarkRetry(ctx context.Context, bookingID int64, attempts int, nextAttemptAt time.Time, lastError string) error
}

// PaymentServiceClient интерфейс клиента платёжного сервиса
type PaymentServiceClient interface {
	ReverseCharge(ctx context.Context, paymentRef string, amountCents int64, bookingID int64) error
}

// Metrics интерфейс метрик диспетчера
type Metrics interface {
	IncReversalDispatched(result string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Dispatcher асинхронно отправляет возвраты в платёжный сервис
//
// Заявки на возврат создаются в транзакции отмены бронирования и лежат
// в payment_reversals до успешной отправки. Повтор идемпотентен: ключ
// идемпотентности в платёжном сервисе выводится из ID бронирования.
// Временные сбои повторяются с экспоненциальной задержкой, после
// исчерпания бюджета попыток заявка помечается failed для ручного
// разбора оператором
type Dispatcher struct {
	reversalRepo  ReversalRepository
	paymentClient PaymentServiceClient
	pollInterval  time.Duration
	maxAttempts   int
	backoffBase   time.Duration
	backoffCeil   time.Duration
	metrics       Metrics
	logger        Logger
}

// New создает новый экземпляр диспетчера возвратов
// metrics может быть nil
func New(
	reversalRepo ReversalRepository,
	paymentClient PaymentServiceClient,
	pollInterval time.Duration,
	maxAttempts int,
	backoffBase time.Duration,
	metrics Metrics,
	logger Logger,
) *Dispatcher {
	if maxAttempts <= 0 {
		maxAttempts = domain.DefaultReversalMaxAttempts
	}
	if backoffBase <= 0 {
		backoffBase = domain.DefaultReversalBackoffBase
	}

	return &Dispatcher{
		reversalRepo:  reversalRepo,
		paymentClient: paymentClient,
		pollInterval:  pollInterval,
		maxAttempts:   maxAttempts,
		backoffBase:   backoffBase,
		backoffCeil:   domain.DefaultReversalBackoffCeil,
		metrics:       metrics,
		logger:        logger,
	}
}

// Run запускает цикл отправки до отмены контекста
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info("refunddispatcher: started, poll=%s, maxAttempts=%d", d.pollInterval, d.maxAttempts)

	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("refunddispatcher: stopped")
			return
		case <-ticker.C:
			d.dispatchDue(ctx)
		}
	}
}

// dispatchDue обрабатывает заявки, чьё время попытки наступило
func (d *Dispatcher) dispatchDue(ctx context.Context) {
	now := time.Now().UTC()

	due, err := d.reversalRepo.GetDue(ctx, now, batchSize)
	if err != nil {
		d.logger.Error("refunddispatcher: failed to get due reversals: %v", err)
		return
	}

	for _, rev := range due {
		d.dispatch(ctx, rev, now)
	}
}

// dispatch отправляет один возврат и фиксирует результат попытки
func (d *Dispatcher) dispatch(ctx context.Context, rev *domain.PaymentReversal, now time.Time) {
	err := d.paymentClient.ReverseCharge(ctx, rev.PaymentRef, rev.AmountCents, rev.BookingID)
	if err == nil {
		if markErr := d.reversalRepo.MarkSucceeded(ctx, rev.BookingID); markErr != nil {
			d.logger.Error("refunddispatcher: failed to mark succeeded: booking_id=%d, error=%v",
				rev.BookingID, markErr)
			return
		}
		d.logger.Info("refunddispatcher: reversal succeeded: booking_id=%d, amount_cents=%d",
			rev.BookingID, rev.AmountCents)
		d.observe("succeeded")
		return
	}

	attempts := rev.Attempts + 1

	// Постоянная ошибка или исчерпанный бюджет попыток - ручной разбор
	if errors.Is(err, paymentservice.ErrPermanent) || attempts >= d.maxAttempts {
		if markErr := d.reversalRepo.MarkFailed(ctx, rev.BookingID, err.Error()); markErr != nil {
			d.logger.Error("refunddispatcher: failed to mark failed: booking_id=%d, error=%v",
				rev.BookingID, markErr)
			return
		}
		d.logger.Error("refunddispatcher: reversal FAILED, manual intervention required: booking_id=%d, payment_ref=%s, attempts=%d, error=%v",
			rev.BookingID, rev.PaymentRef, attempts, err)
		d.observe("failed")
		return
	}

	nextAttemptAt := now.Add(domain.ReversalBackoff(attempts, d.backoffBase, d.backoffCeil))
	if markErr := d.reversalRepo.MarkRetry(ctx, rev.BookingID, attempts, nextAttemptAt, err.Error()); markErr != nil {
		d.logger.Error("refunddispatcher: failed to mark retry: booking_id=%d, error=%v", rev.BookingID, markErr)
		return
	}

	d.logger.Warn("refunddispatcher: reversal retry scheduled: booking_id=%d, attempts=%d, next_attempt=%s, error=%v",
		rev.BookingID, attempts, nextAttemptAt.Format(time.RFC3339), err)
	d.observe("retried")
}

func (d *Dispatcher) observe(result string) {
	if d.metrics != nil {
		d.metrics.IncReversalDispatched(result)
	}
}
