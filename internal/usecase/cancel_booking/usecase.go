package cancel_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/freshnest-app/booking-core/internal/domain"
	bookingRepo "github.com/freshnest-app/booking-core/internal/infra/storage/booking"
	"github.com/freshnest-app/booking-core/internal/integrations/notifyservice"
	"github.com/freshnest-app/booking-core/internal/service/bookings/models"
	"github.com/freshnest-app/booking-core/pkg/events"
)

// UseCase use case для отмены бронирования с применением политики возврата
type UseCase struct {
	bookingRepo  BookingRepository
	reversalRepo ReversalRepository
	txManager    TransactionManager
	eventsOut    EventPublisher
	notifyClient NotifyServiceClient
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
// eventsOut и notifyClient могут быть nil, тогда побочные эффекты пропускаются
func NewUseCase(
	bookingRepo BookingRepository,
	reversalRepo ReversalRepository,
	txManager TransactionManager,
	eventsOut EventPublisher,
	notifyClient NotifyServiceClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		reversalRepo: reversalRepo,
		txManager:    txManager,
		eventsOut:    eventsOut,
		notifyClient: notifyClient,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// SetTimeProvider устанавливает провайдер времени (для тестирования)
func (uc *UseCase) SetTimeProvider(tp TimeProvider) {
	uc.timeProvider = tp
}

// Execute выполняет use case отмены бронирования
//
// Решение о возврате фиксируется на момент отмены: чтение бронирования,
// расчёт тарифа, запись отмены и заявка на возврат выполняются в одной
// serializable транзакции. Сама отправка возврата в платёжный сервис
// асинхронная и на успех отмены не влияет
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelBooking: booking id=%d by %s user=%d", req.BookingID, req.Actor, req.RequesterID)

	actor, err := parseActor(req.Actor)
	if err != nil {
		uc.logger.Warn("CancelBooking: invalid actor=%s", req.Actor)
		return nil, err
	}

	now := uc.timeProvider.Now().UTC()

	var (
		cancelled *domain.Booking
		decision  domain.RefundDecision
	)

	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}

		if err := checkCancelAccess(booking, actor, req.RequesterID); err != nil {
			return err
		}

		if !booking.CanBeCancelled() {
			return ErrCannotCancel
		}

		decision = domain.CalculateRefund(actor, booking.Status, booking.ScheduledStart, now, booking.Money.Total)

		cancelled, err = uc.bookingRepo.CancelWithRefund(
			txCtx, booking.ID, booking.Version, actor, req.Reason, decision, now)
		if err != nil {
			return fmt.Errorf("%w: failed to cancel booking: %v", ErrInternal, err)
		}

		if decision.RefundAmount > 0 {
			rev := &domain.PaymentReversal{
				BookingID:     cancelled.ID,
				PaymentRef:    cancelled.PaymentRef,
				AmountCents:   domain.AmountToCents(decision.RefundAmount),
				Status:        domain.ReversalPending,
				NextAttemptAt: now,
			}
			if err := uc.reversalRepo.Create(txCtx, rev); err != nil {
				return fmt.Errorf("%w: failed to create reversal: %v", ErrInternal, err)
			}
		}

		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound),
			errors.Is(err, ErrAccessDenied),
			errors.Is(err, ErrCannotCancel):
			uc.logger.Warn("CancelBooking: booking id=%d: %v", req.BookingID, err)
			return nil, err
		case errors.Is(err, ErrInternal):
			uc.logger.Error("CancelBooking: booking id=%d: %v", req.BookingID, err)
			return nil, err
		default:
			uc.logger.Error("CancelBooking: transaction failed for booking id=%d: %v", req.BookingID, err)
			return nil, fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
		}
	}

	uc.publishCancelled(ctx, cancelled, actor, decision)
	uc.notifyCancelled(ctx, cancelled, decision)

	uc.logger.Info("CancelBooking: booking id=%d cancelled by %s, refund=%d%% (%.2f)",
		cancelled.ID, actor, decision.RefundPct, decision.RefundAmount)
	return &Response{
		Booking:      models.FromDomainBooking(cancelled),
		RefundPct:    decision.RefundPct,
		RefundAmount: decision.RefundAmount,
	}, nil
}

// parseActor конвертирует строку в domain.CancelActor
func parseActor(s string) (domain.CancelActor, error) {
	switch domain.CancelActor(s) {
	case domain.ActorCustomer:
		return domain.ActorCustomer, nil
	case domain.ActorProfessional:
		return domain.ActorProfessional, nil
	case domain.ActorSystem:
		return domain.ActorSystem, nil
	default:
		return "", fmt.Errorf("%w: unknown actor %q", ErrInvalidInput, s)
	}
}

// checkCancelAccess проверяет право инициатора на отмену
// Клиент отменяет своё бронирование, исполнитель - назначенное на него,
// системная отмена приходит из доверенного служебного вызова
func checkCancelAccess(b *domain.Booking, actor domain.CancelActor, requesterID int64) error {
	switch actor {
	case domain.ActorCustomer:
		if b.CustomerID != requesterID {
			return ErrAccessDenied
		}
	case domain.ActorProfessional:
		if b.ProfessionalID == nil || *b.ProfessionalID != requesterID {
			return ErrAccessDenied
		}
	case domain.ActorSystem:
		// Доступ проверен на транспортном уровне
	}
	return nil
}

// publishCancelled публикует событие отмены
func (uc *UseCase) publishCancelled(ctx context.Context, b *domain.Booking, actor domain.CancelActor, decision domain.RefundDecision) {
	if uc.eventsOut == nil {
		return
	}

	err := uc.eventsOut.Publish(ctx, events.Event{
		Type:      events.TypeBookingCancelled,
		BookingID: b.ID,
		Payload: map[string]interface{}{
			"cancelledBy":  string(actor),
			"refundPct":    decision.RefundPct,
			"refundAmount": decision.RefundAmount,
		},
		At: time.Now().UTC(),
	})
	if err != nil {
		uc.logger.Error("publishCancelled: failed to publish event for booking id=%d: %v", b.ID, err)
	}
}

// notifyCancelled уведомляет стороны об отмене
func (uc *UseCase) notifyCancelled(ctx context.Context, b *domain.Booking, decision domain.RefundDecision) {
	if uc.notifyClient == nil {
		return
	}

	payload := map[string]interface{}{
		"bookingId":    b.ID,
		"refundPct":    decision.RefundPct,
		"refundAmount": decision.RefundAmount,
	}

	if err := uc.notifyClient.Notify(ctx, b.CustomerID, notifyservice.TypeBookingCancelled, payload); err != nil {
		uc.logger.Warn("notifyCancelled: failed to notify customer=%d for booking id=%d: %v", b.CustomerID, b.ID, err)
	}
	if b.ProfessionalID != nil {
		if err := uc.notifyClient.Notify(ctx, *b.ProfessionalID, notifyservice.TypeBookingCancelled, payload); err != nil {
			uc.logger.Warn("notifyCancelled: failed to notify professional=%d for booking id=%d: %v",
				*b.ProfessionalID, b.ID, err)
		}
	}
}
