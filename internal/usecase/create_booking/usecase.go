package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/freshnest-app/booking-core/internal/domain"
	lockRepo "github.com/freshnest-app/booking-core/internal/infra/storage/slotlock"
	"github.com/freshnest-app/booking-core/internal/integrations/notifyservice"
	"github.com/freshnest-app/booking-core/internal/service/bookings/models"
	"github.com/freshnest-app/booking-core/pkg/events"
	"github.com/freshnest-app/booking-core/pkg/ptr"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	slotLockRepo SlotLockRepository
	txManager    TransactionManager
	eventsOut    EventPublisher
	notifyClient NotifyServiceClient
	location     *time.Location
	feeRate      float64
	taxRate      float64
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
// eventsOut и notifyClient могут быть nil, тогда побочные эффекты пропускаются
func NewUseCase(
	bookingRepo BookingRepository,
	slotLockRepo SlotLockRepository,
	txManager TransactionManager,
	eventsOut EventPublisher,
	notifyClient NotifyServiceClient,
	location *time.Location,
	feeRate float64,
	taxRate float64,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		slotLockRepo: slotLockRepo,
		txManager:    txManager,
		eventsOut:    eventsOut,
		notifyClient: notifyClient,
		location:     location,
		feeRate:      feeRate,
		taxRate:      taxRate,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// SetTimeProvider устанавливает провайдер времени (для тестирования)
func (uc *UseCase) SetTimeProvider(tp TimeProvider) {
	uc.timeProvider = tp
}

// Execute выполняет use case создания бронирования
//
// Прямое бронирование (с исполнителем) требует действующего слот-лока
// клиента на слот. Внутри serializable транзакции пересечения с активными
// бронированиями проверяются повторно: лок даёт приоритет оформления,
// но не гарантирует успех. Открытая заявка (без исполнителя) календарь
// не блокирует и создаётся без лока
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: customer=%d, professional=%v, start=%s, duration=%dm",
		req.CustomerID, req.ProfessionalID, req.ScheduledStart.Format(time.RFC3339), req.DurationMinutes)

	now := uc.timeProvider.Now().UTC()

	if err := validateRequest(req, now); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	var lock *domain.SlotLock
	if req.ProfessionalID != nil {
		var err error
		lock, err = uc.checkLock(ctx, req, now)
		if err != nil {
			return nil, err
		}
	}

	money := uc.calculateMoney(req)
	status := domain.StatusPending
	if req.ProfessionalID != nil {
		// Платёж уже авторизован (PaymentRef), слот закреплён локом
		status = domain.StatusConfirmed
	}

	var created *domain.Booking
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if req.ProfessionalID != nil {
			if err := uc.recheckOverlaps(txCtx, req); err != nil {
				return err
			}
		}

		b, err := uc.bookingRepo.Create(txCtx, req.toDomainBooking(money, status))
		if err != nil {
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}
		created = b
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotTaken) {
			uc.logger.Warn("CreateBooking: slot taken for professional=%v, start=%s",
				req.ProfessionalID, req.ScheduledStart.Format(time.RFC3339))
			return nil, ErrSlotTaken
		}
		uc.logger.Error("CreateBooking: transaction failed: %v", err)
		if errors.Is(err, ErrInternal) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
	}

	// Лок своё отработал: бронирование создано, слот занят записью в bookings
	if lock != nil {
		if err := uc.slotLockRepo.Release(ctx, lock.ID); err != nil {
			uc.logger.Warn("CreateBooking: failed to release lock id=%s: %v", lock.ID, err)
		}
	}

	uc.publishCreated(ctx, created)
	uc.notifyCreated(ctx, created)

	uc.logger.Info("CreateBooking: booking id=%d created with status=%s", created.ID, created.Status)
	return models.FromDomainBooking(created), nil
}

// checkLock проверяет, что слот-лок существует, жив, принадлежит клиенту
// и соответствует запрошенному слоту исполнителя
func (uc *UseCase) checkLock(ctx context.Context, req *Request, now time.Time) (*domain.SlotLock, error) {
	lock, err := uc.slotLockRepo.GetByID(ctx, req.LockID)
	if err != nil {
		if errors.Is(err, lockRepo.ErrLockNotFound) {
			uc.logger.Warn("CreateBooking: lock id=%s not found", req.LockID)
			return nil, ErrLockRequired
		}
		uc.logger.Error("CreateBooking: failed to get lock id=%s: %v", req.LockID, err)
		return nil, fmt.Errorf("%w: failed to get lock: %v", ErrInternal, err)
	}

	if !lock.HeldBy(req.CustomerID, now) {
		uc.logger.Warn("CreateBooking: lock id=%s is expired or held by another customer", req.LockID)
		return nil, ErrLockRequired
	}

	if lock.ProfessionalID != *req.ProfessionalID || !lock.SlotKey.Equal(domain.SlotKey(req.ScheduledStart)) {
		uc.logger.Warn("CreateBooking: lock id=%s does not match requested slot", req.LockID)
		return nil, ErrLockMismatch
	}

	return lock, nil
}

// recheckOverlaps проверяет пересечения с активными бронированиями
// внутри транзакции, непосредственно перед записью
func (uc *UseCase) recheckOverlaps(ctx context.Context, req *Request) error {
	start := req.ScheduledStart.UTC()
	end := start.Add(time.Duration(req.DurationMinutes) * time.Minute)

	busy, err := uc.bookingRepo.GetByProfessionalWithFilter(ctx, domain.BookingsFilter{
		ProfessionalID: *req.ProfessionalID,
		From:           ptr.Ptr(start),
		To:             ptr.Ptr(end),
		OnlyActive:     true,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to check overlaps: %v", ErrInternal, err)
	}

	if len(busy) > 0 {
		return ErrSlotTaken
	}
	return nil
}

// calculateMoney собирает денежную разбивку с учётом ценового коэффициента слота
func (uc *UseCase) calculateMoney(req *Request) domain.MoneyBreakdown {
	modifier := domain.PriceModifier(req.ScheduledStart.In(uc.location))
	return domain.CalculateTotal(req.BasePrice, req.AddonsTotal, req.Tip, modifier, uc.feeRate, uc.taxRate)
}

// publishCreated публикует событие создания бронирования
func (uc *UseCase) publishCreated(ctx context.Context, b *domain.Booking) {
	if uc.eventsOut == nil {
		return
	}

	err := uc.eventsOut.Publish(ctx, events.Event{
		Type:      events.TypeBookingCreated,
		BookingID: b.ID,
		Payload: map[string]interface{}{
			"customerId":     b.CustomerID,
			"professionalId": b.ProfessionalID,
			"status":         string(b.Status),
			"scheduledStart": b.ScheduledStart.Format(time.RFC3339),
		},
		At: time.Now().UTC(),
	})
	if err != nil {
		uc.logger.Error("publishCreated: failed to publish event for booking id=%d: %v", b.ID, err)
	}
}

// notifyCreated уведомляет клиента о создании бронирования
func (uc *UseCase) notifyCreated(ctx context.Context, b *domain.Booking) {
	if uc.notifyClient == nil {
		return
	}

	err := uc.notifyClient.Notify(ctx, b.CustomerID, notifyservice.TypeBookingConfirmed, map[string]interface{}{
		"bookingId": b.ID,
		"status":    string(b.Status),
	})
	if err != nil {
		uc.logger.Warn("notifyCreated: failed to notify customer=%d for booking id=%d: %v", b.CustomerID, b.ID, err)
	}
}
