package claim_job

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

// UseCase use case для взятия открытой заявки исполнителем
type UseCase struct {
	bookingRepo  BookingRepository
	eventsOut    EventPublisher
	notifyClient NotifyServiceClient
	chatClient   ChatServiceClient
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
// eventsOut, notifyClient и chatClient могут быть nil,
// тогда соответствующие побочные эффекты пропускаются
func NewUseCase(
	bookingRepo BookingRepository,
	eventsOut EventPublisher,
	notifyClient NotifyServiceClient,
	chatClient ChatServiceClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		eventsOut:    eventsOut,
		notifyClient: notifyClient,
		chatClient:   chatClient,
		logger:       logger,
	}
}

// Execute выполняет use case взятия заявки
//
// Назначение исполнителя выполняется одним атомарным условным обновлением:
// из N одновременных вызовов побеждает ровно один, остальные получают
// ErrJobUnavailable. Побочные эффекты (чат, уведомления, события)
// выполняются после назначения; их сбой назначение не откатывает
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ClaimJob: booking id=%d by professional=%d", req.BookingID, req.ProfessionalID)

	if req.BookingID <= 0 || req.ProfessionalID <= 0 {
		return nil, fmt.Errorf("%w: booking id and professional id are required", ErrInvalidInput)
	}

	claimed, err := uc.bookingRepo.Claim(ctx, req.BookingID, req.ProfessionalID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("ClaimJob: booking id=%d not found", req.BookingID)
			return nil, ErrJobNotFound
		}
		if errors.Is(err, bookingRepo.ErrAlreadyClaimed) {
			uc.logger.Warn("ClaimJob: booking id=%d is no longer available", req.BookingID)
			return nil, ErrJobUnavailable
		}
		uc.logger.Error("ClaimJob: repository error for booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to claim job: %v", ErrInternal, err)
	}

	threadID := uc.ensureThread(ctx, claimed)
	uc.notifyParties(ctx, claimed)
	uc.publishClaimed(ctx, claimed)

	uc.logger.Info("ClaimJob: booking id=%d claimed by professional=%d", claimed.ID, req.ProfessionalID)
	return &Response{
		Booking:  models.FromDomainBooking(claimed),
		ThreadID: threadID,
	}, nil
}

// ensureThread создает чат-тред между клиентом и исполнителем
// Сбой логируется: тред можно создать позже при первом сообщении
func (uc *UseCase) ensureThread(ctx context.Context, b *domain.Booking) string {
	if uc.chatClient == nil || b.ProfessionalID == nil {
		return ""
	}

	threadID, err := uc.chatClient.EnsureThread(ctx, b.CustomerID, *b.ProfessionalID, b.ID)
	if err != nil {
		uc.logger.Error("ensureThread: failed to create thread for booking id=%d: %v", b.ID, err)
		return ""
	}
	return threadID
}

// notifyParties уведомляет клиента и исполнителя о назначении
func (uc *UseCase) notifyParties(ctx context.Context, b *domain.Booking) {
	if uc.notifyClient == nil {
		return
	}

	payload := map[string]interface{}{
		"bookingId":      b.ID,
		"professionalId": b.ProfessionalID,
		"scheduledStart": b.ScheduledStart.Format(time.RFC3339),
	}

	if err := uc.notifyClient.Notify(ctx, b.CustomerID, notifyservice.TypeJobClaimed, payload); err != nil {
		uc.logger.Warn("notifyParties: failed to notify customer=%d for booking id=%d: %v", b.CustomerID, b.ID, err)
	}
	if b.ProfessionalID != nil {
		if err := uc.notifyClient.Notify(ctx, *b.ProfessionalID, notifyservice.TypeJobClaimed, payload); err != nil {
			uc.logger.Warn("notifyParties: failed to notify professional=%d for booking id=%d: %v",
				*b.ProfessionalID, b.ID, err)
		}
	}
}

// publishClaimed публикует событие взятия заявки
func (uc *UseCase) publishClaimed(ctx context.Context, b *domain.Booking) {
	if uc.eventsOut == nil {
		return
	}

	err := uc.eventsOut.Publish(ctx, events.Event{
		Type:      events.TypeBookingClaimed,
		BookingID: b.ID,
		Payload: map[string]interface{}{
			"professionalId": b.ProfessionalID,
			"status":         string(b.Status),
			"version":        b.Version,
		},
		At: time.Now().UTC(),
	})
	if err != nil {
		uc.logger.Error("publishClaimed: failed to publish event for booking id=%d: %v", b.ID, err)
	}
}
