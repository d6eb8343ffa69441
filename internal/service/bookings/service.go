package bookings

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

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo  BookingRepository
	eventsOut    EventPublisher
	notifyClient NotifyServiceClient
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
// eventsOut и notifyClient могут быть nil, тогда побочные эффекты пропускаются
func NewService(
	bookingRepo BookingRepository,
	eventsOut EventPublisher,
	notifyClient NotifyServiceClient,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		eventsOut:    eventsOut,
		notifyClient: notifyClient,
		logger:       logger,
	}
}

// GetByID получает бронирование по ID
// Пользователь может видеть только своё бронирование:
// как клиент или как назначенный исполнитель
func (s *Service) GetByID(ctx context.Context, id int64, requesterID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, requesterID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if !canSeeBooking(booking, requesterID) {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", requesterID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// GetCustomerBookings получает историю бронирований клиента
// Опционально фильтрует по статусу
func (s *Service) GetCustomerBookings(ctx context.Context, req *models.GetCustomerBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetCustomerBookings: fetching bookings for customer=%d, status=%v", req.CustomerID, req.Status)

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetCustomerBookings: invalid status=%s for customer=%d", *req.Status, req.CustomerID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	list, err := s.bookingRepo.GetByCustomerID(ctx, req.CustomerID, domainStatus)
	if err != nil {
		s.logger.Error("GetCustomerBookings: repository error for customer=%d: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: GetCustomerBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetCustomerBookings: fetched %d bookings for customer=%d", len(list), req.CustomerID)
	return models.FromDomainBookingList(list), nil
}

// GetProfessionalBookings получает бронирования исполнителя с фильтрацией
// Поддерживает фильтрацию по периоду пересечения и по активности
func (s *Service) GetProfessionalBookings(ctx context.Context, req *models.GetProfessionalBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetProfessionalBookings: fetching bookings for professional=%d, onlyActive=%v",
		req.ProfessionalID, req.OnlyActive)

	if req.From != nil && req.To != nil && !req.From.Before(*req.To) {
		s.logger.Warn("GetProfessionalBookings: invalid period for professional=%d", req.ProfessionalID)
		return nil, fmt.Errorf("%w: invalid period", ErrInvalidInput)
	}

	list, err := s.bookingRepo.GetByProfessionalWithFilter(ctx, req.ToDomainFilter())
	if err != nil {
		s.logger.Error("GetProfessionalBookings: repository error for professional=%d: %v", req.ProfessionalID, err)
		return nil, fmt.Errorf("%w: GetProfessionalBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetProfessionalBookings: fetched %d bookings for professional=%d", len(list), req.ProfessionalID)
	return models.FromDomainBookingList(list), nil
}

// AdvanceStatus переводит бронирование в новый статус
// Переход проверяется по закрытой таблице переходов жизненного цикла,
// обновление защищено optimistic concurrency по версии из запроса.
// При конфликте версий возвращается *domain.VersionConflict
//
// Прогресс статусов ведёт назначенный исполнитель. Перевод в cancelled
// через эту операцию запрещён: отмена записывает решение о возврате
// в одной транзакции со сменой статуса и идёт через операцию отмены
func (s *Service) AdvanceStatus(ctx context.Context, bookingID int64, req *models.AdvanceStatusRequest) (*models.BookingResponse, error) {
	s.logger.Info("AdvanceStatus: booking id=%d -> status=%s by user=%d, version=%d",
		bookingID, req.Status, req.RequesterID, req.Version)

	newStatus, err := models.ToDomainBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("AdvanceStatus: invalid status=%s for booking id=%d", req.Status, bookingID)
		return nil, ErrInvalidStatus
	}

	if newStatus == domain.StatusCancelled {
		s.logger.Warn("AdvanceStatus: cancellation requested via status update for booking id=%d", bookingID)
		return nil, fmt.Errorf("%w: cancellation is a separate operation", ErrIllegalTransition)
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("AdvanceStatus: booking id=%d not found", bookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("AdvanceStatus: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: AdvanceStatus - repository error: %v", ErrInternal, err)
	}

	if booking.ProfessionalID == nil || *booking.ProfessionalID != req.RequesterID {
		s.logger.Warn("AdvanceStatus: access denied for user=%d to booking id=%d", req.RequesterID, bookingID)
		return nil, ErrAccessDenied
	}

	if !domain.CanTransition(booking.Status, newStatus) {
		s.logger.Warn("AdvanceStatus: illegal transition %s -> %s for booking id=%d",
			booking.Status, newStatus, bookingID)
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, booking.Status, newStatus)
	}

	updated, err := s.bookingRepo.UpdateStatusCAS(ctx, bookingID, newStatus, req.Version)
	if err != nil {
		var conflict *domain.VersionConflict
		if errors.As(err, &conflict) {
			s.logger.Warn("AdvanceStatus: version conflict for booking id=%d: submitted=%d current=%d",
				bookingID, conflict.SubmittedVersion, conflict.CurrentVersion)
			return nil, err
		}
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("AdvanceStatus: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: AdvanceStatus - repository error: %v", ErrInternal, err)
	}

	s.publishStatusChanged(ctx, updated, booking.Status)
	s.notifyStatusChanged(ctx, updated)

	s.logger.Info("AdvanceStatus: booking id=%d moved to status=%s, version=%d",
		bookingID, updated.Status, updated.Version)
	return models.FromDomainBooking(updated), nil
}

// Вспомогательные методы

// canSeeBooking проверяет право пользователя видеть бронирование
func canSeeBooking(b *domain.Booking, requesterID int64) bool {
	if b.CustomerID == requesterID {
		return true
	}
	return b.ProfessionalID != nil && *b.ProfessionalID == requesterID
}

// publishStatusChanged публикует событие смены статуса
// Ошибка публикации логируется и в ответ не попадает
func (s *Service) publishStatusChanged(ctx context.Context, b *domain.Booking, from domain.BookingStatus) {
	if s.eventsOut == nil {
		return
	}

	err := s.eventsOut.Publish(ctx, events.Event{
		Type:      events.TypeBookingStatusChanged,
		BookingID: b.ID,
		Payload: map[string]interface{}{
			"from":    string(from),
			"to":      string(b.Status),
			"version": b.Version,
		},
		At: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("publishStatusChanged: failed to publish event for booking id=%d: %v", b.ID, err)
	}
}

// notifyStatusChanged уведомляет клиента о смене статуса
func (s *Service) notifyStatusChanged(ctx context.Context, b *domain.Booking) {
	if s.notifyClient == nil {
		return
	}

	err := s.notifyClient.Notify(ctx, b.CustomerID, notifyservice.TypeStatusChanged, map[string]interface{}{
		"bookingId": b.ID,
		"status":    string(b.Status),
	})
	if err != nil {
		s.logger.Warn("notifyStatusChanged: failed to notify customer=%d for booking id=%d: %v",
			b.CustomerID, b.ID, err)
	}
}
