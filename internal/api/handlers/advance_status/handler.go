package advance_status

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/freshnest-app/booking-core/internal/api/handlers"
	"github.com/freshnest-app/booking-core/internal/api/middleware"
	"github.com/freshnest-app/booking-core/internal/domain"
	"github.com/freshnest-app/booking-core/internal/service/bookings"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
	msgInvalidStatus      = "некорректный статус бронирования"
	msgIllegalTransition  = "недопустимый переход статуса"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/status - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /bookings/{id}/status - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req AdvanceStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{id}/status - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := handlers.ValidateStruct(&req); err != nil {
		h.logger.Warn("PATCH /bookings/{id}/status - Validation failed: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.AdvanceStatus(r.Context(), bookingID, req.ToServiceRequest(userID))
	if err != nil {
		var conflict *domain.VersionConflict
		switch {
		case errors.As(err, &conflict):
			h.logger.Warn("PATCH /bookings/{id}/status - Version conflict: booking_id=%d, submitted=%d, current=%d",
				bookingID, conflict.SubmittedVersion, conflict.CurrentVersion)
			handlers.RespondConflictJSON(w, FromVersionConflict(conflict))

		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id}/status - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("PATCH /bookings/{id}/status - Access denied: booking_id=%d, user_id=%d", bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrInvalidStatus):
			h.logger.Warn("PATCH /bookings/{id}/status - Invalid status: booking_id=%d, status=%s", bookingID, req.Status)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		case errors.Is(err, bookings.ErrIllegalTransition):
			h.logger.Warn("PATCH /bookings/{id}/status - Illegal transition: booking_id=%d, status=%s",
				bookingID, req.Status)
			handlers.RespondUnprocessableEntity(w, msgIllegalTransition)

		default:
			h.logger.Error("PATCH /bookings/{id}/status - Failed to advance status: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/status - Status advanced successfully: booking_id=%d, status=%s, user_id=%d",
		bookingID, result.Status, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
