package get_professional_bookings

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/freshnest-app/booking-core/internal/api/handlers"
	"github.com/freshnest-app/booking-core/internal/api/middleware"
	"github.com/freshnest-app/booking-core/internal/service/bookings"
	"github.com/freshnest-app/booking-core/internal/service/bookings/models"
)

const (
	msgInvalidProfessionalID = "некорректный ID исполнителя"
	msgMissingUserID         = "отсутствует ID пользователя"
	msgForbidden             = "доступ запрещен"
	msgInvalidPeriod         = "некорректный период, ожидается RFC 3339"
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

// Handle GET /api/v1/professionals/{professionalId}/bookings?from=&to=&onlyActive=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	professionalID, err := strconv.ParseInt(vars["professionalId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /professionals/{id}/bookings - Invalid professional ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProfessionalID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /professionals/{id}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Исполнитель видит только собственный календарь
	if userID != professionalID {
		h.logger.Warn("GET /professionals/{id}/bookings - Access denied: professional_id=%d, user_id=%d",
			professionalID, userID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	req := &models.GetProfessionalBookingsRequest{ProfessionalID: professionalID}

	query := r.URL.Query()
	if fromStr := query.Get("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidPeriod)
			return
		}
		req.From = &from
	}
	if toStr := query.Get("to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidPeriod)
			return
		}
		req.To = &to
	}
	req.OnlyActive = query.Get("onlyActive") == "true"

	result, err := h.service.GetProfessionalBookings(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /professionals/{id}/bookings - Invalid period: professional_id=%d", professionalID)
			handlers.RespondBadRequest(w, msgInvalidPeriod)

		default:
			h.logger.Error("GET /professionals/{id}/bookings - Failed to get bookings: professional_id=%d, error=%v",
				professionalID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /professionals/{id}/bookings - Returned %d bookings: professional_id=%d",
		len(result.Bookings), professionalID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
