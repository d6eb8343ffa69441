package get_customer_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/freshnest-app/booking-core/internal/api/handlers"
	"github.com/freshnest-app/booking-core/internal/api/middleware"
	"github.com/freshnest-app/booking-core/internal/service/bookings"
	"github.com/freshnest-app/booking-core/internal/service/bookings/models"
)

const (
	msgInvalidCustomerID = "некорректный ID клиента"
	msgMissingUserID     = "отсутствует ID пользователя"
	msgForbidden         = "доступ запрещен"
	msgInvalidStatus     = "некорректный статус бронирования"
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

// Handle GET /api/v1/customers/{customerId}/bookings?status=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	customerID, err := strconv.ParseInt(vars["customerId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /customers/{id}/bookings - Invalid customer ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidCustomerID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /customers/{id}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Клиент видит только собственную историю
	if userID != customerID {
		h.logger.Warn("GET /customers/{id}/bookings - Access denied: customer_id=%d, user_id=%d", customerID, userID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	req := &models.GetCustomerBookingsRequest{CustomerID: customerID}
	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}

	result, err := h.service.GetCustomerBookings(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /customers/{id}/bookings - Invalid status: customer_id=%d", customerID)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("GET /customers/{id}/bookings - Failed to get bookings: customer_id=%d, error=%v",
				customerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /customers/{id}/bookings - Returned %d bookings: customer_id=%d",
		len(result.Bookings), customerID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
