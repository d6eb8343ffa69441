package create_booking

import (
	"errors"
	"net/http"

	"github.com/freshnest-app/booking-core/internal/api/handlers"
	"github.com/freshnest-app/booking-core/internal/api/middleware"
	createBooking "github.com/freshnest-app/booking-core/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidStart       = "некорректный формат времени начала, ожидается RFC 3339"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgLockRequired       = "требуется действующий слот-лок"
	msgLockMismatch       = "слот-лок не соответствует запрошенному слоту"
	msgSlotTaken          = "выбранный временной слот уже занят"
	msgInvalidInput       = "некорректные данные бронирования"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	customerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := handlers.ValidateStruct(&req); err != nil {
		h.logger.Warn("POST /bookings - Validation failed: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(customerID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse scheduled start: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStart)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotTaken):
			h.logger.Warn("POST /bookings - Slot taken: customer_id=%d", customerID)
			handlers.RespondConflict(w, msgSlotTaken)

		case errors.Is(err, createBooking.ErrLockRequired):
			h.logger.Warn("POST /bookings - Lock required: customer_id=%d", customerID)
			handlers.RespondConflict(w, msgLockRequired)

		case errors.Is(err, createBooking.ErrLockMismatch):
			h.logger.Warn("POST /bookings - Lock mismatch: customer_id=%d", customerID)
			handlers.RespondConflict(w, msgLockMismatch)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: customer_id=%d, error=%v", customerID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: customer_id=%d, error=%v", customerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, customer_id=%d",
		result.ID, customerID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
