package claim_job

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/freshnest-app/booking-core/internal/api/handlers"
	"github.com/freshnest-app/booking-core/internal/api/middleware"
	claimJob "github.com/freshnest-app/booking-core/internal/usecase/claim_job"
)

const (
	msgInvalidBookingID = "некорректный ID заявки"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgNotFound         = "заявка не найдена"
	msgJobUnavailable   = "заявка уже взята другим исполнителем"
)

type Handler struct {
	useCase ClaimJobUseCase
	logger  Logger
}

func NewHandler(useCase ClaimJobUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/claim
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/claim - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	professionalID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/claim - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &claimJob.Request{
		BookingID:      bookingID,
		ProfessionalID: professionalID,
	})
	if err != nil {
		switch {
		case errors.Is(err, claimJob.ErrJobNotFound):
			h.logger.Warn("POST /bookings/{id}/claim - Job not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, claimJob.ErrJobUnavailable):
			h.logger.Warn("POST /bookings/{id}/claim - Job unavailable: booking_id=%d, professional_id=%d",
				bookingID, professionalID)
			handlers.RespondConflict(w, msgJobUnavailable)

		case errors.Is(err, claimJob.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/claim - Invalid input: booking_id=%d", bookingID)
			handlers.RespondBadRequest(w, msgInvalidBookingID)

		default:
			h.logger.Error("POST /bookings/{id}/claim - Failed to claim job: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/claim - Job claimed successfully: booking_id=%d, professional_id=%d",
		bookingID, professionalID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
