package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/freshnest-app/booking-core/internal/api/handlers"
	"github.com/freshnest-app/booking-core/internal/domain"
	getAvailableSlots "github.com/freshnest-app/booking-core/internal/usecase/get_available_slots"
)

const (
	msgInvalidProfessionalID = "некорректный ID исполнителя"
	msgInvalidDate           = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidDuration       = "некорректная длительность услуги"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/professionals/{professionalId}/available-slots?date=YYYY-MM-DD&durationMinutes=N
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	professionalID, err := strconv.ParseInt(vars["professionalId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /professionals/{id}/available-slots - Invalid professional ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProfessionalID)
		return
	}

	date, err := time.Parse(domain.DateFormat, r.URL.Query().Get("date"))
	if err != nil {
		h.logger.Warn("GET /professionals/{id}/available-slots - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	durationMinutes, err := strconv.Atoi(r.URL.Query().Get("durationMinutes"))
	if err != nil || durationMinutes <= 0 {
		h.logger.Warn("GET /professionals/{id}/available-slots - Invalid duration: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDuration)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailableSlots.Request{
		ProfessionalID:  professionalID,
		Date:            date,
		DurationMinutes: durationMinutes,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidDate):
			h.logger.Warn("GET /professionals/{id}/available-slots - Invalid date: professional_id=%d", professionalID)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, getAvailableSlots.ErrInvalidDuration):
			h.logger.Warn("GET /professionals/{id}/available-slots - Invalid duration: professional_id=%d", professionalID)
			handlers.RespondBadRequest(w, msgInvalidDuration)

		default:
			h.logger.Error("GET /professionals/{id}/available-slots - Failed to get slots: professional_id=%d, error=%v",
				professionalID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /professionals/{id}/available-slots - Returned %d slots: professional_id=%d",
		len(result.Slots), professionalID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
