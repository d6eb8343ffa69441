package acquire_slot_lock

import (
	"errors"
	"net/http"

	"github.com/freshnest-app/booking-core/internal/api/handlers"
	"github.com/freshnest-app/booking-core/internal/api/middleware"
	"github.com/freshnest-app/booking-core/internal/service/slotlocks"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidSlotStart   = "некорректный формат начала слота, ожидается RFC 3339"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgSlotContested      = "слот удерживается другим клиентом"
)

type Handler struct {
	service SlotLockService
	logger  Logger
}

func NewHandler(service SlotLockService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/slot-locks
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	holderID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /slot-locks - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req AcquireLockRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /slot-locks - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := handlers.ValidateStruct(&req); err != nil {
		h.logger.Warn("POST /slot-locks - Validation failed: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	serviceReq, err := req.ToServiceRequest(holderID)
	if err != nil {
		h.logger.Warn("POST /slot-locks - Failed to parse slot start: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotStart)
		return
	}

	result, err := h.service.Acquire(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, slotlocks.ErrSlotContested):
			h.logger.Warn("POST /slot-locks - Slot contested: holder_id=%d, professional_id=%d",
				holderID, req.ProfessionalID)
			handlers.RespondConflict(w, msgSlotContested)

		case errors.Is(err, slotlocks.ErrInvalidInput):
			h.logger.Warn("POST /slot-locks - Invalid input: holder_id=%d, error=%v", holderID, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /slot-locks - Failed to acquire lock: holder_id=%d, error=%v", holderID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /slot-locks - Lock acquired successfully: lock_id=%s, holder_id=%d", result.ID, holderID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
