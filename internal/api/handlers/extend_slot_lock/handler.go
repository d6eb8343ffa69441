package extend_slot_lock

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/freshnest-app/booking-core/internal/api/handlers"
	"github.com/freshnest-app/booking-core/internal/api/middleware"
	"github.com/freshnest-app/booking-core/internal/service/slotlocks"
	"github.com/freshnest-app/booking-core/internal/service/slotlocks/models"
)

const (
	msgInvalidLockID      = "некорректный ID лока"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "лок не найден или истёк"
	msgForbidden          = "доступ запрещен"
)

// ExtendLockRequest HTTP request model
type ExtendLockRequest struct {
	AdditionalMinutes int `json:"additionalMinutes" validate:"required,gt=0"`
}

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

// Handle PATCH /api/v1/slot-locks/{lockId}/extend
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	lockID := vars["lockId"]
	if lockID == "" {
		h.logger.Warn("PATCH /slot-locks/{id}/extend - Missing lock ID")
		handlers.RespondBadRequest(w, msgInvalidLockID)
		return
	}

	holderID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /slot-locks/{id}/extend - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req ExtendLockRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /slot-locks/{id}/extend - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := handlers.ValidateStruct(&req); err != nil {
		h.logger.Warn("PATCH /slot-locks/{id}/extend - Validation failed: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Extend(r.Context(), lockID, &models.ExtendLockRequest{
		HolderID:          holderID,
		AdditionalMinutes: req.AdditionalMinutes,
	})
	if err != nil {
		switch {
		case errors.Is(err, slotlocks.ErrLockNotFound):
			h.logger.Warn("PATCH /slot-locks/{id}/extend - Lock not found: lock_id=%s", lockID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, slotlocks.ErrAccessDenied):
			h.logger.Warn("PATCH /slot-locks/{id}/extend - Access denied: lock_id=%s, holder_id=%d", lockID, holderID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, slotlocks.ErrInvalidInput):
			h.logger.Warn("PATCH /slot-locks/{id}/extend - Invalid input: lock_id=%s, error=%v", lockID, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("PATCH /slot-locks/{id}/extend - Failed to extend lock: lock_id=%s, error=%v", lockID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /slot-locks/{id}/extend - Lock extended successfully: lock_id=%s, expires_at=%s",
		lockID, result.ExpiresAt)
	handlers.RespondJSON(w, http.StatusOK, result)
}
