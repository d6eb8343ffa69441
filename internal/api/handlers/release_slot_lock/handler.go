package release_slot_lock

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
	msgInvalidLockID = "некорректный ID лока"
	msgMissingUserID = "отсутствует ID пользователя"
	msgForbidden     = "доступ запрещен"
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

// Handle DELETE /api/v1/slot-locks/{lockId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	lockID := vars["lockId"]
	if lockID == "" {
		h.logger.Warn("DELETE /slot-locks/{id} - Missing lock ID")
		handlers.RespondBadRequest(w, msgInvalidLockID)
		return
	}

	holderID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("DELETE /slot-locks/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	err := h.service.Release(r.Context(), lockID, &models.ReleaseLockRequest{HolderID: holderID})
	if err != nil {
		switch {
		case errors.Is(err, slotlocks.ErrAccessDenied):
			h.logger.Warn("DELETE /slot-locks/{id} - Access denied: lock_id=%s, holder_id=%d", lockID, holderID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("DELETE /slot-locks/{id} - Failed to release lock: lock_id=%s, error=%v", lockID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /slot-locks/{id} - Lock released successfully: lock_id=%s, holder_id=%d", lockID, holderID)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
