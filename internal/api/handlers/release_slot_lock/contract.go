package release_slot_lock

import (
	"context"

	"github.com/freshnest-app/booking-core/internal/service/slotlocks/models"
)

type SlotLockService interface {
	Release(ctx context.Context, lockID string, req *models.ReleaseLockRequest) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
