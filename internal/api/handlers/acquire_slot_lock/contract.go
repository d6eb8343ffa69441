package acquire_slot_lock

import (
	"context"

	"github.com/freshnest-app/booking-core/internal/service/slotlocks/models"
)

type SlotLockService interface {
	Acquire(ctx context.Context, req *models.AcquireLockRequest) (*models.LockResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
