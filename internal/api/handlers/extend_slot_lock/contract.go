package extend_slot_lock

import (
	"context"

	"github.com/freshnest-app/booking-core/internal/service/slotlocks/models"
)

type SlotLockService interface {
	Extend(ctx context.Context, lockID string, req *models.ExtendLockRequest) (*models.LockResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
