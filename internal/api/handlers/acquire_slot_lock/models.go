package acquire_slot_lock

import (
	"time"

	"github.com/freshnest-app/booking-core/internal/service/slotlocks/models"
)

// AcquireLockRequest HTTP request model
type AcquireLockRequest struct {
	ProfessionalID int64  `json:"professionalId" validate:"required,gt=0"`
	SlotStart      string `json:"slotStart" validate:"required"` // RFC 3339
	TTLMinutes     int    `json:"ttlMinutes,omitempty" validate:"gte=0"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *AcquireLockRequest) ToServiceRequest(holderID int64) (*models.AcquireLockRequest, error) {
	slotStart, err := time.Parse(time.RFC3339, r.SlotStart)
	if err != nil {
		return nil, err
	}

	return &models.AcquireLockRequest{
		HolderID:       holderID,
		ProfessionalID: r.ProfessionalID,
		SlotStart:      slotStart,
		TTLMinutes:     r.TTLMinutes,
	}, nil
}
