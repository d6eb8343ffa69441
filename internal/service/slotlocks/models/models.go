package models

import (
	"time"

	"github.com/freshnest-app/booking-core/internal/domain"
)

// AcquireLockRequest запрос на захват слот-лока
type AcquireLockRequest struct {
	HolderID       int64     `json:"holderId"`
	ProfessionalID int64     `json:"professionalId"`
	SlotStart      time.Time `json:"slotStart"`
	TTLMinutes     int       `json:"ttlMinutes,omitempty"` // 0 - TTL по умолчанию
}

// ExtendLockRequest запрос на продление слот-лока
type ExtendLockRequest struct {
	HolderID          int64 `json:"holderId"`
	AdditionalMinutes int   `json:"additionalMinutes"`
}

// ReleaseLockRequest запрос на освобождение слот-лока
type ReleaseLockRequest struct {
	HolderID int64 `json:"holderId"`
}

// LockResponse ответ с данными слот-лока
type LockResponse struct {
	ID             string    `json:"id"`
	ProfessionalID int64     `json:"professionalId"`
	SlotStart      time.Time `json:"slotStart"`
	HolderID       int64     `json:"holderId"`
	ExpiresAt      time.Time `json:"expiresAt"`
	CreatedAt      time.Time `json:"createdAt"`
}

// FromDomainLock конвертирует domain модель в DTO
func FromDomainLock(l *domain.SlotLock) *LockResponse {
	if l == nil {
		return nil
	}
	return &LockResponse{
		ID:             l.ID,
		ProfessionalID: l.ProfessionalID,
		SlotStart:      l.SlotKey,
		HolderID:       l.HolderID,
		ExpiresAt:      l.ExpiresAt,
		CreatedAt:      l.CreatedAt,
	}
}
