package advance_status

import (
	"github.com/freshnest-app/booking-core/internal/domain"
	"github.com/freshnest-app/booking-core/internal/service/bookings/models"
)

// AdvanceStatusRequest HTTP request model
type AdvanceStatusRequest struct {
	Status  string `json:"status" validate:"required"`
	Version int64  `json:"version" validate:"gte=0"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *AdvanceStatusRequest) ToServiceRequest(requesterID int64) *models.AdvanceStatusRequest {
	return &models.AdvanceStatusRequest{
		RequesterID: requesterID,
		Status:      r.Status,
		Version:     r.Version,
	}
}

// VersionConflictResponse тело ответа при конфликте версий
// Клиент перечитывает бронирование и повторяет запрос с актуальной версией
type VersionConflictResponse struct {
	Error            string `json:"error"`
	SubmittedVersion int64  `json:"submittedVersion"`
	CurrentVersion   int64  `json:"currentVersion"`
}

// FromVersionConflict конвертирует domain конфликт в HTTP модель
func FromVersionConflict(c *domain.VersionConflict) *VersionConflictResponse {
	return &VersionConflictResponse{
		Error:            "версия бронирования устарела",
		SubmittedVersion: c.SubmittedVersion,
		CurrentVersion:   c.CurrentVersion,
	}
}
