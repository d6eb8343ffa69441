package get_available_slots

import (
	"time"

	getAvailableSlots "github.com/freshnest-app/booking-core/internal/usecase/get_available_slots"
)

// SlotResponse HTTP модель доступного слота
type SlotResponse struct {
	StartAt       time.Time `json:"startAt"`
	PriceModifier float64   `json:"priceModifier"`
}

// AvailableSlotsResponse HTTP модель списка доступных слотов
type AvailableSlotsResponse struct {
	ProfessionalID  int64          `json:"professionalId"`
	Date            string         `json:"date"`
	DurationMinutes int            `json:"durationMinutes"`
	Slots           []SlotResponse `json:"slots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP модель
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, SlotResponse{
			StartAt:       s.StartAt,
			PriceModifier: s.PriceModifier,
		})
	}
	return &AvailableSlotsResponse{
		ProfessionalID:  resp.ProfessionalID,
		Date:            resp.Date,
		DurationMinutes: resp.DurationMinutes,
		Slots:           slots,
	}
}
