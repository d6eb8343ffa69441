package get_available_slots

import "time"

// Request модель запроса на получение доступных слотов
type Request struct {
	ProfessionalID  int64     // ID исполнителя
	Date            time.Time // Дата для получения слотов (без времени, в таймзоне региона)
	DurationMinutes int       // Длительность услуги в минутах
}

// Response модель ответа со списком доступных слотов
type Response struct {
	ProfessionalID  int64  // ID исполнителя
	Date            string // Дата в формате "2006-01-02"
	DurationMinutes int    // Длительность услуги
	Slots           []Slot // Список доступных слотов
}

// Slot модель доступного слота
type Slot struct {
	StartAt       time.Time // Начало слота (UTC)
	PriceModifier float64   // Ценовой коэффициент слота
}
