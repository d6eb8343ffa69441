package domain

import "fmt"

// VersionConflict описывает отклонённое оптимистичное обновление
//
// Возвращается любой конкурентной записью (compare-and-set), когда версия,
// переданная вызывающей стороной, отстала от сохранённой. Вызывающая сторона
// перечитывает запись и повторяет попытку с актуальной версией.
// Общая абстракция для всех мутируемых сущностей с конфликт-детекцией
type VersionConflict struct {
	Entity           string
	EntityID         int64
	Field            string
	SubmittedVersion int64
	CurrentVersion   int64
}

// Error реализует интерфейс error
func (c *VersionConflict) Error() string {
	return fmt.Sprintf("version conflict on %s id=%d field=%s: submitted=%d, current=%d",
		c.Entity, c.EntityID, c.Field, c.SubmittedVersion, c.CurrentVersion)
}

// NewVersionConflict создает описание конфликта версий
func NewVersionConflict(entity string, id int64, field string, submitted, current int64) *VersionConflict {
	return &VersionConflict{
		Entity:           entity,
		EntityID:         id,
		Field:            field,
		SubmittedVersion: submitted,
		CurrentVersion:   current,
	}
}
