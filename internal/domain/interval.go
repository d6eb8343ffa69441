package domain

import "time"

// Overlaps проверяет пересечение двух полуоткрытых интервалов [aStart, aEnd) и [bStart, bEnd)
// Интервалы, граничащие концами (aEnd == bStart), НЕ пересекаются
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// PriceModifier возвращает ценовой коэффициент для указанного момента
// Вычисляется по календарным полям момента в регионе работы исполнителя:
// вызывающая сторона заранее переводит instant через t.In(loc)
//
// Выходные дни: 1.15, вечерние часы 17-20: 1.10, раннее утро (до 8): 1.05
func PriceModifier(t time.Time) float64 {
	switch {
	case t.Weekday() == time.Saturday || t.Weekday() == time.Sunday:
		return 1.15
	case t.Hour() >= 17 && t.Hour() <= 20:
		return 1.10
	case t.Hour() < 8:
		return 1.05
	default:
		return 1.0
	}
}

// SlotKey приводит начало слота к фиксированному бакету в UTC
// Ключ используется в ограничении уникальности slot lock:
// две попытки забронировать один слот получают одинаковый ключ
func SlotKey(start time.Time) time.Time {
	return start.UTC().Truncate(SlotStepMinutes * time.Minute)
}
