package domain

import "time"

// SlotLock эфемерная резервация слота на время оформления бронирования
//
// Инвариант уникальности: не более одного живого (непросроченного) лока
// на пару (ProfessionalID, SlotKey). Лок не гарантирует успех бронирования -
// перед созданием бронирования проверка пересечений выполняется повторно
type SlotLock struct {
	ID             string // UUID
	ProfessionalID int64
	SlotKey        time.Time // Начало слота, приведённое к бакету (UTC)
	HolderID       int64     // Клиент, оформляющий бронирование
	ExpiresAt      time.Time
	CreatedAt      time.Time
}

// IsExpired возвращает true, если срок лока истёк
func (l *SlotLock) IsExpired(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}

// HeldBy возвращает true, если лок живой и принадлежит holder
func (l *SlotLock) HeldBy(holderID int64, now time.Time) bool {
	return l.HolderID == holderID && !l.IsExpired(now)
}

// ClampLockTTL приводит запрошенный TTL к допустимым границам
// Нулевой TTL заменяется значением по умолчанию
func ClampLockTTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return DefaultLockTTL
	}
	if ttl < MinLockTTL {
		return MinLockTTL
	}
	if ttl > MaxLockTTL {
		return MaxLockTTL
	}
	return ttl
}
