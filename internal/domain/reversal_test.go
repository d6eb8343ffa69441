package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReversalBackoff(t *testing.T) {
	base := 30 * time.Second
	ceil := 30 * time.Minute

	tests := []struct {
		name     string
		attempts int
		want     time.Duration
	}{
		{name: "first retry", attempts: 0, want: 30 * time.Second},
		{name: "second retry doubles", attempts: 1, want: time.Minute},
		{name: "third retry", attempts: 2, want: 2 * time.Minute},
		{name: "growth is capped", attempts: 10, want: ceil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReversalBackoff(tt.attempts, base, ceil))
		})
	}
}

func TestAmountToCents(t *testing.T) {
	assert.Equal(t, int64(10000), AmountToCents(100.0))
	assert.Equal(t, int64(9999), AmountToCents(99.99))
	assert.Equal(t, int64(50), AmountToCents(0.50))
	assert.Equal(t, int64(0), AmountToCents(0))
}

func TestSlotLockHeldBy(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	lock := &SlotLock{HolderID: 42, ExpiresAt: now.Add(5 * time.Minute)}

	assert.True(t, lock.HeldBy(42, now))
	assert.False(t, lock.HeldBy(7, now), "another holder")
	assert.False(t, lock.HeldBy(42, now.Add(10*time.Minute)), "expired lock")
	assert.False(t, lock.HeldBy(42, lock.ExpiresAt), "expiry instant is already expired")
}

func TestClampLockTTL(t *testing.T) {
	assert.Equal(t, DefaultLockTTL, ClampLockTTL(0))
	assert.Equal(t, MinLockTTL, ClampLockTTL(10*time.Second))
	assert.Equal(t, MaxLockTTL, ClampLockTTL(time.Hour))
	assert.Equal(t, 5*time.Minute, ClampLockTTL(5*time.Minute))
}
