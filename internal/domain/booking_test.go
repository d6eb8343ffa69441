package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/freshnest-app/booking-core/pkg/ptr"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from BookingStatus
		to   BookingStatus
		want bool
	}{
		{name: "pending to confirmed", from: StatusPending, to: StatusConfirmed, want: true},
		{name: "pending to assigned", from: StatusPending, to: StatusAssigned, want: true},
		{name: "confirmed to assigned", from: StatusConfirmed, to: StatusAssigned, want: true},
		{name: "assigned to en_route", from: StatusAssigned, to: StatusEnRoute, want: true},
		{name: "en_route to arrived", from: StatusEnRoute, to: StatusArrived, want: true},
		{name: "arrived to in_progress", from: StatusArrived, to: StatusInProgress, want: true},
		{name: "in_progress to completed", from: StatusInProgress, to: StatusCompleted, want: true},
		{name: "payment_failed back to confirmed", from: StatusPaymentFailed, to: StatusConfirmed, want: true},
		{name: "payment_failed to cancelled", from: StatusPaymentFailed, to: StatusCancelled, want: true},

		{name: "no skipping ahead", from: StatusConfirmed, to: StatusInProgress, want: false},
		{name: "no going back", from: StatusArrived, to: StatusEnRoute, want: false},
		{name: "completed is terminal", from: StatusCompleted, to: StatusCancelled, want: false},
		{name: "cancelled is terminal", from: StatusCancelled, to: StatusConfirmed, want: false},
		{name: "cancelling cancelled is illegal", from: StatusCancelled, to: StatusCancelled, want: false},
		{name: "unknown status", from: BookingStatus("draft"), to: StatusConfirmed, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestCanTransitionCancellableFromAnyNonTerminal(t *testing.T) {
	nonTerminal := []BookingStatus{
		StatusPending, StatusConfirmed, StatusAssigned,
		StatusEnRoute, StatusArrived, StatusInProgress, StatusPaymentFailed,
	}
	for _, s := range nonTerminal {
		assert.True(t, CanTransition(s, StatusCancelled), "status %s must be cancellable", s)
	}
}

func TestIsValidStatus(t *testing.T) {
	assert.True(t, IsValidStatus(StatusPending))
	assert.True(t, IsValidStatus(StatusPaymentFailed))
	assert.False(t, IsValidStatus(BookingStatus("draft")))
	assert.False(t, IsValidStatus(BookingStatus("")))
}

func TestBookingIsActive(t *testing.T) {
	b := &Booking{Status: StatusPending}
	assert.False(t, b.IsActive(), "pending jobs must not block the calendar")

	for _, s := range ActiveStatuses {
		b.Status = s
		assert.True(t, b.IsActive(), "status %s must block the calendar", s)
	}

	b.Status = StatusCompleted
	assert.False(t, b.IsActive())
	b.Status = StatusCancelled
	assert.False(t, b.IsActive())
}

func TestBookingIsUnassigned(t *testing.T) {
	b := &Booking{Status: StatusPending}
	assert.True(t, b.IsUnassigned())

	b.ProfessionalID = ptr.Ptr(int64(7))
	assert.False(t, b.IsUnassigned())

	b.ProfessionalID = nil
	b.Status = StatusConfirmed
	assert.False(t, b.IsUnassigned())
}

func TestBookingScheduledEnd(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	b := &Booking{ScheduledStart: start, DurationMin: 90}
	assert.Equal(t, start.Add(90*time.Minute), b.ScheduledEnd())
}
