package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshnest-app/booking-core/internal/domain"
	"github.com/freshnest-app/booking-core/pkg/types"
)

type fakeBookingRepo struct {
	bookings []*domain.Booking
	err      error
}

func (r *fakeBookingRepo) GetByProfessionalWithFilter(_ context.Context, _ domain.BookingsFilter) ([]*domain.Booking, error) {
	return r.bookings, r.err
}

type fakeAvailabilityRepo struct {
	windows []*domain.AvailabilityWindow
	err     error
}

func (r *fakeAvailabilityRepo) GetActiveByProfessionalAndWeekday(_ context.Context, _ int64, _ time.Weekday) ([]*domain.AvailabilityWindow, error) {
	return r.windows, r.err
}

type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time {
	return p.now
}

type nopLogger struct{}

func (l *nopLogger) Info(format string, v ...interface{})  {}
func (l *nopLogger) Warn(format string, v ...interface{})  {}
func (l *nopLogger) Error(format string, v ...interface{}) {}

func newTestUseCase(bookingRepo BookingRepository, availabilityRepo AvailabilityRepository, now time.Time) *UseCase {
	uc := NewUseCase(bookingRepo, availabilityRepo, time.UTC, &nopLogger{})
	uc.SetTimeProvider(&fixedTimeProvider{now: now})
	return uc
}

func window(weekday time.Weekday, start, end string) *domain.AvailabilityWindow {
	return &domain.AvailabilityWindow{
		ID:             1,
		ProfessionalID: 10,
		Weekday:        weekday,
		StartTime:      types.TimeString(start),
		EndTime:        types.TimeString(end),
		IsActive:       true,
	}
}

func booking(start time.Time, durationMin int) *domain.Booking {
	return &domain.Booking{
		ID:             100,
		ProfessionalID: nil,
		Status:         domain.StatusConfirmed,
		ScheduledStart: start,
		DurationMin:    durationMin,
	}
}

func slotStarts(slots []Slot) []time.Time {
	starts := make([]time.Time, 0, len(slots))
	for _, s := range slots {
		starts = append(starts, s.StartAt)
	}
	return starts
}

func TestExecuteGeneratesSlotsWithinWindow(t *testing.T) {
	// Понедельник, запрос на сегодняшний день
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)

	uc := newTestUseCase(
		&fakeBookingRepo{},
		&fakeAvailabilityRepo{windows: []*domain.AvailabilityWindow{window(time.Monday, "09:00", "12:00")}},
		now,
	)

	resp, err := uc.Execute(context.Background(), &Request{
		ProfessionalID:  10,
		Date:            date,
		DurationMinutes: 60,
	})
	require.NoError(t, err)

	// Окно 09:00-12:00, услуга 60 минут: последний старт 11:00
	assert.Equal(t, []time.Time{
		time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
	}, slotStarts(resp.Slots))
	assert.Equal(t, "2026-03-02", resp.Date)
}

func TestExecuteExcludesBusyIntervals(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)

	uc := newTestUseCase(
		&fakeBookingRepo{bookings: []*domain.Booking{
			booking(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), 120),
		}},
		&fakeAvailabilityRepo{windows: []*domain.AvailabilityWindow{window(time.Monday, "09:00", "17:00")}},
		now,
	)

	resp, err := uc.Execute(context.Background(), &Request{
		ProfessionalID:  10,
		Date:            date,
		DurationMinutes: 90,
	})
	require.NoError(t, err)

	starts := slotStarts(resp.Slots)
	require.NotEmpty(t, starts)

	// 09:00-10:30 пересекается хвостом с бронированием 10:00-12:00,
	// поэтому до занятого интервала нет ни одного кандидата
	assert.Equal(t, time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC), starts[0])
	for _, s := range starts {
		assert.False(t, domain.Overlaps(
			s, s.Add(90*time.Minute),
			time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
		), "slot %s overlaps busy interval", s)
	}
}

func TestExecuteAppliesLeadTimeForToday(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	// Сейчас 08:10, минимальный отступ 2 часа: первый кандидат не раньше 10:30
	now := time.Date(2026, 3, 2, 8, 10, 0, 0, time.UTC)

	uc := newTestUseCase(
		&fakeBookingRepo{},
		&fakeAvailabilityRepo{windows: []*domain.AvailabilityWindow{window(time.Monday, "09:00", "17:00")}},
		now,
	)

	resp, err := uc.Execute(context.Background(), &Request{
		ProfessionalID:  10,
		Date:            date,
		DurationMinutes: 60,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Slots)
	assert.Equal(t, time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC), resp.Slots[0].StartAt)
}

func TestExecuteNoLeadTimeForFutureDate(t *testing.T) {
	date := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC)

	uc := newTestUseCase(
		&fakeBookingRepo{},
		&fakeAvailabilityRepo{windows: []*domain.AvailabilityWindow{window(time.Tuesday, "09:00", "11:00")}},
		now,
	)

	resp, err := uc.Execute(context.Background(), &Request{
		ProfessionalID:  10,
		Date:            date,
		DurationMinutes: 60,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Slots)
	assert.Equal(t, time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC), resp.Slots[0].StartAt)
}

func TestExecuteNoWindowsReturnsEmpty(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(&fakeBookingRepo{}, &fakeAvailabilityRepo{}, now)

	resp, err := uc.Execute(context.Background(), &Request{
		ProfessionalID:  10,
		Date:            date,
		DurationMinutes: 60,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
	assert.Equal(t, "2026-03-02", resp.Date)
}

func TestExecuteSlotsCarryPriceModifier(t *testing.T) {
	// Суббота, выходной коэффициент
	date := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC)

	uc := newTestUseCase(
		&fakeBookingRepo{},
		&fakeAvailabilityRepo{windows: []*domain.AvailabilityWindow{window(time.Saturday, "10:00", "12:00")}},
		now,
	)

	resp, err := uc.Execute(context.Background(), &Request{
		ProfessionalID:  10,
		Date:            date,
		DurationMinutes: 60,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Slots)
	for _, s := range resp.Slots {
		assert.Equal(t, 1.15, s.PriceModifier)
	}
}

func TestExecuteDateInterpretedInRegion(t *testing.T) {
	// Транспорт парсит дату в UTC; регион отстаёт от UTC.
	// Дата запроса - календарный день региона, а не сдвинутый instant
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // Понедельник
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, loc)

	uc := NewUseCase(
		&fakeBookingRepo{},
		&fakeAvailabilityRepo{windows: []*domain.AvailabilityWindow{window(time.Monday, "09:00", "11:00")}},
		loc,
		&nopLogger{},
	)
	uc.SetTimeProvider(&fixedTimeProvider{now: now})

	resp, err := uc.Execute(context.Background(), &Request{
		ProfessionalID:  10,
		Date:            date,
		DurationMinutes: 60,
	})
	require.NoError(t, err)

	assert.Equal(t, "2026-03-02", resp.Date)
	require.NotEmpty(t, resp.Slots)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 0, loc).UTC(), resp.Slots[0].StartAt)
}

func TestExecuteTodayNearMidnightNotRejected(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Поздний вечер в регионе: по UTC уже наступил следующий день
	now := time.Date(2026, 3, 2, 21, 0, 0, 0, loc)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	uc := NewUseCase(&fakeBookingRepo{}, &fakeAvailabilityRepo{}, loc, &nopLogger{})
	uc.SetTimeProvider(&fixedTimeProvider{now: now})

	resp, err := uc.Execute(context.Background(), &Request{
		ProfessionalID:  10,
		Date:            date,
		DurationMinutes: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", resp.Date)
}

func TestExecuteValidation(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		req     *Request
		wantErr error
	}{
		{
			name:    "past date",
			req:     &Request{ProfessionalID: 10, Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), DurationMinutes: 60},
			wantErr: ErrInvalidDate,
		},
		{
			name:    "zero date",
			req:     &Request{ProfessionalID: 10, DurationMinutes: 60},
			wantErr: ErrInvalidDate,
		},
		{
			name:    "non positive duration",
			req:     &Request{ProfessionalID: 10, Date: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), DurationMinutes: 0},
			wantErr: ErrInvalidDuration,
		},
		{
			name:    "missing professional",
			req:     &Request{Date: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), DurationMinutes: 60},
			wantErr: ErrInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := newTestUseCase(&fakeBookingRepo{}, &fakeAvailabilityRepo{}, now)
			_, err := uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
