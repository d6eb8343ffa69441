package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshnest-app/booking-core/internal/domain"
	bookingRepo "github.com/freshnest-app/booking-core/internal/infra/storage/booking"
	"github.com/freshnest-app/booking-core/internal/service/bookings/models"
	"github.com/freshnest-app/booking-core/pkg/ptr"
)

type fakeBookingRepo struct {
	booking *domain.Booking
	list    []*domain.Booking

	casErr    error
	casCalled bool
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if r.booking == nil || r.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return r.booking, nil
}

func (r *fakeBookingRepo) GetByCustomerID(_ context.Context, _ int64, _ *domain.BookingStatus) ([]*domain.Booking, error) {
	return r.list, nil
}

func (r *fakeBookingRepo) GetByProfessionalWithFilter(_ context.Context, _ domain.BookingsFilter) ([]*domain.Booking, error) {
	return r.list, nil
}

func (r *fakeBookingRepo) UpdateStatusCAS(_ context.Context, id int64, status domain.BookingStatus, expectedVersion int64) (*domain.Booking, error) {
	r.casCalled = true
	if r.casErr != nil {
		return nil, r.casErr
	}
	if r.booking.Version != expectedVersion {
		return nil, domain.NewVersionConflict("booking", id, "status", expectedVersion, r.booking.Version)
	}
	updated := *r.booking
	updated.Status = status
	updated.Version++
	return &updated, nil
}

type nopLogger struct{}

func (l *nopLogger) Info(format string, v ...interface{})  {}
func (l *nopLogger) Warn(format string, v ...interface{})  {}
func (l *nopLogger) Error(format string, v ...interface{}) {}

func testBooking() *domain.Booking {
	return &domain.Booking{
		ID:             1,
		CustomerID:     42,
		ProfessionalID: ptr.Ptr(int64(7)),
		Status:         domain.StatusAssigned,
		ScheduledStart: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		DurationMin:    120,
		Version:        2,
	}
}

func TestGetByIDAccess(t *testing.T) {
	repo := &fakeBookingRepo{booking: testBooking()}
	svc := NewService(repo, nil, nil, &nopLogger{})

	tests := []struct {
		name        string
		requesterID int64
		wantErr     error
	}{
		{name: "customer sees own booking", requesterID: 42},
		{name: "assigned professional sees booking", requesterID: 7},
		{name: "stranger denied", requesterID: 99, wantErr: ErrAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.GetByID(context.Background(), 1, tt.requesterID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(1), resp.ID)
		})
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc := NewService(&fakeBookingRepo{}, nil, nil, &nopLogger{})

	_, err := svc.GetByID(context.Background(), 1, 42)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetCustomerBookingsInvalidStatus(t *testing.T) {
	svc := NewService(&fakeBookingRepo{}, nil, nil, &nopLogger{})

	_, err := svc.GetCustomerBookings(context.Background(), &models.GetCustomerBookingsRequest{
		CustomerID: 42,
		Status:     ptr.Ptr("unknown"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetProfessionalBookingsInvalidPeriod(t *testing.T) {
	svc := NewService(&fakeBookingRepo{}, nil, nil, &nopLogger{})

	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)

	_, err := svc.GetProfessionalBookings(context.Background(), &models.GetProfessionalBookingsRequest{
		ProfessionalID: 7,
		From:           &from,
		To:             &to,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAdvanceStatusHappyPath(t *testing.T) {
	repo := &fakeBookingRepo{booking: testBooking()}
	svc := NewService(repo, nil, nil, &nopLogger{})

	resp, err := svc.AdvanceStatus(context.Background(), 1, &models.AdvanceStatusRequest{
		RequesterID: 7,
		Status:      "en_route",
		Version:     2,
	})
	require.NoError(t, err)
	assert.Equal(t, "en_route", resp.Status)
	assert.Equal(t, int64(3), resp.Version)
}

func TestAdvanceStatusIllegalTransition(t *testing.T) {
	repo := &fakeBookingRepo{booking: testBooking()}
	svc := NewService(repo, nil, nil, &nopLogger{})

	// Из assigned нельзя сразу в completed
	_, err := svc.AdvanceStatus(context.Background(), 1, &models.AdvanceStatusRequest{
		RequesterID: 7,
		Status:      "completed",
		Version:     2,
	})
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestAdvanceStatusRejectsCancellation(t *testing.T) {
	// Отмена записывает решение о возврате в одной транзакции
	// со сменой статуса; через смену статуса она недоступна
	repo := &fakeBookingRepo{booking: testBooking()}
	svc := NewService(repo, nil, nil, &nopLogger{})

	tests := []struct {
		name        string
		requesterID int64
	}{
		{name: "customer", requesterID: 42},
		{name: "assigned professional", requesterID: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AdvanceStatus(context.Background(), 1, &models.AdvanceStatusRequest{
				RequesterID: tt.requesterID,
				Status:      "cancelled",
				Version:     2,
			})
			assert.ErrorIs(t, err, ErrIllegalTransition)
			assert.False(t, repo.casCalled, "status must not be written")
		})
	}
}

func TestAdvanceStatusCustomerCannotDrive(t *testing.T) {
	// Прогресс статусов ведёт назначенный исполнитель, не клиент
	repo := &fakeBookingRepo{booking: testBooking()}
	svc := NewService(repo, nil, nil, &nopLogger{})

	_, err := svc.AdvanceStatus(context.Background(), 1, &models.AdvanceStatusRequest{
		RequesterID: 42,
		Status:      "en_route",
		Version:     2,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.False(t, repo.casCalled)
}

func TestAdvanceStatusVersionConflict(t *testing.T) {
	repo := &fakeBookingRepo{booking: testBooking()}
	svc := NewService(repo, nil, nil, &nopLogger{})

	_, err := svc.AdvanceStatus(context.Background(), 1, &models.AdvanceStatusRequest{
		RequesterID: 7,
		Status:      "en_route",
		Version:     1, // Устаревшая версия
	})

	var conflict *domain.VersionConflict
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(1), conflict.SubmittedVersion)
	assert.Equal(t, int64(2), conflict.CurrentVersion)
}

func TestAdvanceStatusInvalidStatus(t *testing.T) {
	repo := &fakeBookingRepo{booking: testBooking()}
	svc := NewService(repo, nil, nil, &nopLogger{})

	_, err := svc.AdvanceStatus(context.Background(), 1, &models.AdvanceStatusRequest{
		RequesterID: 7,
		Status:      "paused",
		Version:     2,
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestAdvanceStatusRepositoryError(t *testing.T) {
	repo := &fakeBookingRepo{booking: testBooking(), casErr: errors.New("connection reset")}
	svc := NewService(repo, nil, nil, &nopLogger{})

	_, err := svc.AdvanceStatus(context.Background(), 1, &models.AdvanceStatusRequest{
		RequesterID: 7,
		Status:      "en_route",
		Version:     2,
	})
	assert.ErrorIs(t, err, ErrInternal)
}
