package availability

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/freshnest-app/booking-core/internal/domain"
	"github.com/freshnest-app/booking-core/pkg/dbmetrics"
	"github.com/freshnest-app/booking-core/pkg/psqlbuilder"
)

// Repository репозиторий окон доступности исполнителей
// Окна редактируются на стороне исполнителя вне ядра; здесь только чтение
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория окон доступности
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetActiveByProfessionalAndWeekday получает активные окна исполнителя
// на указанный день недели, отсортированные по времени начала
//
// Исполнитель без окон на этот день недели - пустой список, не ошибка
func (r *Repository) GetActiveByProfessionalAndWeekday(ctx context.Context, professionalID int64, weekday time.Weekday) ([]*domain.AvailabilityWindow, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"professional_id",
		"weekday",
		"start_time",
		"end_time",
		"is_active",
		"created_at",
		"updated_at",
	).
		From("availability_windows").
		Where(squirrel.Eq{
			"professional_id": professionalID,
			"weekday":         int(weekday),
			"is_active":       true,
		}).
		OrderBy("start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByProfessionalAndWeekday - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByProfessionalAndWeekday - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	windows := make([]*domain.AvailabilityWindow, 0)

	for rows.Next() {
		var w domain.AvailabilityWindow
		var weekdayInt int
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&w.ID,
			&w.ProfessionalID,
			&weekdayInt,
			&w.StartTime,
			&w.EndTime,
			&w.IsActive,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetActiveByProfessionalAndWeekday - scan row: %v", ErrScanRow, err)
		}

		w.Weekday = time.Weekday(weekdayInt)
		w.CreatedAt = createdAt.Time
		w.UpdatedAt = updatedAt.Time

		windows = append(windows, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetActiveByProfessionalAndWeekday - rows error: %v", ErrScanRow, err)
	}

	return windows, nil
}
