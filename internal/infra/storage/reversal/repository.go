package reversal

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

// reversalColumns полный список колонок таблицы payment_reversals
var reversalColumns = []string{
	"booking_id",
	"payment_ref",
	"amount_cents",
	"status",
	"attempts",
	"next_attempt_at",
	"last_error",
	"created_at",
	"updated_at",
}

// Repository репозиторий заявок на возврат платежей
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория возвратов
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает заявку на возврат
//
// Вызывается в одной транзакции с отменой бронирования. booking_id -
// первичный ключ: повторная вставка для того же бронирования молча
// пропускается, на одну отмену не бывает двух возвратов
func (r *Repository) Create(ctx context.Context, rev *domain.PaymentReversal) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("payment_reversals").
		Columns(
			"booking_id",
			"payment_ref",
			"amount_cents",
			"status",
			"attempts",
			"next_attempt_at",
		).
		Values(
			rev.BookingID,
			rev.PaymentRef,
			rev.AmountCents,
			rev.Status,
			rev.Attempts,
			rev.NextAttemptAt,
		).
		Suffix("ON CONFLICT (booking_id) DO NOTHING").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetDue получает pending заявки, чьё время попытки наступило
func (r *Repository) GetDue(ctx context.Context, now time.Time, limit int) ([]*domain.PaymentReversal, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(reversalColumns...).
		From("payment_reversals").
		Where(squirrel.Eq{"status": domain.ReversalPending}).
		Where(squirrel.LtOrEq{"next_attempt_at": now}).
		OrderBy("next_attempt_at ASC").
		Limit(uint64(limit)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetDue - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetDue - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	reversals := make([]*domain.PaymentReversal, 0)

	for rows.Next() {
		var rev domain.PaymentReversal
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&rev.BookingID,
			&rev.PaymentRef,
			&rev.AmountCents,
			&rev.Status,
			&rev.Attempts,
			&rev.NextAttemptAt,
			&rev.LastError,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetDue - scan row: %v", ErrScanRow, err)
		}

		rev.CreatedAt = createdAt.Time
		rev.UpdatedAt = updatedAt.Time

		reversals = append(reversals, &rev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetDue - rows error: %v", ErrScanRow, err)
	}

	return reversals, nil
}

// MarkSucceeded помечает возврат успешно выполненным
// Условие status=pending делает пометку идемпотентной при повторной отправке
func (r *Repository) MarkSucceeded(ctx context.Context, bookingID int64) error {
	return r.markStatus(ctx, bookingID, domain.ReversalSucceeded, nil, "MarkSucceeded")
}

// MarkFailed переводит возврат в постоянно-неуспешное состояние
// Состояние предназначено для операторов: бюджет попыток исчерпан
func (r *Repository) MarkFailed(ctx context.Context, bookingID int64, lastError string) error {
	return r.markStatus(ctx, bookingID, domain.ReversalFailed, &lastError, "MarkFailed")
}

// MarkRetry фиксирует неудачную попытку и планирует следующую
func (r *Repository) MarkRetry(ctx context.Context, bookingID int64, attempts int, nextAttemptAt time.Time, lastError string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("payment_reversals").
		Set("attempts", attempts).
		Set("next_attempt_at", nextAttemptAt).
		Set("last_error", lastError).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"booking_id": bookingID,
			"status":     domain.ReversalPending,
		}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkRetry - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkRetry - execute update: %v", ErrExecQuery, err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrReversalNotFound
	}

	return nil
}

func (r *Repository) markStatus(ctx context.Context, bookingID int64, status domain.ReversalStatus, lastError *string, method string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("payment_reversals").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"booking_id": bookingID,
			"status":     domain.ReversalPending,
		})

	if lastError != nil {
		updateBuilder = updateBuilder.Set("last_error", *lastError)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, method, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, method, err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrReversalNotFound
	}

	return nil
}
