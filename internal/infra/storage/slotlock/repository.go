package slotlock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/freshnest-app/booking-core/internal/domain"
	"github.com/freshnest-app/booking-core/pkg/dbmetrics"
	"github.com/freshnest-app/booking-core/pkg/psqlbuilder"
)

// pgUniqueViolation код ошибки PostgreSQL при нарушении уникальности
const pgUniqueViolation = "23505"

// Repository репозиторий slot lock
//
// Координация полностью в БД: уникальный индекс (professional_id, slot_key)
// превращает гонку двух клиентов за один слот в детерминированного
// единственного победителя. In-process структуры для корректности
// не используются - обработчики работают в независимых инстансах
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория slot lock
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Acquire пытается захватить лок на слот
//
// Атомарный upsert: вставка либо перехват строки, чей срок уже истёк.
// Живой чужой лок не перезаписывается - запись не проходит и возвращается
// ErrSlotContested. Просроченная строка перехватывается без ожидания sweep
func (r *Repository) Acquire(ctx context.Context, lock *domain.SlotLock) (*domain.SlotLock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("slot_locks").
		Columns(
			"id",
			"professional_id",
			"slot_key",
			"holder_id",
			"expires_at",
		).
		Values(
			lock.ID,
			lock.ProfessionalID,
			lock.SlotKey,
			lock.HolderID,
			lock.ExpiresAt,
		).
		Suffix(`ON CONFLICT (professional_id, slot_key) DO UPDATE
			SET id = EXCLUDED.id,
			    holder_id = EXCLUDED.holder_id,
			    expires_at = EXCLUDED.expires_at,
			    created_at = NOW()
			WHERE slot_locks.expires_at <= NOW()
			RETURNING created_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Acquire - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt)

	if err == sql.ErrNoRows {
		return nil, ErrSlotContested
	}
	if err != nil {
		// Прямое нарушение уникальности трактуем так же, как проигрыш гонки
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return nil, ErrSlotContested
		}
		return nil, fmt.Errorf("%w: Acquire - execute insert: %v", ErrExecQuery, err)
	}

	lock.CreatedAt = createdAt.Time
	return lock, nil
}

// GetByID получает лок по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.SlotLock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"professional_id",
		"slot_key",
		"holder_id",
		"expires_at",
		"created_at",
	).
		From("slot_locks").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var lock domain.SlotLock
	var createdAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&lock.ID,
		&lock.ProfessionalID,
		&lock.SlotKey,
		&lock.HolderID,
		&lock.ExpiresAt,
		&createdAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrLockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan lock: %v", ErrScanRow, err)
	}

	lock.SlotKey = lock.SlotKey.UTC()
	lock.CreatedAt = createdAt.Time

	return &lock, nil
}

// Release удаляет лок
// Удаление идемпотентно: отсутствующий лок не считается ошибкой
// (он мог истечь и быть удалён sweep-ом)
func (r *Repository) Release(ctx context.Context, id string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("slot_locks").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Release - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Release - execute delete: %v", ErrExecQuery, err)
	}

	return nil
}

// Extend продлевает живой лок на additional
// Просроченный или отсутствующий лок продлить нельзя - ErrLockNotFound
func (r *Repository) Extend(ctx context.Context, id string, additional time.Duration) (*domain.SlotLock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slot_locks").
		Set("expires_at", squirrel.Expr("expires_at + make_interval(secs => ?)", additional.Seconds())).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Expr("expires_at > NOW()")).
		Suffix("RETURNING professional_id, slot_key, holder_id, expires_at, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Extend - build update query: %v", ErrBuildQuery, err)
	}

	lock := domain.SlotLock{ID: id}
	var createdAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&lock.ProfessionalID,
		&lock.SlotKey,
		&lock.HolderID,
		&lock.ExpiresAt,
		&createdAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrLockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Extend - execute update: %v", ErrScanRow, err)
	}

	lock.SlotKey = lock.SlotKey.UTC()
	lock.CreatedAt = createdAt.Time

	return &lock, nil
}

// SweepExpired удаляет просроченные локи, возвращает количество удалённых
// Вызывается sweeper-ом по фиксированному интервалу: после удаления
// слот снова доступен для захвата
func (r *Repository) SweepExpired(ctx context.Context) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("slot_locks").
		Where(squirrel.Expr("expires_at <= NOW()")).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: SweepExpired - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: SweepExpired - execute delete: %v", ErrExecQuery, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: SweepExpired - get rows affected: %v", ErrExecQuery, err)
	}

	return int(deleted), nil
}
