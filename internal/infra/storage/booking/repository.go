package booking

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/freshnest-app/booking-core/internal/domain"
	"github.com/freshnest-app/booking-core/pkg/dbmetrics"
	"github.com/freshnest-app/booking-core/pkg/psqlbuilder"
)

// bookingColumns полный список колонок таблицы bookings
// Порядок колонок согласован с scanBooking
var bookingColumns = []string{
	"id",
	"customer_id",
	"professional_id",
	"service_type",
	"scheduled_start",
	"duration_minutes",
	"base_price",
	"addons_total",
	"platform_fee",
	"tax",
	"tip",
	"total_amount",
	"professional_payout",
	"status",
	"package_ref",
	"payment_ref",
	"refund_pct",
	"refund_amount",
	"cancellation_reason",
	"cancelled_by",
	"cancelled_at",
	"version",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Если в контексте передана активная транзакция, использует её.
// Создание с повторной проверкой пересечений должно идти в сериализуемой
// транзакции (usecase create_booking)
func (r *Repository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"customer_id",
			"professional_id",
			"service_type",
			"scheduled_start",
			"duration_minutes",
			"base_price",
			"addons_total",
			"platform_fee",
			"tax",
			"tip",
			"total_amount",
			"professional_payout",
			"status",
			"package_ref",
			"payment_ref",
		).
		Values(
			b.CustomerID,
			b.ProfessionalID,
			b.ServiceType,
			b.ScheduledStart,
			b.DurationMin,
			b.Money.BasePrice,
			b.Money.AddonsTotal,
			b.Money.PlatformFee,
			b.Money.Tax,
			b.Money.Tip,
			b.Money.Total,
			b.Money.ProfessionalPayout,
			b.Status,
			b.PackageRef,
			b.PaymentRef,
		).
		Suffix("RETURNING id, version, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&b.Version,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return b, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	// Внутри транзакции читаем с блокировкой строки: GetByID в транзакции
	// используется только мутирующими потоками (отмена, продвижение статуса)
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	b, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return b, nil
}

// GetByCustomerID получает бронирования клиента, новые первыми
func (r *Repository) GetByCustomerID(ctx context.Context, customerID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("scheduled_start DESC")

	// Фильтрация по статусу, если указан
	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomerID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomerID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetByProfessionalWithFilter получает бронирования исполнителя
//
// Фильтр по интервалу [From, To) отбирает бронирования, ПЕРЕСЕКАЮЩИЕСЯ
// с интервалом (полуоткрытые границы), а не попадающие в него целиком.
// OnlyActive оставляет
// только статусы, занимающие календарь (confirmed..in_progress).
//
// Внутри транзакции на конкретный интервал строки блокируются FOR UPDATE -
// это путь повторной проверки пересечений при создании бронирования
func (r *Repository) GetByProfessionalWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"professional_id": filter.ProfessionalID})

	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"scheduled_start": *filter.To})
	}
	if filter.From != nil {
		selectBuilder = selectBuilder.Where(
			squirrel.Expr("scheduled_start + make_interval(mins => duration_minutes) > ?", *filter.From),
		)
	}

	if filter.OnlyActive {
		activeStatuses := make([]string, len(domain.ActiveStatuses))
		for i, s := range domain.ActiveStatuses {
			activeStatuses[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": activeStatuses})
	}

	selectBuilder = selectBuilder.OrderBy("scheduled_start ASC")

	if dbmetrics.IsInTransaction(ctx) && filter.From != nil && filter.To != nil {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProfessionalWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProfessionalWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// Claim условная запись протокола взятия заявки
//
// Обновление проходит только если заявка всё ещё pending и без исполнителя -
// сравнение и запись выполняются одним атомарным UPDATE. Из N одновременных
// вызовов ровно один получает строку, остальные - ErrAlreadyClaimed
// (побеждает первая успешная атомарная запись, без очереди и FIFO-гарантий)
func (r *Repository) Claim(ctx context.Context, bookingID, professionalID int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("professional_id", professionalID).
		Set("status", domain.StatusConfirmed).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":              bookingID,
			"status":          domain.StatusPending,
			"professional_id": nil,
		}).
		Suffix("RETURNING " + strings.Join(bookingColumns, ", ")).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Claim - build update query: %v", ErrBuildQuery, err)
	}

	b, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		// Условие не прошло: либо заявки нет, либо её уже взяли
		if _, getErr := r.GetByID(ctx, bookingID); getErr != nil {
			return nil, getErr
		}
		return nil, ErrAlreadyClaimed
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Claim - execute update: %v", ErrScanRow, err)
	}

	return b, nil
}

// UpdateStatusCAS обновляет статус бронирования с оптимистичной проверкой версии
//
// Запись проходит только при совпадении версии; при устаревшей версии
// возвращается domain.VersionConflict с отправленной и актуальной версиями
func (r *Repository) UpdateStatusCAS(ctx context.Context, id int64, status domain.BookingStatus, expectedVersion int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":      id,
			"version": expectedVersion,
		}).
		Suffix("RETURNING " + strings.Join(bookingColumns, ", ")).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpdateStatusCAS - build update query: %v", ErrBuildQuery, err)
	}

	b, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		current, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, domain.NewVersionConflict("booking", id, "status", expectedVersion, current.Version)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateStatusCAS - execute update: %v", ErrScanRow, err)
	}

	return b, nil
}

// CancelWithRefund переводит бронирование в cancelled и фиксирует решение
// о возврате одной записью
//
// Переход статуса и решение о возврате коммитятся вместе: не существует
// наблюдаемого состояния "отменено без решения о возврате". Версия
// проверяется как у любой другой мутации
func (r *Repository) CancelWithRefund(
	ctx context.Context,
	id int64,
	expectedVersion int64,
	actor domain.CancelActor,
	reason string,
	decision domain.RefundDecision,
	now time.Time,
) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("refund_pct", decision.RefundPct).
		Set("refund_amount", decision.RefundAmount).
		Set("cancellation_reason", reason).
		Set("cancelled_by", actor).
		Set("cancelled_at", now).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":      id,
			"version": expectedVersion,
		}).
		Suffix("RETURNING " + strings.Join(bookingColumns, ", ")).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CancelWithRefund - build update query: %v", ErrBuildQuery, err)
	}

	b, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		current, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, domain.NewVersionConflict("booking", id, "status", expectedVersion, current.Version)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: CancelWithRefund - execute update: %v", ErrScanRow, err)
	}

	return b, nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanBooking сканирует одну строку в доменную модель
func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&b.ID,
		&b.CustomerID,
		&b.ProfessionalID,
		&b.ServiceType,
		&b.ScheduledStart,
		&b.DurationMin,
		&b.Money.BasePrice,
		&b.Money.AddonsTotal,
		&b.Money.PlatformFee,
		&b.Money.Tax,
		&b.Money.Tip,
		&b.Money.Total,
		&b.Money.ProfessionalPayout,
		&b.Status,
		&b.PackageRef,
		&b.PaymentRef,
		&b.RefundPct,
		&b.RefundAmount,
		&b.CancellationReason,
		&b.CancelledBy,
		&b.CancelledAt,
		&b.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.ScheduledStart = b.ScheduledStart.UTC()
	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}
