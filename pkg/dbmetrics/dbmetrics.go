package dbmetrics

import (
	"context"
	"database/sql"
	"time"

	"github.com/freshnest-app/booking-core/pkg/metrics"
)

// DBExecutor общий интерфейс выполнения запросов
// Реализуется *sql.DB, *sql.Tx, *DB и *Tx
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// TxExecutor интерфейс транзакции
type TxExecutor interface {
	DBExecutor
	Commit() error
	Rollback() error
}

type ctxKey int

const executorKey ctxKey = iota

// WithExecutor кладет активную транзакцию в контекст
// Репозитории достают её через GetExecutor
func WithExecutor(ctx context.Context, tx DBExecutor) context.Context {
	return context.WithValue(ctx, executorKey, tx)
}

// GetExecutor возвращает executor из контекста (активную транзакцию),
// либо переданный по умолчанию
func GetExecutor(ctx context.Context, def DBExecutor) DBExecutor {
	if tx, ok := ctx.Value(executorKey).(DBExecutor); ok && tx != nil {
		return tx
	}
	return def
}

// IsInTransaction возвращает true, если в контексте есть активная транзакция
func IsInTransaction(ctx context.Context) bool {
	tx, ok := ctx.Value(executorKey).(DBExecutor)
	return ok && tx != nil
}

// DB обёртка над *sql.DB, собирающая метрики по каждому запросу
type DB struct {
	db        *sql.DB
	collector *metrics.Metrics
}

// WrapWithDefault оборачивает *sql.DB сборщиком метрик и запускает
// периодический сбор статистики connection pool до закрытия stopCh
func WrapWithDefault(db *sql.DB, collector *metrics.Metrics, serviceName string, stopCh <-chan struct{}) *DB {
	wrapped := &DB{db: db, collector: collector}

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				stats := db.Stats()
				collector.SetDBConnStats(stats.OpenConnections, stats.InUse, stats.Idle)
			}
		}
	}()

	return wrapped
}

// ExecContext выполняет запрос с измерением длительности
func (d *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := d.db.ExecContext(ctx, query, args...)
	d.collector.ObserveDBQuery("exec", time.Since(start), err)
	return res, err
}

// QueryContext выполняет запрос с измерением длительности
func (d *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := d.db.QueryContext(ctx, query, args...)
	d.collector.ObserveDBQuery("query", time.Since(start), err)
	return rows, err
}

// QueryRowContext выполняет запрос с измерением длительности
func (d *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := d.db.QueryRowContext(ctx, query, args...)
	d.collector.ObserveDBQuery("query_row", time.Since(start), nil)
	return row
}

// BeginTx начинает транзакцию, возвращая обёрнутый метриками executor
func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (TxExecutor, error) {
	tx, err := d.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, collector: d.collector}, nil
}

// Tx обёртка над *sql.Tx с метриками
type Tx struct {
	tx        *sql.Tx
	collector *metrics.Metrics
}

func (t *Tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := t.tx.ExecContext(ctx, query, args...)
	t.collector.ObserveDBQuery("tx_exec", time.Since(start), err)
	return res, err
}

func (t *Tx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.tx.QueryContext(ctx, query, args...)
	t.collector.ObserveDBQuery("tx_query", time.Since(start), err)
	return rows, err
}

func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := t.tx.QueryRowContext(ctx, query, args...)
	t.collector.ObserveDBQuery("tx_query_row", time.Since(start), nil)
	return row
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}
