package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/freshnest-app/booking-core/pkg/dbmetrics"
)

// pgSerializationFailure код ошибки PostgreSQL при конфликте сериализации
const pgSerializationFailure = "40001"

// maxSerializableRetries максимальное число повторов сериализуемой транзакции
const maxSerializableRetries = 3

var (
	// ErrTransaction возвращается при ошибках управления транзакцией
	ErrTransaction = errors.New("txmanager: transaction error")
)

// TxBeginner интерфейс источника транзакций, реализуется *dbmetrics.DB
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// TransactionManager менеджер транзакций поверх обёрнутой метриками БД
// Активная транзакция передается в репозитории через контекст
type TransactionManager struct {
	db TxBeginner
}

// NewTransactionManager создает новый менеджер транзакций
func NewTransactionManager(db TxBeginner) *TransactionManager {
	return &TransactionManager{db: db}
}

// Do выполняет fn в транзакции с уровнем изоляции по умолчанию
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{}, fn)
}

// DoSerializable выполняет fn в сериализуемой транзакции
// Конфликты сериализации (40001) повторяются до maxSerializableRetries раз
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < maxSerializableRetries; attempt++ {
		err = m.run(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
		if err == nil || !isSerializationFailure(err) {
			return err
		}
	}
	return err
}

// DoReadOnly выполняет fn в read-only транзакции
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrTransaction, err)
	}

	txCtx := dbmetrics.WithExecutor(ctx, tx)

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w: rollback after %v: %v", ErrTransaction, err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrTransaction, err)
	}

	return nil
}

// isSerializationFailure определяет конфликт сериализации PostgreSQL
func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgSerializationFailure
	}
	return false
}
