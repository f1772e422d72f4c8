package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
)

const defaultSerializableAttempts = 3

var (
	// ErrTransaction ошибка начала или фиксации транзакции
	ErrTransaction = errors.New("txmanager: transaction error")

	// ErrSerializationFailure конкурентные транзакции не дали зафиксировать изменения за все попытки
	ErrSerializationFailure = errors.New("txmanager: serialization failure")
)

// Beginner источник транзакций (*dbmetrics.DB)
type Beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// TransactionManager выполняет функции внутри транзакции, передавая её через контекст
type TransactionManager struct {
	db       Beginner
	attempts int
}

// NewTransactionManager создаёт менеджер транзакций
func NewTransactionManager(db Beginner) *TransactionManager {
	return &TransactionManager{db: db, attempts: defaultSerializableAttempts}
}

// WithSerializableAttempts задаёт число попыток для сериализуемых транзакций
func (m *TransactionManager) WithSerializableAttempts(attempts int) *TransactionManager {
	if attempts > 0 {
		m.attempts = attempts
	}
	return m
}

// Do выполняет fn в транзакции READ COMMITTED
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

// DoReadOnly выполняет fn в транзакции только для чтения
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, fn)
}

// DoSerializable выполняет fn в SERIALIZABLE транзакции
// Ошибки сериализации (40001) и дедлоки (40P01) повторяются, fn должна быть идемпотентной.
// Когда попытки исчерпаны, ошибка оборачивается в ErrSerializationFailure.
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < m.attempts; attempt++ {
		err = m.run(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
		if err == nil || !IsSerializationFailure(err) {
			return err
		}
		// Вложенный вызов повторяет внешняя транзакция
		if dbmetrics.IsInTransaction(ctx) {
			return err
		}
	}
	return fmt.Errorf("%w: %d attempt(s): %w", ErrSerializationFailure, m.attempts, err)
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	// Вложенный вызов переиспользует внешнюю транзакцию
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrTransaction, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrTransaction, err)
	}

	return nil
}

// IsSerializationFailure проверяет, что Postgres отклонил транзакцию из-за конкурентного доступа
func IsSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "40001" || pqErr.Code == "40P01"
}
