package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ead/authuser/repositories"
	"go.uber.org/zap"
)

type txKey struct{}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// TransactionManager opens read-committed transactions on the pool
type TransactionManager struct {
	db     *DB
	logger *zap.Logger
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(db *DB, logger *zap.Logger) repositories.TransactionManager {
	return &TransactionManager{db: db, logger: logger}
}

// Begin starts a transaction. The returned transaction's Context carries it,
// so repositories called with that context run inside it.
func (tm *TransactionManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	sqlTx, err := tm.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	t := &Transaction{tx: sqlTx, logger: tm.logger}
	t.ctx = context.WithValue(ctx, txKey{}, t)
	tm.logger.Debug("transaction started")
	return t, nil
}

// Transaction is a database transaction. Once committed or rolled back,
// further Rollback calls are no-ops.
type Transaction struct {
	tx     *sql.Tx
	ctx    context.Context
	logger *zap.Logger
}

// Commit commits the transaction
func (t *Transaction) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	t.logger.Debug("transaction committed")
	return nil
}

// Rollback aborts the transaction
func (t *Transaction) Rollback() error {
	err := t.tx.Rollback()
	switch {
	case errors.Is(err, sql.ErrTxDone):
		return nil
	case err != nil:
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	t.logger.Debug("transaction rolled back")
	return nil
}

// Context returns a context carrying the transaction
func (t *Transaction) Context() context.Context {
	return t.ctx
}

// executor picks where a query runs: the transaction a repository was bound
// to with WithTx, then a transaction carried by ctx, then the pool.
func executor(ctx context.Context, db *DB, bound *Transaction) querier {
	if bound != nil {
		return bound.tx
	}
	if t, ok := ctx.Value(txKey{}).(*Transaction); ok {
		return t.tx
	}
	return db.DB
}

// asTransaction unwraps a repositories.Transaction created by this package
func asTransaction(tx repositories.Transaction) *Transaction {
	t, _ := tx.(*Transaction)
	return t
}
