package services

import (
	"context"
	"errors"

	"github.com/ead/authuser/repositories"
)

// WithTransaction runs fn in a transaction, committing when it returns nil.
func WithTransaction(ctx context.Context, txMgr repositories.TransactionManager, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	_, err := WithTransactionResult(ctx, txMgr, func(ctx context.Context, tx repositories.Transaction) (struct{}, error) {
		return struct{}{}, fn(ctx, tx)
	})
	return err
}

// WithTransactionResult runs fn in a transaction and returns its result.
// fn gets the transaction's context, so repositories called with it join the
// transaction. The transaction is rolled back when fn fails or panics. Errors from fn are
// returned as is; a failed rollback is joined to them as an internal error.
func WithTransactionResult[T any](ctx context.Context, txMgr repositories.TransactionManager, fn func(ctx context.Context, tx repositories.Transaction) (T, error)) (result T, err error) {
	tx, err := txMgr.Begin(ctx)
	if err != nil {
		return result, WrapInternal("failed to begin transaction", err)
	}

	finished := false
	defer func() {
		if finished {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && err != nil {
			err = errors.Join(err, WrapInternal("failed to roll back transaction", rbErr))
		}
	}()

	result, err = fn(tx.Context(), tx)
	if err != nil {
		var zero T
		return zero, err
	}

	finished = true
	if err := tx.Commit(); err != nil {
		return result, WrapInternal("failed to commit transaction", err)
	}
	return result, nil
}
