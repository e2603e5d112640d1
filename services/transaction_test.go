package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ead/authuser/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTransactionManager is a mock implementation of TransactionManager
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	args := m.Called(ctx)
	if tx := args.Get(0); tx != nil {
		return tx.(repositories.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockTransaction is a mock implementation of Transaction
type MockTransaction struct {
	mock.Mock
}

func (m *MockTransaction) Commit() error {
	return m.Called().Error(0)
}

func (m *MockTransaction) Rollback() error {
	return m.Called().Error(0)
}

func (m *MockTransaction) Context() context.Context {
	return m.Called().Get(0).(context.Context)
}

type txCtxKey struct{}

// beginTx wires txMgr to hand out a transaction whose context is marked so
// tests can check fn received it.
func beginTx(txMgr *MockTransactionManager) (*MockTransaction, context.Context) {
	tx := new(MockTransaction)
	txCtx := context.WithValue(context.Background(), txCtxKey{}, "tx")
	txMgr.On("Begin", mock.Anything).Return(tx, nil)
	tx.On("Context").Return(txCtx)
	return tx, txCtx
}

func TestWithTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("commits and passes the transaction context", func(t *testing.T) {
		txMgr := new(MockTransactionManager)
		tx, txCtx := beginTx(txMgr)
		tx.On("Commit").Return(nil)

		err := WithTransaction(ctx, txMgr, func(got context.Context, _ repositories.Transaction) error {
			assert.Equal(t, txCtx, got)
			return nil
		})

		require.NoError(t, err)
		tx.AssertNotCalled(t, "Rollback")
		tx.AssertExpectations(t)
	})

	t.Run("rolls back and returns the error unchanged", func(t *testing.T) {
		txMgr := new(MockTransactionManager)
		tx, _ := beginTx(txMgr)
		tx.On("Rollback").Return(nil)
		opErr := ErrDuplicateEmail.WithDetail("email", "a@b.c")

		err := WithTransaction(ctx, txMgr, func(context.Context, repositories.Transaction) error {
			return opErr
		})

		assert.Same(t, opErr, err)
		tx.AssertNotCalled(t, "Commit")
		tx.AssertExpectations(t)
	})

	t.Run("begin failure is internal", func(t *testing.T) {
		txMgr := new(MockTransactionManager)
		txMgr.On("Begin", mock.Anything).Return(nil, errors.New("pool exhausted"))
		called := false

		err := WithTransaction(ctx, txMgr, func(context.Context, repositories.Transaction) error {
			called = true
			return nil
		})

		assert.False(t, called)
		assert.True(t, IsInternalError(err))
		assert.Contains(t, err.Error(), "failed to begin transaction")
	})

	t.Run("commit failure is internal and skips rollback", func(t *testing.T) {
		txMgr := new(MockTransactionManager)
		tx, _ := beginTx(txMgr)
		tx.On("Commit").Return(errors.New("serialization failure"))

		err := WithTransaction(ctx, txMgr, func(context.Context, repositories.Transaction) error { return nil })

		assert.True(t, IsInternalError(err))
		assert.Contains(t, err.Error(), "failed to commit transaction")
		tx.AssertNotCalled(t, "Rollback")
	})

	t.Run("rollback failure is joined to the original error", func(t *testing.T) {
		txMgr := new(MockTransactionManager)
		tx, _ := beginTx(txMgr)
		rbErr := errors.New("connection reset")
		tx.On("Rollback").Return(rbErr)

		err := WithTransaction(ctx, txMgr, func(context.Context, repositories.Transaction) error {
			return ErrRoleNotFound
		})

		assert.True(t, IsNotFoundError(err), "original error type wins")
		assert.ErrorIs(t, err, rbErr)
		assert.Contains(t, err.Error(), "failed to roll back transaction")
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		txMgr := new(MockTransactionManager)
		tx, _ := beginTx(txMgr)
		tx.On("Rollback").Return(nil)

		assert.Panics(t, func() {
			_ = WithTransaction(ctx, txMgr, func(context.Context, repositories.Transaction) error {
				panic("boom")
			})
		})
		tx.AssertCalled(t, "Rollback")
	})
}

func TestWithTransactionResult(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the result on commit", func(t *testing.T) {
		txMgr := new(MockTransactionManager)
		tx, _ := beginTx(txMgr)
		tx.On("Commit").Return(nil)

		got, err := WithTransactionResult(ctx, txMgr, func(context.Context, repositories.Transaction) (int, error) {
			return 42, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 42, got)
	})

	t.Run("discards the result on failure", func(t *testing.T) {
		txMgr := new(MockTransactionManager)
		tx, _ := beginTx(txMgr)
		tx.On("Rollback").Return(nil)

		got, err := WithTransactionResult(ctx, txMgr, func(context.Context, repositories.Transaction) (string, error) {
			return "partial", ErrAlreadyInstructor
		})

		assert.ErrorIs(t, err, ErrAlreadyInstructor)
		assert.Empty(t, got)
	})

	t.Run("keeps the result when commit fails", func(t *testing.T) {
		txMgr := new(MockTransactionManager)
		tx, _ := beginTx(txMgr)
		tx.On("Commit").Return(errors.New("commit failed"))

		got, err := WithTransactionResult(ctx, txMgr, func(context.Context, repositories.Transaction) (int, error) {
			return 7, nil
		})

		assert.Error(t, err)
		assert.Equal(t, 7, got)
	})
}
