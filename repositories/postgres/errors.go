package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ead/authuser/repositories"
	"github.com/lib/pq"
)

// uniqueViolation is the SQLSTATE for a unique constraint violation
const uniqueViolation pq.ErrorCode = "23505"

// mapError translates driver errors into repository sentinels while keeping
// the original error in the chain.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, repositories.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w: %s", op, repositories.ErrDuplicate, pqErr.Constraint)
	}

	return fmt.Errorf("%s: %w", op, err)
}
