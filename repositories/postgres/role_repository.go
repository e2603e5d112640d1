package postgres

import (
	"context"
	"fmt"

	"github.com/ead/authuser/models"
	"github.com/ead/authuser/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoleRepository implements the repositories.RoleRepository interface
type RoleRepository struct {
	db     *DB
	tx     *Transaction
	logger *zap.Logger
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *DB, logger *zap.Logger) repositories.RoleRepository {
	return &RoleRepository{
		db:     db,
		logger: logger,
	}
}

// GetByName retrieves a role by name
func (r *RoleRepository) GetByName(ctx context.Context, name models.RoleType) (*models.Role, error) {
	role := &models.Role{}
	err := executor(ctx, r.db, r.tx).
		QueryRowContext(ctx, `SELECT id, name FROM roles WHERE name = $1`, name).
		Scan(&role.ID, &role.Name)
	if err != nil {
		return nil, mapError(fmt.Sprintf("failed to get role %s", name), err)
	}
	return role, nil
}

// AssignToUser grants a role to a user
func (r *RoleRepository) AssignToUser(ctx context.Context, userID, roleID uuid.UUID) error {
	query := `
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role_id) DO NOTHING
	`

	if _, err := executor(ctx, r.db, r.tx).ExecContext(ctx, query, userID, roleID); err != nil {
		return mapError("failed to assign role", err)
	}

	r.logger.Debug("role assigned",
		zap.String("user_id", userID.String()),
		zap.String("role_id", roleID.String()))
	return nil
}

// ListByUser retrieves the roles held by a user
func (r *RoleRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Role, error) {
	return listRolesByUser(ctx, executor(ctx, r.db, r.tx), userID)
}

func listRolesByUser(ctx context.Context, q querier, userID uuid.UUID) ([]models.Role, error) {
	query := `
		SELECT r.id, r.name
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.name
	`

	rows, err := q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, mapError("failed to query roles", err)
	}
	defer rows.Close()

	roles := []models.Role{}
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating role rows: %w", err)
	}

	return roles, nil
}

// WithTx returns a copy of the repository that runs every query in tx
func (r *RoleRepository) WithTx(tx repositories.Transaction) repositories.RoleRepository {
	return &RoleRepository{db: r.db, tx: asTransaction(tx), logger: r.logger}
}
