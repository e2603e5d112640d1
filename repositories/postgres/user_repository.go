package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/ead/authuser/models"
	"github.com/ead/authuser/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const userColumns = `id, username, email, password, full_name, status, type, phone_number, cpf, image_url, created_at, updated_at`

// UserRepository implements the repositories.UserRepository interface
type UserRepository struct {
	db     *DB
	tx     *Transaction
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, logger *zap.Logger) repositories.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Password,
		&user.FullName,
		&user.Status,
		&user.Type,
		&user.PhoneNumber,
		&user.CPF,
		&user.ImageURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	q := executor(ctx, r.db, r.tx)
	_, err := q.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.Password,
		user.FullName,
		user.Status,
		user.Type,
		user.PhoneNumber,
		user.CPF,
		user.ImageURL,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return mapError("failed to create user", err)
	}

	r.logger.Debug("user created", zap.String("id", user.ID.String()), zap.String("username", user.Username))
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(executor(ctx, r.db, r.tx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(fmt.Sprintf("failed to get user %s", id), err)
	}

	if err := r.loadRoles(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(executor(ctx, r.db, r.tx).QueryRowContext(ctx, query, username))
	if err != nil {
		return nil, mapError(fmt.Sprintf("failed to get user %q", username), err)
	}

	if err := r.loadRoles(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) loadRoles(ctx context.Context, user *models.User) error {
	roles, err := listRolesByUser(ctx, executor(ctx, r.db, r.tx), user.ID)
	if err != nil {
		return err
	}
	user.Roles = roles
	return nil
}

// ExistsByUsername reports whether the username is taken
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
}

// ExistsByEmail reports whether the email is taken
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *UserRepository) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var exists bool
	if err := executor(ctx, r.db, r.tx).QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		return false, mapError("failed to check user existence", err)
	}
	return exists, nil
}

// whereClause renders filter as a WHERE clause with positional arguments
func whereClause(filter repositories.UserFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if filter.Type != "" {
		args = append(args, filter.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Email != "" {
		args = append(args, "%"+strings.ToLower(filter.Email)+"%")
		conds = append(conds, fmt.Sprintf("LOWER(email) LIKE $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List retrieves users matching filter
func (r *UserRepository) List(ctx context.Context, filter repositories.UserFilter, limit, offset int) ([]*models.User, error) {
	where, args := whereClause(filter)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)-1, len(args))

	q := executor(ctx, r.db, r.tx)
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("failed to query users", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

// Count returns the number of users matching filter
func (r *UserRepository) Count(ctx context.Context, filter repositories.UserFilter) (int, error) {
	where, args := whereClause(filter)

	var count int
	err := executor(ctx, r.db, r.tx).QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&count)
	if err != nil {
		return 0, mapError("failed to count users", err)
	}
	return count, nil
}

// Update updates a user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET full_name = $2,
		    phone_number = $3,
		    cpf = $4,
		    status = $5,
		    type = $6,
		    updated_at = $7
		WHERE id = $1
	`

	return r.execOne(ctx, "failed to update user", user.ID, query,
		user.ID,
		user.FullName,
		user.PhoneNumber,
		user.CPF,
		user.Status,
		user.Type,
		user.UpdatedAt,
	)
}

// UpdatePassword replaces the stored password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE users SET password = $2, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, "failed to update password", id, query, id, passwordHash)
}

// UpdateImage replaces the profile image url
func (r *UserRepository) UpdateImage(ctx context.Context, id uuid.UUID, imageURL string) error {
	query := `UPDATE users SET image_url = $2, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, "failed to update image", id, query, id, imageURL)
}

// Delete deletes a user
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.execOne(ctx, "failed to delete user", id, `DELETE FROM users WHERE id = $1`, id)
}

// execOne runs a statement that must affect exactly the row identified by id
func (r *UserRepository) execOne(ctx context.Context, op string, id uuid.UUID, query string, args ...interface{}) error {
	q := executor(ctx, r.db, r.tx)
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", op, id, repositories.ErrNotFound)
	}

	r.logger.Debug("user row changed", zap.String("op", op), zap.String("id", id.String()))
	return nil
}

// WithTx returns a copy of the repository that runs every query in tx
func (r *UserRepository) WithTx(tx repositories.Transaction) repositories.UserRepository {
	return &UserRepository{db: r.db, tx: asTransaction(tx), logger: r.logger}
}
