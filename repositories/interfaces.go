package repositories

import (
	"context"
	"errors"

	"github.com/ead/authuser/models"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert violates a unique constraint
	ErrDuplicate = errors.New("duplicate record")
)

// TransactionManager starts database transactions
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// UserFilter narrows a user listing. Empty fields match everything.
type UserFilter struct {
	Type   models.UserType
	Status models.UserStatus
	Email  string
}

// UserRepository handles user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user and its roles by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByUsername retrieves a user and its roles by username
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// ExistsByUsername reports whether the username is taken
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail reports whether the email is taken
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// List retrieves users matching filter, newest first, with pagination
	List(ctx context.Context, filter UserFilter, limit, offset int) ([]*models.User, error)

	// Count returns the number of users matching filter
	Count(ctx context.Context, filter UserFilter) (int, error)

	// Update updates profile fields, status and type
	Update(ctx context.Context, user *models.User) error

	// UpdatePassword replaces the stored password hash
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// UpdateImage replaces the profile image url
	UpdateImage(ctx context.Context, id uuid.UUID, imageURL string) error

	// Delete deletes a user
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) UserRepository
}

// RoleRepository handles role data operations
type RoleRepository interface {
	// GetByName retrieves a role by its authority name
	GetByName(ctx context.Context, name models.RoleType) (*models.Role, error)

	// AssignToUser grants a role to a user. Assigning a held role is a no-op.
	AssignToUser(ctx context.Context, userID, roleID uuid.UUID) error

	// ListByUser retrieves the roles held by a user, ordered by name
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Role, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) RoleRepository
}

// UserCourseRepository handles enrollment link operations
type UserCourseRepository interface {
	// Create creates a new enrollment
	Create(ctx context.Context, uc *models.UserCourse) error

	// ExistsByUserAndCourse reports whether the user is enrolled in the course
	ExistsByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (bool, error)

	// ListByUser retrieves a user's enrollments with pagination
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.UserCourse, error)

	// DeleteByCourse removes every enrollment for a course and returns how many were removed
	DeleteByCourse(ctx context.Context, courseID uuid.UUID) (int64, error)

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) UserCourseRepository
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users       UserRepository
	Roles       RoleRepository
	UserCourses UserCourseRepository
}
