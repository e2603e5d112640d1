package postgres

import (
	"context"
	"fmt"

	"github.com/ead/authuser/models"
	"github.com/ead/authuser/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserCourseRepository implements the repositories.UserCourseRepository interface
type UserCourseRepository struct {
	db     *DB
	tx     *Transaction
	logger *zap.Logger
}

// NewUserCourseRepository creates a new enrollment repository
func NewUserCourseRepository(db *DB, logger *zap.Logger) repositories.UserCourseRepository {
	return &UserCourseRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new enrollment
func (r *UserCourseRepository) Create(ctx context.Context, uc *models.UserCourse) error {
	query := `
		INSERT INTO user_courses (id, user_id, course_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := executor(ctx, r.db, r.tx).ExecContext(ctx, query, uc.ID, uc.UserID, uc.CourseID, uc.CreatedAt)
	if err != nil {
		return mapError("failed to create enrollment", err)
	}

	r.logger.Debug("enrollment created",
		zap.String("user_id", uc.UserID.String()),
		zap.String("course_id", uc.CourseID.String()))
	return nil
}

// ExistsByUserAndCourse reports whether the user is enrolled in the course
func (r *UserCourseRepository) ExistsByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM user_courses WHERE user_id = $1 AND course_id = $2)`

	var exists bool
	if err := executor(ctx, r.db, r.tx).QueryRowContext(ctx, query, userID, courseID).Scan(&exists); err != nil {
		return false, mapError("failed to check enrollment", err)
	}
	return exists, nil
}

// ListByUser retrieves a user's enrollments
func (r *UserCourseRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.UserCourse, error) {
	query := `
		SELECT id, user_id, course_id, created_at
		FROM user_courses
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := executor(ctx, r.db, r.tx).QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, mapError("failed to query enrollments", err)
	}
	defer rows.Close()

	var links []*models.UserCourse
	for rows.Next() {
		uc := &models.UserCourse{}
		if err := rows.Scan(&uc.ID, &uc.UserID, &uc.CourseID, &uc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		links = append(links, uc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating enrollment rows: %w", err)
	}

	return links, nil
}

// DeleteByCourse removes every enrollment for a course
func (r *UserCourseRepository) DeleteByCourse(ctx context.Context, courseID uuid.UUID) (int64, error) {
	result, err := executor(ctx, r.db, r.tx).ExecContext(ctx, `DELETE FROM user_courses WHERE course_id = $1`, courseID)
	if err != nil {
		return 0, mapError("failed to delete enrollments", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	r.logger.Debug("enrollments deleted",
		zap.String("course_id", courseID.String()),
		zap.Int64("count", n))
	return n, nil
}

// WithTx returns a copy of the repository that runs every query in tx
func (r *UserCourseRepository) WithTx(tx repositories.Transaction) repositories.UserCourseRepository {
	return &UserCourseRepository{db: r.db, tx: asTransaction(tx), logger: r.logger}
}
