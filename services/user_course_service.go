package services

import (
	"context"
	"errors"

	"github.com/ead/authuser/models"
	"github.com/ead/authuser/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserCourseService manages course enrollments of users
type UserCourseService struct {
	users       repositories.UserRepository
	userCourses repositories.UserCourseRepository
	logger      *zap.Logger
}

// NewUserCourseService creates a new UserCourseService
func NewUserCourseService(users repositories.UserRepository, userCourses repositories.UserCourseRepository, logger *zap.Logger) *UserCourseService {
	return &UserCourseService{
		users:       users,
		userCourses: userCourses,
		logger:      logger,
	}
}

// Subscribe enrolls the user in a course
func (s *UserCourseService) Subscribe(ctx context.Context, userID, courseID uuid.UUID) (*models.UserCourse, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, mapRepoError(err, ErrUserNotFound.WithDetail("user_id", userID.String()), "failed to get user")
	}

	exists, err := s.userCourses.ExistsByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, WrapInternal("failed to check enrollment", err)
	}
	if exists {
		return nil, ErrAlreadySubscribed.WithDetail("course_id", courseID.String())
	}

	uc := models.NewUserCourse(userID, courseID)
	if err := s.userCourses.Create(ctx, uc); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrAlreadySubscribed.WithDetail("course_id", courseID.String())
		}
		return nil, WrapInternal("failed to create enrollment", err)
	}

	s.logger.Info("user subscribed to course",
		zap.String("user_id", userID.String()),
		zap.String("course_id", courseID.String()))
	return uc, nil
}

// ListCourses returns a page of the user's enrollments. Pages are zero-based.
func (s *UserCourseService) ListCourses(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.UserCourse, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, mapRepoError(err, ErrUserNotFound.WithDetail("user_id", userID.String()), "failed to get user")
	}

	courses, err := s.userCourses.ListByUser(ctx, userID, size, page*size)
	if err != nil {
		return nil, WrapInternal("failed to list enrollments", err)
	}
	return courses, nil
}

// DeleteByCourse removes every enrollment of a deleted course.
// Removing a course nobody is enrolled in is not an error.
func (s *UserCourseService) DeleteByCourse(ctx context.Context, courseID uuid.UUID) (int64, error) {
	removed, err := s.userCourses.DeleteByCourse(ctx, courseID)
	if err != nil {
		return 0, WrapInternal("failed to delete enrollments", err)
	}

	s.logger.Info("course enrollments removed",
		zap.String("course_id", courseID.String()),
		zap.Int64("removed", removed))
	return removed, nil
}
