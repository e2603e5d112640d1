package models

import (
	"time"

	"github.com/google/uuid"
)

// UserCourse links a user to a course they are enrolled in
type UserCourse struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CourseID  uuid.UUID `json:"course_id" db:"course_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the UserCourse model
func (UserCourse) TableName() string {
	return "user_courses"
}

// NewUserCourse creates a new enrollment link
func NewUserCourse(userID, courseID uuid.UUID) *UserCourse {
	return &UserCourse{
		ID:        uuid.New(),
		UserID:    userID,
		CourseID:  courseID,
		CreatedAt: time.Now().UTC(),
	}
}
