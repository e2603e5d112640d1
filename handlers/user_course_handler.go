package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ead/authuser/internal/observability"
	"github.com/ead/authuser/models"
	"github.com/ead/authuser/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CourseIDParam is the URL parameter naming a course
const CourseIDParam = "courseId"

// SubscribeRequest represents a request to enroll a user in a course
type SubscribeRequest struct {
	CourseID uuid.UUID `json:"course_id" validate:"required"`
}

// UserCourseResponse represents an enrollment in API responses
type UserCourseResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CourseID  uuid.UUID `json:"course_id"`
	CreatedAt string    `json:"created_at"`
}

// UserCourseService defines the interface for enrollment operations
type UserCourseService interface {
	Subscribe(ctx context.Context, userID, courseID uuid.UUID) (*models.UserCourse, error)
	ListCourses(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.UserCourse, error)
	DeleteByCourse(ctx context.Context, courseID uuid.UUID) (int64, error)
}

// UserCourseHandler handles enrollment requests
type UserCourseHandler struct {
	service UserCourseService
	logger  *zap.Logger
}

// NewUserCourseHandler creates a new UserCourseHandler
func NewUserCourseHandler(service UserCourseService, logger *zap.Logger) *UserCourseHandler {
	return &UserCourseHandler{
		service: service,
		logger:  logger,
	}
}

// HandleList handles GET /users/{userId}/courses
func (h *UserCourseHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	logger := observability.ForRequest(r.Context(), h.logger)

	userID, err := pathUUID(r, UserIDParam)
	if err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	page, size := pagination(r)
	courses, err := h.service.ListCourses(r.Context(), userID, page, size)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	responses := make([]UserCourseResponse, len(courses))
	for i, uc := range courses {
		responses[i] = userCourseToResponse(uc)
	}

	_ = utils.WriteOK(w, responses)
}

// HandleSubscribe handles POST /users/{userId}/courses
func (h *UserCourseHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	logger := observability.ForRequest(r.Context(), h.logger)

	userID, err := pathUUID(r, UserIDParam)
	if err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	var req SubscribeRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		HandleValidationError(w, err, logger)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	uc, err := h.service.Subscribe(r.Context(), userID, req.CourseID)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	_ = utils.WriteCreated(w, userCourseToResponse(uc))
}

// HandleDeleteByCourse handles DELETE /users/courses/{courseId}
func (h *UserCourseHandler) HandleDeleteByCourse(w http.ResponseWriter, r *http.Request) {
	logger := observability.ForRequest(r.Context(), h.logger)

	courseID, err := pathUUID(r, CourseIDParam)
	if err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	if _, err := h.service.DeleteByCourse(r.Context(), courseID); err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	utils.WriteNoContent(w)
}

func userCourseToResponse(uc *models.UserCourse) UserCourseResponse {
	return UserCourseResponse{
		ID:        uc.ID,
		UserID:    uc.UserID,
		CourseID:  uc.CourseID,
		CreatedAt: uc.CreatedAt.Format(time.RFC3339),
	}
}
