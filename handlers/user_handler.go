package handlers

import (
	"context"
	"net/http"

	"github.com/ead/authuser/internal/observability"
	"github.com/ead/authuser/models"
	"github.com/ead/authuser/repositories"
	"github.com/ead/authuser/security"
	"github.com/ead/authuser/services"
	"github.com/ead/authuser/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserIDParam is the URL parameter naming the target user
const UserIDParam = "userId"

// ListUsersQuery represents the filters accepted by GET /users
type ListUsersQuery struct {
	Type   string `json:"type" validate:"omitempty,usertype"`
	Status string `json:"status" validate:"omitempty,userstatus"`
	Email  string `json:"email" validate:"omitempty,max=100"`
}

// UpdateUserRequest represents a request to update a user's profile
type UpdateUserRequest struct {
	FullName    string `json:"full_name" validate:"required,max=150"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=20"`
	CPF         string `json:"cpf" validate:"omitempty,cpf"`
}

// UpdatePasswordRequest represents a request to change a password
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	Password    string `json:"password" validate:"required,min=6,max=72,nefield=OldPassword"`
}

// UpdateImageRequest represents a request to change the profile image
type UpdateImageRequest struct {
	ImageURL string `json:"image_url" validate:"required,url"`
}

// PromoteInstructorRequest represents a request to make a user an instructor
type PromoteInstructorRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// UserService defines the interface for account operations
type UserService interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, filter repositories.UserFilter, page, size int) (*services.UserPage, error)
	Update(ctx context.Context, id uuid.UUID, in services.UpdateUserInput) (*models.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword string) error
	UpdateImage(ctx context.Context, id uuid.UUID, imageURL string) (*models.User, error)
	PromoteToInstructor(ctx context.Context, id uuid.UUID) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// UserHandler handles user account requests
type UserHandler struct {
	userService UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// HandleList handles GET /users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	logger := observability.ForRequest(r.Context(), h.logger)

	q := r.URL.Query()
	query := ListUsersQuery{Type: q.Get("type"), Status: q.Get("status"), Email: q.Get("email")}
	if err := utils.ValidateStruct(&query); err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	page, size := pagination(r)
	result, err := h.userService.List(r.Context(), repositories.UserFilter{
		Type:   models.UserType(query.Type),
		Status: models.UserStatus(query.Status),
		Email:  query.Email,
	}, page, size)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	response := UserListResponse{
		Users: make([]UserResponse, len(result.Users)),
		Page:  result.Page,
		Size:  result.Size,
		Total: result.Total,
	}
	for i, u := range result.Users {
		response.Users[i] = userToResponse(u.User)
		response.Users[i].Links = u.Links
	}

	_ = utils.WriteOK(w, response)
}

// HandleMe handles GET /users/me
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := security.PrincipalFromContext(r.Context())
	if !ok {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	user, err := h.userService.Get(r.Context(), principal.ID)
	if err != nil {
		HandleServiceError(w, err, observability.ForRequest(r.Context(), h.logger))
		return
	}

	_ = utils.WriteOK(w, userToResponse(user))
}

// HandleGet handles GET /users/{userId}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	logger := observability.ForRequest(r.Context(), h.logger)

	id, err := pathUUID(r, UserIDParam)
	if err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	user, err := h.userService.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	_ = utils.WriteOK(w, userToResponse(user))
}

// HandleUpdate handles PUT /users/{userId}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	logger := observability.ForRequest(r.Context(), h.logger)

	id, err := pathUUID(r, UserIDParam)
	if err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	var req UpdateUserRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		HandleValidationError(w, err, logger)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	user, err := h.userService.Update(r.Context(), id, services.UpdateUserInput{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		CPF:         req.CPF,
	})
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	_ = utils.WriteOK(w, userToResponse(user))
}

// HandleUpdatePassword handles PUT /users/{userId}/password
func (h *UserHandler) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	logger := observability.ForRequest(r.Context(), h.logger)

	id, err := pathUUID(r, UserIDParam)
	if err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	var req UpdatePasswordRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		HandleValidationError(w, err, logger)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	if err := h.userService.UpdatePassword(r.Context(), id, req.OldPassword, req.Password); err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse{Message: "Password updated successfully"})
}

// HandleUpdateImage handles PUT /users/{userId}/image
func (h *UserHandler) HandleUpdateImage(w http.ResponseWriter, r *http.Request) {
	logger := observability.ForRequest(r.Context(), h.logger)

	id, err := pathUUID(r, UserIDParam)
	if err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	var req UpdateImageRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		HandleValidationError(w, err, logger)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	user, err := h.userService.UpdateImage(r.Context(), id, req.ImageURL)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	_ = utils.WriteOK(w, userToResponse(user))
}

// HandleDelete handles DELETE /users/{userId}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	logger := observability.ForRequest(r.Context(), h.logger)

	id, err := pathUUID(r, UserIDParam)
	if err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	user, err := h.userService.Delete(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	_ = utils.WriteOK(w, userToResponse(user))
}

// HandlePromoteInstructor handles POST /users/instructors/subscription
func (h *UserHandler) HandlePromoteInstructor(w http.ResponseWriter, r *http.Request) {
	logger := observability.ForRequest(r.Context(), h.logger)

	var req PromoteInstructorRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		HandleValidationError(w, err, logger)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	user, err := h.userService.PromoteToInstructor(r.Context(), req.UserID)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	_ = utils.WriteOK(w, userToResponse(user))
}
