package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ead/authuser/models"
	"github.com/ead/authuser/services"
	"github.com/ead/authuser/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// UserResponse represents a user in API responses
type UserResponse struct {
	ID          uuid.UUID         `json:"id"`
	Username    string            `json:"username"`
	Email       string            `json:"email"`
	FullName    string            `json:"full_name"`
	Status      models.UserStatus `json:"status"`
	Type        models.UserType   `json:"type"`
	PhoneNumber string            `json:"phone_number,omitempty"`
	CPF         string            `json:"cpf,omitempty"`
	ImageURL    string            `json:"image_url,omitempty"`
	Roles       []string          `json:"roles"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`
	Links       []services.Link   `json:"links,omitempty"`
}

// UserListResponse represents a page of users in API responses
type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
	Total int            `json:"total"`
}

func userToResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		Status:      u.Status,
		Type:        u.Type,
		PhoneNumber: u.PhoneNumber,
		CPF:         u.CPF,
		ImageURL:    u.ImageURL,
		Roles:       u.RoleNames(),
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   u.UpdatedAt.Format(time.RFC3339),
	}
}

// pathUUID parses a chi URL parameter as a UUID
func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	return utils.ParseUUID(chi.URLParam(r, param), param)
}

// pagination reads zero-based page and size query parameters.
// Missing or unparsable values fall back to zero and let the service apply defaults.
func pagination(r *http.Request) (page, size int) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	size, _ = strconv.Atoi(q.Get("size"))
	return page, size
}
