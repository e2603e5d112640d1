package handlers

import (
	"context"
	"net/http"

	"github.com/ead/authuser/internal/observability"
	"github.com/ead/authuser/models"
	"github.com/ead/authuser/services"
	"github.com/ead/authuser/utils"
	"go.uber.org/zap"
)

// SignupRequest represents a request to register an account
type SignupRequest struct {
	Username    string `json:"username" validate:"required,min=4,max=50,nospace"`
	Email       string `json:"email" validate:"required,email,max=100"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	FullName    string `json:"full_name" validate:"required,max=150"`
	PhoneNumber string `json:"phone_number,omitempty" validate:"omitempty,max=20"`
	CPF         string `json:"cpf,omitempty" validate:"omitempty,cpf"`
	ImageURL    string `json:"image_url,omitempty" validate:"omitempty,url"`
}

// LoginRequest represents a request to sign in
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued bearer token
type LoginResponse struct {
	Token string `json:"token"`
	Type  string `json:"type"`
}

// AuthService defines the interface for registration and sign-in
type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	RegisterAdmin(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.LoginResult, error)
}

// AuthHandler handles registration and login requests
type AuthHandler struct {
	authService AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// HandleSignup handles POST /auth/signup
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	h.signup(w, r, h.authService.Register)
}

// HandleSignupAdmin handles POST /auth/signup/admin
func (h *AuthHandler) HandleSignupAdmin(w http.ResponseWriter, r *http.Request) {
	h.signup(w, r, h.authService.RegisterAdmin)
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request, register func(context.Context, services.RegisterInput) (*models.User, error)) {
	logger := observability.ForRequest(r.Context(), h.logger)

	var req SignupRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		HandleValidationError(w, err, logger)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	user, err := register(r.Context(), services.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		CPF:         req.CPF,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	_ = utils.WriteCreated(w, userToResponse(user))
}

// HandleLogin handles POST /auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	logger := observability.ForRequest(r.Context(), h.logger)

	var req LoginRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		HandleValidationError(w, err, logger)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	result, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	_ = utils.WriteOK(w, LoginResponse{Token: result.Token, Type: result.Type})
}
