package services

import (
	"context"
	"strings"

	"github.com/ead/authuser/models"
	"github.com/ead/authuser/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Link is a hypermedia reference attached to listed resources
type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// UserResource is a user as returned by listings
type UserResource struct {
	*models.User
	Links []Link `json:"links"`
}

// UserPage is one page of a user listing
type UserPage struct {
	Users []UserResource `json:"users"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
	Total int            `json:"total"`
}

// UpdateUserInput holds the editable profile fields
type UpdateUserInput struct {
	FullName    string
	PhoneNumber string
	CPF         string
}

// UserService manages user accounts
type UserService struct {
	users      repositories.UserRepository
	roles      repositories.RoleRepository
	txManager  repositories.TransactionManager
	publisher  EventPublisher
	bcryptCost int
	logger     *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	users repositories.UserRepository,
	roles repositories.RoleRepository,
	txManager repositories.TransactionManager,
	publisher EventPublisher,
	bcryptCost int,
	logger *zap.Logger,
) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{
		users:      users,
		roles:      roles,
		txManager:  txManager,
		publisher:  publisher,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Get returns a user with its roles
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, ErrUserNotFound.WithDetail("user_id", id.String()), "failed to get user")
	}
	return user, nil
}

// List returns a page of users matching filter. Pages are zero-based.
func (s *UserService) List(ctx context.Context, filter repositories.UserFilter, page, size int) (*UserPage, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	filter.Email = strings.ToLower(strings.TrimSpace(filter.Email))

	users, err := s.users.List(ctx, filter, size, page*size)
	if err != nil {
		return nil, WrapInternal("failed to list users", err)
	}

	total, err := s.users.Count(ctx, filter)
	if err != nil {
		return nil, WrapInternal("failed to count users", err)
	}

	resources := make([]UserResource, 0, len(users))
	for _, u := range users {
		resources = append(resources, UserResource{
			User:  u,
			Links: []Link{{Rel: "self", Href: "/users/" + u.ID.String()}},
		})
	}

	return &UserPage{Users: resources, Page: page, Size: size, Total: total}, nil
}

// Update replaces the user's profile fields
func (s *UserService) Update(ctx context.Context, id uuid.UUID, in UpdateUserInput) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	user.FullName = in.FullName
	user.PhoneNumber = in.PhoneNumber
	user.CPF = in.CPF

	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapRepoError(err, ErrUserNotFound, "failed to update user")
	}

	s.logger.Info("user updated", zap.String("user_id", id.String()))
	s.publish(models.ActionUpdate, user)
	return user, nil
}

// UpdatePassword replaces the password once the old one has been verified
func (s *UserService) UpdatePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return WrapInternal("failed to hash password", err)
	}

	if err := s.users.UpdatePassword(ctx, id, string(hash)); err != nil {
		return mapRepoError(err, ErrUserNotFound, "failed to update password")
	}

	s.logger.Info("user password updated", zap.String("user_id", id.String()))
	return nil
}

// UpdateImage replaces the user's profile image
func (s *UserService) UpdateImage(ctx context.Context, id uuid.UUID, imageURL string) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateImage(ctx, id, imageURL); err != nil {
		return nil, mapRepoError(err, ErrUserNotFound, "failed to update image")
	}
	user.ImageURL = imageURL

	s.publish(models.ActionUpdate, user)
	return user, nil
}

// PromoteToInstructor grants ROLE_INSTRUCTOR and switches the account type
func (s *UserService) PromoteToInstructor(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := WithTransactionResult(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) (*models.User, error) {
		users := s.users.WithTx(tx)
		roles := s.roles.WithTx(tx)

		user, err := users.GetByID(ctx, id)
		if err != nil {
			return nil, mapRepoError(err, ErrUserNotFound.WithDetail("user_id", id.String()), "failed to get user")
		}
		if user.Type == models.UserTypeInstructor && user.HasRole(models.RoleInstructor) {
			return nil, ErrAlreadyInstructor
		}

		role, err := roles.GetByName(ctx, models.RoleInstructor)
		if err != nil {
			return nil, mapRepoError(err, ErrRoleNotFound, "failed to load role")
		}
		if err := roles.AssignToUser(ctx, user.ID, role.ID); err != nil {
			return nil, WrapInternal("failed to assign role", err)
		}

		user.Type = models.UserTypeInstructor
		if err := users.Update(ctx, user); err != nil {
			return nil, mapRepoError(err, ErrUserNotFound, "failed to update user")
		}

		if !user.HasRole(models.RoleInstructor) {
			user.Roles = append(user.Roles, *role)
		}
		return user, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user promoted to instructor", zap.String("user_id", id.String()))
	s.publish(models.ActionUpdate, user)
	return user, nil
}

// Delete removes the user and returns the removed record
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return nil, mapRepoError(err, ErrUserNotFound, "failed to delete user")
	}

	s.logger.Info("user deleted", zap.String("user_id", id.String()))
	s.publish(models.ActionDelete, user)
	return user, nil
}

func (s *UserService) publish(action models.ActionType, user *models.User) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishUser(action, user); err != nil {
		s.logger.Warn("failed to publish user event",
			zap.String("action", string(action)),
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}
}
