package postgres

import (
	"context"
	"errors"

	"github.com/ead/authuser/models"
	"github.com/ead/authuser/repositories"
	"github.com/ead/authuser/security"
	"github.com/google/uuid"
)

// UserStore exposes the user repository as the read side the
// authentication core resolves principals from.
type UserStore struct {
	users repositories.UserRepository
}

// NewUserStore creates a UserStore over users
func NewUserStore(users repositories.UserRepository) *UserStore {
	return &UserStore{users: users}
}

var _ security.UserStore = (*UserStore)(nil)

// FindByIdentity looks a user up by id
func (s *UserStore) FindByIdentity(ctx context.Context, id uuid.UUID) (*security.UserRecord, bool, error) {
	return toRecord(s.users.GetByID(ctx, id))
}

// FindByUsername looks a user up by username
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*security.UserRecord, bool, error) {
	return toRecord(s.users.GetByUsername(ctx, username))
}

func toRecord(user *models.User, err error) (*security.UserRecord, bool, error) {
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &security.UserRecord{
		ID:           user.ID,
		Username:     user.Username,
		PasswordHash: user.Password,
		Roles:        user.RoleNames(),
	}, true, nil
}
