package services

import (
	"context"

	"github.com/ead/authuser/models"
	"github.com/ead/authuser/repositories"
	"github.com/ead/authuser/security"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, filter repositories.UserFilter, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, filter, limit, offset)
	if u := args.Get(0); u != nil {
		return u.([]*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context, filter repositories.UserFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateImage(ctx context.Context, id uuid.UUID, imageURL string) error {
	args := m.Called(ctx, id, imageURL)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) WithTx(tx repositories.Transaction) repositories.UserRepository {
	return m
}

// MockRoleRepository is a mock implementation of RoleRepository
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) GetByName(ctx context.Context, name models.RoleType) (*models.Role, error) {
	args := m.Called(ctx, name)
	if r := args.Get(0); r != nil {
		return r.(*models.Role), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoleRepository) AssignToUser(ctx context.Context, userID, roleID uuid.UUID) error {
	args := m.Called(ctx, userID, roleID)
	return args.Error(0)
}

func (m *MockRoleRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Role, error) {
	args := m.Called(ctx, userID)
	if r := args.Get(0); r != nil {
		return r.([]models.Role), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoleRepository) WithTx(tx repositories.Transaction) repositories.RoleRepository {
	return m
}

// MockUserCourseRepository is a mock implementation of UserCourseRepository
type MockUserCourseRepository struct {
	mock.Mock
}

func (m *MockUserCourseRepository) Create(ctx context.Context, uc *models.UserCourse) error {
	args := m.Called(ctx, uc)
	return args.Error(0)
}

func (m *MockUserCourseRepository) ExistsByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, courseID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserCourseRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.UserCourse, error) {
	args := m.Called(ctx, userID, limit, offset)
	if r := args.Get(0); r != nil {
		return r.([]*models.UserCourse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserCourseRepository) DeleteByCourse(ctx context.Context, courseID uuid.UUID) (int64, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserCourseRepository) WithTx(tx repositories.Transaction) repositories.UserCourseRepository {
	return m
}

// MockPrincipalLookup is a mock implementation of PrincipalLookup
type MockPrincipalLookup struct {
	mock.Mock
}

func (m *MockPrincipalLookup) ResolveByUsername(ctx context.Context, username string) (*security.Principal, error) {
	args := m.Called(ctx, username)
	if p := args.Get(0); p != nil {
		return p.(*security.Principal), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockTokenIssuer is a mock implementation of TokenIssuer
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(p *security.Principal) (string, error) {
	args := m.Called(p)
	return args.String(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishUser(action models.ActionType, user *models.User) error {
	args := m.Called(action, user)
	return args.Error(0)
}

// expectCommittedTx wires a transaction manager whose transaction commits
func expectCommittedTx(txMgr *MockTransactionManager) *MockTransaction {
	tx := new(MockTransaction)
	txMgr.On("Begin", mock.Anything).Return(tx, nil)
	tx.On("Context").Return(context.Background())
	tx.On("Commit").Return(nil).Maybe()
	tx.On("Rollback").Return(nil).Maybe()
	return tx
}
