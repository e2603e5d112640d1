package handlers

import (
	"context"
	"net/http"

	"github.com/ead/authuser/models"
	"github.com/ead/authuser/repositories"
	"github.com/ead/authuser/security"
	"github.com/ead/authuser/services"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAuthService is a mock implementation of AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in services.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, in)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) RegisterAdmin(ctx context.Context, in services.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, in)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*services.LoginResult, error) {
	args := m.Called(ctx, username, password)
	if r := args.Get(0); r != nil {
		return r.(*services.LoginResult), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, filter repositories.UserFilter, page, size int) (*services.UserPage, error) {
	args := m.Called(ctx, filter, page, size)
	if p := args.Get(0); p != nil {
		return p.(*services.UserPage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id uuid.UUID, in services.UpdateUserInput) (*models.User, error) {
	args := m.Called(ctx, id, in)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) UpdatePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword string) error {
	args := m.Called(ctx, id, oldPassword, newPassword)
	return args.Error(0)
}

func (m *MockUserService) UpdateImage(ctx context.Context, id uuid.UUID, imageURL string) (*models.User, error) {
	args := m.Called(ctx, id, imageURL)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) PromoteToInstructor(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockUserCourseService is a mock implementation of UserCourseService
type MockUserCourseService struct {
	mock.Mock
}

func (m *MockUserCourseService) Subscribe(ctx context.Context, userID, courseID uuid.UUID) (*models.UserCourse, error) {
	args := m.Called(ctx, userID, courseID)
	if uc := args.Get(0); uc != nil {
		return uc.(*models.UserCourse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserCourseService) ListCourses(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.UserCourse, error) {
	args := m.Called(ctx, userID, page, size)
	if r := args.Get(0); r != nil {
		return r.([]*models.UserCourse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserCourseService) DeleteByCourse(ctx context.Context, courseID uuid.UUID) (int64, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).(int64), args.Error(1)
}

// withURLParams installs chi route parameters on the request
func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withPrincipal authenticates the request as p
func withPrincipal(r *http.Request, p *security.Principal) *http.Request {
	sc := security.NewSecurityContext(p, r.RemoteAddr, "")
	return r.WithContext(security.WithSecurityContext(r.Context(), sc))
}

func sampleUser() *models.User {
	u := models.NewUser("alice", "alice@example.com", "$2a$04$hash", "Alice Liddell", models.UserTypeStudent)
	u.Roles = []models.Role{{ID: uuid.New(), Name: models.RoleStudent}}
	return u
}
