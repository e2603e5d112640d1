package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ead/authuser/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleSignup(t *testing.T) {
	logger := zap.NewNop()
	validBody := `{"username":"alice","email":"alice@example.com","password":"s3cret-pass","full_name":"Alice Liddell"}`

	t.Run("creates user", func(t *testing.T) {
		svc := new(MockAuthService)
		user := sampleUser()
		svc.On("Register", mock.Anything, services.RegisterInput{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "s3cret-pass",
			FullName: "Alice Liddell",
		}).Return(user, nil)

		handler := NewAuthHandler(svc, logger)
		req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(validBody))
		w := httptest.NewRecorder()

		handler.HandleSignup(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		var response struct {
			Data map[string]interface{} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, user.ID.String(), response.Data["id"])
		assert.Equal(t, "alice", response.Data["username"])
		assert.Equal(t, []interface{}{"ROLE_STUDENT"}, response.Data["roles"])
		assert.NotContains(t, response.Data, "password")
		svc.AssertExpectations(t)
	})

	t.Run("admin signup goes to RegisterAdmin", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("RegisterAdmin", mock.Anything, mock.AnythingOfType("services.RegisterInput")).Return(sampleUser(), nil)

		handler := NewAuthHandler(svc, logger)
		req := httptest.NewRequest(http.MethodPost, "/auth/signup/admin", strings.NewReader(validBody))
		w := httptest.NewRecorder()

		handler.HandleSignupAdmin(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("validation errors name json fields", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := NewAuthHandler(svc, logger)

		req := httptest.NewRequest(http.MethodPost, "/auth/signup",
			strings.NewReader(`{"username":"al","email":"nope","password":"123","full_name":""}`))
		w := httptest.NewRecorder()

		handler.HandleSignup(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var response struct {
			Details map[string]interface{} `json:"details"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Contains(t, response.Details, "username")
		assert.Contains(t, response.Details, "email")
		assert.Contains(t, response.Details, "password")
		assert.Contains(t, response.Details, "full_name")
		svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := NewAuthHandler(svc, logger)

		body := `{"username":"alice","email":"alice@example.com","password":"s3cret-pass","full_name":"A","roles":["ROLE_ADMIN"]}`
		w := httptest.NewRecorder()
		handler.HandleSignup(w, httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate username", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Register", mock.Anything, mock.Anything).Return(nil, services.ErrDuplicateUsername.WithDetail("username", "alice"))

		handler := NewAuthHandler(svc, logger)
		w := httptest.NewRecorder()
		handler.HandleSignup(w, httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(validBody)))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "username is already taken")
	})
}

func TestHandleLogin(t *testing.T) {
	logger := zap.NewNop()

	t.Run("returns bearer token", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Login", mock.Anything, "alice", "s3cret-pass").Return(&services.LoginResult{Token: "a.b.c", Type: "Bearer"}, nil)

		handler := NewAuthHandler(svc, logger)
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"alice","password":"s3cret-pass"}`))
		w := httptest.NewRecorder()

		handler.HandleLogin(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":{"token":"a.b.c","type":"Bearer"}}`, w.Body.String())
	})

	t.Run("bad credentials", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Login", mock.Anything, "alice", "wrong").Return(nil, services.ErrBadCredentials)

		handler := NewAuthHandler(svc, logger)
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"alice","password":"wrong"}`))
		w := httptest.NewRecorder()

		handler.HandleLogin(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing password", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := NewAuthHandler(svc, logger)

		w := httptest.NewRecorder()
		handler.HandleLogin(w, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"alice"}`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty body", func(t *testing.T) {
		handler := NewAuthHandler(new(MockAuthService), logger)

		w := httptest.NewRecorder()
		handler.HandleLogin(w, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("")))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "empty")
	})
}
