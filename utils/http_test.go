package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var response ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return response
}

func TestWriteJSON(t *testing.T) {
	t.Run("encodes body", func(t *testing.T) {
		w := httptest.NewRecorder()

		require.NoError(t, WriteJSON(w, http.StatusAccepted, map[string]string{"message": "test"}))

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"message":"test"}`, w.Body.String())
	})

	t.Run("nil data writes no body", func(t *testing.T) {
		w := httptest.NewRecorder()

		require.NoError(t, WriteJSON(w, http.StatusNoContent, nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestSuccessWriters(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter, interface{}) error
		status int
	}{
		{"ok", WriteOK, http.StatusOK},
		{"created", WriteCreated, http.StatusCreated},
		{"service unavailable", WriteServiceUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			require.NoError(t, tt.write(w, map[string]string{"id": "123"}))

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, `{"data":{"id":"123"}}`, w.Body.String())
		})
	}
}

func TestWriteNoContent(t *testing.T) {
	w := httptest.NewRecorder()

	WriteNoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestErrorWriters(t *testing.T) {
	tests := []struct {
		name        string
		write       func(http.ResponseWriter, string) error
		status      int
		code        string
		defaultText string
	}{
		{"unauthorized", WriteUnauthorized, http.StatusUnauthorized, "unauthorized", "Authentication required"},
		{"forbidden", WriteForbidden, http.StatusForbidden, "forbidden", "Access forbidden"},
		{"not found", WriteNotFound, http.StatusNotFound, "not_found", "Resource not found"},
		{"internal", WriteInternalServerError, http.StatusInternalServerError, "internal_error", "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name+" custom message", func(t *testing.T) {
			w := httptest.NewRecorder()

			require.NoError(t, tt.write(w, "custom"))

			assert.Equal(t, tt.status, w.Code)
			response := decodeError(t, w)
			assert.Equal(t, tt.code, response.Error)
			assert.Equal(t, "custom", response.Message)
		})

		t.Run(tt.name+" default message", func(t *testing.T) {
			w := httptest.NewRecorder()

			require.NoError(t, tt.write(w, ""))

			assert.Equal(t, tt.defaultText, decodeError(t, w).Message)
		})
	}
}

func TestWriteUnauthorizedChallenge(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteUnauthorized(w, ""))

	assert.Equal(t, `Bearer realm="authuser"`, w.Header().Get("WWW-Authenticate"))
}

func TestDetailWriters(t *testing.T) {
	details := map[string]interface{}{"email": "alice@example.com"}

	t.Run("bad request", func(t *testing.T) {
		w := httptest.NewRecorder()
		require.NoError(t, WriteBadRequest(w, "Validation failed", details))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		response := decodeError(t, w)
		assert.Equal(t, "bad_request", response.Error)
		assert.Equal(t, "alice@example.com", response.Details["email"])
	})

	t.Run("conflict", func(t *testing.T) {
		w := httptest.NewRecorder()
		require.NoError(t, WriteConflict(w, "email is already taken", details))

		assert.Equal(t, http.StatusConflict, w.Code)
		response := decodeError(t, w)
		assert.Equal(t, "conflict", response.Error)
		assert.Equal(t, "email is already taken", response.Message)
		assert.Equal(t, "alice@example.com", response.Details["email"])
	})
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		status int
		code   string
	}{
		{http.StatusBadRequest, "bad_request"},
		{http.StatusConflict, "conflict"},
		{http.StatusServiceUnavailable, "service_unavailable"},
		{http.StatusTeapot, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			w := httptest.NewRecorder()

			require.NoError(t, WriteError(w, tt.status, "message", nil))

			assert.Equal(t, tt.status, w.Code)
			response := decodeError(t, w)
			assert.Equal(t, tt.code, response.Error)
			assert.Equal(t, "message", response.Message)
			assert.Nil(t, response.Details)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Username string `json:"username"`
	}

	tests := []struct {
		name      string
		body      string
		want      string
		wantError string
	}{
		{name: "valid body", body: `{"username":"alice"}`, want: "alice"},
		{name: "empty body", body: "", wantError: "empty"},
		{name: "unknown field", body: `{"username":"alice","admin":true}`, wantError: "unknown field"},
		{name: "trailing object", body: `{"username":"alice"}{"username":"bob"}`, wantError: "single JSON object"},
		{name: "malformed", body: `{"username":`, wantError: "invalid request body"},
		{name: "oversized", body: `{"username":"` + strings.Repeat("a", maxBodyBytes) + `"}`, wantError: "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			var dst payload
			err := DecodeJSON(w, r, &dst)
			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, dst.Username)
		})
	}
}
