package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupPayload struct {
	Username string `json:"username" validate:"required,min=4,max=50,nospace"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type filterPayload struct {
	Type   string `json:"type" validate:"omitempty,usertype"`
	Status string `json:"status" validate:"omitempty,userstatus"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid struct", func(t *testing.T) {
		s := signupPayload{Username: "alice", Email: "alice@example.com", Password: "secret1"}
		assert.NoError(t, ValidateStruct(&s))
	})

	t.Run("missing required field uses json name", func(t *testing.T) {
		s := signupPayload{Email: "alice@example.com", Password: "secret1"}

		err := ValidateStruct(&s)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))

		fields := GetValidationFields(err)
		assert.Equal(t, "username is required", fields["username"])
	})

	t.Run("invalid email", func(t *testing.T) {
		s := signupPayload{Username: "alice", Email: "invalid-email", Password: "secret1"}

		fields := GetValidationFields(ValidateStruct(&s))
		assert.Contains(t, fields, "email")
	})

	t.Run("whitespace in username", func(t *testing.T) {
		s := signupPayload{Username: "al ice", Email: "alice@example.com", Password: "secret1"}

		fields := GetValidationFields(ValidateStruct(&s))
		assert.Equal(t, "username must not contain whitespace", fields["username"])
	})

	t.Run("short password", func(t *testing.T) {
		s := signupPayload{Username: "alice", Email: "alice@example.com", Password: "abc"}

		fields := GetValidationFields(ValidateStruct(&s))
		assert.Equal(t, "password must be at least 6 characters", fields["password"])
	})
}

func TestValidateStruct_AccountEnums(t *testing.T) {
	tests := []struct {
		name    string
		payload filterPayload
		field   string
	}{
		{name: "empty filter", payload: filterPayload{}},
		{name: "known type", payload: filterPayload{Type: "INSTRUCTOR"}},
		{name: "known status", payload: filterPayload{Status: "BLOCKED"}},
		{name: "unknown type", payload: filterPayload{Type: "teacher"}, field: "type"},
		{name: "lowercase status", payload: filterPayload{Status: "active"}, field: "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.payload)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, GetValidationFields(err), tt.field)
		})
	}
}

func TestValidateStruct_CPF(t *testing.T) {
	type profile struct {
		CPF string `json:"cpf" validate:"omitempty,cpf"`
	}

	assert.NoError(t, ValidateStruct(&profile{}))
	assert.NoError(t, ValidateStruct(&profile{CPF: "123.456.789-09"}))

	err := ValidateStruct(&profile{CPF: "123.456.789-00"})
	require.Error(t, err)
	assert.Equal(t, "cpf must be a valid CPF", GetValidationFields(err)["cpf"])
}

func TestGetValidationFields_OtherError(t *testing.T) {
	_, err := ParseUUID("nope", "id")
	assert.False(t, IsValidationError(err))
	assert.Nil(t, GetValidationFields(err))
}

func TestParseUUID(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		wantError bool
	}{
		{name: "valid UUID", value: "550e8400-e29b-41d4-a716-446655440000"},
		{name: "wrong format", value: "not-a-uuid", wantError: true},
		{name: "empty string", value: "", wantError: true},
		{name: "missing parts", value: "550e8400-e29b-41d4", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseUUID(tt.value, "userId")
			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "userId")
				assert.Equal(t, uuid.Nil, id)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.value, id.String())
			}
		})
	}
}
