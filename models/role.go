package models

import (
	"strings"

	"github.com/google/uuid"
)

// RoleType is the authority string granted by a role
type RoleType string

const (
	RoleAdmin      RoleType = "ROLE_ADMIN"
	RoleInstructor RoleType = "ROLE_INSTRUCTOR"
	RoleStudent    RoleType = "ROLE_STUDENT"
	RoleUser       RoleType = "ROLE_USER"
)

// RoleDelimiter separates role names inside the token's roles claim.
const RoleDelimiter = ","

// Role represents an authorization role record
type Role struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name RoleType  `json:"name" db:"name"`
}

// TableName returns the table name for the Role model
func (Role) TableName() string {
	return "roles"
}

// ValidRoleName reports whether name can be carried in the roles claim.
// Names must be non-empty and free of the delimiter and surrounding whitespace.
func ValidRoleName(name string) bool {
	if name == "" || strings.TrimSpace(name) != name {
		return false
	}
	return !strings.Contains(name, RoleDelimiter)
}
