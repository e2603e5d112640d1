package models

import (
	"time"

	"github.com/google/uuid"
)

// UserStatus represents whether an account may sign in
type UserStatus string

const (
	UserStatusActive  UserStatus = "ACTIVE"
	UserStatusBlocked UserStatus = "BLOCKED"
)

// UserType classifies an account within the platform
type UserType string

const (
	UserTypeAdmin      UserType = "ADMIN"
	UserTypeStudent    UserType = "STUDENT"
	UserTypeInstructor UserType = "INSTRUCTOR"
	UserTypeUser       UserType = "USER"
)

// User represents an account managed by this service
type User struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Username    string     `json:"username" db:"username"`
	Email       string     `json:"email" db:"email"`
	Password    string     `json:"-" db:"password"` // bcrypt hash, never serialized
	FullName    string     `json:"full_name" db:"full_name"`
	Status      UserStatus `json:"status" db:"status"`
	Type        UserType   `json:"type" db:"type"`
	PhoneNumber string     `json:"phone_number,omitempty" db:"phone_number"`
	CPF         string     `json:"cpf,omitempty" db:"cpf"`
	ImageURL    string     `json:"image_url,omitempty" db:"image_url"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	Roles       []Role     `json:"roles,omitempty" db:"-"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new active User instance
func NewUser(username, email, passwordHash, fullName string, userType UserType) *User {
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		Password:  passwordHash,
		FullName:  fullName,
		Status:    UserStatusActive,
		Type:      userType,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RoleNames returns the names of the roles attached to the user, in order
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, string(r.Name))
	}
	return names
}

// HasRole reports whether the user holds the named role
func (u *User) HasRole(name RoleType) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// IsBlocked returns true if the account has been blocked
func (u *User) IsBlocked() bool {
	return u.Status == UserStatusBlocked
}

// Valid reports whether t is a known account type
func (t UserType) Valid() bool {
	switch t {
	case UserTypeAdmin, UserTypeStudent, UserTypeInstructor, UserTypeUser:
		return true
	}
	return false
}

// Valid reports whether s is a known account status
func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusBlocked
}
