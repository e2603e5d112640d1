package models

import (
	"time"

	"github.com/google/uuid"
)

// ActionType describes a user lifecycle transition
type ActionType string

const (
	ActionCreate ActionType = "CREATE"
	ActionUpdate ActionType = "UPDATE"
	ActionDelete ActionType = "DELETE"
)

// UserEvent is published to other services whenever an account changes.
// It carries a snapshot of the user without credentials.
type UserEvent struct {
	ID          uuid.UUID  `json:"id"`
	Action      ActionType `json:"action"`
	UserID      uuid.UUID  `json:"user_id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Status      UserStatus `json:"status"`
	Type        UserType   `json:"type"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	CPF         string     `json:"cpf,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

// NewUserEvent snapshots u for the given action
func NewUserEvent(action ActionType, u *User) *UserEvent {
	return &UserEvent{
		ID:          uuid.New(),
		Action:      action,
		UserID:      u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		Status:      u.Status,
		Type:        u.Type,
		PhoneNumber: u.PhoneNumber,
		CPF:         u.CPF,
		ImageURL:    u.ImageURL,
		OccurredAt:  time.Now().UTC(),
	}
}
