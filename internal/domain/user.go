package domain

import (
	"strings"
	"time"
)

// User is a notification recipient.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Subscription routes a check's notifications to a user.
type Subscription struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	CheckID   int64     `json:"check_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUserRequest is the inbound payload for registering a recipient.
type CreateUserRequest struct {
	Email    string `json:"email"`
	IsActive *bool  `json:"is_active,omitempty"`
}

func (r *CreateUserRequest) Validate() error {
	if !validEmail(r.Email) {
		return ErrInvalidEmail
	}
	return nil
}

// UpdateUserRequest carries partial updates; nil fields are left unchanged.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func (r *UpdateUserRequest) Validate() error {
	if r.Email != nil && !validEmail(*r.Email) {
		return ErrInvalidEmail
	}
	return nil
}

// CreateSubscriptionRequest links a user to a check.
type CreateSubscriptionRequest struct {
	UserID  int64 `json:"user_id"`
	CheckID int64 `json:"check_id"`
}

// validEmail applies the same shallow shape test the rest of the system
// relies on; real verification happens when the sender service bounces.
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}
