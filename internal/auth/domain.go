package auth

import (
	"time"

	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

// User represents an authenticated user account.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         string
	CommerceID   *int64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal converts the account into the request principal.
func (u User) Principal() shared.Principal {
	p := shared.Principal{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
	if u.CommerceID != nil {
		p.CommerceID = *u.CommerceID
	}
	return p
}

// LoginRequest is the sign in payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}
