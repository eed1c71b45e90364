package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a login identity belonging to exactly one tenant. Emails are
// unique across the whole system, not per tenant.
type User struct {
	UserID       uuid.UUID // UUIDv7
	TenantID     uuid.UUID
	Email        string
	PasswordHash string
	Role         string // "user" or "admin"
	LoginCount   int64
	CreatedAt    time.Time
}

// IsAdmin reports whether the user may reach the admin surface.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
