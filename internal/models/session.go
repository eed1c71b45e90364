package models

import (
	"time"

	"github.com/google/uuid"
)

// Session represents a live login. Each session counts against its
// tenant's license limit while the row exists; logout deletes it and a
// background janitor prunes sessions that stop reporting liveness.
type Session struct {
	SessionID uuid.UUID // UUIDv7, embedded in the bearer token
	UserID    uuid.UUID
	TenantID  uuid.UUID

	CreatedAt time.Time
	// LastSeen is best-effort telemetry updated outside the request
	// transaction. It is eventually consistent and never correctness-bearing.
	LastSeen time.Time

	// Audit metadata captured at login.
	UserAgent string
	IPAddress string
}

// ActiveSession is the admin view of a live session, joined with the
// owning user and tenant.
type ActiveSession struct {
	SessionID  uuid.UUID
	Email      string
	TenantName string
	LastSeen   time.Time
}
