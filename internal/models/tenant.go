package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant statuses. A tenant is created pending, activated by an admin
// approval, and suspended on non-renewal. Tenants are never deleted.
const (
	TenantStatusPending   = "pending"
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
)

// Tenant is an isolated customer organization. Each tenant owns one
// database schema and a license limiting concurrent sessions.
type Tenant struct {
	TenantID uuid.UUID // UUIDv7
	Name     string
	// SchemaName is the namespace-safe token naming the tenant's schema.
	// Assigned once at registration and never recycled.
	SchemaName  string
	Status      string
	MaxSessions int // license limit, >= 1
	CreatedAt   time.Time
}

// IsActive reports whether the tenant has been approved and not suspended.
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// ValidTenantStatus reports whether s is one of the known statuses.
func ValidTenantStatus(s string) bool {
	switch s {
	case TenantStatusPending, TenantStatusActive, TenantStatusSuspended:
		return true
	}
	return false
}
