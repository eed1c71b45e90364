package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/lojista-hq/lojista/internal/apperr"
	"github.com/lojista-hq/lojista/internal/models"
)

// UserStore persists users in the shared schema.
type UserStore struct{}

// NewUserStore creates a user store.
func NewUserStore() *UserStore {
	return &UserStore{}
}

// Create inserts a new user inside the caller's transaction.
func (s *UserStore) Create(ctx context.Context, tx pgx.Tx, user *models.User) error {
	query := `
		INSERT INTO users (id, tenant_id, email, password_hash, role, login_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tx.Exec(ctx, query,
		user.UserID,
		user.TenantID,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.LoginCount,
		user.CreatedAt,
	)
	if err != nil {
		return translateError("failed to create user", err)
	}

	log.Debug().
		Str("user_id", user.UserID.String()).
		Str("tenant_id", user.TenantID.String()).
		Msg("created user")

	return nil
}

// LoginRecord joins a user with its tenant for the login flow: one
// round trip resolves credential, tenant status and schema.
type LoginRecord struct {
	User   models.User
	Tenant models.Tenant
}

// GetForLogin looks a user up by email together with its tenant. An
// unknown email returns an Auth error identical to a wrong password, so
// the response does not reveal which one was wrong.
func (s *UserStore) GetForLogin(ctx context.Context, lease *Lease, email string) (*LoginRecord, error) {
	query := `
		SELECT u.id, u.tenant_id, u.email, u.password_hash, u.role, u.login_count, u.created_at,
		       t.id, t.name, t.schema_name, t.status, t.max_sessions, t.created_at
		FROM users u
		JOIN tenants t ON u.tenant_id = t.id
		WHERE u.email = $1
	`

	var rec LoginRecord
	err := lease.QueryRow(ctx, query, email).Scan(
		&rec.User.UserID,
		&rec.User.TenantID,
		&rec.User.Email,
		&rec.User.PasswordHash,
		&rec.User.Role,
		&rec.User.LoginCount,
		&rec.User.CreatedAt,
		&rec.Tenant.TenantID,
		&rec.Tenant.Name,
		&rec.Tenant.SchemaName,
		&rec.Tenant.Status,
		&rec.Tenant.MaxSessions,
		&rec.Tenant.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.Auth, "invalid credentials")
		}
		return nil, translateError("failed to look up user", err)
	}

	return &rec, nil
}

// IncrementLoginCount bumps the user's login counter. Best-effort: the
// caller logs a failure but never fails the login over it.
func (s *UserStore) IncrementLoginCount(ctx context.Context, lease *Lease, userID uuid.UUID) error {
	_, err := lease.Exec(ctx, `UPDATE users SET login_count = login_count + 1 WHERE id = $1`, userID)
	if err != nil {
		return translateError("failed to increment login count", err)
	}
	return nil
}
