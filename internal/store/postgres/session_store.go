package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/lojista-hq/lojista/internal/apperr"
	"github.com/lojista-hq/lojista/internal/models"
)

// touchTimeout bounds the fire-and-forget last-seen update.
const touchTimeout = 5 * time.Second

// SessionStore manages session rows in the shared schema. It enforces
// the per-tenant license ceiling at admission time. The store keeps a
// reference to the pool for background writes (last-seen touches and
// pruning) that must not contend with the request's own lease.
type SessionStore struct {
	pool *Pool
}

// NewSessionStore creates a session store.
func NewSessionStore(pool *Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

// Admit creates a session for a user if the tenant's license allows one
// more. The tenant row is locked for the duration of the transaction so
// two concurrent logins cannot both pass the count check: the second
// blocks on the lock and re-reads a count that includes the first.
func (s *SessionStore) Admit(ctx context.Context, lease *Lease, session *models.Session) error {
	tx, err := lease.Begin(ctx)
	if err != nil {
		return translateError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	var maxSessions int
	err = tx.QueryRow(ctx, `
		SELECT max_sessions FROM tenants WHERE id = $1 FOR UPDATE
	`, session.TenantID).Scan(&maxSessions)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.New(apperr.NotFound, "tenant not found")
		}
		return translateError("failed to lock tenant", err)
	}

	var live int
	err = tx.QueryRow(ctx, `
		SELECT count(*) FROM sessions WHERE tenant_id = $1
	`, session.TenantID).Scan(&live)
	if err != nil {
		return translateError("failed to count sessions", err)
	}

	if live >= maxSessions {
		return apperr.Newf(apperr.BusinessRule,
			"session limit reached: license allows %d concurrent sessions", maxSessions)
	}

	var ipAddress any
	if session.IPAddress != "" {
		ipAddress = session.IPAddress
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO sessions (id, user_id, tenant_id, ip_address, user_agent, created_at, last_seen)
		VALUES ($1, $2, $3, $4::inet, $5, $6, $7)
	`,
		session.SessionID,
		session.UserID,
		session.TenantID,
		ipAddress,
		session.UserAgent,
		session.CreatedAt,
		session.LastSeen,
	)
	if err != nil {
		return translateError("failed to create session", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return translateError("failed to commit session admission", err)
	}

	log.Debug().
		Str("session_id", session.SessionID.String()).
		Str("tenant_id", session.TenantID.String()).
		Int("live", live+1).
		Int("limit", maxSessions).
		Msg("admitted session")

	return nil
}

// Validate checks that the session row still exists. An absent row
// means the user logged out or was pruned; the token is no longer good.
// On success the last-seen timestamp is updated in the background,
// off the request's lease; a failed touch only logs.
func (s *SessionStore) Validate(ctx context.Context, lease *Lease, sessionID uuid.UUID) error {
	var id uuid.UUID
	err := lease.QueryRow(ctx, `SELECT id FROM sessions WHERE id = $1`, sessionID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.New(apperr.Auth, "session expired or invalid")
		}
		return translateError("failed to validate session", err)
	}

	go s.touchLastSeen(sessionID)

	return nil
}

// touchLastSeen records liveness telemetry. Eventually consistent; runs
// on its own pool checkout so it never blocks or fails a request.
func (s *SessionStore) touchLastSeen(sessionID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), touchTimeout)
	defer cancel()

	_, err := s.pool.Raw().Exec(ctx, `UPDATE sessions SET last_seen = now() WHERE id = $1`, sessionID)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("failed to touch session last_seen")
	}
}

// Delete removes a session (logout). Idempotent: deleting a session
// that is already gone succeeds, since the caller's intent is satisfied
// either way.
func (s *SessionStore) Delete(ctx context.Context, lease *Lease, sessionID uuid.UUID) error {
	_, err := lease.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID)
	if err != nil {
		return translateError("failed to delete session", err)
	}

	log.Debug().Str("session_id", sessionID.String()).Msg("deleted session")
	return nil
}

// ListActive returns sessions seen within the given window, joined with
// user email and tenant name for the admin surface.
func (s *SessionStore) ListActive(ctx context.Context, lease *Lease, window time.Duration) ([]*models.ActiveSession, error) {
	query := `
		SELECT s.id, u.email, t.name, s.last_seen
		FROM sessions s
		JOIN users u ON s.user_id = u.id
		JOIN tenants t ON s.tenant_id = t.id
		WHERE s.last_seen > now() - $1::interval
		ORDER BY s.last_seen DESC
	`

	rows, err := lease.Query(ctx, query, window)
	if err != nil {
		return nil, translateError("failed to list active sessions", err)
	}
	defer rows.Close()

	var sessions []*models.ActiveSession
	for rows.Next() {
		var as models.ActiveSession
		if err := rows.Scan(&as.SessionID, &as.Email, &as.TenantName, &as.LastSeen); err != nil {
			return nil, translateError("failed to scan session", err)
		}
		sessions = append(sessions, &as)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("error iterating sessions", err)
	}

	return sessions, nil
}

// DeleteStale prunes sessions that have not reported liveness for the
// given duration. Run periodically by the server's janitor so crashed
// clients eventually stop counting against their tenant's license.
func (s *SessionStore) DeleteStale(ctx context.Context, olderThan time.Duration) (int, error) {
	result, err := s.pool.Raw().Exec(ctx,
		`DELETE FROM sessions WHERE last_seen < now() - $1::interval`, olderThan)
	if err != nil {
		return 0, translateError("failed to delete stale sessions", err)
	}

	count := int(result.RowsAffected())
	if count > 0 {
		log.Info().Int("count", count).Msg("pruned stale sessions")
	}

	return count, nil
}
