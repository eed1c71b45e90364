package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lojista-hq/lojista/internal/apperr"
	httpx "github.com/lojista-hq/lojista/internal/http"
	"github.com/lojista-hq/lojista/internal/models"
	"github.com/lojista-hq/lojista/internal/store/postgres"
	"github.com/lojista-hq/lojista/internal/telemetry"
)

type registerInput struct {
	CompanyName string `json:"companyName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

func (in *registerInput) Validate() error {
	if strings.TrimSpace(in.CompanyName) == "" {
		return httpx.FieldError("companyName", "is required")
	}
	if !strings.Contains(in.Email, "@") {
		return httpx.FieldError("email", "must be a valid email address")
	}
	if len(in.Password) < 8 {
		return httpx.FieldError("password", "must be at least 8 characters")
	}
	return nil
}

// handleRegister creates a pending tenant together with its first user
// in one transaction. The tenant cannot log in until an operator
// approves it, which is also when its schema gets provisioned.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in registerInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := in.Validate(); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	tenantID, err := newUUIDv7()
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	userID, err := newUUIDv7()
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	now := time.Now()
	tenant := &models.Tenant{
		TenantID:    tenantID,
		Name:        strings.TrimSpace(in.CompanyName),
		SchemaName:  postgres.NewSchemaName(in.CompanyName),
		Status:      models.TenantStatusPending,
		MaxSessions: s.cfg.DefaultMaxSessions,
		CreatedAt:   now,
	}
	user := &models.User{
		UserID:       userID,
		TenantID:     tenantID,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		Role:         models.RoleUser,
		CreatedAt:    now,
	}

	lease, err := s.pool.Acquire(ctx)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	defer lease.Release()

	tx, err := lease.Begin(ctx)
	if err != nil {
		httpx.WriteError(w, r, apperr.Wrap(apperr.Internal, "failed to begin transaction", err))
		return
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := s.tenants.Create(ctx, tx, tenant); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := s.users.Create(ctx, tx, user); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		httpx.WriteError(w, r, apperr.Wrap(apperr.Internal, "failed to commit registration", err))
		return
	}

	log.Info().
		Str("tenant_id", tenantID.String()).
		Str("email", user.Email).
		Msg("registered tenant, awaiting approval")

	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"tenantId": tenantID.String(),
		"status":   models.TenantStatusPending,
		"message":  "registration received, awaiting approval",
	})
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// handleLogin authenticates a user, admits a session under the tenant's
// license ceiling and issues a bearer token bound to that session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in loginInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if in.Email == "" || in.Password == "" {
		httpx.WriteError(w, r, apperr.New(apperr.Validation, "email and password are required"))
		return
	}

	lease, err := s.pool.Acquire(ctx)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	defer lease.Release()

	rec, err := s.users.GetForLogin(ctx, lease, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	if err := s.hasher.Verify(rec.User.PasswordHash, in.Password); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	switch rec.Tenant.Status {
	case models.TenantStatusActive:
	case models.TenantStatusPending:
		httpx.WriteError(w, r, apperr.New(apperr.BusinessRule, "tenant is awaiting approval"))
		return
	default:
		httpx.WriteError(w, r, apperr.New(apperr.BusinessRule, "tenant is suspended"))
		return
	}

	sessionID, err := newUUIDv7()
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	now := time.Now()
	session := &models.Session{
		SessionID: sessionID,
		UserID:    rec.User.UserID,
		TenantID:  rec.Tenant.TenantID,
		CreatedAt: now,
		LastSeen:  now,
		UserAgent: r.UserAgent(),
		IPAddress: httpx.ClientIPFromContext(ctx),
	}

	metrics := telemetry.GetMetrics()
	if err := s.sessions.Admit(ctx, lease, session); err != nil {
		if apperr.KindOf(err) == apperr.BusinessRule {
			metrics.SessionsDeniedTotal.Add(ctx, 1)
		}
		httpx.WriteError(w, r, err)
		return
	}
	metrics.SessionsAdmittedTotal.Add(ctx, 1)

	if err := s.users.IncrementLoginCount(ctx, lease, rec.User.UserID); err != nil {
		log.Warn().Err(err).Str("user_id", rec.User.UserID.String()).Msg("failed to increment login count")
	}

	token, err := s.tokens.Issue(rec.User.UserID, rec.Tenant.TenantID, rec.Tenant.SchemaName, rec.User.Role, sessionID)
	if err != nil {
		// The session row exists but no token ever reached the client.
		// Remove it so the dead session does not consume a license slot.
		if delErr := s.sessions.Delete(ctx, lease, sessionID); delErr != nil {
			log.Warn().Err(delErr).Str("session_id", sessionID.String()).Msg("failed to clean up session after token failure")
		}
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, loginResponse{Token: token, Role: rec.User.Role})
}

// handleLogout deletes the caller's session. It deliberately bypasses
// the session-validating pipeline: logging out an already-dead session
// must succeed, not 401.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, err := s.tokens.FromRequest(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	lease, err := s.pool.Acquire(ctx)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	defer lease.Release()

	if err := s.sessions.Delete(ctx, lease, claims.SessionID); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
