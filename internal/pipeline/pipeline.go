// Package pipeline is the tenant-routing request spine: every
// tenant-scoped request flows authenticate → lease → session check →
// schema switch → handler → release, with the release guaranteed on
// every exit path.
package pipeline

import (
	"net/http"

	"github.com/lojista-hq/lojista/internal/apperr"
	"github.com/lojista-hq/lojista/internal/auth"
	httpx "github.com/lojista-hq/lojista/internal/http"
	"github.com/lojista-hq/lojista/internal/models"
	"github.com/lojista-hq/lojista/internal/store/postgres"
)

// Ctx is what a business handler receives: a lease already routed to
// the right schema, and the verified claims of the caller.
type Ctx struct {
	Lease  *postgres.Lease
	Claims *auth.Claims
}

// Handler is a business handler running inside the pipeline.
type Handler func(w http.ResponseWriter, r *http.Request, pc *Ctx)

// Pipeline wires authentication, the connection pool and the session
// registry in front of business handlers.
type Pipeline struct {
	pool     *postgres.Pool
	tokens   *auth.Tokens
	sessions *postgres.SessionStore
}

// New creates a pipeline.
func New(pool *postgres.Pool, tokens *auth.Tokens, sessions *postgres.SessionStore) *Pipeline {
	return &Pipeline{pool: pool, tokens: tokens, sessions: sessions}
}

// Tenant wraps a handler for tenant-scoped routes. The handler's lease
// resolves unqualified tables against the caller's tenant schema, with
// the shared schema as fallback.
func (p *Pipeline) Tenant(next Handler) http.HandlerFunc {
	return p.run(next, true)
}

// Admin wraps a handler for admin routes. Non-admin roles are rejected
// before a connection is consumed; the handler's lease stays on the
// shared schema.
func (p *Pipeline) Admin(next Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := p.tokens.FromRequest(r)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		if claims.Role != models.RoleAdmin {
			httpx.WriteError(w, r, apperr.New(apperr.Forbidden, "admin role required"))
			return
		}
		p.serve(w, r, claims, false, next)
	}
}

func (p *Pipeline) run(next Handler, routeToTenant bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := p.tokens.FromRequest(r)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		p.serve(w, r, claims, routeToTenant, next)
	}
}

// serve owns the lease lifecycle. The deferred Release covers every
// path out of this function, including handler panics; Release is
// idempotent, so a handler that discarded the lease itself is fine.
func (p *Pipeline) serve(w http.ResponseWriter, r *http.Request, claims *auth.Claims, routeToTenant bool, next Handler) {
	ctx := r.Context()

	lease, err := p.pool.Acquire(ctx)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	defer lease.Release()

	if err := p.sessions.Validate(ctx, lease, claims.SessionID); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	if routeToTenant {
		if err := lease.RouteTo(ctx, claims.Schema); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
	}

	next(w, r, &Ctx{Lease: lease, Claims: claims})
}
