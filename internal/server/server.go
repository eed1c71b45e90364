// Package server exposes the REST surface and wires the request
// pipeline in front of the business handlers.
package server

import (
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/lojista-hq/lojista/internal/auth"
	httpx "github.com/lojista-hq/lojista/internal/http"
	"github.com/lojista-hq/lojista/internal/logger"
	"github.com/lojista-hq/lojista/internal/pipeline"
	"github.com/lojista-hq/lojista/internal/sales"
	"github.com/lojista-hq/lojista/internal/store/postgres"
)

// Config holds the server's tunables.
type Config struct {
	// CORSOrigins are the browser origins allowed to call the API.
	CORSOrigins []string

	// DefaultMaxSessions is the license limit assigned to tenants at
	// registration. Default: 3.
	DefaultMaxSessions int

	// ActiveSessionWindow is how recently a session must have been seen
	// to count as active on the admin surface. Default: 5 minutes.
	ActiveSessionWindow time.Duration

	// ListDefaultLimit caps list endpoints when the client does not
	// paginate explicitly. Default: 50.
	ListDefaultLimit int
}

func (c *Config) applyDefaults() {
	if c.DefaultMaxSessions == 0 {
		c.DefaultMaxSessions = 3
	}
	if c.ActiveSessionWindow == 0 {
		c.ActiveSessionWindow = 5 * time.Minute
	}
	if c.ListDefaultLimit == 0 {
		c.ListDefaultLimit = 50
	}
}

// Server holds the wired application.
type Server struct {
	pool      *postgres.Pool
	pipe      *pipeline.Pipeline
	tokens    *auth.Tokens
	hasher    *auth.Hasher
	engine    *sales.Engine
	tenants   *postgres.TenantStore
	users     *postgres.UserStore
	sessions  *postgres.SessionStore
	customers *postgres.CustomerStore
	products  *postgres.ProductStore
	orders    *postgres.SalesOrderStore
	cfg       Config
}

// New wires the stores, pipeline and sales engine on top of the pool.
func New(pool *postgres.Pool, tokens *auth.Tokens, cfg Config) *Server {
	cfg.applyDefaults()

	sessions := postgres.NewSessionStore(pool)

	return &Server{
		pool:      pool,
		pipe:      pipeline.New(pool, tokens, sessions),
		tokens:    tokens,
		hasher:    auth.NewHasher(),
		engine:    sales.NewEngine(),
		tenants:   postgres.NewTenantStore(),
		users:     postgres.NewUserStore(),
		sessions:  sessions,
		customers: postgres.NewCustomerStore(),
		products:  postgres.NewProductStore(),
		orders:    postgres.NewSalesOrderStore(),
		cfg:       cfg,
	}
}

// Sessions exposes the session store for the janitor.
func (s *Server) Sessions() *postgres.SessionStore {
	return s.sessions
}

// Routes builds the HTTP handler: routing, CORS, client IP capture and
// access logging.
func (s *Server) Routes(log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)

	mux.HandleFunc("GET /api/customers", s.pipe.Tenant(s.handleListCustomers))
	mux.HandleFunc("POST /api/customers", s.pipe.Tenant(s.handleCreateCustomer))
	mux.HandleFunc("GET /api/customers/{id}", s.pipe.Tenant(s.handleGetCustomer))
	mux.HandleFunc("PUT /api/customers/{id}", s.pipe.Tenant(s.handleUpdateCustomer))
	mux.HandleFunc("DELETE /api/customers/{id}", s.pipe.Tenant(s.handleDeleteCustomer))

	mux.HandleFunc("GET /api/products", s.pipe.Tenant(s.handleListProducts))
	mux.HandleFunc("POST /api/products", s.pipe.Tenant(s.handleCreateProduct))
	mux.HandleFunc("GET /api/products/{id}", s.pipe.Tenant(s.handleGetProduct))
	mux.HandleFunc("PUT /api/products/{id}", s.pipe.Tenant(s.handleUpdateProduct))
	mux.HandleFunc("DELETE /api/products/{id}", s.pipe.Tenant(s.handleDeleteProduct))

	mux.HandleFunc("POST /api/sales", s.pipe.Tenant(s.handleCreateOrder))
	mux.HandleFunc("GET /api/sales/{id}", s.pipe.Tenant(s.handleGetOrder))

	mux.HandleFunc("GET /api/admin/tenants", s.pipe.Admin(s.handleListTenants))
	mux.HandleFunc("POST /api/admin/tenants/{id}/approve", s.pipe.Admin(s.handleApproveTenant))
	mux.HandleFunc("PUT /api/admin/tenants/{id}/status", s.pipe.Admin(s.handleSetTenantStatus))
	mux.HandleFunc("GET /api/admin/sessions/active", s.pipe.Admin(s.handleActiveSessions))

	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	var handler http.Handler = mux
	handler = c.Handler(handler)
	handler = httpx.ClientIPMiddleware()(handler)
	handler = logger.HTTPRequests(log)(handler)

	return handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.pool.Ping(r.Context()); err != nil {
		httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
