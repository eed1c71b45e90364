package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/lojista-hq/lojista/internal/auth"
	"github.com/lojista-hq/lojista/internal/logger"
	"github.com/lojista-hq/lojista/internal/server"
	"github.com/lojista-hq/lojista/internal/store/postgres"
	"github.com/lojista-hq/lojista/internal/telemetry"
)

type ServerCmd struct {
	Listen string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"LOJISTA_LISTEN"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"http://localhost:5173" env:"LOJISTA_CORS_ORIGINS"`

	// Token configuration
	TokenSigningSecret string `help:"secret key for HMAC signing of bearer tokens" env:"LOJISTA_TOKEN_SECRET"`

	// License defaults
	DefaultMaxSessions int `help:"session limit assigned to new tenants" default:"3" env:"LOJISTA_DEFAULT_MAX_SESSIONS"`

	// Session janitor configuration
	SessionMaxIdle       time.Duration `help:"idle duration after which sessions are pruned" default:"12h" env:"LOJISTA_SESSION_MAX_IDLE"`
	SessionPruneInterval time.Duration `help:"how often the session janitor runs" default:"10m" env:"LOJISTA_SESSION_PRUNE_INTERVAL"`

	Tracing bool `help:"enable tracing and metrics export" default:"false" env:"LOJISTA_TRACING"`

	Postgres PostgresFlags `embed:"" prefix:"postgres-"`
}

type PostgresFlags struct {
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection pool configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	AutoMigrate bool `help:"run shared-schema migrations on startup" default:"false" env:"LOJISTA_POSTGRES_AUTO_MIGRATE"`
}

func (f *PostgresFlags) Validate() error {
	if f.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

func (c *ServerCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	if len(c.TokenSigningSecret) < 32 {
		return errors.New("token signing secret must be at least 32 bytes (--token-signing-secret or LOJISTA_TOKEN_SECRET)")
	}

	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.Init(ctx, "lojista-server", globals.Version)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	pool, err := postgres.NewPool(ctx, &postgres.PoolConfig{
		ConnString:      c.Postgres.ConnString,
		MaxConns:        c.Postgres.MaxConns,
		MinConns:        c.Postgres.MinConns,
		MaxConnLifetime: c.Postgres.MaxConnLifetime,
		MaxConnIdleTime: c.Postgres.MaxConnIdleTime,
		AutoMigrate:     c.Postgres.AutoMigrate,
	})
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	tokens, err := auth.NewTokens([]byte(c.TokenSigningSecret))
	if err != nil {
		return err
	}

	srv := server.New(pool, tokens, server.Config{
		CORSOrigins:        c.CORSOrigins,
		DefaultMaxSessions: c.DefaultMaxSessions,
	})

	janitor := newSessionJanitor(srv.Sessions(), c.SessionMaxIdle, c.SessionPruneInterval)
	go janitor.run(ctx)

	httpServer := configureHTTPServer(c.Listen, srv.Routes(log))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shut down HTTP server")
		}
	}()

	log.Info().Str("addr", c.Listen).Msg("Starting HTTP server")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
