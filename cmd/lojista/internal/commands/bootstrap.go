package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/lojista-hq/lojista/internal/auth"
	"github.com/lojista-hq/lojista/internal/logger"
	"github.com/lojista-hq/lojista/internal/models"
	"github.com/lojista-hq/lojista/internal/store/postgres"
)

// BootstrapCmd provisions the platform operator: an active tenant with
// an admin user that can approve registrations. Run once against a
// fresh database.
type BootstrapCmd struct {
	Config string `help:"path to bootstrap config YAML" default:"bootstrap.yaml" env:"LOJISTA_BOOTSTRAP_CONFIG"`

	Postgres PostgresFlags `embed:"" prefix:"postgres-"`
}

// BootstrapConfig is the YAML shape of the bootstrap file.
type BootstrapConfig struct {
	CompanyName string `yaml:"companyName"`
	Email       string `yaml:"email"`
	Password    string `yaml:"password"`
	MaxSessions int    `yaml:"maxSessions"`
}

func (c *BootstrapConfig) Validate() error {
	if strings.TrimSpace(c.CompanyName) == "" {
		return errors.New("companyName is required")
	}
	if !strings.Contains(c.Email, "@") {
		return errors.New("email must be a valid email address")
	}
	if len(c.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if c.MaxSessions < 1 {
		c.MaxSessions = 3
	}
	return nil
}

// LoadBootstrapConfig reads and validates a bootstrap YAML file.
func LoadBootstrapConfig(path string) (*BootstrapConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bootstrap config: %w", err)
	}

	var cfg BootstrapConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse bootstrap config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bootstrap config: %w", err)
	}

	return &cfg, nil
}

func (c *BootstrapCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	cfg, err := LoadBootstrapConfig(c.Config)
	if err != nil {
		return err
	}

	pool, err := postgres.NewPool(ctx, &postgres.PoolConfig{
		ConnString:  c.Postgres.ConnString,
		MaxConns:    c.Postgres.MaxConns,
		MinConns:    c.Postgres.MinConns,
		AutoMigrate: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	tenants := postgres.NewTenantStore()
	users := postgres.NewUserStore()
	hasher := auth.NewHasher()

	hash, err := hasher.Hash(cfg.Password)
	if err != nil {
		return err
	}

	tenantID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate tenant ID: %w", err)
	}
	userID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate user ID: %w", err)
	}

	now := time.Now()
	tenant := &models.Tenant{
		TenantID:    tenantID,
		Name:        strings.TrimSpace(cfg.CompanyName),
		SchemaName:  postgres.NewSchemaName(cfg.CompanyName),
		Status:      models.TenantStatusPending,
		MaxSessions: cfg.MaxSessions,
		CreatedAt:   now,
	}
	user := &models.User{
		UserID:       userID,
		TenantID:     tenantID,
		Email:        strings.ToLower(strings.TrimSpace(cfg.Email)),
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		CreatedAt:    now,
	}

	lease, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer lease.Release()

	tx, err := lease.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := tenants.Create(ctx, tx, tenant); err != nil {
		return err
	}
	if err := users.Create(ctx, tx, user); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit bootstrap: %w", err)
	}

	// Approve immediately so the operator tenant has a live schema and
	// the admin can log in without a second step.
	if _, err := tenants.Approve(ctx, lease, tenantID); err != nil {
		return err
	}

	log.Info().
		Str("tenant_id", tenantID.String()).
		Str("email", user.Email).
		Msg("platform admin provisioned")

	return nil
}
