package postgres

import (
	"context"
	_ "embed"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/lojista-hq/lojista/internal/apperr"
	"github.com/lojista-hq/lojista/internal/models"
)

//go:embed tenant_schema.sql
var tenantSchemaSQL string

// TenantStore persists tenants in the shared schema and owns the
// approval workflow that provisions a tenant's own schema. Methods take
// the caller's lease: the request pipeline decides which connection a
// request runs on, stores never check one out themselves.
type TenantStore struct{}

// NewTenantStore creates a tenant store.
func NewTenantStore() *TenantStore {
	return &TenantStore{}
}

// Create inserts a new tenant, status pending, inside the caller's
// transaction (registration creates tenant and first user atomically).
func (s *TenantStore) Create(ctx context.Context, tx pgx.Tx, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, schema_name, status, max_sessions, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.Exec(ctx, query,
		tenant.TenantID,
		tenant.Name,
		tenant.SchemaName,
		tenant.Status,
		tenant.MaxSessions,
		tenant.CreatedAt,
	)
	if err != nil {
		return translateError("failed to create tenant", err)
	}

	log.Debug().
		Str("tenant_id", tenant.TenantID.String()).
		Str("schema", tenant.SchemaName).
		Msg("created tenant")

	return nil
}

// Get retrieves a tenant by ID.
func (s *TenantStore) Get(ctx context.Context, lease *Lease, tenantID uuid.UUID) (*models.Tenant, error) {
	query := `
		SELECT id, name, schema_name, status, max_sessions, created_at
		FROM tenants
		WHERE id = $1
	`

	var tenant models.Tenant
	err := lease.QueryRow(ctx, query, tenantID).Scan(
		&tenant.TenantID,
		&tenant.Name,
		&tenant.SchemaName,
		&tenant.Status,
		&tenant.MaxSessions,
		&tenant.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "tenant not found")
		}
		return nil, translateError("failed to get tenant", err)
	}

	return &tenant, nil
}

// TenantOverview is the admin listing row: the tenant plus its first
// user's email and login count.
type TenantOverview struct {
	models.Tenant
	AdminEmail string
	LoginCount int64
}

// List returns all tenants, newest first, with first-user contact info.
func (s *TenantStore) List(ctx context.Context, lease *Lease) ([]*TenantOverview, error) {
	query := `
		SELECT t.id, t.name, t.schema_name, t.status, t.max_sessions, t.created_at,
		       COALESCE((SELECT u.email FROM users u WHERE u.tenant_id = t.id ORDER BY u.created_at LIMIT 1), ''),
		       COALESCE((SELECT u.login_count FROM users u WHERE u.tenant_id = t.id ORDER BY u.created_at LIMIT 1), 0)
		FROM tenants t
		ORDER BY t.created_at DESC
	`

	rows, err := lease.Query(ctx, query)
	if err != nil {
		return nil, translateError("failed to list tenants", err)
	}
	defer rows.Close()

	var tenants []*TenantOverview
	for rows.Next() {
		var t TenantOverview
		err := rows.Scan(
			&t.TenantID,
			&t.Name,
			&t.SchemaName,
			&t.Status,
			&t.MaxSessions,
			&t.CreatedAt,
			&t.AdminEmail,
			&t.LoginCount,
		)
		if err != nil {
			return nil, translateError("failed to scan tenant", err)
		}
		tenants = append(tenants, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("error iterating tenants", err)
	}

	return tenants, nil
}

// SetStatus updates a tenant's status (suspension / reactivation).
// Approval goes through Approve, which also provisions the schema.
func (s *TenantStore) SetStatus(ctx context.Context, lease *Lease, tenantID uuid.UUID, status string) error {
	if !models.ValidTenantStatus(status) {
		return apperr.New(apperr.Validation, "invalid tenant status")
	}

	result, err := lease.Exec(ctx, `UPDATE tenants SET status = $2 WHERE id = $1`, tenantID, status)
	if err != nil {
		return translateError("failed to update tenant status", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "tenant not found")
	}

	log.Info().
		Str("tenant_id", tenantID.String()).
		Str("status", status).
		Msg("updated tenant status")

	return nil
}

// Approve activates a pending tenant: creates its schema, provisions
// the business tables from the embedded template, and flips the status
// to active, all in one transaction. A failure anywhere rolls the whole
// thing back, so a half-provisioned schema never ends up marked active.
func (s *TenantStore) Approve(ctx context.Context, lease *Lease, tenantID uuid.UUID) (*models.Tenant, error) {
	tx, err := lease.Begin(ctx)
	if err != nil {
		return nil, translateError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	var tenant models.Tenant
	err = tx.QueryRow(ctx, `
		SELECT id, name, schema_name, status, max_sessions, created_at
		FROM tenants
		WHERE id = $1
		FOR UPDATE
	`, tenantID).Scan(
		&tenant.TenantID,
		&tenant.Name,
		&tenant.SchemaName,
		&tenant.Status,
		&tenant.MaxSessions,
		&tenant.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "tenant not found")
		}
		return nil, translateError("failed to load tenant", err)
	}

	if tenant.Status == models.TenantStatusActive {
		return nil, apperr.New(apperr.BusinessRule, "tenant is already active")
	}

	if err := ValidateSchemaName(tenant.SchemaName); err != nil {
		return nil, err
	}
	ident := pgx.Identifier{tenant.SchemaName}.Sanitize()

	if _, err := tx.Exec(ctx, "CREATE SCHEMA "+ident); err != nil {
		return nil, translateError("failed to create tenant schema", err)
	}

	// Point the transaction's connection at the new schema so the
	// template DDL lands there. SET LOCAL scopes the change to this
	// transaction; the lease itself stays on public.
	if _, err := tx.Exec(ctx, "SET LOCAL search_path TO "+ident); err != nil {
		return nil, translateError("failed to switch to tenant schema", err)
	}

	if _, err := tx.Exec(ctx, tenantSchemaSQL); err != nil {
		return nil, translateError("failed to provision tenant schema", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE public.tenants SET status = 'active' WHERE id = $1`, tenantID); err != nil {
		return nil, translateError("failed to activate tenant", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, translateError("failed to commit tenant approval", err)
	}

	tenant.Status = models.TenantStatusActive

	log.Info().
		Str("tenant_id", tenantID.String()).
		Str("schema", tenant.SchemaName).
		Msg("approved tenant and provisioned schema")

	return &tenant, nil
}
