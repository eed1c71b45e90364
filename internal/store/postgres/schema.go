package postgres

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lojista-hq/lojista/internal/apperr"
)

// schemaNamePattern is the strict token syntax for tenant schema names.
// Postgres identifiers are limited to 63 bytes; anything outside this
// syntax is rejected before it can reach a query.
var schemaNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// ValidateSchemaName rejects schema identifiers that are not plain
// lowercase tokens. Identifiers always pass through here before being
// interpolated into SET search_path or CREATE SCHEMA statements.
func ValidateSchemaName(schema string) error {
	if !schemaNamePattern.MatchString(schema) {
		return apperr.New(apperr.Validation, "invalid schema identifier")
	}
	return nil
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// NewSchemaName derives a fresh namespace-safe schema token from a
// tenant display name, suffixed with a short random component so names
// never collide. Tokens are permanent once assigned.
func NewSchemaName(displayName string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(displayName), "_")
	slug = strings.Trim(slug, "_")
	if len(slug) > 32 {
		slug = slug[:32]
	}
	if slug == "" {
		slug = "tenant"
	}
	suffix := strings.ReplaceAll(uuid.New().String()[:8], "-", "")
	return "t_" + slug + "_" + suffix
}

// RouteTo points the lease at a tenant schema: unqualified table names
// resolve against the tenant schema first, falling back to public for
// the shared tables. The lease is marked routed before the switch is
// attempted, so a partial failure causes Release to reset or discard
// the connection instead of pooling it with a dangling tenant context.
func (l *Lease) RouteTo(ctx context.Context, schema string) error {
	if err := ValidateSchemaName(schema); err != nil {
		return err
	}

	l.schema = schema
	l.routed.Store(true)

	ident := pgx.Identifier{schema}.Sanitize()
	if _, err := l.conn.Exec(ctx, "SET search_path TO "+ident+", public"); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to switch tenant schema", err)
	}

	return nil
}
