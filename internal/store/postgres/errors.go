package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lojista-hq/lojista/internal/apperr"
)

// translateError maps PostgreSQL errors to the application taxonomy at
// the store boundary. Unique violations become Conflict with a message
// derived from the constraint; foreign key violations become Validation
// (the caller referenced a row that does not exist). Anything else is
// Internal: the raw driver detail is preserved for logs via wrapping
// but never shown to clients.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return apperr.Wrap(apperr.Internal, op, err)
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return apperr.Wrap(apperr.Conflict, conflictMessage(pgErr.ConstraintName), err)

	case pgerrcode.ForeignKeyViolation:
		return apperr.Wrap(apperr.Validation, "referenced record does not exist", err)

	case pgerrcode.CheckViolation:
		return apperr.Wrap(apperr.BusinessRule, "operation violates a data constraint", err)

	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return apperr.Wrap(apperr.Internal, "transaction conflict, please retry", err)

	default:
		return apperr.Wrap(apperr.Internal, op, err)
	}
}

// conflictMessage turns a unique constraint name into a client-safe
// message. Constraint names come from our own migrations, so matching
// on substrings is stable.
func conflictMessage(constraint string) string {
	switch {
	case strings.Contains(constraint, "email"):
		return "email is already registered"
	case strings.Contains(constraint, "sku"):
		return "SKU is already in use"
	case strings.Contains(constraint, "document"):
		return "document number is already registered"
	case strings.Contains(constraint, "schema_name"):
		return "schema name is already taken"
	case strings.Contains(constraint, "order_id_product"):
		return "duplicate product in order"
	default:
		return "record already exists"
	}
}
