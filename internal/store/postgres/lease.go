package postgres

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// releaseTimeout bounds the search_path reset performed when a routed
// lease is returned to the pool.
const releaseTimeout = 2 * time.Second

// leaseConn is the slice of *pgxpool.Conn the lease relies on. Narrowed
// to an interface so release semantics are testable without a database.
type leaseConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Release()
	Hijack() *pgx.Conn
}

// Lease is an owned handle on exactly one pooled connection. Every
// acquisition must be balanced by exactly one Release, on success and
// on every failure path; a leaked lease eventually exhausts the pool
// and takes down the whole service, not just one request.
type Lease struct {
	conn     leaseConn
	released atomic.Bool
	routed   atomic.Bool
	schema   string
}

func newLease(conn leaseConn) *Lease {
	return &Lease{conn: conn}
}

// Schema returns the tenant schema this lease is routed to, or "" when
// it still resolves against the shared schema only.
func (l *Lease) Schema() string {
	if l.routed.Load() {
		return l.schema
	}
	return ""
}

// Exec runs a statement on the leased connection.
func (l *Lease) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return l.conn.Exec(ctx, sql, args...)
}

// Query runs a query on the leased connection.
func (l *Lease) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return l.conn.Query(ctx, sql, args...)
}

// QueryRow runs a single-row query on the leased connection.
func (l *Lease) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return l.conn.QueryRow(ctx, sql, args...)
}

// Begin opens a transaction on the leased connection. The transaction
// sees the lease's current search_path.
func (l *Lease) Begin(ctx context.Context) (pgx.Tx, error) {
	return l.conn.Begin(ctx)
}

// Release returns the connection to the pool. Safe to call more than
// once; only the first call performs the return. A routed lease has its
// search_path reset first, and if the reset fails the underlying
// connection is closed so the pool discards it rather than handing a
// dangling tenant context to the next request.
func (l *Lease) Release() {
	if !l.released.CompareAndSwap(false, true) {
		return
	}

	if l.routed.Load() {
		ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()

		if _, err := l.conn.Exec(ctx, "SET search_path TO public"); err != nil {
			log.Warn().Err(err).Str("schema", l.schema).
				Msg("failed to reset search_path, discarding connection")
			l.close(ctx)
			return
		}
	}

	l.conn.Release()
}

// Discard closes the underlying connection instead of pooling it. Used
// when the connection state is unknown, e.g. a schema switch failed
// partway. Idempotent with Release: whichever runs first wins.
func (l *Lease) Discard() {
	if !l.released.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	l.close(ctx)
}

func (l *Lease) close(ctx context.Context) {
	if conn := l.conn.Hijack(); conn != nil {
		_ = conn.Close(ctx)
	}
}
