package postgres

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojista-hq/lojista/internal/apperr"
)

// fakeConn records lease interactions without a database.
type fakeConn struct {
	mu       sync.Mutex
	execSQL  []string
	execErr  error
	released int
	hijacked int
}

func (f *fakeConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execSQL = append(f.execSQL, sql)
	return pgconn.CommandTag{}, f.execErr
}

func (f *fakeConn) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (f *fakeConn) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (f *fakeConn) Begin(context.Context) (pgx.Tx, error)                   { return nil, nil }

func (f *fakeConn) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released++
}

func (f *fakeConn) Hijack() *pgx.Conn {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hijacked++
	return nil
}

func TestLeaseReleaseUnrouted(t *testing.T) {
	conn := &fakeConn{}
	lease := newLease(conn)

	lease.Release()

	assert.Equal(t, 1, conn.released)
	assert.Empty(t, conn.execSQL, "an unrouted lease needs no search_path reset")
}

func TestLeaseReleaseIdempotent(t *testing.T) {
	conn := &fakeConn{}
	lease := newLease(conn)

	lease.Release()
	lease.Release()
	lease.Release()

	assert.Equal(t, 1, conn.released, "only the first Release returns the connection")
}

func TestLeaseReleaseConcurrent(t *testing.T) {
	conn := &fakeConn{}
	lease := newLease(conn)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lease.Release()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, conn.released)
}

func TestLeaseReleaseResetsRoutedSearchPath(t *testing.T) {
	conn := &fakeConn{}
	lease := newLease(conn)

	require.NoError(t, lease.RouteTo(context.Background(), "t_acme_12ab34cd"))
	assert.Equal(t, "t_acme_12ab34cd", lease.Schema())

	lease.Release()

	require.Len(t, conn.execSQL, 2)
	assert.Contains(t, conn.execSQL[0], `SET search_path TO "t_acme_12ab34cd", public`)
	assert.Equal(t, "SET search_path TO public", conn.execSQL[1])
	assert.Equal(t, 1, conn.released)
	assert.Equal(t, 0, conn.hijacked)
}

func TestLeaseReleaseDiscardsOnResetFailure(t *testing.T) {
	conn := &fakeConn{}
	lease := newLease(conn)

	require.NoError(t, lease.RouteTo(context.Background(), "t_acme_12ab34cd"))

	// A failed reset must not pool a connection with a dangling tenant
	// search_path.
	conn.execErr = assert.AnError
	lease.Release()

	assert.Equal(t, 0, conn.released)
	assert.Equal(t, 1, conn.hijacked)
}

func TestLeaseRouteToFailureMarksRouted(t *testing.T) {
	conn := &fakeConn{execErr: assert.AnError}
	lease := newLease(conn)

	err := lease.RouteTo(context.Background(), "t_acme_12ab34cd")
	require.Error(t, err)

	// Even though the switch failed, the connection state is unknown:
	// Release must attempt the reset path, not pool the connection as-is.
	conn.execErr = nil
	lease.Release()
	assert.Equal(t, "SET search_path TO public", conn.execSQL[len(conn.execSQL)-1])
}

func TestLeaseRouteToRejectsBadSchema(t *testing.T) {
	conn := &fakeConn{}
	lease := newLease(conn)

	for _, schema := range []string{
		"",
		"Tenant",
		"t-acme",
		"t_acme; DROP TABLE tenants",
		`t"acme`,
		"t_acme, pg_catalog",
	} {
		err := lease.RouteTo(context.Background(), schema)
		require.Error(t, err, "schema %q must be rejected", schema)
		assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	}

	assert.Empty(t, conn.execSQL, "rejected identifiers must never reach the connection")
}

func TestLeaseDiscard(t *testing.T) {
	conn := &fakeConn{}
	lease := newLease(conn)

	lease.Discard()
	lease.Discard()
	lease.Release()

	assert.Equal(t, 1, conn.hijacked)
	assert.Equal(t, 0, conn.released)
}
