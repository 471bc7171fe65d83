package db

import (
	"context"
	"database/sql"
)

// Lease is exclusive temporary ownership of one pooled connection.
// Statements issued through a lease never interleave with statements from
// other leases. Close returns the connection to the pool; closing twice
// is a no-op, so a deferred Close on every exit path is safe.
type Lease struct {
	id     string
	conn   *sql.Conn
	closed bool
}

// ID returns the lease's correlation ID, useful for logging.
func (l *Lease) ID() string {
	return l.id
}

// ExecContext executes a statement on the leased connection.
func (l *Lease) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return l.conn.ExecContext(ctx, query, args...)
}

// QueryContext runs a query on the leased connection.
func (l *Lease) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return l.conn.QueryContext(ctx, query, args...)
}

// QueryRowContext runs a single-row query on the leased connection.
func (l *Lease) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return l.conn.QueryRowContext(ctx, query, args...)
}

// BeginTx starts a transaction on the leased connection.
func (l *Lease) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return l.conn.BeginTx(ctx, opts)
}

// Close releases the connection back to the pool.
func (l *Lease) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	return l.conn.Close()
}
