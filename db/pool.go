// Package db provides a bounded SQLite connection pool handing out
// exclusive connection leases.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Options configures a Pool. The zero value is usable: missing fields are
// replaced with defaults by Open.
type Options struct {
	// MaxConns bounds the number of live connections. Defaults to 5.
	MaxConns int
	// AcquireTimeout is how long Acquire waits for a free connection
	// before failing with ErrPoolExhausted. Defaults to 5 seconds.
	AcquireTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxConns == 0 {
		o.MaxConns = 5
	}
	if o.AcquireTimeout == 0 {
		o.AcquireTimeout = 5 * time.Second
	}
	return o
}

// Pool owns a bounded set of connections to one SQLite database file.
// It is safe for concurrent use; each outstanding Lease is bound to a
// distinct physical connection.
type Pool struct {
	db   *sql.DB
	opts Options
	path string
}

// Open opens or creates the SQLite database at path and configures it for
// concurrent use: WAL journaling, foreign key enforcement, a busy timeout,
// and immediate transaction locking. The pragmas are applied through the
// DSN so every pooled connection gets them.
func Open(path string, opts Options) (*Pool, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: database path is empty", ErrInvalidConfig)
	}
	if opts.MaxConns < 0 || opts.AcquireTimeout < 0 {
		return nil, fmt.Errorf("%w: negative pool parameters", ErrInvalidConfig)
	}
	dsn := "file:" + path +
		"?_txlock=immediate" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)"
	return open(dsn, path, opts)
}

// OpenInMemory creates a private in-memory database, useful for tests.
// A single connection is kept so the database survives between leases.
func OpenInMemory() (*Pool, error) {
	dsn := fmt.Sprintf("file:mem-%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	return open(dsn, ":memory:", Options{MaxConns: 1})
}

func open(dsn, path string, opts Options) (*Pool, error) {
	opts = opts.withDefaults()

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(opts.MaxConns)
	sqlDB.SetMaxIdleConns(opts.MaxConns)

	ctx, cancel := context.WithTimeout(context.Background(), opts.AcquireTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("%w: open %q: %v", ErrInvalidConfig, path, err)
	}

	return &Pool{db: sqlDB, opts: opts, path: path}, nil
}

// Acquire blocks until a connection is free, then returns an exclusive
// lease on it. It fails with ErrPoolExhausted if no connection becomes
// available within the configured timeout, or earlier if ctx is done.
func (p *Pool) Acquire(ctx context.Context) (*Lease, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.AcquireTimeout)
	defer cancel()

	conn, err := p.db.Conn(ctx)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, fmt.Errorf("%w: no connection available within %s", ErrPoolExhausted, p.opts.AcquireTimeout)
		case strings.Contains(err.Error(), "database is closed"):
			return nil, ErrPoolClosed
		default:
			return nil, fmt.Errorf("acquire connection: %w", err)
		}
	}
	return &Lease{id: uuid.NewString(), conn: conn}, nil
}

// Path returns the database file path the pool was opened with.
func (p *Pool) Path() string {
	return p.path
}

// Close closes the pool and all its connections. Outstanding leases keep
// working until released.
func (p *Pool) Close() error {
	return p.db.Close()
}
