package db_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shipkit/shipkit/db"
)

func newTestPool(t *testing.T, opts db.Options) *db.Pool {
	t.Helper()
	pool, err := db.Open(filepath.Join(t.TempDir(), "test.db"), opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	return pool
}

func TestOpen_ConfiguresDurability(t *testing.T) {
	pool := newTestPool(t, db.Options{})
	ctx := context.Background()

	lease, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer lease.Close()

	var mode string
	if err := lease.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("expected journal_mode=wal, got %q", mode)
	}

	var fk int
	if err := lease.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := db.Open("", db.Options{})
	if !errors.Is(err, db.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestOpen_NegativeOptions(t *testing.T) {
	_, err := db.Open("test.db", db.Options{MaxConns: -1})
	if !errors.Is(err, db.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestAcquire_DistinctConnections(t *testing.T) {
	pool := newTestPool(t, db.Options{MaxConns: 2})
	ctx := context.Background()

	a, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire a: %v", err)
	}
	defer a.Close()

	b, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire b: %v", err)
	}
	defer b.Close()

	if a.ID() == b.ID() {
		t.Fatal("expected distinct lease IDs")
	}

	// Both leases usable at the same time.
	if _, err := a.ExecContext(ctx, "CREATE TABLE t (id INTEGER PRIMARY KEY)"); err != nil {
		t.Fatalf("exec on lease a: %v", err)
	}
	var n int
	if err := b.QueryRowContext(ctx, "SELECT count(*) FROM t").Scan(&n); err != nil {
		t.Fatalf("query on lease b: %v", err)
	}
}

func TestAcquire_Exhausted(t *testing.T) {
	pool := newTestPool(t, db.Options{MaxConns: 1, AcquireTimeout: 100 * time.Millisecond})
	ctx := context.Background()

	held, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer held.Close()

	start := time.Now()
	_, err = pool.Acquire(ctx)
	if !errors.Is(err, db.ErrPoolExhausted) {
		t.Fatalf("expected ErrPoolExhausted, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("acquire did not respect the configured timeout")
	}

	// Releasing the lease makes the connection available again.
	held.Close()
	lease, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	lease.Close()
}

func TestAcquire_AfterClose(t *testing.T) {
	pool := newTestPool(t, db.Options{})
	pool.Close()

	_, err := pool.Acquire(context.Background())
	if !errors.Is(err, db.ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
}

func TestOpenInMemory(t *testing.T) {
	pool, err := db.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	defer pool.Close()
	ctx := context.Background()

	lease, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := lease.ExecContext(ctx, "CREATE TABLE t (id INTEGER PRIMARY KEY)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := lease.ExecContext(ctx, "INSERT INTO t (id) VALUES (1)"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	lease.Close()

	// Data survives across leases.
	lease, err = pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire again: %v", err)
	}
	defer lease.Close()
	var n int
	if err := lease.QueryRowContext(ctx, "SELECT count(*) FROM t").Scan(&n); err != nil {
		t.Fatalf("query: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}
}

func TestLease_DoubleClose(t *testing.T) {
	pool := newTestPool(t, db.Options{})
	lease, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := lease.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := lease.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}
}
