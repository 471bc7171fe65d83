package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ledgerTable is the one reserved table this package owns.
const ledgerTable = "shipkit_migrations"

// Record is one ledger row: a migration that was applied, with the
// checksum of its up script at apply time.
type Record struct {
	Version   int64
	Name      string
	Checksum  string
	AppliedAt time.Time
}

// querier is the subset of statement execution the ledger needs. Both
// *db.Lease and *sql.Tx satisfy it, so reads happen on a lease and writes
// happen inside the caller's transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ledger persists which migrations have been applied. It is created
// lazily by the engine and never by application code.
type ledger struct{}

// ensure creates the ledger table if it does not exist. Idempotent.
func (ledger) ensure(ctx context.Context, q querier) error {
	_, err := q.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+ledgerTable+` (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			checksum TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure ledger table: %w", err)
	}
	return nil
}

// applied reads the current ledger state, keyed by version.
func (ledger) applied(ctx context.Context, q querier) (map[int64]Record, error) {
	rows, err := q.QueryContext(ctx, "SELECT version, name, checksum, applied_at FROM "+ledgerTable)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	defer rows.Close()

	records := make(map[int64]Record)
	for rows.Next() {
		var rec Record
		var appliedAt string
		if err := rows.Scan(&rec.Version, &rec.Name, &rec.Checksum, &appliedAt); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		rec.AppliedAt, err = time.Parse(time.RFC3339Nano, appliedAt)
		if err != nil {
			return nil, fmt.Errorf("parse ledger timestamp for version %d: %w", rec.Version, err)
		}
		records[rec.Version] = rec
	}
	return records, rows.Err()
}

// record inserts one row as part of the caller's transaction. The version
// primary key makes a concurrent double-apply fail here rather than
// silently duplicating history.
func (ledger) record(ctx context.Context, q querier, rec Record) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO "+ledgerTable+" (version, name, checksum, applied_at) VALUES (?, ?, ?, ?)",
		rec.Version, rec.Name, rec.Checksum, rec.AppliedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// erase deletes one row as part of the caller's transaction.
func (ledger) erase(ctx context.Context, q querier, version int64) error {
	_, err := q.ExecContext(ctx, "DELETE FROM "+ledgerTable+" WHERE version = ?", version)
	return err
}

// exists reports whether a version is recorded, reading within the
// caller's transaction.
func (ledger) exists(ctx context.Context, q querier, version int64) (bool, error) {
	rows, err := q.QueryContext(ctx, "SELECT 1 FROM "+ledgerTable+" WHERE version = ?", version)
	if err != nil {
		return false, fmt.Errorf("check ledger for version %d: %w", version, err)
	}
	defer rows.Close()
	return rows.Next(), rows.Err()
}
