package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shipkit/shipkit/db"
)

// Engine applies and rolls back migrations. The ledger, not the engine,
// is the source of truth for what is applied: every operation re-reads it,
// so engines are safe to construct freely and to call concurrently.
type Engine struct {
	pool     *db.Pool
	registry *Registry
	ledger   ledger
	log      *slog.Logger
}

// New creates an engine over a pool and a registry. A nil logger
// disables engine logging.
func New(pool *db.Pool, registry *Registry, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{pool: pool, registry: registry, log: logger}
}

// ApplyPending applies every registered migration missing from the ledger,
// strictly in ascending version order, each inside its own transaction that
// also writes the ledger row. It stops at the first failure and returns
// the migrations it newly applied; a second call with nothing new to do
// returns an empty slice.
//
// Before applying anything it verifies every already-applied registered
// version against its recorded checksum; any mismatch fails with
// *DriftError and nothing is applied.
func (e *Engine) ApplyPending(ctx context.Context) ([]Status, error) {
	lease, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer lease.Close()

	if err := e.ledger.ensure(ctx, lease); err != nil {
		return nil, err
	}

	recorded, err := e.ledger.applied(ctx, lease)
	if err != nil {
		return nil, err
	}
	if err := e.checkDrift(recorded); err != nil {
		return nil, err
	}

	var applied []Status
	for _, m := range e.registry.All() {
		// Fresh ledger snapshot per migration, so a concurrent caller's
		// commits are seen instead of double-applied.
		recorded, err = e.ledger.applied(ctx, lease)
		if err != nil {
			return applied, err
		}
		if rec, ok := recorded[m.Version]; ok {
			if rec.Checksum != Checksum(m.UpSQL) {
				return applied, &DriftError{Version: m.Version, Name: m.Name, Expected: rec.Checksum, Actual: Checksum(m.UpSQL)}
			}
			continue
		}

		status, err := e.applyOne(ctx, lease, m)
		if err != nil {
			return applied, err
		}
		if status != nil {
			applied = append(applied, *status)
		}
	}
	return applied, nil
}

// checkDrift compares recorded checksums against the currently registered
// scripts for every applied version.
func (e *Engine) checkDrift(recorded map[int64]Record) error {
	for _, m := range e.registry.All() {
		rec, ok := recorded[m.Version]
		if !ok {
			continue
		}
		if actual := Checksum(m.UpSQL); rec.Checksum != actual {
			return &DriftError{Version: m.Version, Name: m.Name, Expected: rec.Checksum, Actual: actual}
		}
	}
	return nil
}

// applyOne runs a single migration and its ledger insert in one
// transaction. It returns (nil, nil) when another caller applied the
// version concurrently.
func (e *Engine) applyOne(ctx context.Context, lease *db.Lease, m Migration) (*Status, error) {
	tx, err := lease.BeginTx(ctx, nil)
	if err != nil {
		return nil, &ApplyError{Version: m.Version, Name: m.Name, Err: err}
	}
	defer tx.Rollback()

	// Re-check inside the transaction: a concurrent apply may have
	// committed this version between the snapshot read and our lock.
	exists, err := e.ledger.exists(ctx, tx, m.Version)
	if err != nil {
		return nil, &ApplyError{Version: m.Version, Name: m.Name, Err: err}
	}
	if exists {
		e.log.Debug("migration applied concurrently, skipping", "version", m.Version, "name", m.Name)
		return nil, nil
	}

	if _, err := tx.ExecContext(ctx, m.UpSQL); err != nil {
		return nil, &ApplyError{Version: m.Version, Name: m.Name, Err: err}
	}

	now := time.Now().UTC()
	rec := Record{Version: m.Version, Name: m.Name, Checksum: Checksum(m.UpSQL), AppliedAt: now}
	if err := e.ledger.record(ctx, tx, rec); err != nil {
		if isUniqueConstraintError(err) {
			e.log.Debug("migration applied concurrently, skipping", "version", m.Version, "name", m.Name)
			return nil, nil
		}
		return nil, &ApplyError{Version: m.Version, Name: m.Name, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return nil, &ApplyError{Version: m.Version, Name: m.Name, Err: err}
	}

	e.log.Info("migration applied", "version", m.Version, "name", m.Name, "lease", lease.ID())
	return &Status{Version: m.Version, Name: m.Name, Applied: true, AppliedAt: &now}, nil
}

// Rollback reverses the single most recently applied migration, chosen by
// applied timestamp with ties broken by the higher version. It fails with
// ErrIrreversible when that migration has no down script and with
// ErrNothingApplied when the ledger is empty. The down script and the
// ledger delete run in one transaction.
func (e *Engine) Rollback(ctx context.Context) (*Status, error) {
	lease, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer lease.Close()

	if err := e.ledger.ensure(ctx, lease); err != nil {
		return nil, err
	}
	recorded, err := e.ledger.applied(ctx, lease)
	if err != nil {
		return nil, err
	}
	if len(recorded) == 0 {
		return nil, ErrNothingApplied
	}

	var target Record
	for _, rec := range recorded {
		if rec.AppliedAt.After(target.AppliedAt) ||
			(rec.AppliedAt.Equal(target.AppliedAt) && rec.Version > target.Version) {
			target = rec
		}
	}

	var migration *Migration
	for _, m := range e.registry.All() {
		if m.Version == target.Version {
			migration = &m
			break
		}
	}
	if migration == nil {
		return nil, fmt.Errorf("migration %d (%s) is recorded as applied but not registered", target.Version, target.Name)
	}
	if !migration.Reversible() {
		return nil, fmt.Errorf("%w: migration %d (%s) has no down script", ErrIrreversible, migration.Version, migration.Name)
	}

	tx, err := lease.BeginTx(ctx, nil)
	if err != nil {
		return nil, &RollbackError{Version: migration.Version, Name: migration.Name, Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, migration.DownSQL); err != nil {
		return nil, &RollbackError{Version: migration.Version, Name: migration.Name, Err: err}
	}
	if err := e.ledger.erase(ctx, tx, migration.Version); err != nil {
		return nil, &RollbackError{Version: migration.Version, Name: migration.Name, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, &RollbackError{Version: migration.Version, Name: migration.Name, Err: err}
	}

	e.log.Info("migration rolled back", "version", migration.Version, "name", migration.Name, "lease", lease.ID())
	return &Status{Version: migration.Version, Name: migration.Name, Applied: false}, nil
}

// Status reports every registered migration in version order with its
// ledger state. Read-only.
func (e *Engine) Status(ctx context.Context) ([]Status, error) {
	lease, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer lease.Close()

	if err := e.ledger.ensure(ctx, lease); err != nil {
		return nil, err
	}
	recorded, err := e.ledger.applied(ctx, lease)
	if err != nil {
		return nil, err
	}

	migrations := e.registry.All()
	statuses := make([]Status, 0, len(migrations))
	for _, m := range migrations {
		status := Status{Version: m.Version, Name: m.Name}
		if rec, ok := recorded[m.Version]; ok {
			at := rec.AppliedAt
			status.Applied = true
			status.AppliedAt = &at
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// isUniqueConstraintError checks if the error is a SQLite unique or
// primary key constraint violation.
func isUniqueConstraintError(err error) bool {
	return err != nil &&
		(strings.Contains(err.Error(), "UNIQUE constraint failed") ||
			strings.Contains(err.Error(), "unique constraint"))
}
