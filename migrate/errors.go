package migrate

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateVersion reports registration of a version that already
	// exists in the registry.
	ErrDuplicateVersion = errors.New("duplicate migration version")
	// ErrInvalidMigration reports a migration that fails validation at
	// registration time (non-positive version, empty up script).
	ErrInvalidMigration = errors.New("invalid migration")
	// ErrInvalidMigrationFile reports a migration script file that could
	// not be parsed by the directory loader.
	ErrInvalidMigrationFile = errors.New("invalid migration file")
	// ErrIrreversible reports a rollback of a migration that has no down
	// script.
	ErrIrreversible = errors.New("migration is irreversible")
	// ErrNothingApplied reports a rollback when the ledger is empty.
	ErrNothingApplied = errors.New("no applied migrations to roll back")
)

// ParseError reports a migration file the directory loader rejected.
// It unwraps to ErrInvalidMigrationFile.
type ParseError struct {
	File   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid migration file %s: %s", e.File, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrInvalidMigrationFile
}

// DriftError reports a mismatch between a migration's recorded checksum
// and the checksum of its currently registered up script. Drift blocks
// all further application; it is never corrected automatically.
type DriftError struct {
	Version  int64
	Name     string
	Expected string // checksum recorded in the ledger
	Actual   string // checksum of the currently registered script
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("migration %d (%s) has drifted: ledger checksum %s, registered checksum %s",
		e.Version, e.Name, e.Expected, e.Actual)
}

// ApplyError reports a failed transaction while applying a migration's
// up script. The ledger gained no row for it.
type ApplyError struct {
	Version int64
	Name    string
	Err     error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply migration %d (%s): %v", e.Version, e.Name, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

// RollbackError reports a failed transaction while executing a
// migration's down script. The migration remains recorded as applied.
type RollbackError struct {
	Version int64
	Name    string
	Err     error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("roll back migration %d (%s): %v", e.Version, e.Name, e.Err)
}

func (e *RollbackError) Unwrap() error {
	return e.Err
}
