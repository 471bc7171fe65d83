// Package migrate tracks and applies schema migrations for a SQLite
// database. Migrations are registered in a Registry, applied by an Engine
// in ascending version order inside transactions, and recorded in a ledger
// table alongside a checksum of the script that was applied.
package migrate

import "time"

// Migration is a single schema change. It is immutable once registered.
type Migration struct {
	// Version orders migrations. Strictly positive and unique within a
	// registry.
	Version int64
	// Name is a human-readable label. Uniqueness is not required.
	Name string
	// UpSQL is the forward script. Required.
	UpSQL string
	// DownSQL is the reverse script. When empty the migration is
	// irreversible and rollback refuses it.
	DownSQL string
}

// Reversible reports whether the migration has a reverse script.
func (m Migration) Reversible() bool {
	return m.DownSQL != ""
}

// Status describes one registered migration's ledger state. This is the
// shape presentation layers (CLI, UI, HTTP) bind to.
type Status struct {
	Version   int64      `json:"version"`
	Name      string     `json:"name"`
	Applied   bool       `json:"applied"`
	AppliedAt *time.Time `json:"applied_at,omitempty"`
}
