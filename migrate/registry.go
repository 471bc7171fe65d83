package migrate

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is an ordered collection of migrations. Its ascending version
// order is the single source of truth for application order.
type Registry struct {
	mu         sync.RWMutex
	migrations []Migration
	versions   map[int64]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{versions: make(map[int64]struct{})}
}

// Register adds one migration. It validates the migration and rejects
// duplicate versions before any database access happens.
func (r *Registry) Register(m Migration) error {
	if m.Version <= 0 {
		return fmt.Errorf("%w: version must be positive, got %d", ErrInvalidMigration, m.Version)
	}
	if m.UpSQL == "" {
		return fmt.Errorf("%w: migration %d (%s) has an empty up script", ErrInvalidMigration, m.Version, m.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.versions[m.Version]; exists {
		return fmt.Errorf("%w: %d (%s)", ErrDuplicateVersion, m.Version, m.Name)
	}
	r.versions[m.Version] = struct{}{}

	i := sort.Search(len(r.migrations), func(i int) bool {
		return r.migrations[i].Version > m.Version
	})
	r.migrations = append(r.migrations, Migration{})
	copy(r.migrations[i+1:], r.migrations[i:])
	r.migrations[i] = m
	return nil
}

// All returns the registered migrations sorted ascending by version.
func (r *Registry) All() []Migration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Migration, len(r.migrations))
	copy(out, r.migrations)
	return out
}

// Len returns the number of registered migrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.migrations)
}
