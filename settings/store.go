// Package settings persists namespaced key-value settings in the same
// SQLite database the rest of the application uses. Values are stored as
// JSON text.
package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shipkit/shipkit/db"
)

const settingsTable = "shipkit_settings"

var (
	// ErrNotFound reports a setting that does not exist.
	ErrNotFound = errors.New("setting not found")
	// ErrInvalidValue reports a value that is not valid JSON.
	ErrInvalidValue = errors.New("invalid setting value")
)

// Store is a namespaced key-value store backed by the shared pool.
type Store struct {
	pool *db.Pool
}

// NewStore creates a store, creating its table if needed.
func NewStore(ctx context.Context, pool *db.Pool) (*Store, error) {
	lease, err := pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer lease.Close()

	_, err = lease.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+settingsTable+` (
			namespace TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (namespace, key)
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("ensure settings table: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Get returns one setting's value, or ErrNotFound.
func (s *Store) Get(ctx context.Context, namespace, key string) (json.RawMessage, error) {
	lease, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer lease.Close()

	var value string
	err = lease.QueryRowContext(ctx,
		"SELECT value FROM "+settingsTable+" WHERE namespace = ? AND key = ?",
		namespace, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s.%s", ErrNotFound, namespace, key)
		}
		return nil, fmt.Errorf("get setting %s.%s: %w", namespace, key, err)
	}
	return json.RawMessage(value), nil
}

// Set stores one setting, overwriting any previous value.
func (s *Store) Set(ctx context.Context, namespace, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("%w: %s.%s is not valid JSON", ErrInvalidValue, namespace, key)
	}

	lease, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer lease.Close()

	_, err = lease.ExecContext(ctx, `
		INSERT INTO `+settingsTable+` (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, namespace, key, string(value), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("set setting %s.%s: %w", namespace, key, err)
	}
	return nil
}

// All returns every setting in a namespace.
func (s *Store) All(ctx context.Context, namespace string) (map[string]json.RawMessage, error) {
	lease, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer lease.Close()

	rows, err := lease.QueryContext(ctx,
		"SELECT key, value FROM "+settingsTable+" WHERE namespace = ?", namespace)
	if err != nil {
		return nil, fmt.Errorf("list settings in %s: %w", namespace, err)
	}
	defer rows.Close()

	values := make(map[string]json.RawMessage)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		values[key] = json.RawMessage(value)
	}
	return values, rows.Err()
}

// Delete removes one setting. Deleting a missing setting is a no-op.
func (s *Store) Delete(ctx context.Context, namespace, key string) error {
	lease, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer lease.Close()

	_, err = lease.ExecContext(ctx,
		"DELETE FROM "+settingsTable+" WHERE namespace = ? AND key = ?", namespace, key)
	if err != nil {
		return fmt.Errorf("delete setting %s.%s: %w", namespace, key, err)
	}
	return nil
}
