package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownField reports access to a field a Schema does not declare.
var ErrUnknownField = errors.New("unknown settings field")

// Schema declares a namespace's fields and their defaults explicitly.
// Callers list every field with its default JSON value; there is no
// reflection or tag scanning involved.
type Schema struct {
	// Namespace prefixes every field in storage.
	Namespace string
	// Defaults maps field name to its default JSON value. The key set
	// defines which fields exist.
	Defaults map[string]json.RawMessage
}

// Load returns every declared field's current value, falling back to the
// default for fields that have never been saved. Stored keys outside the
// schema are ignored.
func (s Schema) Load(ctx context.Context, store *Store) (map[string]json.RawMessage, error) {
	stored, err := store.All(ctx, s.Namespace)
	if err != nil {
		return nil, err
	}

	values := make(map[string]json.RawMessage, len(s.Defaults))
	for field, def := range s.Defaults {
		if v, ok := stored[field]; ok {
			values[field] = v
		} else {
			values[field] = def
		}
	}
	return values, nil
}

// Save persists the given field values. Every key must be a declared
// field.
func (s Schema) Save(ctx context.Context, store *Store, values map[string]json.RawMessage) error {
	for field := range values {
		if _, ok := s.Defaults[field]; !ok {
			return fmt.Errorf("%w: %s.%s", ErrUnknownField, s.Namespace, field)
		}
	}
	for field, value := range values {
		if err := store.Set(ctx, s.Namespace, field, value); err != nil {
			return err
		}
	}
	return nil
}

// GetField returns one declared field's value, or its default when it has
// never been saved.
func (s Schema) GetField(ctx context.Context, store *Store, field string) (json.RawMessage, error) {
	def, ok := s.Defaults[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, s.Namespace, field)
	}
	value, err := store.Get(ctx, s.Namespace, field)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// SetField saves one declared field's value.
func (s Schema) SetField(ctx context.Context, store *Store, field string, value json.RawMessage) error {
	if _, ok := s.Defaults[field]; !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, s.Namespace, field)
	}
	return store.Set(ctx, s.Namespace, field, value)
}
