// Package store persists named JSON documents (profile, history, persona).
package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
)

// ErrNotFound is returned by Load when the named document has never been saved.
var ErrNotFound = errors.New("document not found")

// DocumentStore loads and saves whole JSON documents by name. Save overwrites.
type DocumentStore interface {
	Load(ctx context.Context, name string, v any) error
	Save(ctx context.Context, name string, v any) error
	Close() error
}

var validName = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func checkName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid document name %q", name)
	}
	return nil
}

// LoadOrDefault decodes the named document into v, which must be a non-nil pointer
// pre-filled with the caller's default. When the document is absent or cannot be read
// or decoded, v keeps the default and loaded is false. A non-nil error only describes
// why the default was kept; callers may log it and carry on.
func LoadOrDefault(ctx context.Context, s DocumentStore, name string, v any) (loaded bool, err error) {
	if s == nil {
		return false, errors.New("LoadOrDefault: store is nil")
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return false, fmt.Errorf("LoadOrDefault: want non-nil pointer, got %T", v)
	}

	// Decode into a scratch value so a half-decoded document never leaks into v.
	scratch := reflect.New(rv.Elem().Type())
	if err := s.Load(ctx, name, scratch.Interface()); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("LoadOrDefault: %s: %w", name, err)
	}
	rv.Elem().Set(scratch.Elem())
	return true, nil
}
