package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ErrNotFound is returned by Load when no document is stored under the key.
var ErrNotFound = errors.New("document not found")

// Store persists whole documents under a key.
// Save replaces the previous document atomically: a concurrent or later
// Load observes either the old or the new content, never a mix.
// Update runs fn on the current document (nil when absent) and stores its
// result, holding off other writers to the same key for the duration, also
// across processes sharing the backend. An error from fn aborts the update
// and is returned unchanged.
// Implementations must be safe for concurrent use.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Close() error
}

// UpdateFunc maps the current document to its replacement.
type UpdateFunc func(old []byte) ([]byte, error)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,127}$`)

func validateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("invalid document key %q", key)
	}
	return nil
}
