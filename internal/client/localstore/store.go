// Package localstore is the durable key-value store that holds all
// application state on the device. Keys and values are strings; structured
// values are JSON text.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
)

var (
	// ErrQuotaExceeded is returned by Set when the store is full.
	ErrQuotaExceeded = errors.New("local store quota exceeded")
	ErrUnknownDriver = errors.New("unknown local store driver")
)

// Store is safe for concurrent use.
type Store interface {
	// Get returns the value and true, or "" and false when key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
	// Replace swaps the whole content of the store for entries in one step.
	// On error the previous content is left in place.
	Replace(ctx context.Context, entries map[string]string) error
	Close() error
}

const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
	DriverMemory = "memory"
)

// Open builds the store selected by driver inside dir.
func Open(ctx context.Context, driver, dir string) (Store, error) {
	switch driver {
	case DriverSQLite:
		return OpenSQLite(ctx, filepath.Join(dir, "tutorsync.db"))
	case DriverBolt:
		return OpenBolt(filepath.Join(dir, "tutorsync.bolt"))
	case DriverMemory:
		return NewMemoryStore(0), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// GetJSON decodes the value at key into dest. found is false when the key
// is absent; a value that does not decode is an error.
func GetJSON(ctx context.Context, s Store, key string, dest any) (found bool, err error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func SetJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(b))
}
