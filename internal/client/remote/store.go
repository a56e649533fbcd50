package remote

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrUnavailable  = errors.New("remote store unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("remote key not found")
)

// Store is the remote half of the sync cache.
type Store interface {
	// Get returns the JSON value stored for key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// BulkSet writes all entries concurrently and waits for every write.
	BulkSet(ctx context.Context, entries map[string][]byte) error
	Ping(ctx context.Context) error
	Close() error
}

var sanitizer = strings.NewReplacer(".", "_", "#", "_", "$", "_", "[", "_", "]", "_")

// Sanitize replaces the characters the realtime store forbids in paths.
func Sanitize(key string) string {
	return sanitizer.Replace(key)
}

// ContentPath is the remote location of a local content key.
func ContentPath(key string) string {
	return "content/" + Sanitize(key)
}
