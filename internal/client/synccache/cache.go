// Package synccache resolves content records local-first with the remote
// store as a best-effort fallback and write-through target.
//
// Reads return the local copy when one decodes, otherwise the remote copy
// (written back locally). Writes land locally before returning; the remote
// copy is written in the background and never rolled back. Concurrent writers
// to one key race and the last completion wins in each store independently.
package synccache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/tutorsync/internal/client/localstore"
	"github.com/dmitrijs2005/tutorsync/internal/client/models"
	"github.com/dmitrijs2005/tutorsync/internal/client/remote"
	"github.com/dmitrijs2005/tutorsync/internal/logging"
)

var (
	ErrNotFound          = errors.New("content not found")
	ErrRemoteUnreachable = errors.New("remote store unreachable")
	ErrMalformedRecord   = errors.New("malformed content record")
	ErrRemoteSync        = errors.New("remote sync failed")
)

// Dialer builds the remote store. It is called once, from New.
type Dialer func(ctx context.Context) (remote.Store, error)

type Options struct {
	// InitTimeout bounds the startup dial and ping.
	InitTimeout time.Duration
}

type Cache struct {
	local     localstore.Store
	remote    remote.Store
	connected bool
	logger    logging.Logger

	wg sync.WaitGroup
}

// New initializes the remote side once. Any dial or ping failure leaves the
// cache local-only for the rest of the process lifetime.
func New(ctx context.Context, local localstore.Store, dial Dialer, logger logging.Logger, opts Options) *Cache {
	logger = logger.With("module", "synccache")
	c := &Cache{local: local, logger: logger}
	if dial == nil {
		return c
	}

	if opts.InitTimeout <= 0 {
		opts.InitTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, opts.InitTimeout)
	defer cancel()

	rs, err := dial(ctx)
	if err != nil {
		logger.Warn(ctx, "remote store init failed, running local only", "error", err)
		return c
	}
	if err := rs.Ping(ctx); err != nil {
		logger.Warn(ctx, "remote store not reachable, running local only", "error", err)
		_ = rs.Close()
		return c
	}

	c.remote = rs
	c.connected = true
	logger.Info(ctx, "remote store connected")
	return c
}

// CheckConnection reports the startup initialization outcome. It never
// touches the network.
func (c *Cache) CheckConnection() bool {
	return c.connected
}

func decode(raw []byte) (*models.ContentRecord, error) {
	var rec models.ContentRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func isNull(raw []byte) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// Read returns the record stored under key.
//
// Errors: ErrNotFound when neither store has it (wrapping
// ErrRemoteUnreachable when the remote call failed), ErrMalformedRecord when
// a value exists but does not decode and no readable copy was found.
func (c *Cache) Read(ctx context.Context, key string) (*models.ContentRecord, error) {
	raw, ok, err := c.local.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("local read %s: %w", key, err)
	}

	malformed := false
	if ok && !isNull([]byte(raw)) {
		rec, err := decode([]byte(raw))
		if err == nil {
			return rec, nil
		}
		c.logger.Warn(ctx, "local content record does not decode", "key", key, "error", err)
		malformed = true
	}

	missing := ErrNotFound
	if malformed {
		missing = ErrMalformedRecord
	}

	if !c.connected {
		return nil, missing
	}

	value, err := c.remote.Get(ctx, key)
	switch {
	case errors.Is(err, remote.ErrNotFound):
		return nil, missing
	case err != nil:
		c.logger.Warn(ctx, "remote read failed", "key", key, "error", err)
		return nil, fmt.Errorf("%w: %w: %w", missing, ErrRemoteUnreachable, err)
	case isNull(value):
		return nil, missing
	}

	rec, err := decode(value)
	if err != nil {
		c.logger.Warn(ctx, "remote content record does not decode", "key", key, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}

	if err := c.local.Set(ctx, key, string(value)); err != nil {
		c.logger.Warn(ctx, "populate local copy failed", "key", key, "error", err)
	}
	return rec, nil
}

// Write stores rec locally and, when connected, schedules the remote write.
// A local failure (including localstore.ErrQuotaExceeded) is returned and no
// remote write happens.
func (c *Cache) Write(ctx context.Context, key string, rec *models.ContentRecord) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	if err := c.local.Set(ctx, key, string(value)); err != nil {
		return fmt.Errorf("local write %s: %w", key, err)
	}

	if !c.connected {
		return nil
	}

	c.wg.Add(1)
	go func(ctx context.Context) {
		defer c.wg.Done()
		if err := c.remote.Set(ctx, key, value); err != nil {
			c.logger.Error(ctx, "remote write failed", "key", key, "error", err)
			return
		}
		c.logger.Debug(ctx, "remote write done", "key", key)
	}(context.WithoutCancel(ctx))

	return nil
}

// BulkWrite stores every record locally, then writes them all remotely in
// parallel and waits. A remote failure is reported for the whole batch as
// ErrRemoteSync; the local writes stand.
func (c *Cache) BulkWrite(ctx context.Context, records map[string]*models.ContentRecord) error {
	encoded := make(map[string][]byte, len(records))
	for key, rec := range records {
		value, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		encoded[key] = value
	}

	var localErr error
	for key, value := range encoded {
		if err := c.local.Set(ctx, key, string(value)); err != nil {
			localErr = errors.Join(localErr, fmt.Errorf("local write %s: %w", key, err))
			delete(encoded, key)
		}
	}

	if !c.connected || len(encoded) == 0 {
		return localErr
	}

	if err := c.remote.BulkSet(ctx, encoded); err != nil {
		c.logger.Error(ctx, "remote bulk write failed", "count", len(encoded), "error", err)
		return errors.Join(localErr, fmt.Errorf("%w: %w", ErrRemoteSync, err))
	}
	return localErr
}

// Wait blocks until background remote writes have settled.
func (c *Cache) Wait() {
	c.wg.Wait()
}

// Remote returns the connected remote store or nil.
func (c *Cache) Remote() remote.Store {
	return c.remote
}

func (c *Cache) Close() error {
	c.wg.Wait()
	if c.remote != nil {
		return c.remote.Close()
	}
	return nil
}
