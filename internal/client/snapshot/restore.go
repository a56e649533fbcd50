package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/tutorsync/internal/client/keys"
	"github.com/dmitrijs2005/tutorsync/internal/client/localstore"
	"github.com/dmitrijs2005/tutorsync/internal/logging"
)

type Result struct {
	// Applied is true when the local store was replaced; in-memory state
	// derived from it must be rebuilt.
	Applied  bool
	Previous string
	Version  string
}

// newer reports whether candidate should replace current. A device without a
// marker always takes the snapshot; otherwise both must parse as numbers and
// candidate must be strictly greater.
func newer(candidate, current string, hasCurrent bool) bool {
	if !hasCurrent || current == "" {
		return true
	}
	c, err := strconv.ParseFloat(candidate, 64)
	if err != nil {
		return false
	}
	p, err := strconv.ParseFloat(current, 64)
	if err != nil {
		return false
	}
	return c > p
}

// Restore replaces the local store with snap when snap is newer than the
// last applied version. The replacement is a single store operation; device
// identity keys survive it.
func Restore(ctx context.Context, local localstore.Store, snap *Snapshot) (Result, error) {
	current, hasCurrent, err := local.Get(ctx, keys.DataVersion)
	if err != nil {
		return Result{}, fmt.Errorf("read version marker: %w", err)
	}

	res := Result{Previous: current, Version: snap.Version}
	if !newer(snap.Version, current, hasCurrent) {
		return res, nil
	}

	preserved := make(map[string]string, len(keys.Preserved))
	for _, k := range keys.Preserved {
		v, ok, err := local.Get(ctx, k)
		if err != nil {
			return res, fmt.Errorf("read %s: %w", k, err)
		}
		if ok {
			preserved[k] = v
		}
	}

	entries := make(map[string]string, len(snap.Data)+len(preserved)+1)
	for k, raw := range snap.Data {
		entries[k] = storedValue(raw)
	}
	for k, v := range preserved {
		entries[k] = v
	}
	if snap.Version != "" {
		entries[keys.DataVersion] = snap.Version
	}

	if err := local.Replace(ctx, entries); err != nil {
		return res, fmt.Errorf("replace local store: %w", err)
	}
	res.Applied = true
	return res, nil
}

// Boot restores the snapshot found at path, which may be a JSON snapshot or
// a deployment package. It never fails: a missing file is a no-op and any
// other problem is logged while the existing local state is kept.
func Boot(ctx context.Context, local localstore.Store, path string, logger logging.Logger) Result {
	if path == "" {
		return Result{}
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug(ctx, "no deployment snapshot", "path", path)
		return Result{}
	}
	if err != nil {
		logger.Warn(ctx, "deployment snapshot unreadable", "path", path, "error", err)
		return Result{}
	}

	var snap *Snapshot
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		snap, err = ReadPackage(b)
	} else {
		snap, err = Parse(b)
	}
	if err != nil {
		logger.Warn(ctx, "deployment snapshot rejected", "path", path, "error", err)
		return Result{}
	}

	res, err := Restore(ctx, local, snap)
	if err != nil {
		logger.Error(ctx, "deployment snapshot restore incomplete", "version", snap.Version, "error", err)
		return res
	}
	if res.Applied {
		logger.Info(ctx, "deployment snapshot applied", "version", res.Version, "previous", res.Previous)
	}
	return res
}
