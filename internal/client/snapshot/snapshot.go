// Package snapshot exports the local store into a versioned deployment
// snapshot and restores such a snapshot on devices at boot.
//
// On disk a snapshot is a flat JSON object of key to value that carries its
// own version under nst_data_version.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tutorsync/internal/client/keys"
	"github.com/dmitrijs2005/tutorsync/internal/client/localstore"
	"github.com/dmitrijs2005/tutorsync/internal/timex"
)

var (
	ErrMalformedSnapshot = errors.New("malformed snapshot")
	ErrNoSnapshot        = errors.New("package contains no snapshot")
)

type Snapshot struct {
	// Version is a decimal count of milliseconds since the epoch.
	Version string
	Data    map[string]json.RawMessage
}

// Export captures every application key of local. Values that are valid JSON
// are embedded as JSON; anything else is embedded as a JSON string.
func Export(ctx context.Context, local localstore.Store, now time.Time) (*Snapshot, error) {
	all, err := local.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	snap := &Snapshot{
		Version: timex.UnixMilli(now),
		Data:    make(map[string]json.RawMessage, len(all)+1),
	}

	for _, k := range all {
		if !keys.Owned(k) {
			continue
		}
		v, ok, err := local.Get(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", k, err)
		}
		if !ok {
			continue
		}
		if json.Valid([]byte(v)) {
			snap.Data[k] = json.RawMessage(v)
		} else {
			b, _ := json.Marshal(v)
			snap.Data[k] = b
		}
	}

	// the new version wins over the device's own marker
	b, _ := json.Marshal(snap.Version)
	snap.Data[keys.DataVersion] = b

	return snap, nil
}

func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(s.Data, "", "  ")
}

// Parse decodes a snapshot file. The version may be stored as a JSON string
// or number.
func Parse(b []byte) (*Snapshot, error) {
	var data map[string]json.RawMessage
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSnapshot, err)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: not an object", ErrMalformedSnapshot)
	}

	snap := &Snapshot{Data: data}
	if raw, ok := data[keys.DataVersion]; ok {
		snap.Version = storedValue(raw)
	}
	return snap, nil
}

// storedValue is the string written to the local store for a snapshot
// value: strings unquoted, everything else as compact JSON text.
func storedValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
