// Package activity records admin actions in a capped, newest-first log.
package activity

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tutorsync/internal/client/keys"
	"github.com/dmitrijs2005/tutorsync/internal/client/localstore"
	"github.com/dmitrijs2005/tutorsync/internal/client/models"
	"github.com/google/uuid"
)

// MaxEntries bounds the stored log; older entries fall off.
const MaxEntries = 200

type Log struct {
	local localstore.Store
	actor string
	now   func() time.Time
}

func New(local localstore.Store, actor string) *Log {
	return &Log{local: local, actor: actor, now: time.Now}
}

func (l *Log) Record(ctx context.Context, action, details string) error {
	entries, err := l.List(ctx)
	if err != nil {
		return err
	}

	entry := models.ActivityLogEntry{
		ID:        uuid.NewString(),
		Action:    action,
		Details:   details,
		Actor:     l.actor,
		Timestamp: l.now().UTC(),
	}
	entries = append([]models.ActivityLogEntry{entry}, entries...)
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	return localstore.SetJSON(ctx, l.local, keys.ActivityLog, entries)
}

// List returns the log, newest first.
func (l *Log) List(ctx context.Context) ([]models.ActivityLogEntry, error) {
	var entries []models.ActivityLogEntry
	if _, err := localstore.GetJSON(ctx, l.local, keys.ActivityLog, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
