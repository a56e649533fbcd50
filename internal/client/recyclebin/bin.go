// Package recyclebin keeps soft-deleted users, chapters and content for
// models.RecycleBinRetention before they are purged.
package recyclebin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tutorsync/internal/client/keys"
	"github.com/dmitrijs2005/tutorsync/internal/client/localstore"
	"github.com/dmitrijs2005/tutorsync/internal/client/models"
	"github.com/dmitrijs2005/tutorsync/internal/common"
	"github.com/google/uuid"
)

var (
	ErrItemNotFound = errors.New("recycle bin item not found")
	ErrNoRestoreKey = errors.New("recycle bin item has no restore key")
)

type Bin struct {
	local localstore.Store
	now   func() time.Time
}

func New(local localstore.Store) *Bin {
	return &Bin{local: local, now: time.Now}
}

func (b *Bin) load(ctx context.Context) ([]models.RecycleBinItem, error) {
	var items []models.RecycleBinItem
	if _, err := localstore.GetJSON(ctx, b.local, keys.RecycleBin, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (b *Bin) save(ctx context.Context, items []models.RecycleBinItem) error {
	if items == nil {
		items = []models.RecycleBinItem{}
	}
	return localstore.SetJSON(ctx, b.local, keys.RecycleBin, items)
}

// SoftDelete moves data into the bin. restoreKey names the local key the
// item goes back to; originalID defaults to the new item id.
func (b *Bin) SoftDelete(ctx context.Context, typ models.BinItemType, name string, data any, restoreKey, originalID string) (*models.RecycleBinItem, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}

	items, err := b.load(ctx)
	if err != nil {
		return nil, err
	}

	now := b.now().UTC()
	item := models.RecycleBinItem{
		ID:         uuid.NewString(),
		OriginalID: originalID,
		Type:       typ,
		Name:       name,
		Data:       raw,
		DeletedAt:  now,
		ExpiresAt:  now.Add(models.RecycleBinRetention),
		RestoreKey: restoreKey,
	}
	if item.OriginalID == "" {
		item.OriginalID = item.ID
	}

	if err := b.save(ctx, append(items, item)); err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns live items. Expired ones are dropped and the pruned bin is
// written back.
func (b *Bin) List(ctx context.Context) ([]models.RecycleBinItem, error) {
	items, err := b.load(ctx)
	if err != nil {
		return nil, err
	}

	live, purged := split(items, b.now())
	if purged > 0 {
		if err := b.save(ctx, live); err != nil {
			return nil, err
		}
	}
	return live, nil
}

// PurgeExpired removes expired items and reports how many went.
func (b *Bin) PurgeExpired(ctx context.Context) (int, error) {
	items, err := b.load(ctx)
	if err != nil {
		return 0, err
	}
	live, purged := split(items, b.now())
	if purged == 0 {
		return 0, nil
	}
	return purged, b.save(ctx, live)
}

func split(items []models.RecycleBinItem, now time.Time) ([]models.RecycleBinItem, int) {
	live := make([]models.RecycleBinItem, 0, len(items))
	for _, it := range items {
		if !it.Expired(now) {
			live = append(live, it)
		}
	}
	return live, len(items) - len(live)
}

func (b *Bin) PermanentDelete(ctx context.Context, id string) error {
	items, err := b.load(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(items, id)
	if idx < 0 {
		return ErrItemNotFound
	}
	return b.save(ctx, append(items[:idx], items[idx+1:]...))
}

// Restore puts an item back where it came from and removes it from the bin.
// Users go back into the user list unless their id is taken, chapters are
// appended to the list at RestoreKey and anything else overwrites RestoreKey.
func (b *Bin) Restore(ctx context.Context, id string) (*models.RecycleBinItem, error) {
	items, err := b.List(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOf(items, id)
	if idx < 0 {
		return nil, ErrItemNotFound
	}
	item := items[idx]

	switch item.Type {
	case models.BinItemUser:
		err = b.restoreUser(ctx, item)
	case models.BinItemChapter:
		if item.RestoreKey == "" {
			return nil, ErrNoRestoreKey
		}
		err = b.appendTo(ctx, item.RestoreKey, item.Data)
	default:
		if item.RestoreKey == "" {
			return nil, ErrNoRestoreKey
		}
		err = b.local.Set(ctx, item.RestoreKey, string(item.Data))
	}
	if err != nil {
		return nil, err
	}

	if err := b.save(ctx, append(items[:idx], items[idx+1:]...)); err != nil {
		return nil, err
	}
	return &item, nil
}

func (b *Bin) restoreUser(ctx context.Context, item models.RecycleBinItem) error {
	var user struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(item.Data, &user); err != nil {
		return fmt.Errorf("decode user: %w", err)
	}

	var users []json.RawMessage
	if _, err := localstore.GetJSON(ctx, b.local, keys.Users, &users); err != nil {
		return err
	}
	for _, raw := range users {
		var u struct {
			ID string `json:"id"`
		}
		if json.Unmarshal(raw, &u) == nil && u.ID == user.ID {
			return fmt.Errorf("user id %s: %w", user.ID, common.ErrorAlreadyExists)
		}
	}
	return localstore.SetJSON(ctx, b.local, keys.Users, append(users, item.Data))
}

func (b *Bin) appendTo(ctx context.Context, key string, data json.RawMessage) error {
	var list []json.RawMessage
	if _, err := localstore.GetJSON(ctx, b.local, key, &list); err != nil {
		return err
	}
	return localstore.SetJSON(ctx, b.local, key, append(list, data))
}

func indexOf(items []models.RecycleBinItem, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
