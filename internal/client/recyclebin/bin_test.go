package recyclebin

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/tutorsync/internal/client/keys"
	"github.com/dmitrijs2005/tutorsync/internal/client/localstore"
	"github.com/dmitrijs2005/tutorsync/internal/client/models"
	"github.com/dmitrijs2005/tutorsync/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newBin(t *testing.T) (*Bin, *localstore.MemoryStore, *clock) {
	t.Helper()
	local := localstore.NewMemoryStore(0)
	c := &clock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	b := New(local)
	b.now = c.now
	return b, local, c
}

func TestSoftDelete_SetsExpiry(t *testing.T) {
	b, _, c := newBin(t)

	item, err := b.SoftDelete(context.Background(), models.BinItemUser, "Asha", map[string]string{"id": "u1"}, "", "u1")
	require.NoError(t, err)
	assert.Equal(t, c.t, item.DeletedAt)
	assert.Equal(t, c.t.Add(90*24*time.Hour), item.ExpiresAt)
	assert.Equal(t, "u1", item.OriginalID)
}

func TestList_PurgesExpiredLazily(t *testing.T) {
	ctx := context.Background()
	b, local, c := newBin(t)

	old, err := b.SoftDelete(ctx, models.BinItemChapter, "Old", map[string]string{"id": "1"}, "nst_custom_chapters_x", "")
	require.NoError(t, err)

	c.t = c.t.Add(30 * 24 * time.Hour)
	_, err = b.SoftDelete(ctx, models.BinItemChapter, "New", map[string]string{"id": "2"}, "nst_custom_chapters_x", "")
	require.NoError(t, err)

	c.t = old.ExpiresAt.Add(-time.Second)
	items, err := b.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	c.t = old.ExpiresAt
	items, err = b.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "New", items[0].Name)

	var stored []models.RecycleBinItem
	_, err = localstore.GetJSON(ctx, local, keys.RecycleBin, &stored)
	require.NoError(t, err)
	assert.Len(t, stored, 1, "purge is persisted")
}

func TestPurgeExpired(t *testing.T) {
	ctx := context.Background()
	b, _, c := newBin(t)

	_, _ = b.SoftDelete(ctx, models.BinItemUser, "a", map[string]string{"id": "a"}, "", "")
	_, _ = b.SoftDelete(ctx, models.BinItemUser, "b", map[string]string{"id": "b"}, "", "")

	n, err := b.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	c.t = c.t.Add(91 * 24 * time.Hour)
	n, err = b.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRestore_User(t *testing.T) {
	ctx := context.Background()
	b, local, _ := newBin(t)
	require.NoError(t, local.Set(ctx, keys.Users, `[{"id":"u2"}]`))

	item, err := b.SoftDelete(ctx, models.BinItemUser, "Asha", map[string]string{"id": "u1", "name": "Asha"}, "", "u1")
	require.NoError(t, err)

	_, err = b.Restore(ctx, item.ID)
	require.NoError(t, err)

	v, _, _ := local.Get(ctx, keys.Users)
	assert.JSONEq(t, `[{"id":"u2"},{"id":"u1","name":"Asha"}]`, v)

	items, _ := b.List(ctx)
	assert.Empty(t, items)
}

func TestRestore_UserIDTaken(t *testing.T) {
	ctx := context.Background()
	b, local, _ := newBin(t)
	require.NoError(t, local.Set(ctx, keys.Users, `[{"id":"u1"}]`))

	item, err := b.SoftDelete(ctx, models.BinItemUser, "dup", map[string]string{"id": "u1"}, "", "u1")
	require.NoError(t, err)

	_, err = b.Restore(ctx, item.ID)
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	items, _ := b.List(ctx)
	assert.Len(t, items, 1, "item stays in the bin")
}

func TestRestore_ChapterAndContent(t *testing.T) {
	ctx := context.Background()
	b, local, _ := newBin(t)

	listKey := "nst_custom_chapters_CBSE-10-math-English"
	require.NoError(t, local.Set(ctx, listKey, `[{"id":"1","title":"One"}]`))

	ch, err := b.SoftDelete(ctx, models.BinItemChapter, "Two", models.Chapter{ID: "2", Title: "Two"}, listKey, "2")
	require.NoError(t, err)
	_, err = b.Restore(ctx, ch.ID)
	require.NoError(t, err)
	v, _, _ := local.Get(ctx, listKey)
	assert.JSONEq(t, `[{"id":"1","title":"One"},{"id":"2","title":"Two"}]`, v)

	ct, err := b.SoftDelete(ctx, models.BinItemContent, "content", map[string]int{"price": 9}, "nst_content_x", "")
	require.NoError(t, err)
	_, err = b.Restore(ctx, ct.ID)
	require.NoError(t, err)
	v, _, _ = local.Get(ctx, "nst_content_x")
	assert.JSONEq(t, `{"price":9}`, v)

	noKey, err := b.SoftDelete(ctx, models.BinItemChapter, "lost", map[string]string{}, "", "")
	require.NoError(t, err)
	_, err = b.Restore(ctx, noKey.ID)
	assert.ErrorIs(t, err, ErrNoRestoreKey)
}

func TestPermanentDelete(t *testing.T) {
	ctx := context.Background()
	b, _, _ := newBin(t)

	item, _ := b.SoftDelete(ctx, models.BinItemUser, "x", map[string]string{"id": "x"}, "", "")
	require.NoError(t, b.PermanentDelete(ctx, item.ID))
	assert.ErrorIs(t, b.PermanentDelete(ctx, item.ID), ErrItemNotFound)

	_, err := b.Restore(ctx, "nope")
	assert.ErrorIs(t, err, ErrItemNotFound)
}
