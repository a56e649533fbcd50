package localstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drivers(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	sq, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	bs, err := OpenBolt(filepath.Join(t.TempDir(), "kv.bolt"))
	require.NoError(t, err)

	stores := map[string]Store{
		DriverSQLite: sq,
		DriverBolt:   bs,
		DriverMemory: NewMemoryStore(0),
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStore_Contract(t *testing.T) {
	ctx := context.Background()

	for name, s := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(ctx, "nst_missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, "nst_b", "1"))
			require.NoError(t, s.Set(ctx, "nst_a", `{"x":1}`))
			require.NoError(t, s.Set(ctx, "nst_b", "2"))

			v, ok, err := s.Get(ctx, "nst_b")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "2", v)

			keys, err := s.Keys(ctx)
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"nst_a", "nst_b"}, keys)

			require.NoError(t, s.Remove(ctx, "nst_a"))
			require.NoError(t, s.Remove(ctx, "nst_a"))
			_, ok, _ = s.Get(ctx, "nst_a")
			assert.False(t, ok)

			require.NoError(t, s.Clear(ctx))
			keys, err = s.Keys(ctx)
			require.NoError(t, err)
			assert.Empty(t, keys)
			_, ok, _ = s.Get(ctx, "nst_b")
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, "nst_c", "after-clear"))
			v, _, _ = s.Get(ctx, "nst_c")
			assert.Equal(t, "after-clear", v)
		})
	}
}

func TestStore_Replace(t *testing.T) {
	ctx := context.Background()

	for name, s := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set(ctx, "nst_old", "1"))
			require.NoError(t, s.Set(ctx, "nst_kept", "old"))
			_, _, _ = s.Get(ctx, "nst_old")

			require.NoError(t, s.Replace(ctx, map[string]string{"nst_kept": "new", "nst_users": "[]"}))

			keys, err := s.Keys(ctx)
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"nst_kept", "nst_users"}, keys)

			_, ok, err := s.Get(ctx, "nst_old")
			require.NoError(t, err)
			assert.False(t, ok)
			v, _, _ := s.Get(ctx, "nst_kept")
			assert.Equal(t, "new", v)

			require.NoError(t, s.Replace(ctx, nil))
			keys, err = s.Keys(ctx)
			require.NoError(t, err)
			assert.Empty(t, keys)
		})
	}
}

func TestMemoryStore_ReplaceOverQuotaKeepsContent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10)
	require.NoError(t, s.Set(ctx, "ab", "cd"))

	assert.ErrorIs(t, s.Replace(ctx, map[string]string{"xy": "0123456789"}), ErrQuotaExceeded)

	v, ok, _ := s.Get(ctx, "ab")
	assert.True(t, ok)
	assert.Equal(t, "cd", v)
	_, ok, _ = s.Get(ctx, "xy")
	assert.False(t, ok)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "nst_users", "[]"))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(ctx, "nst_users")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
}

func TestBoltStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "kv.bolt")

	s, err := OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "nst_data_version", "1000"))
	require.NoError(t, s.Close())

	s, err = OpenBolt(path)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(ctx, "nst_data_version")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1000", v)
}

func TestMemoryStore_Quota(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10)

	require.NoError(t, s.Set(ctx, "ab", "cdef"))
	assert.ErrorIs(t, s.Set(ctx, "xy", "123456"), ErrQuotaExceeded)

	_, ok, _ := s.Get(ctx, "xy")
	assert.False(t, ok)

	// overwriting releases the old value first
	require.NoError(t, s.Set(ctx, "ab", "12345678"))

	require.NoError(t, s.Remove(ctx, "ab"))
	require.NoError(t, s.Set(ctx, "xy", "123456"))
}

func TestOpen_Drivers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for _, d := range []string{DriverSQLite, DriverBolt, DriverMemory} {
		s, err := Open(ctx, d, dir)
		require.NoError(t, err, d)
		require.NoError(t, s.Close())
	}

	_, err := Open(ctx, "redis", dir)
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	type item struct {
		Name string `json:"name"`
	}

	var got item
	found, err := GetJSON(ctx, s, "nst_item", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, s, "nst_item", item{Name: "x"}))
	found, err = GetJSON(ctx, s, "nst_item", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "x", got.Name)

	require.NoError(t, s.Set(ctx, "nst_item", "{broken"))
	found, err = GetJSON(ctx, s, "nst_item", &got)
	assert.True(t, found)
	assert.Error(t, err)
}
