package synccache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/tutorsync/internal/client/localstore"
	"github.com/dmitrijs2005/tutorsync/internal/client/models"
	"github.com/dmitrijs2005/tutorsync/internal/client/remote"
	"github.com/dmitrijs2005/tutorsync/internal/logging"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	mu      sync.Mutex
	data    map[string][]byte
	pingErr error
	getErr  error
	setErr  error
	sets    int
	closed  bool
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{data: map[string][]byte{}}
}

func (f *fakeRemote) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return nil, remote.ErrNotFound
	}
	return v, nil
}

func (f *fakeRemote) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	return nil
}

func (f *fakeRemote) BulkSet(ctx context.Context, entries map[string][]byte) error {
	var errs error
	for k, v := range entries {
		errs = errors.Join(errs, f.Set(ctx, k, v))
	}
	return errs
}

func (f *fakeRemote) Ping(context.Context) error { return f.pingErr }

func (f *fakeRemote) Close() error {
	f.closed = true
	return nil
}

func dialer(r *fakeRemote) Dialer {
	return func(context.Context) (remote.Store, error) { return r, nil }
}

func newCache(t *testing.T, local localstore.Store, r *fakeRemote) *Cache {
	t.Helper()
	var d Dialer
	if r != nil {
		d = dialer(r)
	}
	return New(context.Background(), local, d, logging.NewNop(), Options{})
}

func record() *models.ContentRecord {
	return &models.ContentRecord{
		FreeLink: "https://drive/free",
		Price:    5,
		ManualMCQData: []models.MCQItem{
			{Question: "2+2?", Options: []string{"1", "2", "3", "4"}, CorrectAnswer: 3},
		},
	}
}

const key = "nst_content_CBSE_10_math_ch-1"

func TestCheckConnection(t *testing.T) {
	assert.True(t, newCache(t, localstore.NewMemoryStore(0), newFakeRemote()).CheckConnection())
	assert.False(t, newCache(t, localstore.NewMemoryStore(0), nil).CheckConnection())

	failing := New(context.Background(), localstore.NewMemoryStore(0),
		func(context.Context) (remote.Store, error) { return nil, errors.New("no config") },
		logging.NewNop(), Options{})
	assert.False(t, failing.CheckConnection())

	r := newFakeRemote()
	r.pingErr = remote.ErrUnavailable
	assert.False(t, newCache(t, localstore.NewMemoryStore(0), r).CheckConnection())
	assert.True(t, r.closed)
}

func TestRoundTrip_Connected(t *testing.T) {
	ctx := context.Background()
	local := localstore.NewMemoryStore(0)
	r := newFakeRemote()
	c := newCache(t, local, r)

	require.NoError(t, c.Write(ctx, key, record()))
	c.Wait()

	got, err := c.Read(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(record(), got))

	// the remote copy serves a device with an empty local store
	other := localstore.NewMemoryStore(0)
	c2 := newCache(t, other, r)
	got, err = c2.Read(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(record(), got))

	_, ok, _ := other.Get(ctx, key)
	assert.True(t, ok, "remote hit populates the local store")
}

func TestRoundTrip_Offline(t *testing.T) {
	ctx := context.Background()
	c := newCache(t, localstore.NewMemoryStore(0), nil)

	require.NoError(t, c.Write(ctx, key, record()))
	got, err := c.Read(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(record(), got))
}

func TestWrite_Idempotent(t *testing.T) {
	ctx := context.Background()
	r := newFakeRemote()
	c := newCache(t, localstore.NewMemoryStore(0), r)

	require.NoError(t, c.Write(ctx, key, record()))
	require.NoError(t, c.Write(ctx, key, record()))
	c.Wait()

	got, err := c.Read(ctx, key)
	require.NoError(t, err)
	assert.Len(t, got.ManualMCQData, 1)
	assert.Empty(t, cmp.Diff(record(), got))
	assert.Equal(t, 2, r.sets)
}

func TestRead_Missing(t *testing.T) {
	ctx := context.Background()

	_, err := newCache(t, localstore.NewMemoryStore(0), nil).Read(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = newCache(t, localstore.NewMemoryStore(0), newFakeRemote()).Read(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrRemoteUnreachable)
}

func TestRead_RemoteFailureDegradesToNotFound(t *testing.T) {
	r := newFakeRemote()
	c := newCache(t, localstore.NewMemoryStore(0), r)
	r.getErr = remote.ErrUnavailable

	_, err := c.Read(context.Background(), key)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, ErrRemoteUnreachable)
}

func TestRead_MalformedLocalRepairedFromRemote(t *testing.T) {
	ctx := context.Background()
	local := localstore.NewMemoryStore(0)
	r := newFakeRemote()
	r.data[key] = []byte(`{"price":7}`)
	require.NoError(t, local.Set(ctx, key, "{not json"))

	got, err := newCache(t, local, r).Read(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Price)

	v, _, _ := local.Get(ctx, key)
	assert.JSONEq(t, `{"price":7}`, v)
}

func TestRead_MalformedWithoutRemoteCopy(t *testing.T) {
	ctx := context.Background()
	local := localstore.NewMemoryStore(0)
	require.NoError(t, local.Set(ctx, key, "{not json"))

	_, err := newCache(t, local, nil).Read(ctx, key)
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = newCache(t, local, newFakeRemote()).Read(ctx, key)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestRead_MalformedRemoteNotCached(t *testing.T) {
	ctx := context.Background()
	local := localstore.NewMemoryStore(0)
	r := newFakeRemote()
	r.data[key] = []byte(`[1,2]`)

	_, err := newCache(t, local, r).Read(ctx, key)
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, ok, _ := local.Get(ctx, key)
	assert.False(t, ok)
}

func TestWrite_QuotaExceededSurfacesAndSkipsRemote(t *testing.T) {
	r := newFakeRemote()
	c := newCache(t, localstore.NewMemoryStore(8), r)

	err := c.Write(context.Background(), key, record())
	assert.ErrorIs(t, err, localstore.ErrQuotaExceeded)
	c.Wait()
	assert.Zero(t, r.sets)
}

func TestWrite_RemoteFailureKeepsLocal(t *testing.T) {
	ctx := context.Background()
	r := newFakeRemote()
	r.setErr = remote.ErrUnavailable
	c := newCache(t, localstore.NewMemoryStore(0), r)

	require.NoError(t, c.Write(ctx, key, record()))
	c.Wait()

	got, err := c.Read(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Price)
	assert.Empty(t, r.data)
}

func TestBulkWrite(t *testing.T) {
	ctx := context.Background()
	records := map[string]*models.ContentRecord{
		"nst_content_a": {Price: 1},
		"nst_content_b": {Price: 2},
		"nst_content_c": {Price: 3},
	}

	t.Run("all stores", func(t *testing.T) {
		r := newFakeRemote()
		c := newCache(t, localstore.NewMemoryStore(0), r)
		require.NoError(t, c.BulkWrite(ctx, records))
		assert.Len(t, r.data, 3)
	})

	t.Run("remote failure keeps local writes", func(t *testing.T) {
		local := localstore.NewMemoryStore(0)
		r := newFakeRemote()
		c := newCache(t, local, r)
		r.setErr = remote.ErrUnavailable

		err := c.BulkWrite(ctx, records)
		assert.ErrorIs(t, err, ErrRemoteSync)

		for k, want := range records {
			got, err := c.Read(ctx, k)
			require.NoError(t, err)
			assert.Equal(t, want.Price, got.Price)
		}
	})

	t.Run("offline", func(t *testing.T) {
		c := newCache(t, localstore.NewMemoryStore(0), nil)
		require.NoError(t, c.BulkWrite(ctx, records))
		got, err := c.Read(ctx, "nst_content_b")
		require.NoError(t, err)
		assert.Equal(t, 2, got.Price)
	})
}

func TestClose_ClosesRemote(t *testing.T) {
	r := newFakeRemote()
	c := newCache(t, localstore.NewMemoryStore(0), r)
	require.NoError(t, c.Close())
	assert.True(t, r.closed)
}
