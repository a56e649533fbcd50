package watch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/tutorsync/internal/client/localstore"
	"github.com/dmitrijs2005/tutorsync/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoller_ReportsChanges(t *testing.T) {
	ctx := context.Background()
	local := localstore.NewMemoryStore(0)
	require.NoError(t, local.Set(ctx, "nst_users", "[]"))
	require.NoError(t, local.Set(ctx, "nst_gone", "x"))

	p := NewPoller(local, logging.NewNop())
	var seen [][]string
	p.Subscribe(func(_ context.Context, changed []string) { seen = append(seen, changed) })

	changed, err := p.Poll(ctx)
	require.NoError(t, err)
	assert.Empty(t, changed, "first poll sets the baseline")

	require.NoError(t, local.Set(ctx, "nst_users", `[{"id":"u"}]`))
	require.NoError(t, local.Set(ctx, "nst_new", "1"))
	require.NoError(t, local.Remove(ctx, "nst_gone"))

	changed, err = p.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"nst_gone", "nst_new", "nst_users"}, changed)
	assert.Equal(t, [][]string{changed}, seen)

	changed, err = p.Poll(ctx)
	require.NoError(t, err)
	assert.Empty(t, changed)
}

func TestPoller_WatchedKeysOnly(t *testing.T) {
	ctx := context.Background()
	local := localstore.NewMemoryStore(0)

	p := NewPoller(local, logging.NewNop())
	p.Watch("nst_system_settings")
	_, err := p.Poll(ctx)
	require.NoError(t, err)

	require.NoError(t, local.Set(ctx, "nst_other", "1"))
	changed, _ := p.Poll(ctx)
	assert.Empty(t, changed)

	require.NoError(t, local.Set(ctx, "nst_system_settings", "{}"))
	changed, _ = p.Poll(ctx)
	assert.Equal(t, []string{"nst_system_settings"}, changed)
}

func TestScheduler_RunsPollerUntilCancel(t *testing.T) {
	local := localstore.NewMemoryStore(0)
	p := NewPoller(local, logging.NewNop())

	var mu sync.Mutex
	notified := make(chan struct{}, 1)
	p.Subscribe(func(context.Context, []string) {
		mu.Lock()
		defer mu.Unlock()
		select {
		case notified <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	_, err := p.Poll(ctx)
	require.NoError(t, err)

	s := NewScheduler(logging.NewNop())
	require.NoError(t, p.Register(ctx, s, time.Second))

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.NoError(t, local.Set(context.Background(), "nst_k", "v"))

	select {
	case <-notified:
	case <-time.After(3 * time.Second):
		t.Fatal("poller did not report the change")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_RejectsBadInterval(t *testing.T) {
	s := NewScheduler(logging.NewNop())
	assert.Error(t, s.Every(0, func() {}))
	assert.Error(t, s.Add("not a spec", func() {}))
}
