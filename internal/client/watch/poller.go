package watch

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/tutorsync/internal/client/localstore"
	"github.com/dmitrijs2005/tutorsync/internal/logging"
)

// Handler receives the keys whose values changed since the previous poll.
type Handler func(ctx context.Context, changed []string)

// Poller detects changes to the local store by comparing snapshots of the
// watched keys. Changes become visible within one polling interval.
type Poller struct {
	local  localstore.Store
	logger logging.Logger

	mu       sync.Mutex
	watched  map[string]struct{}
	last     map[string]string
	handlers []Handler
	primed   bool
}

func NewPoller(local localstore.Store, logger logging.Logger) *Poller {
	return &Poller{
		local:   local,
		logger:  logger.With("module", "poller"),
		watched: map[string]struct{}{},
		last:    map[string]string{},
	}
}

// Watch adds keys to the polled set. With no watched keys every key in the
// store is polled.
func (p *Poller) Watch(keys ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, k := range keys {
		p.watched[k] = struct{}{}
	}
}

func (p *Poller) Subscribe(h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, h)
}

func (p *Poller) keys(ctx context.Context) ([]string, error) {
	if len(p.watched) == 0 {
		return p.local.Keys(ctx)
	}
	out := make([]string, 0, len(p.watched))
	for k := range p.watched {
		out = append(out, k)
	}
	return out, nil
}

// Poll takes one snapshot and notifies subscribers about changed keys. The
// first poll only records the baseline.
func (p *Poller) Poll(ctx context.Context) ([]string, error) {
	p.mu.Lock()
	keys, err := p.keys(ctx)
	if err != nil {
		p.mu.Unlock()
		return nil, err
	}

	current := make(map[string]string, len(keys))
	for _, k := range keys {
		v, ok, err := p.local.Get(ctx, k)
		if err != nil {
			p.mu.Unlock()
			return nil, err
		}
		if ok {
			current[k] = v
		}
	}

	var changed []string
	if p.primed {
		for k, v := range current {
			if old, ok := p.last[k]; !ok || old != v {
				changed = append(changed, k)
			}
		}
		for k := range p.last {
			if _, ok := current[k]; !ok {
				changed = append(changed, k)
			}
		}
	}
	p.last = current
	p.primed = true
	handlers := append([]Handler(nil), p.handlers...)
	p.mu.Unlock()

	if len(changed) == 0 {
		return nil, nil
	}
	sort.Strings(changed)
	for _, h := range handlers {
		h(ctx, changed)
	}
	return changed, nil
}

// Register schedules the poller on s.
func (p *Poller) Register(ctx context.Context, s *Scheduler, interval time.Duration) error {
	return s.Every(interval, func() {
		if _, err := p.Poll(ctx); err != nil {
			p.logger.Warn(ctx, "local store poll failed", "error", err)
		}
	})
}
