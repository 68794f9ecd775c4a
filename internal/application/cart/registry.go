package cart

import (
	"context"
	"sync"
	"time"

	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
)

// Registry owns one Store per session id. Carts live in memory only.
type Registry struct {
	mu     sync.Mutex
	stores map[string]*Store

	checkout  Checkouter
	mutations observability.Counter
	log       observability.Logger
}

func NewRegistry(checkout Checkouter, tel observability.Observability) *Registry {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Registry{
		stores:    make(map[string]*Store),
		checkout:  checkout,
		mutations: tel.Metrics().Counter(observability.MCartMutations),
		log:       tel.Logger().With(observability.F("component", "cart-registry")),
	}
}

// Get returns the session's store, creating an empty one on first use.
// Handing a store out counts as activity so Evict does not drop it before
// the caller gets to use it.
func (r *Registry) Get(sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stores[sessionID]
	if !ok {
		s = NewStore(sessionID, r.checkout, r.mutations)
		r.stores[sessionID] = s
		return s
	}
	s.touch()
	return s
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Evict drops stores idle for longer than idle. Stores in the middle of a
// checkout are kept.
func (r *Registry) Evict(now time.Time, idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, s := range r.stores {
		if s.Processing() || now.Sub(s.LastActivity()) < idle {
			continue
		}
		delete(r.stores, id)
		n++
	}
	return n
}

// RunJanitor evicts idle sessions every interval until ctx is done.
func (r *Registry) RunJanitor(ctx context.Context, interval, idle time.Duration) {
	if interval <= 0 || idle <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := r.Evict(now, idle); n > 0 {
				r.log.Debug("cart_sessions_evicted",
					observability.F("evicted", n),
					observability.F("remaining", r.Len()),
				)
			}
		}
	}
}
