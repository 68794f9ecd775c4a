package memory

import (
	"context"
	"sync"
	"time"
)

// sweepInterval bounds how often Acquire scans for expired keys.
const sweepInterval = time.Minute

// IdempotencyGuard holds checkout submission keys in process memory.
// Expired keys are dropped by Acquire at most once per sweepInterval.
type IdempotencyGuard struct {
	mu    sync.Mutex
	keys  map[string]time.Time
	swept time.Time
	now   func() time.Time
}

func NewIdempotencyGuard() *IdempotencyGuard {
	g := &IdempotencyGuard{
		keys: make(map[string]time.Time),
		now:  time.Now,
	}
	g.swept = g.now()
	return g
}

// Acquire reports false when key is already held and has not expired.
func (g *IdempotencyGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if now.Sub(g.swept) >= sweepInterval {
		g.sweep(now)
	}
	if exp, ok := g.keys[key]; ok && now.Before(exp) {
		return false, nil
	}
	g.keys[key] = now.Add(ttl)
	return true, nil
}

func (g *IdempotencyGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.keys, key)
	return nil
}

// Len returns the number of keys held, expired ones included.
func (g *IdempotencyGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.keys)
}

func (g *IdempotencyGuard) sweep(now time.Time) {
	for k, exp := range g.keys {
		if !now.Before(exp) {
			delete(g.keys, k)
		}
	}
	g.swept = now
}
