package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Persister stores cart lines between requests or across restarts.
type Persister interface {
	Load(ctx context.Context, sessionID string) ([]Item, error)
	Save(ctx context.Context, sessionID string, items []Item) error
	Delete(ctx context.Context, sessionID string) error
}

type entry struct {
	store    *Store
	lastUsed time.Time
}

// Registry maps session ids to carts. With a nil Persister carts live in
// memory only.
type Registry struct {
	mu        sync.Mutex
	carts     map[string]*entry
	persister Persister
	now       func() time.Time
}

// NewRegistry returns an empty Registry backed by p (may be nil).
func NewRegistry(p Persister) *Registry {
	return &Registry{
		carts:     make(map[string]*entry),
		persister: p,
		now:       time.Now,
	}
}

// Get returns the cart for sessionID, loading it from the persister on first
// use. A load failure degrades to an empty cart and is returned alongside it.
func (r *Registry) Get(ctx context.Context, sessionID string) (*Store, error) {
	r.mu.Lock()
	if e, ok := r.carts[sessionID]; ok {
		e.lastUsed = r.now()
		r.mu.Unlock()
		return e.store, nil
	}
	r.mu.Unlock()

	var (
		items   []Item
		loadErr error
	)
	if r.persister != nil {
		items, loadErr = r.persister.Load(ctx, sessionID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another request for the same session may have won the race.
	if e, ok := r.carts[sessionID]; ok {
		e.lastUsed = r.now()
		return e.store, loadErr
	}
	s := New(items...)
	r.carts[sessionID] = &entry{store: s, lastUsed: r.now()}
	return s, loadErr
}

// Save writes the cart for sessionID through the persister.
func (r *Registry) Save(ctx context.Context, sessionID string) error {
	if r.persister == nil {
		return nil
	}

	r.mu.Lock()
	e, ok := r.carts[sessionID]
	r.mu.Unlock()
	if !ok {
		return nil
	}

	items := e.store.Items()
	if len(items) == 0 {
		return r.persister.Delete(ctx, sessionID)
	}
	return r.persister.Save(ctx, sessionID, items)
}

// Len is the number of carts held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}

// Sweep forgets in-memory carts idle for longer than maxIdle. Persisted
// copies are left for the persister's own expiry.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, e := range r.carts {
		if e.lastUsed.Before(cutoff) {
			delete(r.carts, id)
			n++
		}
	}
	return n
}

// ─── Redis persister ──────────────────────────────────────────────────────────

// RedisPersister keeps one JSON document per session with a sliding TTL.
type RedisPersister struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
}

// NewRedisPersister returns a persister writing keys "<prefix><session>".
func NewRedisPersister(rdb redis.Cmdable, ttl time.Duration) *RedisPersister {
	return &RedisPersister{rdb: rdb, ttl: ttl, prefix: "storefront:cart:"}
}

func (p *RedisPersister) key(sessionID string) string { return p.prefix + sessionID }

func (p *RedisPersister) Load(ctx context.Context, sessionID string) ([]Item, error) {
	raw, err := p.rdb.Get(ctx, p.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cart/redis: load %s: %w", sessionID, err)
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("cart/redis: decode %s: %w", sessionID, err)
	}
	return items, nil
}

func (p *RedisPersister) Save(ctx context.Context, sessionID string, items []Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("cart/redis: encode: %w", err)
	}
	if err := p.rdb.Set(ctx, p.key(sessionID), raw, p.ttl).Err(); err != nil {
		return fmt.Errorf("cart/redis: save %s: %w", sessionID, err)
	}
	return nil
}

func (p *RedisPersister) Delete(ctx context.Context, sessionID string) error {
	if err := p.rdb.Del(ctx, p.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("cart/redis: delete %s: %w", sessionID, err)
	}
	return nil
}
