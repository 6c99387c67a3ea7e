package docstore

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Poller detects catalogue changes on backends without push by hashing the
// products, categories and settings on every tick.
type Poller struct {
	store    Store
	interval time.Duration
	now      func() time.Time
}

// NewPoller returns a Poller; interval defaults to two seconds.
func NewPoller(store Store, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Poller{store: store, interval: interval, now: time.Now}
}

// Run emits one OpRefresh Change per observed difference until ctx is done.
// The first snapshot is the baseline and is not reported.
func (p *Poller) Run(ctx context.Context) <-chan Change {
	out := make(chan Change, 1)

	go func() {
		defer close(out)

		last, _ := p.fingerprint(ctx)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			sum, err := p.fingerprint(ctx)
			if err != nil {
				logger.Warn("docstore: poll failed", "store", p.store.Name(), "error", err)
				continue
			}
			if sum == last {
				continue
			}
			last = sum

			select {
			case out <- Change{Op: OpRefresh, At: p.now().UTC()}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (p *Poller) fingerprint(ctx context.Context) (uint64, error) {
	products, err := p.store.Products().List(ctx)
	if err != nil {
		return 0, err
	}
	categories, err := p.store.Categories().List(ctx)
	if err != nil {
		return 0, err
	}
	settings, err := p.store.Settings().List(ctx)
	if err != nil {
		return 0, err
	}

	h := fnv.New64a()
	enc := json.NewEncoder(h)
	for _, v := range []any{products, categories, settings} {
		if err := enc.Encode(v); err != nil {
			return 0, err
		}
	}
	return h.Sum64(), nil
}

// Changes subscribes to store. Native push is used when the backend offers
// it and works; otherwise the store is polled every interval.
func Changes(ctx context.Context, store Store, interval time.Duration) <-chan Change {
	if w, ok := store.(Watcher); ok {
		ch, err := w.Watch(ctx)
		if err == nil {
			return ch
		}
		logger.Warn("docstore: change stream unavailable, polling instead",
			"store", store.Name(), "error", err)
	}
	return NewPoller(store, interval).Run(ctx)
}
