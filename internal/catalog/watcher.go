package catalog

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/internal/docstore"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Publisher fans a payload out to live clients.
type Publisher interface {
	Publish(data []byte)
}

// Message is the envelope pushed to live clients.
type Message struct {
	Type string      `json:"type"`
	Data View        `json:"data"`
	At   time.Time   `json:"at"`
	Via  docstore.Op `json:"via,omitempty"`
}

// Watcher re-reads the catalogue whenever the store changes and publishes
// the new View. The latest View is kept for clients that connect later.
type Watcher struct {
	loader   *Loader
	pub      Publisher
	interval time.Duration
	onReload func(demo bool)
	retry    time.Duration // first resubscribe delay, doubled up to maxRetry

	mu     sync.RWMutex
	latest *Message
}

// NewWatcher returns a Watcher. interval is the poll period used when the
// store cannot push.
func NewWatcher(loader *Loader, pub Publisher, interval time.Duration) *Watcher {
	return &Watcher{loader: loader, pub: pub, interval: interval, retry: time.Second}
}

const maxRetry = 30 * time.Second

// OnReload registers fn to run after every successful reload.
func (w *Watcher) OnReload(fn func(demo bool)) { w.onReload = fn }

// Latest returns the most recent published message, if any.
func (w *Watcher) Latest() ([]byte, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.latest == nil {
		return nil, false
	}
	raw, err := json.Marshal(w.latest)
	return raw, err == nil
}

// Run blocks until ctx is done. It publishes once at start and then after
// every burst of changes. When the change feed ends early (a dropped change
// stream, say) it subscribes again after a backoff and republishes.
func (w *Watcher) Run(ctx context.Context) {
	store := w.loader.Store()
	changes := docstore.Changes(ctx, store, w.interval)
	w.reload(ctx, docstore.OpRefresh)

	delay := w.retry
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-changes:
			if !ok {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("catalog: change feed closed, resubscribing", "store", store.Name(), "after", delay)
				select {
				case <-ctx.Done():
					return
				case <-time.After(delay):
				}
				delay = min(delay*2, maxRetry)

				changes = docstore.Changes(ctx, store, w.interval)
				w.reload(ctx, docstore.OpRefresh)
				continue
			}
			delay = w.retry

			if c.Collection == docstore.OrdersCollection || c.Collection == docstore.AdminsCollection {
				continue
			}
			// Coalesce a burst into one reload.
		drain:
			for {
				select {
				case _, ok := <-changes:
					if !ok {
						break drain
					}
				default:
					break drain
				}
			}
			w.reload(ctx, c.Op)
		}
	}
}

func (w *Watcher) reload(ctx context.Context, via docstore.Op) {
	v, err := w.loader.Load(ctx, FilterAll)
	if err != nil {
		logger.Warn("catalog: reload failed", "error", err)
		return
	}

	msg := &Message{Type: "catalog", Data: v, At: time.Now().UTC(), Via: via}
	raw, err := json.Marshal(msg)
	if err != nil {
		logger.Error("catalog: encode view", "error", err)
		return
	}

	w.mu.Lock()
	w.latest = msg
	w.mu.Unlock()

	if w.pub != nil {
		w.pub.Publish(raw)
	}
	if w.onReload != nil {
		w.onReload(v.Demo)
	}
	logger.Debug("catalog: published", "buckets", len(v.Buckets), "demo", v.Demo, "via", via)
}
