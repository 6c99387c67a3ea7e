package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
)

// Memory is an in-process Store. When built with a file path it reloads the
// file on start and rewrites it after every write, which makes it usable as
// a single-node fallback without any database.
type Memory struct {
	path string
	now  func() time.Time

	products   *memCollection[models.Product, *models.Product]
	categories *memCollection[models.Category, *models.Category]
	orders     *memCollection[models.Order, *models.Order]
	settings   *memCollection[models.SiteSettings, *models.SiteSettings]
	admins     *memCollection[models.AdminUser, *models.AdminUser]

	// writeMu serialises writes so each one persists the snapshot it
	// produced before anyone can see it.
	writeMu sync.Mutex

	subsMu sync.Mutex
	subs   map[int]chan Change
	nextID int
}

// memSnapshot is the on-disk layout of a Memory store.
type memSnapshot struct {
	Products   []models.Product      `json:"products"`
	Categories []models.Category     `json:"categories"`
	Orders     []models.Order        `json:"orders"`
	Settings   []models.SiteSettings `json:"settings"`
	Admins     []models.AdminUser    `json:"admin_users"`
}

// NewMemory returns an empty Memory store, or one loaded from path.
func NewMemory(path string) (*Memory, error) {
	m := &Memory{path: path, now: time.Now, subs: map[int]chan Change{}}
	m.products = newMemCollection[models.Product](ProductsCollection, m, func(s *memSnapshot, d []models.Product) { s.Products = d })
	m.categories = newMemCollection[models.Category](CategoriesCollection, m, func(s *memSnapshot, d []models.Category) { s.Categories = d })
	m.orders = newMemCollection[models.Order](OrdersCollection, m, func(s *memSnapshot, d []models.Order) { s.Orders = d })
	m.settings = newMemCollection[models.SiteSettings](SettingsCollection, m, func(s *memSnapshot, d []models.SiteSettings) { s.Settings = d })
	m.admins = newMemCollection[models.AdminUser](AdminsCollection, m, func(s *memSnapshot, d []models.AdminUser) { s.Admins = d })

	if path == "" {
		return m, nil
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Products() Collection[models.Product]      { return m.products }
func (m *Memory) Categories() Collection[models.Category]   { return m.categories }
func (m *Memory) Orders() Collection[models.Order]          { return m.orders }
func (m *Memory) Settings() Collection[models.SiteSettings] { return m.settings }
func (m *Memory) Admins() Collection[models.AdminUser]      { return m.admins }

// Close closes every open Watch channel.
func (m *Memory) Close(context.Context) error {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for id, ch := range m.subs {
		close(ch)
		delete(m.subs, id)
	}
	return nil
}

// Watch streams every write made through this store.
func (m *Memory) Watch(ctx context.Context) (<-chan Change, error) {
	ch := make(chan Change, 32)

	m.subsMu.Lock()
	m.nextID++
	id := m.nextID
	m.subs[id] = ch
	m.subsMu.Unlock()

	go func() {
		<-ctx.Done()
		m.subsMu.Lock()
		defer m.subsMu.Unlock()
		if c, ok := m.subs[id]; ok {
			close(c)
			delete(m.subs, id)
		}
	}()
	return ch, nil
}

// notify fans a committed write out to watchers.
func (m *Memory) notify(c Change) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

func (m *Memory) load() error {
	raw, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("docstore/memory: read %s: %w", m.path, err)
	}

	var snap memSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("docstore/memory: decode %s: %w", m.path, err)
	}
	m.products.replace(snap.Products)
	m.categories.replace(snap.Categories)
	m.orders.replace(snap.Orders)
	m.settings.replace(snap.Settings)
	m.admins.replace(snap.Admins)
	return nil
}

// persist writes the current state with pending applied on top. The caller
// holds writeMu.
func (m *Memory) persist(pending func(*memSnapshot)) error {
	if m.path == "" {
		return nil
	}

	snap := memSnapshot{
		Products:   m.products.all(),
		Categories: m.categories.all(),
		Orders:     m.orders.all(),
		Settings:   m.settings.all(),
		Admins:     m.admins.all(),
	}
	pending(&snap)
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("docstore/memory: encode: %w", err)
	}

	if dir := filepath.Dir(m.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("docstore/memory: mkdir: %w", err)
		}
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("docstore/memory: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("docstore/memory: rename: %w", err)
	}
	return nil
}

// ─── Collection ───────────────────────────────────────────────────────────────

type memCollection[T any, PT Doc[T]] struct {
	name  string
	store *Memory
	place func(*memSnapshot, []T)

	mu    sync.RWMutex
	docs  map[string]T
	order []string
}

func newMemCollection[T any, PT Doc[T]](name string, store *Memory, place func(*memSnapshot, []T)) *memCollection[T, PT] {
	return &memCollection[T, PT]{name: name, store: store, place: place, docs: map[string]T{}}
}

// memState is a staged copy of a collection.
type memState[T any] struct {
	docs  map[string]T
	order []string
}

func (st memState[T]) list() []T {
	out := make([]T, 0, len(st.order))
	for _, id := range st.order {
		out = append(out, st.docs[id])
	}
	return out
}

// write stages mutate on a copy, persists the result and only then makes it
// visible and tells watchers. A failed write leaves nothing behind.
func (c *memCollection[T, PT]) write(op Op, id string, mutate func(*memState[T]) error) error {
	c.store.writeMu.Lock()
	defer c.store.writeMu.Unlock()

	c.mu.RLock()
	next := memState[T]{docs: make(map[string]T, len(c.docs)+1), order: append([]string(nil), c.order...)}
	for k, v := range c.docs {
		next.docs[k] = v
	}
	c.mu.RUnlock()

	if err := mutate(&next); err != nil {
		return err
	}
	docs := next.list()
	if err := c.store.persist(func(s *memSnapshot) { c.place(s, docs) }); err != nil {
		return err
	}

	c.mu.Lock()
	c.docs, c.order = next.docs, next.order
	c.mu.Unlock()

	c.store.notify(Change{Collection: c.name, Op: op, ID: id, At: c.store.now()})
	return nil
}

func (c *memCollection[T, PT]) List(context.Context) ([]T, error) {
	return c.all(), nil
}

func (c *memCollection[T, PT]) Get(_ context.Context, id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	doc, ok := c.docs[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s %q: %w", c.name, id, ErrNotFound)
	}
	return doc, nil
}

func (c *memCollection[T, PT]) Create(_ context.Context, doc *T) error {
	prepareCreate[T, PT](doc, c.store.now())
	id := PT(doc).DocID()

	return c.write(OpCreate, id, func(next *memState[T]) error {
		if _, exists := next.docs[id]; exists {
			return fmt.Errorf("%s %q: %w", c.name, id, ErrConflict)
		}
		next.docs[id] = *doc
		next.order = append(next.order, id)
		return nil
	})
}

func (c *memCollection[T, PT]) Update(_ context.Context, id string, doc *T) error {
	return c.write(OpUpdate, id, func(next *memState[T]) error {
		existing, ok := next.docs[id]
		if !ok {
			return fmt.Errorf("%s %q: %w", c.name, id, ErrNotFound)
		}
		prepareUpdate[T, PT](doc, id, PT(&existing).Created(), c.store.now())
		next.docs[id] = *doc
		return nil
	})
}

func (c *memCollection[T, PT]) Delete(_ context.Context, id string) error {
	return c.write(OpDelete, id, func(next *memState[T]) error {
		if _, ok := next.docs[id]; !ok {
			return fmt.Errorf("%s %q: %w", c.name, id, ErrNotFound)
		}
		delete(next.docs, id)
		for i, oid := range next.order {
			if oid == id {
				next.order = append(next.order[:i], next.order[i+1:]...)
				break
			}
		}
		return nil
	})
}

func (c *memCollection[T, PT]) all() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.docs[id])
	}
	return out
}

func (c *memCollection[T, PT]) replace(docs []T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.docs = make(map[string]T, len(docs))
	c.order = c.order[:0]
	for _, d := range docs {
		id := PT(&d).DocID()
		if _, dup := c.docs[id]; dup || id == "" {
			continue
		}
		c.docs[id] = d
		c.order = append(c.order, id)
	}
}
