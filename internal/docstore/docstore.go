// Package docstore is the storefront's storage collaborator.
//
// Every backend exposes the same generic Collection per entity kind, and one
// backend is chosen at boot with Open. Callers never branch on the backend:
//
//	store, err := docstore.Open(ctx, docstore.Config{Driver: "mongo", MongoURI: uri})
//	products, err := store.Products().List(ctx)
//
// Backends that can push changes implement Watcher; Changes falls back to a
// Poller for the rest.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
)

var (
	// ErrNotFound is returned when no document has the requested id.
	ErrNotFound = errors.New("docstore: not found")
	// ErrConflict is returned by Create when the id is already taken.
	ErrConflict = errors.New("docstore: already exists")
)

// Collection names, as used in Change events and by every backend.
const (
	ProductsCollection   = "products"
	CategoriesCollection = "categories"
	OrdersCollection     = "orders"
	SettingsCollection   = "settings"
	AdminsCollection     = "admin_users"
)

// Doc is the constraint every stored model satisfies through its pointer.
type Doc[T any] interface {
	*T
	DocID() string
	SetDocID(string)
	Created() time.Time
	SetCreated(time.Time)
	Stamp(now time.Time)
}

// Collection is CRUD over one entity kind. List returns documents oldest
// first. Update is a full replace that keeps the original creation time.
type Collection[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, doc *T) error
	Update(ctx context.Context, id string, doc *T) error
	Delete(ctx context.Context, id string) error
}

// Store groups the collections of one backend.
type Store interface {
	Name() string
	Products() Collection[models.Product]
	Categories() Collection[models.Category]
	Orders() Collection[models.Order]
	Settings() Collection[models.SiteSettings]
	Admins() Collection[models.AdminUser]
	Close(ctx context.Context) error
}

// Op is the kind of write a Change reports.
type Op string

const (
	OpCreate  Op = "create"
	OpUpdate  Op = "update"
	OpDelete  Op = "delete"
	OpRefresh Op = "refresh" // something changed; re-read everything
)

// Change is one notification from a Watcher or Poller.
type Change struct {
	Collection string    `json:"collection"`
	Op         Op        `json:"op"`
	ID         string    `json:"id,omitempty"`
	At         time.Time `json:"at"`
}

// Watcher is implemented by backends with native change push. The returned
// channel is closed when ctx is done.
type Watcher interface {
	Watch(ctx context.Context) (<-chan Change, error)
}

// Config selects and configures a backend.
type Config struct {
	Driver   string // memory, mongo or sql
	File     string // memory: optional JSON snapshot path
	MongoURI string
	MongoDB  string
	DB       *gorm.DB // sql: an open connection
}

// Open builds the configured backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemory(cfg.File)
	case "mongo":
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	case "sql":
		if cfg.DB == nil {
			return nil, errors.New("docstore: sql driver needs a database connection")
		}
		return NewSQL(cfg.DB)
	default:
		return nil, fmt.Errorf("docstore: unknown driver %q", cfg.Driver)
	}
}

// ─── Helpers shared by backends ──────────────────────────────────────────────

func newID() string { return uuid.NewString() }

// prepareCreate assigns an id when missing and stamps timestamps.
func prepareCreate[T any, PT Doc[T]](doc *T, now time.Time) {
	p := PT(doc)
	if p.DocID() == "" {
		p.SetDocID(newID())
	}
	p.Stamp(now)
}

// prepareUpdate forces the id and carries the creation time over.
func prepareUpdate[T any, PT Doc[T]](doc *T, id string, created, now time.Time) {
	p := PT(doc)
	p.SetDocID(id)
	p.SetCreated(created)
	p.Stamp(now)
}

// GetSettings returns the stored settings with empty image slots filled, or
// the defaults when none have been saved.
func GetSettings(ctx context.Context, s Store) (models.SiteSettings, error) {
	settings, err := s.Settings().Get(ctx, models.SettingsID)
	if errors.Is(err, ErrNotFound) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.SiteSettings{}, err
	}
	return settings.WithDefaults(), nil
}

// PutSettings upserts the singleton settings document.
func PutSettings(ctx context.Context, s Store, settings models.SiteSettings) (models.SiteSettings, error) {
	settings.ID = models.SettingsID
	err := s.Settings().Update(ctx, models.SettingsID, &settings)
	if errors.Is(err, ErrNotFound) {
		err = s.Settings().Create(ctx, &settings)
	}
	if err != nil {
		return models.SiteSettings{}, err
	}
	return settings, nil
}
