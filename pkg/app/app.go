// Package app wires the storefront together.
//
// An Application owns every process-wide resource: the store, the cart
// registry, the toast hubs, the live catalogue. It is built once at boot
// and closed on shutdown.
//
//	a, err := app.New(ctx)
//	if err != nil { … }
//	defer a.Close(ctx)
//
//	a.Routes(func(r *router.Router) { routes.RegisterAPI(r, a) })
//	err = a.Serve(ctx, ":"+config.AppPort())
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/internal/catalog"
	"github.com/shashiranjanraj/storefront/internal/docstore"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/cart"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/money"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/toast"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

// ─── Application ──────────────────────────────────────────────────────────────

// Application is the storefront's dependency container.
type Application struct {
	Store  docstore.Store
	DB     *gorm.DB      // nil unless DOCSTORE_DRIVER=sql
	Redis  *redis.Client // nil when carts live in memory only
	Disk   storage.Disk
	Prices money.Formatter

	Toasts  *toast.Sessions
	Carts   *cart.Registry
	Catalog *catalog.Loader
	Watcher *catalog.Watcher
	Live    *ws.Hub
	Limiter *middleware.Limiter

	Checkout *services.CheckoutService
	Admin    *services.AdminService
	Auth     *services.AuthService

	routesFns []func(*router.Router)
	closers   []func(context.Context) error
}

// New opens the configured collaborators and builds the Application.
// Redis is optional: when it cannot be reached carts stay in memory.
func New(ctx context.Context) (*Application, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("app: config: %w", err)
	}

	var closers []func(context.Context) error
	fail := func(err error) (*Application, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i](ctx)
		}
		return nil, err
	}

	store, db, err := OpenStore(ctx)
	if err != nil {
		return nil, err
	}
	if db != nil {
		closers = append(closers, func(context.Context) error { return database.Close(db) })
	}
	closers = append(closers, store.Close)

	disk, err := storage.Open(ctx, storage.FromEnv())
	if err != nil {
		return fail(fmt.Errorf("app: storage: %w", err))
	}

	var (
		rdb       *redis.Client
		persister cart.Persister
	)
	if opts := cache.FromEnv(); opts.Addr != "" {
		rdb, err = cache.Connect(ctx, opts)
		if err != nil {
			logger.Warn("app: redis unavailable, carts kept in memory", "addr", opts.Addr, "error", err)
		} else {
			persister = cart.NewRedisPersister(rdb, config.CartTTL())
			closers = append(closers, func(context.Context) error { return rdb.Close() })
		}
	}

	prices, err := money.New(config.Locale(), config.Currency(), config.CurrencySymbol())
	if err != nil {
		return fail(fmt.Errorf("app: money: %w", err))
	}

	a := Build(store, disk, persister, prices)
	a.DB = db
	if persister != nil {
		a.Redis = rdb
	}
	a.closers = append(closers, a.closers...)

	logger.Info("app: ready",
		"docstore", store.Name(),
		"storage", config.StorageDefault(),
		"carts_persisted", persister != nil,
		"checkout_mode", a.Checkout.Mode(),
	)
	return a, nil
}

// OpenStore opens the document store selected by DOCSTORE_DRIVER. db is
// the SQL connection behind it, nil for other drivers, and is closed by the
// caller after the store.
func OpenStore(ctx context.Context) (docstore.Store, *gorm.DB, error) {
	var db *gorm.DB
	driver := config.DocstoreDriver()
	if driver == "sql" {
		var err error
		if db, err = database.Connect(); err != nil {
			return nil, nil, fmt.Errorf("app: database: %w", err)
		}
	}

	store, err := docstore.Open(ctx, docstore.Config{
		Driver:   driver,
		File:     config.DocstoreFile(),
		MongoURI: config.MongoURI(),
		MongoDB:  config.MongoDatabase(),
		DB:       db,
	})
	if err != nil {
		if db != nil {
			_ = database.Close(db)
		}
		return nil, nil, fmt.Errorf("app: docstore: %w", err)
	}
	return store, db, nil
}

// Build assembles an Application around already-open collaborators.
// persister may be nil.
func Build(store docstore.Store, disk storage.Disk, persister cart.Persister, prices money.Formatter) *Application {
	a := &Application{
		Store:   store,
		Disk:    disk,
		Prices:  prices,
		Toasts:  toast.NewSessions(config.ToastTTL()),
		Carts:   cart.NewRegistry(persister),
		Limiter: middleware.NewLimiter(config.Int("RATE_LIMIT", 200), time.Minute),
	}

	a.Catalog = catalog.NewLoader(store, prices, config.Bool("CATALOG_DEMO_FALLBACK"))
	a.Live = ws.NewHub(
		ws.WithSnapshot(func() ([]byte, bool) { return a.Watcher.Latest() }),
		ws.OnCount(func(n int) { metrics.LiveClients.WithLabelValues("ws").Set(float64(n)) }),
	)
	a.Watcher = catalog.NewWatcher(a.Catalog, a.Live, config.CatalogPollInterval())
	a.Watcher.OnReload(func(demo bool) {
		source := "live"
		if demo {
			source = "demo"
		}
		metrics.CatalogReloads.WithLabelValues(source).Inc()
	})

	a.Checkout = services.NewCheckoutService(store, prices, services.CheckoutConfig{
		Mode:        config.CheckoutMode(),
		Destination: config.WhatsAppNumber(),
		Host:        config.MessagingHost(),
		Locale:      config.MessageLocale(),
	})
	a.Checkout.OnPlaced(func(o models.Order) {
		metrics.OrderValue.Observe(float64(o.Total))
	})

	a.Admin = services.NewAdminService(store, disk, int64(config.Int("UPLOAD_MAX_BYTES", storage.MaxImageBytes)))
	a.Auth = services.NewAuthService(repositories.NewAdminUserRepository(store))

	a.closers = append(a.closers, func(context.Context) error {
		a.Toasts.Close()
		return nil
	})
	return a
}

// Routes registers a route-registration callback run when the handler is
// built. Callbacks run in order.
func (a *Application) Routes(fn func(*router.Router)) *Application {
	a.routesFns = append(a.routesFns, fn)
	return a
}

// Close releases every collaborator in reverse order of opening.
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
