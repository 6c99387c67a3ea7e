package app

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/session"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

// Router builds the router with the global middleware stack and every
// registered route.
func (a *Application) Router() *router.Router {
	r := router.New()

	// Global middleware, outermost first. Metrics wraps everything so the
	// latency is total; request ids exist before anything logs; preflights
	// are answered before the limiter counts them.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.CORSFromEnv()))
	r.Use(a.Limiter.Middleware)
	r.Use(session.Middleware(session.FromEnv()))

	// Prometheus /metrics endpoint.
	r.Get("/metrics", "metrics", metrics.Handler())

	if local, ok := a.Disk.(*storage.Local); ok {
		prefix := storagePrefix(config.StorageURL())
		r.Mount(prefix, "storage", http.StripPrefix(prefix, local.Handler()))
	}

	for _, fn := range a.routesFns {
		fn(r)
	}
	return r
}

// Handler is Router as an http.Handler.
func (a *Application) Handler() http.Handler { return a.Router().Handler() }

// storagePrefix is the path component of the public storage URL.
func storagePrefix(publicURL string) string {
	u, err := url.Parse(publicURL)
	if err != nil {
		return "/storage"
	}
	if p := strings.TrimRight(u.Path, "/"); p != "" {
		return p
	}
	return "/storage"
}
