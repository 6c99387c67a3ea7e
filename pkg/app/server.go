package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/internal/server"
	"github.com/shashiranjanraj/storefront/pkg/grpc"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// sweepEvery is how often idle carts and toast hubs are dropped.
const sweepEvery = time.Minute

// Serve runs the HTTP server on addr, the gRPC health server and every
// background loop until ctx is cancelled or one of them fails.
func (a *Application) Serve(ctx context.Context, addr string) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { a.Live.Run(ctx); return nil })
	g.Go(func() error { a.Watcher.Run(ctx); return nil })
	g.Go(func() error { a.Limiter.Run(ctx); return nil })
	g.Go(func() error { a.sweep(ctx); return nil })

	health, err := grpc.Start(config.GRPCPort())
	if err != nil {
		logger.Warn("app: gRPC health server disabled", "error", err)
	}
	if health != nil {
		health.SetServing(true)
		defer health.Stop()
	}

	g.Go(func() error {
		defer func() {
			if health != nil {
				health.SetServing(false)
			}
		}()
		return server.Run(ctx, addr, a.Handler())
	})

	return g.Wait()
}

// sweep drops idle in-memory carts and unwatched toast hubs.
func (a *Application) sweep(ctx context.Context) {
	ticker := time.NewTicker(sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			carts := a.Carts.Sweep(config.CartTTL())
			hubs := a.Toasts.Sweep()
			metrics.ActiveCarts.Set(float64(a.Carts.Len()))
			if carts > 0 || hubs > 0 {
				logger.Debug("app: swept idle sessions", "carts", carts, "toast_hubs", hubs)
			}
		}
	}
}
