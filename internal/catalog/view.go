package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/internal/docstore"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// PriceFormatter renders an amount in minor units for display.
type PriceFormatter interface {
	Format(minor int64) string
}

// View is everything the storefront page needs in one read.
type View struct {
	Settings   models.SiteSettings `json:"settings"`
	Categories []models.Category   `json:"categories"`
	Buckets    []Bucket            `json:"buckets"`
	Filter     string              `json:"filter"`
	Demo       bool                `json:"demo"`
	Prices     map[string]string   `json:"prices,omitempty"`
}

// Loader reads the store and assembles Views.
type Loader struct {
	store    docstore.Store
	prices   PriceFormatter
	fallback bool
}

// NewLoader returns a Loader. prices may be nil; fallback enables the
// demonstration catalogue for empty or unreachable stores.
func NewLoader(store docstore.Store, prices PriceFormatter, fallback bool) *Loader {
	return &Loader{store: store, prices: prices, fallback: fallback}
}

// Store is the backing store.
func (l *Loader) Store() docstore.Store { return l.store }

// Lists returns the live products and categories, each replaced by its demo
// list when fallback applies. A read failure is only returned when fallback is off.
func (l *Loader) Lists(ctx context.Context) ([]models.Product, []models.Category, bool, error) {
	products, perr := l.store.Products().List(ctx)
	categories, cerr := l.store.Categories().List(ctx)
	if err := errors.Join(perr, cerr); err != nil {
		if !l.fallback {
			return nil, nil, false, fmt.Errorf("catalog: read: %w", err)
		}
		// Only the unreadable list is replaced.
		if perr != nil {
			logger.WithCtx(ctx).Warn("catalog: products unreadable, serving demo products", "error", perr)
			products = nil
		}
		if cerr != nil {
			logger.WithCtx(ctx).Warn("catalog: categories unreadable, serving demo categories", "error", cerr)
			categories = nil
		}
	}

	products, categories, demo := WithFallback(products, categories, l.fallback)
	return products, categories, demo, nil
}

// Load builds the View for filter.
func (l *Loader) Load(ctx context.Context, filter string) (View, error) {
	if filter == "" {
		filter = FilterAll
	}

	products, categories, demo, err := l.Lists(ctx)
	if err != nil {
		return View{}, err
	}

	settings, err := docstore.GetSettings(ctx, l.store)
	if err != nil {
		logger.WithCtx(ctx).Warn("catalog: settings unavailable, using defaults", "error", err)
		settings = models.DefaultSettings()
	}

	v := View{
		Settings:   settings,
		Categories: categories,
		Buckets:    Group(products, categories, filter),
		Filter:     filter,
		Demo:       demo,
	}
	if l.prices != nil {
		v.Prices = make(map[string]string, len(products))
		for _, p := range products {
			v.Prices[p.ID] = l.prices.Format(p.Price)
		}
	}
	return v, nil
}

// Product looks one product up in the same source Load would use.
func (l *Loader) Product(ctx context.Context, id string) (models.Product, error) {
	p, err := l.store.Products().Get(ctx, id)
	if err == nil || !l.fallback {
		return p, err
	}

	products, _, demo, lerr := l.Lists(ctx)
	if lerr != nil || !demo {
		return p, err
	}
	for _, dp := range products {
		if dp.ID == id {
			return dp, nil
		}
	}
	return p, err
}
