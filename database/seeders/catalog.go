package seeders

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/internal/catalog"
	"github.com/shashiranjanraj/storefront/internal/docstore"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

func init() {
	Register("catalog", SeedCatalog)
	Register("settings", SeedSettings)
}

// SeedCatalog copies the demonstration catalogue into the store. Documents
// that already exist are left alone.
func SeedCatalog(ctx context.Context, store docstore.Store) error {
	products, categories := catalog.Demo()

	created := 0
	for i := range categories {
		ok, err := createOnce(ctx, store.Categories(), &categories[i])
		if err != nil {
			return err
		}
		if ok {
			created++
		}
	}
	for i := range products {
		ok, err := createOnce(ctx, store.Products(), &products[i])
		if err != nil {
			return err
		}
		if ok {
			created++
		}
	}
	logger.WithCtx(ctx).Info("seeders: catalog", "created", created)
	return nil
}

// SeedSettings stores the default site settings unless some are saved.
func SeedSettings(ctx context.Context, store docstore.Store) error {
	current, err := store.Settings().List(ctx)
	if err != nil {
		return err
	}
	if len(current) > 0 {
		return nil
	}
	_, err = docstore.PutSettings(ctx, store, models.DefaultSettings())
	return err
}

func createOnce[T any](ctx context.Context, c docstore.Collection[T], doc *T) (bool, error) {
	err := c.Create(ctx, doc)
	if errors.Is(err, docstore.ErrConflict) {
		return false, nil
	}
	return err == nil, err
}
