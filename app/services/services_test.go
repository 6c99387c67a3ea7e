package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/internal/docstore"
	"github.com/shashiranjanraj/storefront/pkg/money"
)

var errBoom = errors.New("disk on fire")

func newStore(t *testing.T) *docstore.Memory {
	t.Helper()
	s, err := docstore.NewMemory("")
	require.NoError(t, err)
	return s
}

func prices() money.Formatter {
	return money.MustNew("fr-FR", "XOF", "F CFA")
}

// brokenOrders fails every write to the orders collection.
type brokenOrders struct {
	docstore.Store
}

func (b brokenOrders) Orders() docstore.Collection[models.Order] { return failingOrders{} }

type failingOrders struct{}

func (failingOrders) List(context.Context) ([]models.Order, error) { return nil, errBoom }
func (failingOrders) Get(context.Context, string) (models.Order, error) {
	return models.Order{}, errBoom
}
func (failingOrders) Create(context.Context, *models.Order) error         { return errBoom }
func (failingOrders) Update(context.Context, string, *models.Order) error { return errBoom }
func (failingOrders) Delete(context.Context, string) error                { return errBoom }
