package cart_test

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/cart"
)

var (
	widget = cart.Product{ID: "w", Name: "Widget", Price: 1000, ImageURL: "w.png"}
	gadget = cart.Product{ID: "g", Name: "Gadget", Price: 250}
)

func TestAddItem_SameProductMergesQuantity(t *testing.T) {
	s := cart.New()

	require.NoError(t, s.AddItem(widget, 2))
	require.NoError(t, s.AddItem(widget, 3))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, int64(5000), s.Total())
}

func TestAddItem_RejectsNonPositiveQuantity(t *testing.T) {
	s := cart.New()

	for _, q := range []int{0, -1} {
		err := s.AddItem(widget, q)
		assert.True(t, errors.Is(err, cart.ErrInvalidQuantity))
	}
	assert.Equal(t, 0, s.Len())
}

func TestAddItem_CapsLineQuantity(t *testing.T) {
	s := cart.New()

	assert.ErrorIs(t, s.AddItem(widget, math.MaxInt), cart.ErrInvalidQuantity)
	assert.Equal(t, 0, s.Len())

	require.NoError(t, s.AddItem(widget, cart.MaxQuantity-1))
	require.NoError(t, s.AddItem(widget, 1))
	assert.ErrorIs(t, s.AddItem(widget, 1), cart.ErrInvalidQuantity)

	it, ok := s.Item("w")
	require.True(t, ok)
	assert.Equal(t, cart.MaxQuantity, it.Quantity)
	assert.Equal(t, int64(cart.MaxQuantity)*widget.Price, s.Total())
}

func TestUpdateQuantity_RejectsAboveMax(t *testing.T) {
	s := cart.New()
	require.NoError(t, s.AddItem(widget, 2))

	found, err := s.UpdateQuantity("w", cart.MaxQuantity+1)
	assert.True(t, found)
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)

	it, _ := s.Item("w")
	assert.Equal(t, 2, it.Quantity)
}

func TestNew_CapsRestoredQuantities(t *testing.T) {
	s := cart.New(
		cart.Item{ProductID: "w", Price: 1, Quantity: math.MaxInt},
		cart.Item{ProductID: "w", Price: 1, Quantity: math.MaxInt},
	)
	it, ok := s.Item("w")
	require.True(t, ok)
	assert.Equal(t, cart.MaxQuantity, it.Quantity)
}

func TestAddItem_KeepsFirstSnapshot(t *testing.T) {
	s := cart.New()
	require.NoError(t, s.AddItem(widget, 1))

	repriced := widget
	repriced.Price = 9999
	repriced.Name = "Widget v2"
	require.NoError(t, s.AddItem(repriced, 1))

	it, ok := s.Item("w")
	require.True(t, ok)
	assert.Equal(t, "Widget", it.Name)
	assert.Equal(t, int64(1000), it.Price)
}

func TestUpdateQuantity_ZeroOrNegativeRemoves(t *testing.T) {
	for _, q := range []int{0, -1} {
		s := cart.New()
		require.NoError(t, s.AddItem(widget, 2))

		found, err := s.UpdateQuantity("w", q)
		require.NoError(t, err)
		assert.True(t, found)
		_, ok := s.Item("w")
		assert.False(t, ok, "quantity %d should remove the line", q)
	}
}

func TestUpdateQuantity_SetsAndIgnoresUnknown(t *testing.T) {
	s := cart.New()
	require.NoError(t, s.AddItem(widget, 2))

	found, err := s.UpdateQuantity("w", 7)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = s.UpdateQuantity("missing", 3)
	require.NoError(t, err)
	assert.False(t, found)

	assert.Equal(t, 7, s.Count())
	assert.Equal(t, 1, s.Len())
}

func TestRemoveAndClear(t *testing.T) {
	s := cart.New()
	require.NoError(t, s.AddItem(widget, 1))
	require.NoError(t, s.AddItem(gadget, 4))

	assert.True(t, s.RemoveItem("w"))
	assert.False(t, s.RemoveItem("w"))
	assert.Equal(t, int64(1000), s.Total())

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, int64(0), s.Total())
}

func TestItems_PreserveInsertionOrder(t *testing.T) {
	s := cart.New()
	require.NoError(t, s.AddItem(gadget, 1))
	require.NoError(t, s.AddItem(widget, 1))
	require.NoError(t, s.AddItem(gadget, 1))

	items := s.Items()
	assert.Equal(t, "g", items[0].ProductID)
	assert.Equal(t, "w", items[1].ProductID)
}

func TestItems_ReturnsCopy(t *testing.T) {
	s := cart.New()
	require.NoError(t, s.AddItem(widget, 1))

	items := s.Items()
	items[0].Quantity = 100

	assert.Equal(t, 1, s.Count())
}

func TestNew_SanitisesSeed(t *testing.T) {
	s := cart.New(
		cart.Item{ProductID: "a", Price: 10, Quantity: 2},
		cart.Item{ProductID: "a", Price: 10, Quantity: 1},
		cart.Item{ProductID: "b", Price: 10, Quantity: 0},
		cart.Item{ProductID: "", Price: 10, Quantity: 4},
	)

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 3, s.Count())
}

// Total must equal Σ price×qty after any sequence of operations.
func TestTotal_ConsistentUnderRandomOperations(t *testing.T) {
	products := []cart.Product{
		{ID: "1", Price: 254000}, {ID: "2", Price: 89000},
		{ID: "3", Price: 15}, {ID: "4", Price: 0},
	}
	rng := rand.New(rand.NewSource(42))
	s := cart.New()

	for i := 0; i < 2000; i++ {
		p := products[rng.Intn(len(products))]
		switch rng.Intn(3) {
		case 0:
			_ = s.AddItem(p, rng.Intn(5)-1)
		case 1:
			_, _ = s.UpdateQuantity(p.ID, rng.Intn(6)-2)
		case 2:
			s.RemoveItem(p.ID)
		}

		var want int64
		for _, it := range s.Items() {
			require.Positive(t, it.Quantity)
			want += it.Price * int64(it.Quantity)
		}
		require.Equal(t, want, s.Total())
	}
}

func TestSummary(t *testing.T) {
	s := cart.New()
	require.NoError(t, s.AddItem(widget, 2))
	require.NoError(t, s.AddItem(gadget, 4))

	sum := s.Summary()
	assert.Len(t, sum.Items, 2)
	assert.Equal(t, 6, sum.Count)
	assert.Equal(t, int64(3000), sum.Total)
}

func TestConcurrentAdds(t *testing.T) {
	s := cart.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.AddItem(widget, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.Count())
	assert.Equal(t, int64(50000), s.Total())
}
