package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPersister struct {
	data    map[string][]Item
	loadErr error
	saves   int
}

func newMemPersister() *memPersister { return &memPersister{data: map[string][]Item{}} }

func (m *memPersister) Load(_ context.Context, sid string) ([]Item, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data[sid], nil
}

func (m *memPersister) Save(_ context.Context, sid string, items []Item) error {
	m.saves++
	m.data[sid] = items
	return nil
}

func (m *memPersister) Delete(_ context.Context, sid string) error {
	delete(m.data, sid)
	return nil
}

func TestRegistry_SameSessionSameCart(t *testing.T) {
	r := NewRegistry(nil)
	ctx := context.Background()

	a, err := r.Get(ctx, "s1")
	require.NoError(t, err)
	b, _ := r.Get(ctx, "s1")
	c, _ := r.Get(ctx, "s2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_SaveAndReload(t *testing.T) {
	p := newMemPersister()
	ctx := context.Background()

	first := NewRegistry(p)
	s, _ := first.Get(ctx, "sess")
	require.NoError(t, s.AddItem(Product{ID: "1", Name: "Smartphone", Price: 254000}, 2))
	require.NoError(t, first.Save(ctx, "sess"))

	second := NewRegistry(p)
	restored, err := second.Get(ctx, "sess")
	require.NoError(t, err)
	assert.Equal(t, int64(508000), restored.Total())
}

func TestRegistry_SaveEmptyDeletes(t *testing.T) {
	p := newMemPersister()
	p.data["sess"] = []Item{{ProductID: "1", Price: 1, Quantity: 1}}
	r := NewRegistry(p)
	ctx := context.Background()

	s, _ := r.Get(ctx, "sess")
	s.Clear()
	require.NoError(t, r.Save(ctx, "sess"))

	_, ok := p.data["sess"]
	assert.False(t, ok)
}

func TestRegistry_LoadFailureDegradesToEmptyCart(t *testing.T) {
	p := newMemPersister()
	p.loadErr = errors.New("redis down")
	r := NewRegistry(p)

	s, err := r.Get(context.Background(), "sess")

	require.Error(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 0, s.Len())
}

func TestRegistry_Sweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRegistry(nil)
	r.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = r.Get(ctx, "old")
	now = now.Add(2 * time.Hour)
	_, _ = r.Get(ctx, "fresh")

	assert.Equal(t, 1, r.Sweep(time.Hour))
	assert.Equal(t, 1, r.Len())
}
