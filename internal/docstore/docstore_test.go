package docstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shashiranjanraj/storefront/app/models"
)

func newSQLite(t *testing.T) *SQL {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	s, err := NewSQL(db)
	require.NoError(t, err)
	return s
}

// backends runs fn against every backend that needs no external service.
func backends(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) {
		m, err := NewMemory("")
		require.NoError(t, err)
		fn(t, m)
	})
	t.Run("sql", func(t *testing.T) {
		fn(t, newSQLite(t))
	})
}

func TestCollection_CRUD(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		products := s.Products()

		p := models.Product{Name: "Smartphone Premium", Price: 254000, Stock: 15, CategoryID: "cat1"}
		require.NoError(t, products.Create(ctx, &p))
		require.NotEmpty(t, p.ID)
		require.False(t, p.CreatedAt.IsZero())

		got, err := products.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Smartphone Premium", got.Name)

		created := got.CreatedAt
		edit := models.Product{Name: "Smartphone Pro", Price: 260000}
		require.NoError(t, products.Update(ctx, p.ID, &edit))

		got, err = products.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Smartphone Pro", got.Name)
		assert.Equal(t, 0, got.Stock, "update is a full replace")
		assert.Empty(t, got.CategoryID)
		assert.True(t, created.Equal(got.CreatedAt), "creation time survives updates")

		require.NoError(t, products.Delete(ctx, p.ID))
		_, err = products.Get(ctx, p.ID)
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestCollection_MissingIDs(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		err := s.Categories().Update(ctx, "nope", &models.Category{Name: "x"})
		assert.True(t, errors.Is(err, ErrNotFound))

		err = s.Categories().Delete(ctx, "nope")
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestCollection_DuplicateIDConflicts(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		require.NoError(t, s.Categories().Create(ctx, &models.Category{ID: "cat1", Name: "Électronique"}))
		err := s.Categories().Create(ctx, &models.Category{ID: "cat1", Name: "Mode"})
		assert.True(t, errors.Is(err, ErrConflict))
	})
}

func TestCollection_ListOldestFirst(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

		for i, name := range []string{"b", "a", "c"} {
			c := models.Category{ID: name, Name: name, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
			require.NoError(t, s.Categories().Create(ctx, &c))
		}

		list, err := s.Categories().List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []string{"b", "a", "c"}, []string{list[0].ID, list[1].ID, list[2].ID})
	})
}

func TestCollection_OrderItemsRoundTrip(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		o := models.Order{
			Items:         []models.OrderItem{{ProductID: "1", Name: "Widget", Price: 1000, Quantity: 2}},
			CustomerName:  "Awa",
			CustomerPhone: "+221700000000",
			Status:        models.OrderPending,
		}
		o.Recompute()
		require.NoError(t, s.Orders().Create(ctx, &o))

		got, err := s.Orders().Get(ctx, o.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, int64(2000), got.Total)
		assert.Equal(t, "Widget", got.Items[0].Name)
	})
}

func TestSettings_DefaultsThenUpsert(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		def, err := GetSettings(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultSettings().HeroImageURL, def.HeroImageURL)

		saved, err := PutSettings(ctx, s, models.SiteSettings{HeroTitle: "Soldes"})
		require.NoError(t, err)
		assert.Equal(t, models.SettingsID, saved.ID)

		_, err = PutSettings(ctx, s, models.SiteSettings{HeroTitle: "Nouveautés", LogoURL: "https://cdn/logo.png"})
		require.NoError(t, err)

		got, err := GetSettings(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, "Nouveautés", got.HeroTitle)
		assert.Equal(t, "https://cdn/logo.png", got.LogoURL)
		assert.NotEmpty(t, got.WhyChooseImageURL, "empty image slots fall back to defaults")

		all, err := s.Settings().List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "cassandra"})
	assert.Error(t, err)

	_, err = Open(context.Background(), Config{Driver: "sql"})
	assert.Error(t, err)
}

// ─── Memory specifics ─────────────────────────────────────────────────────────

func TestMemory_SnapshotSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	ctx := context.Background()

	first, err := NewMemory(path)
	require.NoError(t, err)
	require.NoError(t, first.Products().Create(ctx, &models.Product{ID: "1", Name: "Tablette Pro", Price: 189000}))
	require.NoError(t, first.Categories().Create(ctx, &models.Category{ID: "cat1", Name: "Électronique"}))

	second, err := NewMemory(path)
	require.NoError(t, err)

	p, err := second.Products().Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(189000), p.Price)

	cats, err := second.Categories().List(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 1)
}

func TestMemory_FailedSnapshotLeavesNoTrace(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	m, err := NewMemory(filepath.Join(dir, "store.json"))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, m.Products().Create(ctx, &models.Product{ID: "p1", Name: "Vase"}))
	ch, err := m.Watch(ctx)
	require.NoError(t, err)

	// A regular file where the snapshot directory should be makes every
	// write fail.
	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, os.WriteFile(dir, []byte("x"), 0o644))

	assert.Error(t, m.Orders().Create(ctx, &models.Order{ID: "o1", CustomerName: "Awa"}))
	assert.Error(t, m.Products().Update(ctx, "p1", &models.Product{Name: "Renamed"}))
	assert.Error(t, m.Products().Delete(ctx, "p1"))

	orders, err := m.Orders().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)

	p, err := m.Products().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Vase", p.Name)

	select {
	case c := <-ch:
		t.Fatalf("failed write was announced: %+v", c)
	default:
	}

	// Once the disk is back the same order goes through exactly once.
	require.NoError(t, os.Remove(dir))
	require.NoError(t, m.Orders().Create(ctx, &models.Order{ID: "o1", CustomerName: "Awa"}))
	orders, err = m.Orders().List(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestMemory_WatchReportsWrites(t *testing.T) {
	m, err := NewMemory("")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := m.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, m.Products().Create(ctx, &models.Product{ID: "p1", Name: "Vase"}))
	require.NoError(t, m.Products().Delete(ctx, "p1"))

	first := <-ch
	assert.Equal(t, ProductsCollection, first.Collection)
	assert.Equal(t, OpCreate, first.Op)
	assert.Equal(t, "p1", first.ID)

	second := <-ch
	assert.Equal(t, OpDelete, second.Op)

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-ch
		return !open
	}, time.Second, 10*time.Millisecond)
}

func TestChanges_PrefersNativeWatch(t *testing.T) {
	m, err := NewMemory("")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := Changes(ctx, m, time.Hour)
	require.NoError(t, m.Categories().Create(ctx, &models.Category{Name: "Sport"}))

	select {
	case c := <-ch:
		assert.Equal(t, CategoriesCollection, c.Collection)
	case <-time.After(time.Second):
		t.Fatal("no change delivered")
	}
}

// ─── Poller ───────────────────────────────────────────────────────────────────

func TestPoller_EmitsOnlyOnDifference(t *testing.T) {
	s := newSQLite(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := NewPoller(s, 10*time.Millisecond).Run(ctx)

	select {
	case <-ch:
		t.Fatal("unchanged store must not emit")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, s.Products().Create(ctx, &models.Product{Name: "Tapis de Yoga", Price: 18000}))

	select {
	case c := <-ch:
		assert.Equal(t, OpRefresh, c.Op)
	case <-time.After(time.Second):
		t.Fatal("poller missed the write")
	}
}

func TestChanges_FallsBackToPollerWithoutWatcher(t *testing.T) {
	s := newSQLite(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := Changes(ctx, s, 10*time.Millisecond)
	_, err := PutSettings(ctx, s, models.SiteSettings{HeroDiscount: "-30%"})
	require.NoError(t, err)

	select {
	case c := <-ch:
		assert.Equal(t, OpRefresh, c.Op)
	case <-time.After(time.Second):
		t.Fatal("expected a polled change")
	}
}
