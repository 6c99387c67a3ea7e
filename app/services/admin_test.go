package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

func newAdmin(t *testing.T) (*AdminService, *storage.Local) {
	t.Helper()
	disk, err := storage.NewLocal(t.TempDir(), "http://shop.test/storage")
	require.NoError(t, err)
	return NewAdminService(newStore(t), disk, 1024), disk
}

func TestAdmin_ProductCRUD(t *testing.T) {
	svc, _ := newAdmin(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, ProductInput{Name: " Huile ", Price: 2500, Stock: 4})
	require.NoError(t, err)
	assert.Equal(t, "Huile", p.Name)

	updated, err := svc.UpdateProduct(ctx, p.ID, ProductInput{Name: "Huile 5L", Price: 9000})
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, 0, updated.Stock, "update replaces the whole document")

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(9000), got.Price)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	_, err = svc.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteProduct(ctx, p.ID), ErrNotFound)
}

func TestAdmin_ProductValidation(t *testing.T) {
	svc, _ := newAdmin(t)

	_, err := svc.CreateProduct(context.Background(), ProductInput{Price: -1, ImageURL: "not a url"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "price")
	assert.Contains(t, verr.Fields, "image_url")

	list, _ := svc.ListProducts(context.Background())
	assert.Empty(t, list)
}

func TestAdmin_DeleteCategoryOrphansProducts(t *testing.T) {
	svc, _ := newAdmin(t)
	ctx := context.Background()

	c, err := svc.CreateCategory(ctx, CategoryInput{Name: "Épicerie", Icon: "🛒"})
	require.NoError(t, err)
	for _, name := range []string{"Sucre", "Farine"} {
		_, err := svc.CreateProduct(ctx, ProductInput{Name: name, CategoryID: c.ID})
		require.NoError(t, err)
	}
	_, err = svc.CreateProduct(ctx, ProductInput{Name: "Savon"})
	require.NoError(t, err)

	orphans, err := svc.DeleteCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, orphans)

	products, _ := svc.ListProducts(ctx)
	assert.Len(t, products, 3, "products survive their category")

	_, err = svc.DeleteCategory(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdmin_UpdateCategory(t *testing.T) {
	svc, _ := newAdmin(t)
	ctx := context.Background()

	c, err := svc.CreateCategory(ctx, CategoryInput{Name: "Boissons"})
	require.NoError(t, err)
	_, err = svc.UpdateCategory(ctx, c.ID, CategoryInput{Name: "Boissons fraîches", Icon: "🥤"})
	require.NoError(t, err)

	list, _ := svc.ListCategories(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "Boissons fraîches", list[0].Name)

	_, err = svc.UpdateCategory(ctx, "missing", CategoryInput{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdmin_Settings(t *testing.T) {
	svc, _ := newAdmin(t)
	ctx := context.Background()

	s, err := svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultHeroImageURL, s.HeroImageURL)

	saved, err := svc.UpdateSettings(ctx, SettingsInput{HeroTitle: "Soldes", LogoURL: "https://cdn.test/logo.png"})
	require.NoError(t, err)
	assert.Equal(t, "Soldes", saved.HeroTitle)

	_, err = svc.UpdateSettings(ctx, SettingsInput{LogoURL: "ftp:/broken"})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestAdmin_Orders(t *testing.T) {
	svc, _ := newAdmin(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, name := range []string{"first", "second"} {
		o := models.Order{CustomerName: name, Status: models.OrderPending, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, svc.store.Orders().Create(ctx, &o))
	}

	orders, err := svc.ListOrders(ctx, "")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "second", orders[0].CustomerName, "newest first")

	changed, err := svc.UpdateOrderStatus(ctx, orders[1].ID, StatusInput{Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderCompleted, changed.Status)

	done, err := svc.ListOrders(ctx, "completed")
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "first", done[0].CustomerName)

	_, err = svc.ListOrders(ctx, "shipped")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = svc.UpdateOrderStatus(ctx, orders[0].ID, StatusInput{Status: "lost"})
	assert.True(t, errors.As(err, &verr))

	_, err = svc.UpdateOrderStatus(ctx, "missing", StatusInput{Status: "cancelled"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdmin_UploadImage(t *testing.T) {
	svc, disk := newAdmin(t)
	ctx := context.Background()

	png := append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00"), make([]byte, 64)...)
	url, err := svc.UploadImage(ctx, UploadProducts, bytes.NewReader(png), int64(len(png)))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://shop.test/storage/products/"), url)
	assert.True(t, disk.Exists(ctx, strings.TrimPrefix(url, "http://shop.test/storage/")))

	var verr *ValidationError
	_, err = svc.UploadImage(ctx, "avatars", bytes.NewReader(png), int64(len(png)))
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "target")

	_, err = svc.UploadImage(ctx, UploadSettings, strings.NewReader("just text"), 9)
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields["file"], "image")

	_, err = svc.UploadImage(ctx, UploadSettings, bytes.NewReader(png), 4096)
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "file")
}
