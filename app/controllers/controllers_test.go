package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/internal/docstore"
	"github.com/shashiranjanraj/storefront/pkg/app"
	"github.com/shashiranjanraj/storefront/pkg/money"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/session"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

func newApp(t *testing.T) (*app.Application, http.Handler) {
	t.Helper()
	store, err := docstore.NewMemory("")
	require.NoError(t, err)
	disk, err := storage.NewLocal(t.TempDir(), "http://localhost:8080/storage")
	require.NoError(t, err)

	a := app.Build(store, disk, nil, money.MustNew("fr-FR", "XOF", "F CFA"))
	a.Routes(func(r *router.Router) { routes.RegisterAPI(r, a) })
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a, a.Handler()
}

// visitor is one browser: a fixed session cookie and an optional token.
type visitor struct {
	t     *testing.T
	h     http.Handler
	sid   string
	token string
}

func newVisitor(t *testing.T, h http.Handler) *visitor {
	return &visitor{t: t, h: h, sid: session.NewID()}
}

func (v *visitor) request(method, path string, body any) *http.Request {
	v.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(v.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: session.DefaultOptions().CookieName, Value: v.sid})
	if v.token != "" {
		req.Header.Set("Authorization", "Bearer "+v.token)
	}
	return req
}

func (v *visitor) do(method, path string, body any) *httptest.ResponseRecorder {
	v.t.Helper()
	rec := httptest.NewRecorder()
	v.h.ServeHTTP(rec, v.request(method, path, body))
	return rec
}

type envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func data[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), string(env.Data))
	return out
}

func errorsOf(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Errors
}

type cartBody struct {
	Items []struct {
		ProductID          string `json:"product_id"`
		Quantity           int    `json:"quantity"`
		LineTotalFormatted string `json:"line_total_formatted"`
	} `json:"items"`
	Count          int    `json:"count"`
	Total          int64  `json:"total"`
	TotalFormatted string `json:"total_formatted"`
}

var customer = map[string]string{
	"customer_name":  "Awa Diop",
	"customer_phone": "+221 77 123 45 67",
	"address":        "Dakar",
}

// ─── Catalog ──────────────────────────────────────────────────────────────────

func TestCatalog_FallsBackToDemo(t *testing.T) {
	_, h := newApp(t)
	v := newVisitor(t, h)

	rec := v.do(http.MethodGet, "/api/catalog?category=cat4", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	view := data[struct {
		Demo    bool `json:"demo"`
		Buckets []struct {
			CategoryID string            `json:"category_id"`
			Products   []json.RawMessage `json:"products"`
		} `json:"buckets"`
		Filter string `json:"filter"`
	}](t, rec)
	assert.True(t, view.Demo)
	assert.Equal(t, "cat4", view.Filter)
	require.Len(t, view.Buckets, 1)
	assert.Equal(t, "cat4", view.Buckets[0].CategoryID)
	assert.Len(t, view.Buckets[0].Products, 4)
}

func TestProductShow(t *testing.T) {
	_, h := newApp(t)
	v := newVisitor(t, h)

	rec := v.do(http.MethodGet, "/api/products/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p := data[map[string]any](t, rec)
	assert.Equal(t, "Smartphone Premium", p["name"])
	assert.Equal(t, "254 000 F CFA", p["price_formatted"])
	assert.Equal(t, true, p["in_stock"])

	assert.Equal(t, http.StatusNotFound, v.do(http.MethodGet, "/api/products/nope", nil).Code)
}

// ─── Cart ─────────────────────────────────────────────────────────────────────

func TestCart_Flow(t *testing.T) {
	_, h := newApp(t)
	v := newVisitor(t, h)

	rec := v.do(http.MethodPost, "/api/cart/items", map[string]any{"product_id": "2", "quantity": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = v.do(http.MethodPost, "/api/cart/items", map[string]any{"product_id": "2"})
	require.Equal(t, http.StatusCreated, rec.Code)
	c := data[cartBody](t, rec)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Count)
	assert.Equal(t, int64(267000), c.Total)
	assert.Equal(t, "267 000 F CFA", c.TotalFormatted)

	rec = v.do(http.MethodPut, "/api/cart/items/2", map[string]any{"quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, data[cartBody](t, rec).Count)

	assert.Equal(t, http.StatusNotFound, v.do(http.MethodDelete, "/api/cart/items/9", nil).Code)

	rec = v.do(http.MethodDelete, "/api/cart/items/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, data[cartBody](t, rec).Count)
}

func TestCart_IsPerSession(t *testing.T) {
	_, h := newApp(t)
	alice, bob := newVisitor(t, h), newVisitor(t, h)

	require.Equal(t, http.StatusCreated, alice.do(http.MethodPost, "/api/cart/items", map[string]any{"product_id": "1"}).Code)

	assert.Equal(t, 1, data[cartBody](t, alice.do(http.MethodGet, "/api/cart", nil)).Count)
	assert.Zero(t, data[cartBody](t, bob.do(http.MethodGet, "/api/cart", nil)).Count)
}

func TestCart_Rejects(t *testing.T) {
	_, h := newApp(t)
	v := newVisitor(t, h)

	assert.Equal(t, http.StatusNotFound,
		v.do(http.MethodPost, "/api/cart/items", map[string]any{"product_id": "ghost"}).Code)

	rec := v.do(http.MethodPost, "/api/cart/items", map[string]any{"product_id": "1", "quantity": -1})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = v.do(http.MethodPost, "/api/cart/items", map[string]any{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, errorsOf(t, rec), "product_id")

	rec = v.do(http.MethodPost, "/api/cart/items", map[string]any{"product_id": "1", "quantity": math.MaxInt})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Two adds within the per-request cap still cannot push a line past it.
	require.Equal(t, http.StatusCreated,
		v.do(http.MethodPost, "/api/cart/items", map[string]any{"product_id": "1", "quantity": 999}).Code)
	rec = v.do(http.MethodPost, "/api/cart/items", map[string]any{"product_id": "1", "quantity": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = v.do(http.MethodPut, "/api/cart/items/1", map[string]any{"quantity": 1000})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	assert.Equal(t, 999, data[cartBody](t, v.do(http.MethodGet, "/api/cart", nil)).Count)
}

// ─── Checkout ─────────────────────────────────────────────────────────────────

func TestCheckout_OrderStoresAndClearsCart(t *testing.T) {
	a, h := newApp(t)
	v := newVisitor(t, h)

	rec := v.do(http.MethodPost, "/api/checkout/order", customer)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "empty cart")

	v.do(http.MethodPost, "/api/cart/items", map[string]any{"product_id": "4", "quantity": 2})

	rec = v.do(http.MethodPost, "/api/checkout/order", map[string]string{"customer_name": "Awa"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, errorsOf(t, rec), "customer_phone")

	orders, err := a.Store.Orders().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders, "nothing written on a rejected form")

	rec = v.do(http.MethodPost, "/api/checkout/order", customer)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := data[map[string]any](t, rec)
	assert.Equal(t, "pending", order["status"])
	assert.EqualValues(t, 130000, order["total"])

	orders, err = a.Store.Orders().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	assert.Zero(t, data[cartBody](t, v.do(http.MethodGet, "/api/cart", nil)).Count)
}

func TestCheckout_WhatsAppKeepsCart(t *testing.T) {
	_, h := newApp(t)
	v := newVisitor(t, h)

	assert.Equal(t, http.StatusUnprocessableEntity, v.do(http.MethodPost, "/api/checkout/whatsapp", nil).Code)

	v.do(http.MethodPost, "/api/cart/items", map[string]any{"product_id": "1"})
	rec := v.do(http.MethodPost, "/api/checkout/whatsapp", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	link := data[map[string]string](t, rec)["url"]
	assert.Contains(t, link, "https://wa.me/33775771306?text=")
	assert.Contains(t, link, "Smartphone%20Premium")

	assert.Equal(t, 1, data[cartBody](t, v.do(http.MethodGet, "/api/cart", nil)).Count)
}

func TestCheckout_SingleProduct(t *testing.T) {
	a, h := newApp(t)
	v := newVisitor(t, h)

	body := map[string]any{"quantity": 3}
	for k, val := range customer {
		body[k] = val
	}
	rec := v.do(http.MethodPost, "/api/products/5/order", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	orders, _ := a.Store.Orders().List(context.Background())
	require.Len(t, orders, 1)
	assert.Equal(t, 3, orders[0].Quantity)

	rec = v.do(http.MethodGet, "/api/products/5/whatsapp?quantity=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, data[map[string]string](t, rec)["url"], "x2")

	rec = v.do(http.MethodGet, "/api/contact?topic=learn-more", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, data[map[string]string](t, rec)["url"], "qualit%C3%A9%20premium")
}

// ─── Admin ────────────────────────────────────────────────────────────────────

func signIn(t *testing.T, a *app.Application, v *visitor) {
	t.Helper()
	_, err := a.Auth.CreateAdmin(context.Background(), "owner@shop.test", "s3cret-pass")
	require.NoError(t, err)

	rec := v.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "owner@shop.test", "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	v.token = data[map[string]any](t, rec)["access_token"].(string)
}

func TestAuth(t *testing.T) {
	a, h := newApp(t)
	v := newVisitor(t, h)

	assert.Equal(t, http.StatusUnauthorized, v.do(http.MethodGet, "/api/auth/me", nil).Code)

	_, err := a.Auth.CreateAdmin(context.Background(), "owner@shop.test", "s3cret-pass")
	require.NoError(t, err)
	rec := v.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "owner@shop.test", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = v.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "owner@shop.test", "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, rec.Code)
	tokens := data[map[string]any](t, rec)
	v.token = tokens["access_token"].(string)

	rec = v.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "owner@shop.test", data[map[string]any](t, rec)["email"])
	assert.NotContains(t, rec.Body.String(), "password")

	rec = v.do(http.MethodPost, "/api/auth/refresh", map[string]any{"refresh_token": tokens["refresh_token"]})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdmin_RequiresToken(t *testing.T) {
	_, h := newApp(t)
	v := newVisitor(t, h)
	assert.Equal(t, http.StatusUnauthorized, v.do(http.MethodGet, "/api/admin/products", nil).Code)
}

func TestAdmin_CatalogCRUD(t *testing.T) {
	a, h := newApp(t)
	v := newVisitor(t, h)
	signIn(t, a, v)

	rec := v.do(http.MethodPost, "/api/admin/categories", map[string]string{"name": "Épicerie", "icon": "🛒"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	catID := data[map[string]any](t, rec)["id"].(string)

	rec = v.do(http.MethodPost, "/api/admin/products", map[string]any{
		"name": "Café Touba", "price": 2500, "stock": 10, "category_id": catID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	prodID := data[map[string]any](t, rec)["id"].(string)

	rec = v.do(http.MethodPost, "/api/admin/products", map[string]any{"price": -1})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, errorsOf(t, rec), "name")

	rec = v.do(http.MethodPut, "/api/admin/products/"+prodID, map[string]any{
		"name": "Café Touba 500g", "price": 3000, "stock": 5, "category_id": catID,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = v.do(http.MethodPost, "/api/admin/products", map[string]any{"name": "Bissap", "price_text": "abc"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, errorsOf(t, rec), "price_text")

	rec = v.do(http.MethodPost, "/api/admin/products", map[string]any{"name": "Bissap", "price_text": " 750 "})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.EqualValues(t, 750, data[map[string]any](t, rec)["price"])

	// The store is live now, so the shop front shows it instead of the demo.
	shop := newVisitor(t, h)
	rec = shop.do(http.MethodGet, "/api/products/"+prodID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3 000 F CFA", data[map[string]any](t, rec)["price_formatted"])

	rec = v.do(http.MethodDelete, "/api/admin/categories/"+catID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, data[map[string]any](t, rec)["orphaned_products"])

	require.Equal(t, http.StatusOK, v.do(http.MethodDelete, "/api/admin/products/"+prodID, nil).Code)
	assert.Equal(t, http.StatusNotFound, v.do(http.MethodGet, "/api/admin/products/"+prodID, nil).Code)
}

func TestAdmin_Orders(t *testing.T) {
	a, h := newApp(t)
	admin := newVisitor(t, h)
	signIn(t, a, admin)

	shopper := newVisitor(t, h)
	shopper.do(http.MethodPost, "/api/cart/items", map[string]any{"product_id": "1"})
	rec := shopper.do(http.MethodPost, "/api/checkout/order", customer)
	require.Equal(t, http.StatusCreated, rec.Code)
	orderID := data[map[string]any](t, rec)["id"].(string)

	rec = admin.do(http.MethodGet, "/api/admin/orders?status=pending", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, data[[]map[string]any](t, rec), 1)

	rec = admin.do(http.MethodPatch, "/api/admin/orders/"+orderID+"/status", map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = admin.do(http.MethodPatch, "/api/admin/orders/"+orderID+"/status", map[string]string{"status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "completed", data[map[string]any](t, rec)["status"])

	rec = admin.do(http.MethodGet, "/api/admin/orders?status=pending", nil)
	assert.Empty(t, data[[]map[string]any](t, rec))
}

func TestAdmin_SettingsAndUpload(t *testing.T) {
	a, h := newApp(t)
	v := newVisitor(t, h)
	signIn(t, a, v)

	rec := v.do(http.MethodPut, "/api/admin/settings", map[string]any{"hero_title": "Soldes", "logo_url": "not a url"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = v.do(http.MethodPut, "/api/admin/settings", map[string]any{"hero_title": "Soldes"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Soldes", data[map[string]any](t, rec)["hero_title"])

	upload := func(target string, content []byte) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, err := mw.CreateFormFile("file", "logo.png")
		require.NoError(t, err)
		fw.Write(content)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/admin/uploads/"+target, &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+v.token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
	rec = upload("settings", png)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, data[map[string]string](t, rec)["url"], "http://localhost:8080/storage/settings/")

	rec = upload("settings", []byte("plain text"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, errorsOf(t, rec), "file")

	assert.Equal(t, http.StatusUnprocessableEntity, upload("avatars", png).Code)
}
