package ctx_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/internal/docstore"
	appctx "github.com/shashiranjanraj/storefront/pkg/ctx"
)

func serve(h appctx.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	appctx.Wrap(h)(rec, req)
	return rec
}

func TestSuccessEnvelope(t *testing.T) {
	rec := serve(func(c *appctx.Context) {
		c.Success(map[string]any{"id": "p1"})
	}, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":200,"data":{"id":"p1"}}`, rec.Body.String())
}

func TestParamAndQuery(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/products/{id}", appctx.Wrap(func(c *appctx.Context) {
		c.Success(map[string]any{
			"id":       c.Param("id"),
			"category": c.DefaultQuery("category", "all"),
			"qty":      c.QueryInt("qty", 1),
		})
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/p7?qty=x", nil))
	assert.JSONEq(t, `{"status":200,"data":{"id":"p7","category":"all","qty":1}}`, rec.Body.String())
}

type input struct {
	Name string `json:"name" validate:"required"`
}

func TestBindJSON(t *testing.T) {
	handler := func(c *appctx.Context) {
		var in input
		if !c.BindJSON(&in) {
			return
		}
		c.Created(in)
	}

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return serve(handler, req)
	}

	assert.Equal(t, http.StatusCreated, post(`{"name":"Widget"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`{"name":`).Code)

	rec := post(`{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name"`)
}

type fieldErr map[string]string

func (f fieldErr) Error() string                  { return "invalid" }
func (f fieldErr) FieldErrors() map[string]string { return f }

var errGone = errors.New("gone for good")

func TestFail(t *testing.T) {
	appctx.RegisterError(errGone, http.StatusGone)

	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("products %q: %w", "p1", docstore.ErrNotFound), http.StatusNotFound},
		{docstore.ErrConflict, http.StatusConflict},
		{fieldErr{"name": "required"}, http.StatusUnprocessableEntity},
		{fmt.Errorf("wrapped: %w", errGone), http.StatusGone},
		{errors.New("database exploded"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		err := tc.err
		rec := serve(func(c *appctx.Context) { c.Fail(err) }, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, tc.code, rec.Code, err.Error())
	}

	rec := serve(func(c *appctx.Context) { c.Fail(errors.New("secret dsn leaked")) },
		httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
}
