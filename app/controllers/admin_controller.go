package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/money"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/toast"
)

// AdminController is CRUD over the catalogue, settings and orders. Every
// route sits behind middleware.RequireAdmin.
type AdminController struct {
	notifier
	admin  *services.AdminService
	prices money.Formatter
}

func NewAdminController(admin *services.AdminService, prices money.Formatter, toasts *toast.Sessions) *AdminController {
	return &AdminController{notifier: notifier{toasts}, admin: admin, prices: prices}
}

// ProductRequest is the product form. PriceText, when set, is the price as
// typed ("12.50") and takes precedence over Price.
type ProductRequest struct {
	services.ProductInput
	PriceText string `json:"price_text"`
}

// bindProduct decodes the form and resolves PriceText into minor units.
func (ac *AdminController) bindProduct(c *ctx.Context) (services.ProductInput, bool) {
	var req ProductRequest
	if !c.BindJSON(&req) {
		return services.ProductInput{}, false
	}
	if req.PriceText != "" {
		minor, err := ac.prices.Parse(req.PriceText)
		if err != nil {
			c.ValidationError(map[string]string{"price_text": "price_text must be a positive amount in " + ac.prices.Currency().String()})
			return services.ProductInput{}, false
		}
		req.Price = minor
	}
	return req.ProductInput, true
}

// saved answers a write. Failures raise an error toast for the admin and
// leave everything as it was.
func (ac *AdminController) saved(c *ctx.Context, status int, data any, err error) {
	if err != nil {
		var ve *services.ValidationError
		if !errors.As(err, &ve) {
			ac.notify(c, msgSaveFailed, toast.Error)
		}
		c.Fail(err)
		return
	}
	msg := msgSaved
	if data == nil {
		msg = msgDeleted
	}
	ac.notify(c, msg, toast.Success)
	if status == http.StatusCreated {
		c.Created(data)
		return
	}
	c.Message(msg, data)
}

// ─── Products ─────────────────────────────────────────────────────────────────

// GET /api/admin/products
func (ac *AdminController) ListProducts(c *ctx.Context) {
	products, err := ac.admin.ListProducts(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(products)
}

// GET /api/admin/products/{id}
func (ac *AdminController) ShowProduct(c *ctx.Context) {
	p, err := ac.admin.GetProduct(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(p)
}

// POST /api/admin/products
func (ac *AdminController) CreateProduct(c *ctx.Context) {
	in, ok := ac.bindProduct(c)
	if !ok {
		return
	}
	p, err := ac.admin.CreateProduct(c.Context(), in)
	ac.saved(c, http.StatusCreated, p, err)
}

// PUT /api/admin/products/{id}
func (ac *AdminController) UpdateProduct(c *ctx.Context) {
	in, ok := ac.bindProduct(c)
	if !ok {
		return
	}
	p, err := ac.admin.UpdateProduct(c.Context(), c.Param("id"), in)
	ac.saved(c, http.StatusOK, p, err)
}

// DELETE /api/admin/products/{id}
func (ac *AdminController) DeleteProduct(c *ctx.Context) {
	ac.saved(c, http.StatusOK, nil, ac.admin.DeleteProduct(c.Context(), c.Param("id")))
}

// ─── Categories ───────────────────────────────────────────────────────────────

// GET /api/admin/categories
func (ac *AdminController) ListCategories(c *ctx.Context) {
	categories, err := ac.admin.ListCategories(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(categories)
}

// GET /api/admin/categories/{id}
func (ac *AdminController) ShowCategory(c *ctx.Context) {
	cat, err := ac.admin.GetCategory(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(cat)
}

// POST /api/admin/categories
func (ac *AdminController) CreateCategory(c *ctx.Context) {
	var in services.CategoryInput
	if !c.BindJSON(&in) {
		return
	}
	cat, err := ac.admin.CreateCategory(c.Context(), in)
	ac.saved(c, http.StatusCreated, cat, err)
}

// PUT /api/admin/categories/{id}
func (ac *AdminController) UpdateCategory(c *ctx.Context) {
	var in services.CategoryInput
	if !c.BindJSON(&in) {
		return
	}
	cat, err := ac.admin.UpdateCategory(c.Context(), c.Param("id"), in)
	ac.saved(c, http.StatusOK, cat, err)
}

// DELETE /api/admin/categories/{id}
//
// Products of the category are kept and become uncategorized; the response
// reports how many.
func (ac *AdminController) DeleteCategory(c *ctx.Context) {
	orphans, err := ac.admin.DeleteCategory(c.Context(), c.Param("id"))
	if err != nil {
		ac.saved(c, http.StatusOK, nil, err)
		return
	}
	ac.notify(c, msgDeleted, toast.Success)
	c.Message(msgDeleted, map[string]int{"orphaned_products": orphans})
}

// ─── Settings ─────────────────────────────────────────────────────────────────

// GET /api/admin/settings
func (ac *AdminController) ShowSettings(c *ctx.Context) {
	settings, err := ac.admin.GetSettings(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(settings)
}

// PUT /api/admin/settings
func (ac *AdminController) UpdateSettings(c *ctx.Context) {
	var in services.SettingsInput
	if !c.BindJSON(&in) {
		return
	}
	settings, err := ac.admin.UpdateSettings(c.Context(), in)
	ac.saved(c, http.StatusOK, settings, err)
}

// ─── Orders ───────────────────────────────────────────────────────────────────

// GET /api/admin/orders?status=pending
func (ac *AdminController) ListOrders(c *ctx.Context) {
	orders, err := ac.admin.ListOrders(c.Context(), c.Query("status"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(orders)
}

// GET /api/admin/orders/{id}
func (ac *AdminController) ShowOrder(c *ctx.Context) {
	order, err := ac.admin.GetOrder(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(order)
}

// PATCH /api/admin/orders/{id}/status
func (ac *AdminController) UpdateOrderStatus(c *ctx.Context) {
	var in services.StatusInput
	if !c.BindJSON(&in) {
		return
	}
	order, err := ac.admin.UpdateOrderStatus(c.Context(), c.Param("id"), in)
	ac.saved(c, http.StatusOK, order, err)
}

// ─── Uploads ──────────────────────────────────────────────────────────────────

// POST /api/admin/uploads/{target} (multipart, field "file")
func (ac *AdminController) Upload(c *ctx.Context) {
	f, hdr, err := bind.File(c.R, "file", ac.admin.UploadLimit())
	switch {
	case errors.Is(err, bind.ErrTooLarge):
		c.ValidationError(map[string]string{"file": "The file is too large."})
		return
	case err != nil:
		c.ValidationError(map[string]string{"file": err.Error()})
		return
	}
	defer f.Close()

	url, err := ac.admin.UploadImage(c.Context(), c.Param("target"), f, hdr.Size)
	if err != nil {
		var ve *services.ValidationError
		if !errors.As(err, &ve) {
			ac.notify(c, msgUploadFailed, toast.Error)
		}
		c.Fail(err)
		return
	}
	c.Created(map[string]string{"url": url})
}
