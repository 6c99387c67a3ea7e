package controllers

import (
	"github.com/shashiranjanraj/storefront/internal/catalog"
	"github.com/shashiranjanraj/storefront/pkg/cart"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/toast"
)

// CartController exposes the visitor's cart. The cart is keyed by the
// session cookie.
type CartController struct {
	notifier
	carts  *cart.Registry
	loader *catalog.Loader
	prices catalog.PriceFormatter
}

func NewCartController(carts *cart.Registry, loader *catalog.Loader, prices catalog.PriceFormatter, toasts *toast.Sessions) *CartController {
	return &CartController{notifier: notifier{toasts}, carts: carts, loader: loader, prices: prices}
}

type cartLine struct {
	cart.Item
	PriceFormatted     string `json:"price_formatted"`
	LineTotal          int64  `json:"line_total"`
	LineTotalFormatted string `json:"line_total_formatted"`
}

type cartView struct {
	Items          []cartLine `json:"items"`
	Count          int        `json:"count"`
	Total          int64      `json:"total"`
	TotalFormatted string     `json:"total_formatted"`
}

func (cc *CartController) view(s *cart.Store) cartView {
	sum := s.Summary()
	v := cartView{
		Items:          make([]cartLine, 0, len(sum.Items)),
		Count:          sum.Count,
		Total:          sum.Total,
		TotalFormatted: cc.prices.Format(sum.Total),
	}
	for _, it := range sum.Items {
		v.Items = append(v.Items, cartLine{
			Item:               it,
			PriceFormatted:     cc.prices.Format(it.Price),
			LineTotal:          it.LineTotal(),
			LineTotalFormatted: cc.prices.Format(it.LineTotal()),
		})
	}
	return v
}

// AddItemRequest is the body of POST /api/cart/items.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,max=64"`
	Quantity  int    `json:"quantity"   validate:"gte=0,lte=999"`
}

// UpdateItemRequest is the body of PUT /api/cart/items/{id}. Zero removes
// the line.
type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"lte=999"`
}

// Show godoc
// GET /api/cart
func (cc *CartController) Show(c *ctx.Context) {
	c.Success(cc.view(sessionCart(c, cc.carts)))
}

// Add godoc
// POST /api/cart/items
//
// The line snapshots the product as it is now. Adding a product already in
// the cart increases its quantity.
func (cc *CartController) Add(c *ctx.Context) {
	var req AddItemRequest
	if !c.BindJSON(&req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	p, err := cc.loader.Product(c.Context(), req.ProductID)
	if err != nil {
		c.Fail(err)
		return
	}

	s := sessionCart(c, cc.carts)
	if err := s.AddItem(cart.Product{ID: p.ID, Name: p.Name, Price: p.Price, ImageURL: p.ImageURL}, req.Quantity); err != nil {
		c.Fail(err)
		return
	}
	saveCart(c, cc.carts)
	metrics.CartMutations.WithLabelValues("add").Inc()
	cc.notify(c, msgAddedToCart, toast.Success)
	c.Created(cc.view(s))
}

// Update godoc
// PUT /api/cart/items/{id}
func (cc *CartController) Update(c *ctx.Context) {
	var req UpdateItemRequest
	if !c.BindJSON(&req) {
		return
	}

	s := sessionCart(c, cc.carts)
	found, err := s.UpdateQuantity(c.Param("id"), req.Quantity)
	if !found {
		c.NotFound("This product is not in the cart.")
		return
	}
	if err != nil {
		c.Fail(err)
		return
	}
	saveCart(c, cc.carts)
	metrics.CartMutations.WithLabelValues("update").Inc()
	c.Success(cc.view(s))
}

// Remove godoc
// DELETE /api/cart/items/{id}
func (cc *CartController) Remove(c *ctx.Context) {
	s := sessionCart(c, cc.carts)
	if !s.RemoveItem(c.Param("id")) {
		c.NotFound("This product is not in the cart.")
		return
	}
	saveCart(c, cc.carts)
	metrics.CartMutations.WithLabelValues("remove").Inc()
	c.Success(cc.view(s))
}

// Clear godoc
// DELETE /api/cart
func (cc *CartController) Clear(c *ctx.Context) {
	s := sessionCart(c, cc.carts)
	s.Clear()
	saveCart(c, cc.carts)
	metrics.CartMutations.WithLabelValues("clear").Inc()
	c.Success(cc.view(s))
}
