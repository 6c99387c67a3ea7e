package controllers

import (
	"github.com/shashiranjanraj/storefront/internal/catalog"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

// CatalogController serves the shop front.
type CatalogController struct {
	loader *catalog.Loader
	prices catalog.PriceFormatter
	live   *ws.Hub
}

func NewCatalogController(loader *catalog.Loader, prices catalog.PriceFormatter, live *ws.Hub) *CatalogController {
	return &CatalogController{loader: loader, prices: prices, live: live}
}

// productView is a product with its display price.
type productView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Price          int64  `json:"price"`
	PriceFormatted string `json:"price_formatted"`
	Stock          int    `json:"stock"`
	InStock        bool   `json:"in_stock"`
	ImageURL       string `json:"image_url,omitempty"`
	CategoryID     string `json:"category_id,omitempty"`
}

// Index godoc
// GET /api/catalog?category=<id|all>
func (cc *CatalogController) Index(c *ctx.Context) {
	view, err := cc.loader.Load(c.Context(), c.DefaultQuery("category", catalog.FilterAll))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(view)
}

// Show godoc
// GET /api/products/{id}
func (cc *CatalogController) Show(c *ctx.Context) {
	p, err := cc.loader.Product(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(productView{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		PriceFormatted: cc.prices.Format(p.Price),
		Stock:          p.Stock,
		InStock:        p.Stock > 0,
		ImageURL:       p.ImageURL,
		CategoryID:     p.CategoryID,
	})
}

// Live godoc
// GET /api/catalog/live (WebSocket)
//
// The first message is the current catalogue; a new one follows every
// change in the store.
func (cc *CatalogController) Live(c *ctx.Context) {
	if err := ws.Upgrade(c.W, c.R, cc.live); err != nil {
		logger.WithCtx(c.Context()).Warn("catalog: websocket upgrade failed", "error", err)
	}
}
