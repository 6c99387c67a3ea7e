package routes

import (
	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/app"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/graphql"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

// RegisterAPI mounts every storefront route on r.
func RegisterAPI(r *router.Router, a *app.Application) {
	catalogController := controllers.NewCatalogController(a.Catalog, a.Prices, a.Live)
	cartController := controllers.NewCartController(a.Carts, a.Catalog, a.Prices, a.Toasts)
	checkoutController := controllers.NewCheckoutController(a.Checkout, a.Carts, a.Catalog, a.Toasts, config.Bool("CHECKOUT_CLEAR_CART"))
	toastController := controllers.NewToastController(a.Toasts)
	adminController := controllers.NewAdminController(a.Admin, a.Prices, a.Toasts)
	authController := controllers.NewAuthController(a.Auth)

	api := r.Group("/api")

	// ── Shop front ───────────────────────────────────────────────────────────
	api.Get("/catalog", "catalog.index", ctx.Wrap(catalogController.Index))
	api.Get("/catalog/live", "catalog.live", ctx.Wrap(catalogController.Live))
	api.Get("/products/{id}", "products.show", ctx.Wrap(catalogController.Show))

	if schema, err := graphql.CatalogSchema(a.Catalog, a.Prices); err != nil {
		logger.Error("routes: graphql schema disabled", "error", err)
	} else {
		api.Get("/graphql", "graphql.query", graphql.Handler(schema))
		api.Post("/graphql", "graphql.execute", graphql.Handler(schema))
	}

	// ── Cart ─────────────────────────────────────────────────────────────────
	api.Get("/cart", "cart.show", ctx.Wrap(cartController.Show))
	api.Delete("/cart", "cart.clear", ctx.Wrap(cartController.Clear))
	api.Post("/cart/items", "cart.items.add", ctx.Wrap(cartController.Add))
	api.Put("/cart/items/{id}", "cart.items.update", ctx.Wrap(cartController.Update))
	api.Delete("/cart/items/{id}", "cart.items.remove", ctx.Wrap(cartController.Remove))

	// ── Checkout ─────────────────────────────────────────────────────────────
	api.Post("/checkout/order", "checkout.order", ctx.Wrap(checkoutController.Order))
	api.Post("/checkout/whatsapp", "checkout.whatsapp", ctx.Wrap(checkoutController.WhatsApp))
	api.Post("/products/{id}/order", "products.order", ctx.Wrap(checkoutController.ProductOrder))
	api.Get("/products/{id}/whatsapp", "products.whatsapp", ctx.Wrap(checkoutController.ProductWhatsApp))
	api.Get("/contact", "contact.link", ctx.Wrap(checkoutController.Contact))

	// ── Notifications ────────────────────────────────────────────────────────
	api.Get("/toasts/stream", "toasts.stream", ctx.Wrap(toastController.Stream))
	api.Post("/toasts/stream/{sub}/dismiss/{id}", "toasts.dismiss", ctx.Wrap(toastController.Dismiss))

	// ── Auth ─────────────────────────────────────────────────────────────────
	api.Post("/auth/login", "auth.login", ctx.Wrap(authController.Login))
	api.Post("/auth/refresh", "auth.refresh", ctx.Wrap(authController.Refresh))
	api.Post("/auth/logout", "auth.logout", ctx.Wrap(authController.Logout))
	api.Get("/auth/me", "auth.me", ctx.Wrap(authController.Me), middleware.RequireAdmin)

	// ── Admin ────────────────────────────────────────────────────────────────
	admin := api.Group("/admin", middleware.RequireAdmin)

	admin.Get("/products", "admin.products.index", ctx.Wrap(adminController.ListProducts))
	admin.Post("/products", "admin.products.store", ctx.Wrap(adminController.CreateProduct))
	admin.Get("/products/{id}", "admin.products.show", ctx.Wrap(adminController.ShowProduct))
	admin.Put("/products/{id}", "admin.products.update", ctx.Wrap(adminController.UpdateProduct))
	admin.Delete("/products/{id}", "admin.products.destroy", ctx.Wrap(adminController.DeleteProduct))

	admin.Get("/categories", "admin.categories.index", ctx.Wrap(adminController.ListCategories))
	admin.Post("/categories", "admin.categories.store", ctx.Wrap(adminController.CreateCategory))
	admin.Get("/categories/{id}", "admin.categories.show", ctx.Wrap(adminController.ShowCategory))
	admin.Put("/categories/{id}", "admin.categories.update", ctx.Wrap(adminController.UpdateCategory))
	admin.Delete("/categories/{id}", "admin.categories.destroy", ctx.Wrap(adminController.DeleteCategory))

	admin.Get("/settings", "admin.settings.show", ctx.Wrap(adminController.ShowSettings))
	admin.Put("/settings", "admin.settings.update", ctx.Wrap(adminController.UpdateSettings))

	admin.Get("/orders", "admin.orders.index", ctx.Wrap(adminController.ListOrders))
	admin.Get("/orders/{id}", "admin.orders.show", ctx.Wrap(adminController.ShowOrder))
	admin.Patch("/orders/{id}/status", "admin.orders.status", ctx.Wrap(adminController.UpdateOrderStatus))

	admin.Post("/uploads/{target}", "admin.uploads.store", ctx.Wrap(adminController.Upload))
}
