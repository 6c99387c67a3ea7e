// Package controllers holds the storefront's HTTP handlers. Handlers take
// a *ctx.Context and answer with the JSON envelope; service errors are
// mapped to statuses once, here.
package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/cart"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/toast"
)

func init() {
	ctx.RegisterError(services.ErrEmptyCart, http.StatusUnprocessableEntity)
	ctx.RegisterError(services.ErrStoreUnavailable, http.StatusServiceUnavailable)
	ctx.RegisterError(services.ErrModeDisabled, http.StatusNotFound)
	ctx.RegisterError(services.ErrInvalidCredentials, http.StatusUnauthorized)
	ctx.RegisterError(cart.ErrInvalidQuantity, http.StatusUnprocessableEntity)
}

// Toast messages shown to shoppers.
const (
	msgAddedToCart  = "Produit ajouté au panier"
	msgOrderSent    = "Commande envoyée avec succès !"
	msgOrderFailed  = "Erreur lors de l'envoi de la commande. Veuillez réessayer."
	msgSaved        = "Enregistré avec succès !"
	msgDeleted      = "Supprimé avec succès !"
	msgSaveFailed   = "Erreur lors de la sauvegarde"
	msgUploadFailed = "Erreur lors du téléversement de l'image"
)

// notifier publishes toasts to the caller's own session.
type notifier struct {
	toasts *toast.Sessions
}

func (n notifier) notify(c *ctx.Context, message string, severity toast.Severity) {
	if n.toasts == nil || c.SessionID() == "" {
		return
	}
	n.toasts.Publish(c.SessionID(), message, severity)
	metrics.Toasts.WithLabelValues(string(severity)).Inc()
}

// sessionCart returns the caller's cart. A persister failure is logged and
// the cart starts empty.
func sessionCart(c *ctx.Context, carts *cart.Registry) *cart.Store {
	store, err := carts.Get(c.Context(), c.SessionID())
	if err != nil {
		logger.WithCtx(c.Context()).Warn("cart: load failed, starting empty", "error", err)
	}
	metrics.ActiveCarts.Set(float64(carts.Len()))
	return store
}

// saveCart persists the caller's cart; failures only cost durability.
func saveCart(c *ctx.Context, carts *cart.Registry) {
	if err := carts.Save(c.Context(), c.SessionID()); err != nil {
		logger.WithCtx(c.Context()).Warn("cart: save failed", "error", err)
	}
}
