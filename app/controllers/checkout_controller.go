package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/internal/catalog"
	"github.com/shashiranjanraj/storefront/pkg/cart"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/toast"
)

// CheckoutController turns the cart, or a single product, into a stored
// order or a messaging deep link.
type CheckoutController struct {
	notifier
	checkout  *services.CheckoutService
	carts     *cart.Registry
	loader    *catalog.Loader
	clearCart bool
}

func NewCheckoutController(checkout *services.CheckoutService, carts *cart.Registry, loader *catalog.Loader, toasts *toast.Sessions, clearCart bool) *CheckoutController {
	return &CheckoutController{
		notifier:  notifier{toasts},
		checkout:  checkout,
		carts:     carts,
		loader:    loader,
		clearCart: clearCart,
	}
}

// ProductOrderRequest is the single-product order form.
type ProductOrderRequest struct {
	services.CustomerInput
	Quantity int `json:"quantity" validate:"gte=0,lte=999"`
}

type linkResponse struct {
	URL string `json:"url"`
}

func result(err error) string {
	var ve *services.ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ve), errors.Is(err, services.ErrEmptyCart):
		return "rejected"
	default:
		return "failed"
	}
}

// failOrder answers a checkout error. A storage failure gets a retry
// message and an error toast; the client keeps its form.
func (cc *CheckoutController) failOrder(c *ctx.Context, err error) {
	if errors.Is(err, services.ErrStoreUnavailable) {
		cc.notify(c, msgOrderFailed, toast.Error)
		c.Error(http.StatusServiceUnavailable, "The order could not be saved. Please try again.")
		return
	}
	c.Fail(err)
}

// Order godoc
// POST /api/checkout/order
func (cc *CheckoutController) Order(c *ctx.Context) {
	var in services.CustomerInput
	if !c.BindJSON(&in) {
		return
	}

	s := sessionCart(c, cc.carts)
	order, err := cc.checkout.PlaceOrder(c.Context(), s.Items(), in)
	metrics.Checkouts.WithLabelValues(services.ModeOrder, result(err)).Inc()
	if err != nil {
		cc.failOrder(c, err)
		return
	}

	if cc.clearCart {
		s.Clear()
		saveCart(c, cc.carts)
		metrics.CartMutations.WithLabelValues("clear").Inc()
	}
	cc.notify(c, msgOrderSent, toast.Success)
	c.Created(order)
}

// WhatsApp godoc
// POST /api/checkout/whatsapp
//
// Returns the deep link for the cart; the cart is left as is.
func (cc *CheckoutController) WhatsApp(c *ctx.Context) {
	link, err := cc.checkout.MessageLink(sessionCart(c, cc.carts).Items())
	metrics.Checkouts.WithLabelValues(services.ModeWhatsApp, result(err)).Inc()
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(linkResponse{URL: link})
}

// ProductOrder godoc
// POST /api/products/{id}/order
func (cc *CheckoutController) ProductOrder(c *ctx.Context) {
	var req ProductOrderRequest
	if !c.BindJSON(&req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	p, err := cc.loader.Product(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}

	order, err := cc.checkout.PlaceProductOrder(c.Context(), p, req.Quantity, req.CustomerInput)
	metrics.Checkouts.WithLabelValues(services.ModeOrder, result(err)).Inc()
	if err != nil {
		cc.failOrder(c, err)
		return
	}
	cc.notify(c, msgOrderSent, toast.Success)
	c.Created(order)
}

// ProductWhatsApp godoc
// GET /api/products/{id}/whatsapp?quantity=1
func (cc *CheckoutController) ProductWhatsApp(c *ctx.Context) {
	p, err := cc.loader.Product(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}

	link, err := cc.checkout.ProductLink(p, c.QueryInt("quantity", 1))
	metrics.Checkouts.WithLabelValues(services.ModeWhatsApp, result(err)).Inc()
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(linkResponse{URL: link})
}

// Contact godoc
// GET /api/contact?topic=learn-more|contact
func (cc *CheckoutController) Contact(c *ctx.Context) {
	c.Success(linkResponse{URL: cc.checkout.ContactLink(c.DefaultQuery("topic", services.TopicContact))})
}
