package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/internal/docstore"
	"github.com/shashiranjanraj/storefront/pkg/cart"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

var (
	// ErrEmptyCart is returned when checking out with no items.
	ErrEmptyCart = errors.New("checkout: cart is empty")
	// ErrStoreUnavailable wraps storage failures; the caller may retry.
	ErrStoreUnavailable = errors.New("checkout: order could not be saved, please retry")
	// ErrModeDisabled is returned for a checkout mode turned off by config.
	ErrModeDisabled = errors.New("checkout: mode disabled")
)

// Checkout modes.
const (
	ModeOrder    = "order"
	ModeWhatsApp = "whatsapp"
	ModeBoth     = "both"
)

// ValidationError carries per-field messages for a rejected form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

// FieldErrors returns the per-field messages.
func (e *ValidationError) FieldErrors() map[string]string { return e.Fields }

// PriceFormatter renders minor units for display.
type PriceFormatter interface {
	Format(minor int64) string
}

// CustomerInput is the checkout form.
type CustomerInput struct {
	CustomerName  string `json:"customer_name"  validate:"required,max=255"`
	CustomerPhone string `json:"customer_phone" validate:"required,phone"`
	CustomerEmail string `json:"customer_email" validate:"omitempty,email,max=255"`
	Address       string `json:"address"        validate:"max=1000"`
	Notes         string `json:"notes"          validate:"max=2000"`
}

func (in *CustomerInput) trim() {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	in.CustomerEmail = strings.TrimSpace(in.CustomerEmail)
	in.Address = strings.TrimSpace(in.Address)
	in.Notes = strings.TrimSpace(in.Notes)
}

// CheckoutConfig selects modes and the message-link destination.
type CheckoutConfig struct {
	Mode        string // order, whatsapp or both
	Destination string // phone number of the shop
	Host        string // messaging host, e.g. wa.me
	Locale      string // fr or en message labels
}

// CheckoutService turns a cart into a stored order or a message link.
type CheckoutService struct {
	store  docstore.Store
	prices PriceFormatter
	cfg    CheckoutConfig
	now    func() time.Time

	onPlaced []func(models.Order)
}

func NewCheckoutService(store docstore.Store, prices PriceFormatter, cfg CheckoutConfig) *CheckoutService {
	if cfg.Mode == "" {
		cfg.Mode = ModeBoth
	}
	if cfg.Host == "" {
		cfg.Host = "wa.me"
	}
	return &CheckoutService{store: store, prices: prices, cfg: cfg, now: time.Now}
}

// OnPlaced registers fn to run after every stored order.
func (s *CheckoutService) OnPlaced(fn func(models.Order)) {
	s.onPlaced = append(s.onPlaced, fn)
}

// Mode is the configured checkout mode.
func (s *CheckoutService) Mode() string { return s.cfg.Mode }

func (s *CheckoutService) ordersEnabled() bool {
	return s.cfg.Mode == ModeOrder || s.cfg.Mode == ModeBoth
}

func (s *CheckoutService) linksEnabled() bool {
	return s.cfg.Mode == ModeWhatsApp || s.cfg.Mode == ModeBoth
}

// ─── Persisted order ──────────────────────────────────────────────────────────

// PlaceOrder validates the form and stores a pending order for items. Nothing
// is written when validation fails.
func (s *CheckoutService) PlaceOrder(ctx context.Context, items []cart.Item, in CustomerInput) (models.Order, error) {
	if !s.ordersEnabled() {
		return models.Order{}, fmt.Errorf("%w: %s", ErrModeDisabled, ModeOrder)
	}
	if len(items) == 0 {
		return models.Order{}, ErrEmptyCart
	}

	in.trim()
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return models.Order{}, &ValidationError{Fields: errs}
	}

	order := models.Order{
		Items:         make([]models.OrderItem, 0, len(items)),
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		CustomerEmail: in.CustomerEmail,
		Address:       in.Address,
		Notes:         in.Notes,
		Status:        models.OrderPending,
		CreatedAt:     s.now().UTC(),
	}
	for _, it := range items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}
	order.Recompute()

	if err := s.store.Orders().Create(ctx, &order); err != nil {
		logger.WithCtx(ctx).Error("checkout: order write failed", "error", err)
		return models.Order{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	logger.WithCtx(ctx).Info("checkout: order placed",
		"order_id", order.ID, "items", order.Quantity, "total", order.Total)
	for _, fn := range s.onPlaced {
		fn(order)
	}
	return order, nil
}

// PlaceProductOrder orders qty of a single product without touching the cart.
func (s *CheckoutService) PlaceProductOrder(ctx context.Context, p models.Product, qty int, in CustomerInput) (models.Order, error) {
	if qty <= 0 || qty > cart.MaxQuantity {
		return models.Order{}, &ValidationError{Fields: map[string]string{"quantity": "The quantity must be between 1 and 999."}}
	}
	return s.PlaceOrder(ctx, []cart.Item{productItem(p, qty)}, in)
}

func productItem(p models.Product, qty int) cart.Item {
	return cart.Item{ProductID: p.ID, Name: p.Name, Price: p.Price, ImageURL: p.ImageURL, Quantity: qty}
}

// ─── Message link ─────────────────────────────────────────────────────────────

type labels struct {
	greeting, quantity, price, total string
	learnMore, contact               string
}

var messageLabels = map[string]labels{
	"fr": {
		greeting:  "Bonjour, je souhaite commander :",
		quantity:  "Quantité",
		price:     "Prix",
		total:     "Total",
		learnMore: "Bonjour, je souhaite en savoir plus sur la qualité premium de vos produits.",
		contact:   "Bonjour, je souhaite vous contacter pour une question ou un besoin spécifique.",
	},
	"en": {
		greeting:  "Hello, I would like to order:",
		quantity:  "Quantity",
		price:     "Price",
		total:     "Total",
		learnMore: "Hello, I would like to know more about the premium quality of your products.",
		contact:   "Hello, I would like to get in touch about a question or a specific need.",
	},
}

func (s *CheckoutService) labels() labels {
	lang := strings.ToLower(s.cfg.Locale)
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	if l, ok := messageLabels[lang]; ok {
		return l
	}
	return messageLabels["fr"]
}

// Message renders the order summary sent through the messaging link.
func (s *CheckoutService) Message(items []cart.Item) string {
	l := s.labels()

	var b strings.Builder
	b.WriteString(l.greeting)
	b.WriteString("\n\n")

	var total int64
	for _, it := range items {
		line := it.LineTotal()
		total += line
		fmt.Fprintf(&b, "• %s\n  %s: x%d\n  %s: %s\n\n", it.Name, l.quantity, it.Quantity, l.price, s.prices.Format(line))
	}
	fmt.Fprintf(&b, "*%s : %s*", l.total, s.prices.Format(total))
	return b.String()
}

// MessageLink returns the deep link carrying the summary for items.
func (s *CheckoutService) MessageLink(items []cart.Item) (string, error) {
	if !s.linksEnabled() {
		return "", fmt.Errorf("%w: %s", ErrModeDisabled, ModeWhatsApp)
	}
	if len(items) == 0 {
		return "", ErrEmptyCart
	}
	return s.link(s.Message(items)), nil
}

// ProductLink is MessageLink for a single product.
func (s *CheckoutService) ProductLink(p models.Product, qty int) (string, error) {
	if qty <= 0 {
		qty = 1
	}
	qty = min(qty, cart.MaxQuantity)
	return s.MessageLink([]cart.Item{productItem(p, qty)})
}

// Contact topics for ContactLink.
const (
	TopicLearnMore = "learn-more"
	TopicContact   = "contact"
)

// ContactLink returns a link with a canned greeting for topic.
func (s *CheckoutService) ContactLink(topic string) string {
	l := s.labels()
	if topic == TopicLearnMore {
		return s.link(l.learnMore)
	}
	return s.link(l.contact)
}

func (s *CheckoutService) link(text string) string {
	u := url.URL{
		Scheme:   "https",
		Host:     s.cfg.Host,
		Path:     "/" + digitsOnly(s.cfg.Destination),
		RawQuery: "text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20"),
	}
	return u.String()
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
