package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/internal/docstore"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

// ErrNotFound is returned for unknown ids.
var ErrNotFound = docstore.ErrNotFound

// ProductInput is the admin product form. Price is in minor units, capped
// so that a full cart line cannot overflow int64.
type ProductInput struct {
	Name        string `json:"name"        validate:"required,max=255"`
	Description string `json:"description" validate:"max=5000"`
	Price       int64  `json:"price"       validate:"gte=0,lte=1000000000000"`
	Stock       int    `json:"stock"       validate:"gte=0"`
	ImageURL    string `json:"image_url"   validate:"omitempty,url,max=1024"`
	CategoryID  string `json:"category_id" validate:"max=64"`
}

// CategoryInput is the admin category form.
type CategoryInput struct {
	Name string `json:"name" validate:"required,max=255"`
	Icon string `json:"icon" validate:"max=32"`
}

// SettingsInput is the admin settings form.
type SettingsInput struct {
	LogoURL            string             `json:"logo_url"               validate:"omitempty,url,max=1024"`
	HeroImageURL       string             `json:"hero_image_url"         validate:"omitempty,url,max=1024"`
	WhyChooseImageURL  string             `json:"why_choose_image_url"   validate:"omitempty,url,max=1024"`
	HowItWorksImageURL string             `json:"how_it_works_image_url" validate:"omitempty,url,max=1024"`
	HeroTitle          string             `json:"hero_title"             validate:"max=500"`
	HeroDiscount       string             `json:"hero_discount"          validate:"max=64"`
	SocialLinks        models.SocialLinks `json:"social_links"`
}

// StatusInput changes an order's status.
type StatusInput struct {
	Status string `json:"status" validate:"required,oneof=pending processing completed cancelled"`
}

// Upload targets.
const (
	UploadProducts = "products"
	UploadSettings = "settings"
)

// AdminService is CRUD over the store for the admin surface. Every write
// either succeeds or leaves the store untouched.
type AdminService struct {
	store       docstore.Store
	disk        storage.Disk
	uploadLimit int64
}

func NewAdminService(store docstore.Store, disk storage.Disk, uploadLimit int64) *AdminService {
	return &AdminService{store: store, disk: disk, uploadLimit: uploadLimit}
}

// UploadLimit is the largest accepted image in bytes.
func (s *AdminService) UploadLimit() int64 {
	if s.uploadLimit <= 0 {
		return storage.MaxImageBytes
	}
	return s.uploadLimit
}

func check(v any) error {
	if errs := validate.Struct(v); validate.HasErrors(errs) {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// ─── Products ─────────────────────────────────────────────────────────────────

func (s *AdminService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.Products().List(ctx)
}

func (s *AdminService) GetProduct(ctx context.Context, id string) (models.Product, error) {
	return s.store.Products().Get(ctx, id)
}

func (in ProductInput) model() models.Product {
	return models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Stock:       in.Stock,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		CategoryID:  strings.TrimSpace(in.CategoryID),
	}
}

func (s *AdminService) CreateProduct(ctx context.Context, in ProductInput) (models.Product, error) {
	if err := check(in); err != nil {
		return models.Product{}, err
	}
	p := in.model()
	if err := s.store.Products().Create(ctx, &p); err != nil {
		return models.Product{}, err
	}
	logger.WithCtx(ctx).Info("admin: product created", "product_id", p.ID, "name", p.Name)
	return p, nil
}

func (s *AdminService) UpdateProduct(ctx context.Context, id string, in ProductInput) (models.Product, error) {
	if err := check(in); err != nil {
		return models.Product{}, err
	}
	p := in.model()
	if err := s.store.Products().Update(ctx, id, &p); err != nil {
		return models.Product{}, err
	}
	logger.WithCtx(ctx).Info("admin: product updated", "product_id", id)
	return p, nil
}

func (s *AdminService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.store.Products().Delete(ctx, id); err != nil {
		return err
	}
	logger.WithCtx(ctx).Info("admin: product deleted", "product_id", id)
	return nil
}

// ─── Categories ───────────────────────────────────────────────────────────────

func (s *AdminService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.Categories().List(ctx)
}

func (s *AdminService) GetCategory(ctx context.Context, id string) (models.Category, error) {
	return s.store.Categories().Get(ctx, id)
}

func (s *AdminService) CreateCategory(ctx context.Context, in CategoryInput) (models.Category, error) {
	if err := check(in); err != nil {
		return models.Category{}, err
	}
	c := models.Category{Name: strings.TrimSpace(in.Name), Icon: strings.TrimSpace(in.Icon)}
	if err := s.store.Categories().Create(ctx, &c); err != nil {
		return models.Category{}, err
	}
	logger.WithCtx(ctx).Info("admin: category created", "category_id", c.ID, "name", c.Name)
	return c, nil
}

func (s *AdminService) UpdateCategory(ctx context.Context, id string, in CategoryInput) (models.Category, error) {
	if err := check(in); err != nil {
		return models.Category{}, err
	}
	c := models.Category{Name: strings.TrimSpace(in.Name), Icon: strings.TrimSpace(in.Icon)}
	if err := s.store.Categories().Update(ctx, id, &c); err != nil {
		return models.Category{}, err
	}
	return c, nil
}

// DeleteCategory removes the category and leaves its products in place; they
// show up as uncategorized. It returns how many products were orphaned.
func (s *AdminService) DeleteCategory(ctx context.Context, id string) (int, error) {
	if err := s.store.Categories().Delete(ctx, id); err != nil {
		return 0, err
	}

	orphans := 0
	products, err := s.store.Products().List(ctx)
	if err != nil {
		logger.WithCtx(ctx).Warn("admin: could not count orphaned products", "category_id", id, "error", err)
		return 0, nil
	}
	for _, p := range products {
		if p.CategoryID == id {
			orphans++
		}
	}
	if orphans > 0 {
		logger.WithCtx(ctx).Warn("admin: category deleted with products still referencing it",
			"category_id", id, "orphaned_products", orphans)
	}
	return orphans, nil
}

// ─── Settings ─────────────────────────────────────────────────────────────────

func (s *AdminService) GetSettings(ctx context.Context) (models.SiteSettings, error) {
	return docstore.GetSettings(ctx, s.store)
}

func (s *AdminService) UpdateSettings(ctx context.Context, in SettingsInput) (models.SiteSettings, error) {
	if err := check(in); err != nil {
		return models.SiteSettings{}, err
	}
	saved, err := docstore.PutSettings(ctx, s.store, models.SiteSettings{
		LogoURL:            in.LogoURL,
		HeroImageURL:       in.HeroImageURL,
		WhyChooseImageURL:  in.WhyChooseImageURL,
		HowItWorksImageURL: in.HowItWorksImageURL,
		HeroTitle:          in.HeroTitle,
		HeroDiscount:       in.HeroDiscount,
		SocialLinks:        in.SocialLinks,
	})
	if err != nil {
		return models.SiteSettings{}, err
	}
	return saved.WithDefaults(), nil
}

// ─── Orders ───────────────────────────────────────────────────────────────────

// ListOrders returns orders newest first, optionally only those in status.
func (s *AdminService) ListOrders(ctx context.Context, status string) ([]models.Order, error) {
	orders, err := s.store.Orders().List(ctx)
	if err != nil {
		return nil, err
	}
	if status != "" {
		want, err := models.ParseOrderStatus(status)
		if err != nil {
			return nil, &ValidationError{Fields: map[string]string{"status": err.Error()}}
		}
		kept := orders[:0]
		for _, o := range orders {
			if o.Status == want {
				kept = append(kept, o)
			}
		}
		orders = kept
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (s *AdminService) GetOrder(ctx context.Context, id string) (models.Order, error) {
	return s.store.Orders().Get(ctx, id)
}

// UpdateOrderStatus moves an order to another status. Items and totals are
// never touched.
func (s *AdminService) UpdateOrderStatus(ctx context.Context, id string, in StatusInput) (models.Order, error) {
	if err := check(in); err != nil {
		return models.Order{}, err
	}
	status, err := models.ParseOrderStatus(in.Status)
	if err != nil {
		return models.Order{}, &ValidationError{Fields: map[string]string{"status": err.Error()}}
	}

	order, err := s.store.Orders().Get(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	from := order.Status
	order.Status = status
	if err := s.store.Orders().Update(ctx, id, &order); err != nil {
		return models.Order{}, err
	}
	logger.WithCtx(ctx).Info("admin: order status changed", "order_id", id, "from", from, "to", status)
	return order, nil
}

// ─── Uploads ──────────────────────────────────────────────────────────────────

// UploadImage stores an image under target and returns its public URL.
func (s *AdminService) UploadImage(ctx context.Context, target string, r io.Reader, size int64) (string, error) {
	if target != UploadProducts && target != UploadSettings {
		return "", &ValidationError{Fields: map[string]string{"target": "The target must be products or settings."}}
	}
	if s.disk == nil {
		return "", errors.New("admin: no storage disk configured")
	}

	url, err := storage.PutImage(ctx, s.disk, target, r, size, s.uploadLimit)
	switch {
	case errors.Is(err, storage.ErrNotImage):
		return "", &ValidationError{Fields: map[string]string{"file": "The file must be an image."}}
	case errors.Is(err, storage.ErrTooLarge):
		return "", &ValidationError{Fields: map[string]string{
			"file": fmt.Sprintf("The file may not be greater than %d MiB.", s.UploadLimit()>>20),
		}}
	case err != nil:
		return "", err
	}
	logger.WithCtx(ctx).Info("admin: image uploaded", "target", target, "url", url)
	return url, nil
}
