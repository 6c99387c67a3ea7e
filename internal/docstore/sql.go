package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
)

// SQL maps each entity kind onto a table through GORM. Open the *gorm.DB with
// TranslateError so duplicate keys surface as ErrConflict.
type SQL struct {
	db  *gorm.DB
	now func() time.Time

	products   *sqlCollection[models.Product, *models.Product]
	categories *sqlCollection[models.Category, *models.Category]
	orders     *sqlCollection[models.Order, *models.Order]
	settings   *sqlCollection[models.SiteSettings, *models.SiteSettings]
	admins     *sqlCollection[models.AdminUser, *models.AdminUser]
}

// NewSQL migrates the schema and returns the store.
func NewSQL(db *gorm.DB) (*SQL, error) {
	if err := Migrate(db); err != nil {
		return nil, err
	}

	s := &SQL{db: db, now: time.Now}
	s.products = &sqlCollection[models.Product, *models.Product]{name: ProductsCollection, store: s}
	s.categories = &sqlCollection[models.Category, *models.Category]{name: CategoriesCollection, store: s}
	s.orders = &sqlCollection[models.Order, *models.Order]{name: OrdersCollection, store: s}
	s.settings = &sqlCollection[models.SiteSettings, *models.SiteSettings]{name: SettingsCollection, store: s}
	s.admins = &sqlCollection[models.AdminUser, *models.AdminUser]{name: AdminsCollection, store: s}
	return s, nil
}

// Migrate creates or alters every storefront table.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.SiteSettings{},
		&models.AdminUser{},
	)
	if err != nil {
		return fmt.Errorf("docstore/sql: migrate: %w", err)
	}
	return nil
}

func (s *SQL) Name() string { return "sql" }

func (s *SQL) Products() Collection[models.Product]      { return s.products }
func (s *SQL) Categories() Collection[models.Category]   { return s.categories }
func (s *SQL) Orders() Collection[models.Order]          { return s.orders }
func (s *SQL) Settings() Collection[models.SiteSettings] { return s.settings }
func (s *SQL) Admins() Collection[models.AdminUser]      { return s.admins }

// Close is a no-op; the connection belongs to the caller.
func (s *SQL) Close(context.Context) error { return nil }

// ─── Collection ───────────────────────────────────────────────────────────────

type sqlCollection[T any, PT Doc[T]] struct {
	name  string
	store *SQL
}

func (c *sqlCollection[T, PT]) tx(ctx context.Context) *gorm.DB {
	return c.store.db.WithContext(ctx)
}

func (c *sqlCollection[T, PT]) List(ctx context.Context) ([]T, error) {
	out := []T{}
	if err := c.tx(ctx).Order("created_at asc, id asc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("docstore/sql: list %s: %w", c.name, err)
	}
	return out, nil
}

func (c *sqlCollection[T, PT]) Get(ctx context.Context, id string) (T, error) {
	var doc T
	err := c.tx(ctx).Where("id = ?", id).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return doc, fmt.Errorf("%s %q: %w", c.name, id, ErrNotFound)
	}
	if err != nil {
		return doc, fmt.Errorf("docstore/sql: get %s %s: %w", c.name, id, err)
	}
	return doc, nil
}

func (c *sqlCollection[T, PT]) Create(ctx context.Context, doc *T) error {
	prepareCreate[T, PT](doc, c.store.now())

	err := c.tx(ctx).Create(doc).Error
	if err != nil && (errors.Is(err, gorm.ErrDuplicatedKey) || c.exists(ctx, PT(doc).DocID())) {
		return fmt.Errorf("%s %q: %w", c.name, PT(doc).DocID(), ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("docstore/sql: insert %s: %w", c.name, err)
	}
	return nil
}

// exists covers dialects whose driver does not translate constraint errors.
func (c *sqlCollection[T, PT]) exists(ctx context.Context, id string) bool {
	var n int64
	err := c.tx(ctx).Model(new(T)).Where("id = ?", id).Count(&n).Error
	return err == nil && n > 0
}

func (c *sqlCollection[T, PT]) Update(ctx context.Context, id string, doc *T) error {
	existing, err := c.Get(ctx, id)
	if err != nil {
		return err
	}
	prepareUpdate[T, PT](doc, id, PT(&existing).Created(), c.store.now())

	// Select("*") writes zero values too, giving full-replace semantics.
	if err := c.tx(ctx).Model(doc).Select("*").Updates(doc).Error; err != nil {
		return fmt.Errorf("docstore/sql: update %s %s: %w", c.name, id, err)
	}
	return nil
}

func (c *sqlCollection[T, PT]) Delete(ctx context.Context, id string) error {
	res := c.tx(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return fmt.Errorf("docstore/sql: delete %s %s: %w", c.name, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s %q: %w", c.name, id, ErrNotFound)
	}
	return nil
}
