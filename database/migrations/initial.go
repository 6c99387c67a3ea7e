package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/migration"
)

func init() {
	table("20240601000000_create_categories_table", &models.Category{})
	table("20240601000001_create_products_table", &models.Product{})
	table("20240601000002_create_orders_table", &models.Order{})
	table("20240601000003_create_settings_table", &models.SiteSettings{})
	table("20240601000004_create_admin_users_table", &models.AdminUser{})
}

// table registers a migration that creates model's table and drops it on
// rollback.
func table(name string, model any) {
	migration.Register(name, migration.Func{
		UpFn:   func(db *gorm.DB) error { return db.AutoMigrate(model) },
		DownFn: func(db *gorm.DB) error { return db.Migrator().DropTable(model) },
	})
}
