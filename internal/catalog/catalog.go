// Package catalog derives the storefront carousels from raw product and
// category lists. Grouping is pure; View and Watcher add the reads and the
// live push around it.
package catalog

import "github.com/shashiranjanraj/storefront/app/models"

// FilterAll selects every bucket.
const FilterAll = "all"

// Uncategorized bucket identity. Products with no category, or a category
// that no longer exists, land here.
const (
	UncategorizedID   = "uncategorized"
	UncategorizedName = "Autres produits"
)

// Bucket is one carousel: a category and its products in input order.
type Bucket struct {
	CategoryID string           `json:"category_id"`
	Name       string           `json:"name"`
	Icon       string           `json:"icon,omitempty"`
	Products   []models.Product `json:"products"`
}

// Group buckets products by category. Buckets follow the category order,
// empty ones are dropped, and the uncategorized bucket comes last. A filter
// other than "" or FilterAll keeps only that category's bucket.
func Group(products []models.Product, categories []models.Category, filter string) []Bucket {
	known := make(map[string]int, len(categories))
	buckets := make([]Bucket, len(categories))
	for i, c := range categories {
		if _, dup := known[c.ID]; !dup {
			known[c.ID] = i
		}
		buckets[i] = Bucket{CategoryID: c.ID, Name: c.Name, Icon: c.Icon}
	}

	other := Bucket{CategoryID: UncategorizedID, Name: UncategorizedName}
	for _, p := range products {
		if i, ok := known[p.CategoryID]; ok && p.CategoryID != "" {
			buckets[i].Products = append(buckets[i].Products, p)
			continue
		}
		other.Products = append(other.Products, p)
	}

	all := filter == "" || filter == FilterAll
	out := make([]Bucket, 0, len(buckets)+1)
	for i, b := range buckets {
		if len(b.Products) == 0 || known[b.CategoryID] != i {
			continue
		}
		if all || b.CategoryID == filter {
			out = append(out, b)
		}
	}
	if len(other.Products) > 0 && (all || filter == UncategorizedID) {
		out = append(out, other)
	}
	return out
}

// WithFallback swaps in the demonstration list for each live list that is
// empty, when enabled is true. The lists are substituted independently so
// live products still show while categories are missing, and the other way
// round. demo reports whether either list was substituted.
func WithFallback(products []models.Product, categories []models.Category, enabled bool) ([]models.Product, []models.Category, bool) {
	if !enabled || (len(products) > 0 && len(categories) > 0) {
		return products, categories, false
	}
	demoProducts, demoCategories := Demo()
	if len(products) == 0 {
		products = demoProducts
	}
	if len(categories) == 0 {
		categories = demoCategories
	}
	return products, categories, true
}
