package models

import "time"

// Product is a catalogue entry. Price is in currency minor units.
type Product struct {
	ID          string    `gorm:"primaryKey;size:64"       bson:"_id"                   json:"id"`
	Name        string    `gorm:"size:255;not null;index"  bson:"name"                  json:"name"                  validate:"required,max=255"`
	Description string    `gorm:"type:text"                bson:"description,omitempty" json:"description,omitempty"`
	Price       int64     `gorm:"not null;default:0"       bson:"price"                 json:"price"                 validate:"gte=0"`
	Stock       int       `gorm:"not null;default:0"       bson:"stock"                 json:"stock"                 validate:"gte=0"`
	ImageURL    string    `gorm:"size:1024"                bson:"image_url,omitempty"   json:"image_url,omitempty"   validate:"omitempty,url"`
	CategoryID  string    `gorm:"size:64;index"            bson:"category_id,omitempty" json:"category_id,omitempty"`
	CreatedAt   time.Time `gorm:"index"                    bson:"created_at"            json:"created_at"`
	UpdatedAt   time.Time `                                bson:"updated_at"            json:"updated_at"`
}

func (p *Product) DocID() string           { return p.ID }
func (p *Product) SetDocID(id string)      { p.ID = id }
func (p *Product) Created() time.Time      { return p.CreatedAt }
func (p *Product) SetCreated(at time.Time) { p.CreatedAt = at }
func (p *Product) Stamp(now time.Time)     { stamp(&p.CreatedAt, &p.UpdatedAt, now) }
func (p *Product) InStock() bool           { return p.Stock > 0 }
func (p *Product) Uncategorized() bool     { return p.CategoryID == "" }

// Category groups products on the storefront. Deleting one leaves its
// products in place with a dangling CategoryID.
type Category struct {
	ID        string    `gorm:"primaryKey;size:64" bson:"_id"            json:"id"`
	Name      string    `gorm:"size:255;not null"  bson:"name"           json:"name"           validate:"required,max=255"`
	Icon      string    `gorm:"size:32"            bson:"icon,omitempty" json:"icon,omitempty" validate:"max=32"`
	CreatedAt time.Time `gorm:"index"              bson:"created_at"     json:"created_at"`
	UpdatedAt time.Time `                          bson:"updated_at"     json:"updated_at"`
}

func (c *Category) DocID() string           { return c.ID }
func (c *Category) SetDocID(id string)      { c.ID = id }
func (c *Category) Created() time.Time      { return c.CreatedAt }
func (c *Category) SetCreated(at time.Time) { c.CreatedAt = at }
func (c *Category) Stamp(now time.Time)     { stamp(&c.CreatedAt, &c.UpdatedAt, now) }

// stamp normalises timestamps to UTC, setting created on first write.
func stamp(created, updated *time.Time, now time.Time) {
	now = now.UTC()
	if created.IsZero() {
		*created = now
	} else {
		*created = created.UTC()
	}
	*updated = now
}
