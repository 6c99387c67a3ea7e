package models

import "time"

// SettingsID is the key of the singleton settings document.
const SettingsID = "site"

// SocialLinks are optional profile URLs shown in the footer.
type SocialLinks struct {
	Facebook  string `gorm:"size:1024" bson:"facebook,omitempty"  json:"facebook,omitempty"  validate:"omitempty,url"`
	Instagram string `gorm:"size:1024" bson:"instagram,omitempty" json:"instagram,omitempty" validate:"omitempty,url"`
	WhatsApp  string `gorm:"size:1024" bson:"whatsapp,omitempty"  json:"whatsapp,omitempty"  validate:"omitempty,url"`
}

// SiteSettings is the storefront branding. There is exactly one, upserted
// under SettingsID.
type SiteSettings struct {
	ID                 string      `gorm:"primaryKey;size:16"                   bson:"_id"                    json:"id"`
	LogoURL            string      `gorm:"size:1024"                            bson:"logo_url,omitempty"     json:"logo_url,omitempty"`
	HeroImageURL       string      `gorm:"size:1024"                            bson:"hero_image_url"         json:"hero_image_url"`
	WhyChooseImageURL  string      `gorm:"size:1024"                            bson:"why_choose_image_url"   json:"why_choose_image_url"`
	HowItWorksImageURL string      `gorm:"size:1024"                            bson:"how_it_works_image_url" json:"how_it_works_image_url"`
	HeroTitle          string      `gorm:"type:text"                            bson:"hero_title,omitempty"   json:"hero_title,omitempty"`
	HeroDiscount       string      `gorm:"size:64"                              bson:"hero_discount,omitempty" json:"hero_discount,omitempty"`
	SocialLinks        SocialLinks `gorm:"embedded;embeddedPrefix:social_"      bson:"social_links"           json:"social_links"`
	CreatedAt          time.Time   `                                            bson:"created_at"             json:"created_at"`
	UpdatedAt          time.Time   `                                            bson:"updated_at"             json:"updated_at"`
}

func (s *SiteSettings) DocID() string           { return s.ID }
func (s *SiteSettings) SetDocID(id string)      { s.ID = id }
func (s *SiteSettings) Created() time.Time      { return s.CreatedAt }
func (s *SiteSettings) SetCreated(at time.Time) { s.CreatedAt = at }
func (s *SiteSettings) Stamp(now time.Time)     { stamp(&s.CreatedAt, &s.UpdatedAt, now) }

// TableName keeps the singleton in a table named "settings".
func (SiteSettings) TableName() string { return "settings" }

// Default marketing images used until an admin uploads replacements.
const (
	DefaultHeroImageURL       = "https://images.unsplash.com/photo-1441986300917-64674bd600d8?w=800&h=600&fit=crop"
	DefaultWhyChooseImageURL  = "https://images.unsplash.com/photo-1556742049-0cfed4f6a45d?w=600&h=400&fit=crop"
	DefaultHowItWorksImageURL = "https://images.unsplash.com/photo-1556740758-90de374c12ad?w=600&h=600&fit=crop"
)

// DefaultSettings is what the storefront shows before settings are saved.
func DefaultSettings() SiteSettings {
	return SiteSettings{
		ID:                 SettingsID,
		HeroImageURL:       DefaultHeroImageURL,
		WhyChooseImageURL:  DefaultWhyChooseImageURL,
		HowItWorksImageURL: DefaultHowItWorksImageURL,
	}
}

// WithDefaults fills empty image slots from DefaultSettings.
func (s SiteSettings) WithDefaults() SiteSettings {
	d := DefaultSettings()
	s.ID = SettingsID
	if s.HeroImageURL == "" {
		s.HeroImageURL = d.HeroImageURL
	}
	if s.WhyChooseImageURL == "" {
		s.WhyChooseImageURL = d.WhyChooseImageURL
	}
	if s.HowItWorksImageURL == "" {
		s.HowItWorksImageURL = d.HowItWorksImageURL
	}
	return s
}
