package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	for _, st := range OrderStatuses {
		got, err := ParseOrderStatus(string(st))
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}

	_, err := ParseOrderStatus("shipped")
	assert.Error(t, err)
	_, err = ParseOrderStatus("")
	assert.Error(t, err)
}

func TestOrder_Recompute(t *testing.T) {
	o := Order{Items: []OrderItem{
		{ProductID: "1", Price: 254000, Quantity: 1},
		{ProductID: "6", Price: 15000, Quantity: 3},
	}, Quantity: 99, Total: 1}

	o.Recompute()

	assert.Equal(t, 4, o.Quantity)
	assert.Equal(t, int64(299000), o.Total)
}

func TestStamp_KeepsCreatedAndNormalisesToUTC(t *testing.T) {
	paris := time.FixedZone("CET", 3600)
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, paris)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, paris)

	p := Product{CreatedAt: created}
	p.Stamp(now)

	assert.True(t, p.CreatedAt.Equal(created))
	assert.Equal(t, time.UTC, p.CreatedAt.Location())
	assert.True(t, p.UpdatedAt.Equal(now))

	var c Category
	c.Stamp(now)
	assert.True(t, c.CreatedAt.Equal(now))
}

func TestSiteSettings_WithDefaults(t *testing.T) {
	s := SiteSettings{HeroImageURL: "https://cdn/hero.jpg", HeroTitle: "Soldes"}.WithDefaults()

	assert.Equal(t, SettingsID, s.ID)
	assert.Equal(t, "https://cdn/hero.jpg", s.HeroImageURL)
	assert.Equal(t, DefaultWhyChooseImageURL, s.WhyChooseImageURL)
	assert.Equal(t, DefaultHowItWorksImageURL, s.HowItWorksImageURL)
	assert.Equal(t, "Soldes", s.HeroTitle)
}

func TestProduct_Flags(t *testing.T) {
	p := Product{Stock: 0}
	assert.False(t, p.InStock())
	assert.True(t, p.Uncategorized())

	p = Product{Stock: 3, CategoryID: "cat5"}
	assert.True(t, p.InStock())
	assert.False(t, p.Uncategorized())
}
