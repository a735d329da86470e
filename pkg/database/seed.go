package database

import (
	"fmt"

	"github.com/sefazor/guestlens-backend/internal/models"
	"gorm.io/gorm"
)

// Varsayılan katalog; slug'a göre yoksa eklenir, varsa dokunulmaz
var defaultPlans = []models.EventPlan{
	{
		Slug:        "starter",
		Name:        "Starter",
		Description: "3 events, 150 guests, 5 GB per event",
		PriceCents:  1900,
		Currency:    "usd",
		Features:    models.MustFeatures(models.PlanFeatures{MaxEvents: 3, MaxGuests: 150, MaxStorageMB: 5 * 1024, RetentionDays: 90}),
		IsActive:    true,
		SortOrder:   1,
	},
	{
		Slug:        "pro",
		Name:        "Pro",
		Description: "10 events, 500 guests, 25 GB per event, video uploads",
		PriceCents:  4900,
		Currency:    "usd",
		Features:    models.MustFeatures(models.PlanFeatures{MaxEvents: 10, MaxGuests: 500, MaxStorageMB: 25 * 1024, RetentionDays: 365, AllowVideo: true}),
		IsActive:    true,
		SortOrder:   2,
	},
	{
		Slug:        "unlimited",
		Name:        "Unlimited",
		Description: "Unlimited events and guests, 100 GB per event, video uploads",
		PriceCents:  14900,
		Currency:    "usd",
		Features:    models.MustFeatures(models.PlanFeatures{MaxEvents: 999, MaxGuests: 99999, MaxStorageMB: 100 * 1024, RetentionDays: 730, AllowVideo: true}),
		IsActive:    true,
		SortOrder:   3,
	},
}

var defaultAddons = []models.AddonCatalog{
	{
		Slug:        "extra-storage-10gb",
		Name:        "+10 GB storage",
		Description: "Adds 10 GB to one event",
		PriceCents:  900,
		Currency:    "usd",
		Features:    models.MustFeatures(models.PlanFeatures{ExtraStorageMB: 10 * 1024}),
		IsActive:    true,
		SortOrder:   1,
	},
	{
		Slug:        "extra-guests-100",
		Name:        "+100 guests",
		Description: "Adds 100 guest sessions to one event",
		PriceCents:  500,
		Currency:    "usd",
		Features:    models.MustFeatures(models.PlanFeatures{ExtraGuests: 100}),
		IsActive:    true,
		SortOrder:   2,
	},
}

var defaultThemes = []models.Theme{
	{Slug: "classic", Name: "Classic", PrimaryColor: "#1f2937", AccentColor: "#f59e0b", FontFamily: "Inter", IsActive: true},
	{Slug: "wedding", Name: "Wedding", PrimaryColor: "#7c2d12", AccentColor: "#fcd34d", FontFamily: "Playfair Display", IsActive: true},
	{Slug: "party", Name: "Party", PrimaryColor: "#6d28d9", AccentColor: "#ec4899", FontFamily: "Poppins", IsActive: true},
}

// Seed inserts the default plans, add-ons and themes that are missing.
func Seed(db *gorm.DB) error {
	for _, p := range defaultPlans {
		p := p
		if err := db.Where(models.EventPlan{Slug: p.Slug}).FirstOrCreate(&p).Error; err != nil {
			return fmt.Errorf("seed plan %s: %w", p.Slug, err)
		}
	}
	for _, a := range defaultAddons {
		a := a
		if err := db.Where(models.AddonCatalog{Slug: a.Slug}).FirstOrCreate(&a).Error; err != nil {
			return fmt.Errorf("seed addon %s: %w", a.Slug, err)
		}
	}
	for _, th := range defaultThemes {
		th := th
		if err := db.Where(models.Theme{Slug: th.Slug}).FirstOrCreate(&th).Error; err != nil {
			return fmt.Errorf("seed theme %s: %w", th.Slug, err)
		}
	}
	return nil
}
