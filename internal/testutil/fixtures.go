package testutil

import (
	"testing"
	"time"

	"github.com/sefazor/guestlens-backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const Password = "correct-horse-battery"

func CreateUser(t testing.TB, db *gorm.DB, email string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &models.User{FullName: "Test User", Email: email, Password: string(hash), IsVerified: true, SessionVersion: 1}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

type EventOption func(*models.Event)

func Published(e *models.Event) { e.Published = true }

func GuestUploads(e *models.Event) { e.AllowGuestUploads = true }

func CreateEvent(t testing.TB, db *gorm.DB, ownerID uint, code string, opts ...EventOption) *models.Event {
	t.Helper()
	start := time.Now().UTC().Add(-time.Hour)
	e := &models.Event{
		UserID:   ownerID,
		Title:    "Event " + code,
		Code:     code,
		StartsAt: start,
		EndsAt:   start.Add(6 * time.Hour),
	}
	for _, o := range opts {
		o(e)
	}
	if err := db.Create(e).Error; err != nil {
		t.Fatalf("create event: %v", err)
	}
	return e
}

func CreatePlan(t testing.TB, db *gorm.DB, slug string, f models.PlanFeatures) *models.EventPlan {
	t.Helper()
	p := &models.EventPlan{Slug: slug, Name: slug, PriceCents: 1900, Currency: "usd", Features: models.MustFeatures(f), IsActive: true}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create plan: %v", err)
	}
	return p
}

func CreateAddon(t testing.TB, db *gorm.DB, slug string, f models.PlanFeatures) *models.AddonCatalog {
	t.Helper()
	a := &models.AddonCatalog{Slug: slug, Name: slug, PriceCents: 500, Currency: "usd", Features: models.MustFeatures(f), IsActive: true}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("create addon: %v", err)
	}
	return a
}

// CreatePurchase stores a plan purchase in the given status.
func CreatePurchase(t testing.TB, db *gorm.DB, userID, planID uint, sessionID string, status models.PurchaseStatus, paidAt *time.Time) *models.Purchase {
	t.Helper()
	p := &models.Purchase{
		UserID: userID,
		PlanID: planID,
		PaymentState: models.PaymentState{
			Status:          status,
			AmountCents:     1900,
			Currency:        "usd",
			StripeSessionID: sessionID,
			PaidAt:          paidAt,
		},
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	return p
}

func CreateFile(t testing.TB, db *gorm.DB, eventID uint, name string, capturedAt *time.Time, uploadedAt time.Time) *models.FileMetadata {
	t.Helper()
	f := &models.FileMetadata{
		EventID:         eventID,
		OriginalName:    name,
		StorageKey:      "k/" + name,
		ThumbnailStatus: models.ThumbnailPending,
		MimeType:        "image/jpeg",
		SizeBytes:       10,
		Checksum:        name,
		CapturedAt:      capturedAt,
		UploadedAt:      uploadedAt,
	}
	if err := db.Create(f).Error; err != nil {
		t.Fatalf("create file: %v", err)
	}
	return f
}
