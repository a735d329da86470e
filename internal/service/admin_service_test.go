package service

import (
	"context"
	"testing"

	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeUpsertAndAssign(t *testing.T) {
	h := newHarness(t)
	admin := testutil.CreateUser(t, h.db, "admin@example.com")
	owner := testutil.CreateUser(t, h.db, "owner@example.com")
	e := testutil.CreateEvent(t, h.db, owner.ID, "THEMED01")

	theme, err := h.themes.UpsertTheme(admin.ID, models.ThemeRequest{
		Slug: "Sunset", Name: "Sunset", PrimaryColor: "#FF8800", AccentColor: "#222222", IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "sunset", theme.Slug)
	assert.Equal(t, "#ff8800", theme.PrimaryColor)

	again, err := h.themes.UpsertTheme(admin.ID, models.ThemeRequest{
		Slug: "sunset", Name: "Sunset v2", PrimaryColor: "#ff8800", AccentColor: "#222222", IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, theme.ID, again.ID)
	assert.EqualValues(t, 2, h.auditCount(t, "admin.theme_saved"))

	updated, err := h.themes.SetEventTheme(owner.ID, e.ID, &theme.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.Theme)
	assert.Equal(t, "Sunset v2", updated.Theme.Name)

	_, err = h.themes.SetEventTheme(admin.ID, e.ID, &theme.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	inactive, err := h.themes.UpsertTheme(admin.ID, models.ThemeRequest{
		Slug: "retired", Name: "Retired", PrimaryColor: "#000000", AccentColor: "#ffffff", IsActive: false,
	})
	require.NoError(t, err)
	_, err = h.themes.SetEventTheme(owner.ID, e.ID, &inactive.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	active, err := h.themes.ListActive()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "sunset", active[0].Slug)

	cleared, err := h.themes.SetEventTheme(owner.ID, e.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.ThemeID)
}

func TestAdminCatalogAndLogs(t *testing.T) {
	h := newHarness(t)
	admin := testutil.CreateUser(t, h.db, "admin@example.com")
	plan := testutil.CreatePlan(t, h.db, "pro", models.PlanFeatures{MaxEvents: 3})
	addon := testutil.CreateAddon(t, h.db, "more-space", models.PlanFeatures{ExtraStorageMB: 100})

	name := "Pro Plus"
	price := int64(2900)
	off := false
	p, err := h.admin.UpdatePlan(admin.ID, plan.ID, models.UpdateCatalogRequest{Name: &name, PriceCents: &price})
	require.NoError(t, err)
	assert.Equal(t, "Pro Plus", p.Name)
	assert.EqualValues(t, 2900, p.PriceCents)

	a, err := h.admin.UpdateAddon(admin.ID, addon.ID, models.UpdateCatalogRequest{IsActive: &off})
	require.NoError(t, err)
	assert.False(t, a.IsActive)

	addons, err := h.billing.ListAddons()
	require.NoError(t, err)
	assert.Empty(t, addons)

	_, err = h.admin.UpdatePlan(admin.ID, 999, models.UpdateCatalogRequest{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)

	logs, err := h.admin.AuditLogs(0)
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	page, err := h.admin.ListUsers(1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
}

func TestAdminRebuildGallery(t *testing.T) {
	h := newHarness(t)
	admin := testutil.CreateUser(t, h.db, "admin@example.com")
	owner := testutil.CreateUser(t, h.db, "owner@example.com")
	e := testutil.CreateEvent(t, h.db, owner.ID, "REBUILD1")

	require.NoError(t, h.admin.RebuildGalleryOrder(context.Background(), admin.ID, e.ID))
	assert.ErrorIs(t, h.admin.RebuildGalleryOrder(context.Background(), admin.ID, 999), ErrNotFound)
	assert.EqualValues(t, 1, h.auditCount(t, "admin.gallery_rebuilt"))
}
