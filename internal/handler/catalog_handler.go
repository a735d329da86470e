package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/service"
)

// CatalogHandler lists what can be bought or picked: plans, add-ons, themes.
type CatalogHandler struct {
	billingService *service.BillingService
	themeService   *service.ThemeService
}

func NewCatalogHandler(billingService *service.BillingService, themeService *service.ThemeService) *CatalogHandler {
	return &CatalogHandler{
		billingService: billingService,
		themeService:   themeService,
	}
}

func (h *CatalogHandler) ListPlans(c *fiber.Ctx) error {
	plans, err := h.billingService.ListPlans()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(plans, ""))
}

func (h *CatalogHandler) ListAddons(c *fiber.Ctx) error {
	addons, err := h.billingService.ListAddons()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(addons, ""))
}

func (h *CatalogHandler) ListThemes(c *fiber.Ctx) error {
	themes, err := h.themeService.ListActive()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(themes, ""))
}
