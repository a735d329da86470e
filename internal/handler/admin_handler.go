package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/service"
	"github.com/sefazor/guestlens-backend/pkg/utils"
)

type AdminHandler struct {
	adminService *service.AdminService
	themeService *service.ThemeService
	validator    *utils.Validator
}

func NewAdminHandler(adminService *service.AdminService, themeService *service.ThemeService, validator *utils.Validator) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		themeService: themeService,
		validator:    validator,
	}
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page, err := h.adminService.ListUsers(c.QueryInt("page", 1), c.QueryInt("per_page", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(page, ""))
}

func (h *AdminHandler) SetEventStorage(c *fiber.Ctx) error {
	adminID, eventID, err := ownerAndEvent(c)
	if err != nil {
		return err
	}
	var req models.CustomStorageRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	event, err := h.adminService.SetEventStorage(adminID, eventID, req.StorageMB)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(event, "Event storage updated"))
}

func (h *AdminHandler) UpdatePlan(c *fiber.Ctx) error {
	adminID, err := currentUser(c)
	if err != nil {
		return err
	}
	planID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req models.UpdateCatalogRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	plan, err := h.adminService.UpdatePlan(adminID, planID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(plan, "Plan updated"))
}

func (h *AdminHandler) UpdateAddon(c *fiber.Ctx) error {
	adminID, err := currentUser(c)
	if err != nil {
		return err
	}
	addonID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req models.UpdateCatalogRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	addon, err := h.adminService.UpdateAddon(adminID, addonID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(addon, "Add-on updated"))
}

func (h *AdminHandler) SaveTheme(c *fiber.Ctx) error {
	adminID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.ThemeRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	theme, err := h.themeService.UpsertTheme(adminID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(theme, "Theme saved"))
}

func (h *AdminHandler) RebuildGalleryOrder(c *fiber.Ctx) error {
	adminID, eventID, err := ownerAndEvent(c)
	if err != nil {
		return err
	}

	if err := h.adminService.RebuildGalleryOrder(c.UserContext(), adminID, eventID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.MessageResponse("Gallery order rebuilt"))
}

func (h *AdminHandler) ErrorLogs(c *fiber.Ctx) error {
	logs, err := h.adminService.ErrorLogs(c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(logs, ""))
}

func (h *AdminHandler) AuditLogs(c *fiber.Ctx) error {
	logs, err := h.adminService.AuditLogs(c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(logs, ""))
}
