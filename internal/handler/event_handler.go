package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/service"
	"github.com/sefazor/guestlens-backend/pkg/utils"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024
)

type EventHandler struct {
	eventService *service.EventService
	themeService *service.ThemeService
	validator    *utils.Validator
}

func NewEventHandler(eventService *service.EventService, themeService *service.ThemeService, validator *utils.Validator) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		themeService: themeService,
		validator:    validator,
	}
}

// ownerAndEvent reads the caller and the :id param.
func ownerAndEvent(c *fiber.Ctx) (uint, uint, error) {
	userID, err := currentUser(c)
	if err != nil {
		return 0, 0, err
	}
	eventID, err := paramID(c, "id")
	if err != nil {
		return 0, 0, err
	}
	return userID, eventID, nil
}

func (h *EventHandler) CreateEvent(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.EventRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	event, err := h.eventService.CreateEvent(c.UserContext(), userID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(event, "Event created successfully"))
}

func (h *EventHandler) GetUserEvents(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	events, err := h.eventService.GetUserEvents(userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(events, ""))
}

func (h *EventHandler) GetEvent(c *fiber.Ctx) error {
	userID, eventID, err := ownerAndEvent(c)
	if err != nil {
		return err
	}

	event, err := h.eventService.Owned(userID, eventID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(event, ""))
}

func (h *EventHandler) UpdateEvent(c *fiber.Ctx) error {
	userID, eventID, err := ownerAndEvent(c)
	if err != nil {
		return err
	}
	var req models.UpdateEventRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	event, err := h.eventService.UpdateEvent(userID, eventID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(event, "Event updated successfully"))
}

func (h *EventHandler) DeleteEvent(c *fiber.Ctx) error {
	userID, eventID, err := ownerAndEvent(c)
	if err != nil {
		return err
	}

	if err := h.eventService.DeleteEvent(userID, eventID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.MessageResponse("Event successfully deleted"))
}

func (h *EventHandler) Publish(c *fiber.Ctx) error {
	return h.setPublished(c, true)
}

func (h *EventHandler) Unpublish(c *fiber.Ctx) error {
	return h.setPublished(c, false)
}

func (h *EventHandler) setPublished(c *fiber.Ctx, published bool) error {
	userID, eventID, err := ownerAndEvent(c)
	if err != nil {
		return err
	}

	event, err := h.eventService.SetPublished(userID, eventID, published)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(event, ""))
}

func (h *EventHandler) LockDates(c *fiber.Ctx) error {
	userID, eventID, err := ownerAndEvent(c)
	if err != nil {
		return err
	}

	event, err := h.eventService.LockDates(userID, eventID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(event, "Event dates locked"))
}

func (h *EventHandler) RegenerateCode(c *fiber.Ctx) error {
	userID, eventID, err := ownerAndEvent(c)
	if err != nil {
		return err
	}

	event, err := h.eventService.RegenerateCode(userID, eventID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(event, "Event code regenerated"))
}

func (h *EventHandler) SetPassword(c *fiber.Ctx) error {
	userID, eventID, err := ownerAndEvent(c)
	if err != nil {
		return err
	}
	var req models.EventPasswordRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	event, err := h.eventService.SetPassword(userID, eventID, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(event, "Event password updated"))
}

func (h *EventHandler) SetTheme(c *fiber.Ctx) error {
	userID, eventID, err := ownerAndEvent(c)
	if err != nil {
		return err
	}
	var req models.EventThemeRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	event, err := h.themeService.SetEventTheme(userID, eventID, req.ThemeID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(event, "Event theme updated"))
}

func (h *EventHandler) QRCode(c *fiber.Ctx) error {
	userID, eventID, err := ownerAndEvent(c)
	if err != nil {
		return err
	}
	size := c.QueryInt("size", defaultQRSize)
	if size <= 0 || size > maxQRSize {
		size = defaultQRSize
	}

	png, err := h.eventService.QRCode(userID, eventID, size)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}
