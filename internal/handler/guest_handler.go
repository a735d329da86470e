package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/guestlens-backend/internal/middleware"
	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/service"
	"github.com/sefazor/guestlens-backend/pkg/utils"
)

const guestCookieTTL = 30 * 24 * time.Hour

func guestCookieName(eventID uint) string {
	return middleware.GuestCookiePrefix + strconv.FormatUint(uint64(eventID), 10)
}

// GuestHandler serves the public side of an event, addressed by its code.
type GuestHandler struct {
	guestService   *service.GuestService
	eventService   *service.EventService
	galleryService *service.GalleryService
	uploadService  *service.UploadService
	cookies        middleware.Cookies
	validator      *utils.Validator
}

func NewGuestHandler(
	guestService *service.GuestService,
	eventService *service.EventService,
	galleryService *service.GalleryService,
	uploadService *service.UploadService,
	cookies middleware.Cookies,
	validator *utils.Validator,
) *GuestHandler {
	return &GuestHandler{
		guestService:   guestService,
		eventService:   eventService,
		galleryService: galleryService,
		uploadService:  uploadService,
		cookies:        cookies,
		validator:      validator,
	}
}

func (h *GuestHandler) GetPublicEvent(c *fiber.Ctx) error {
	event, err := h.eventService.GetPublicEvent(c.Params("code"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(models.NewPublicEventResponse(event), ""))
}

func (h *GuestHandler) Enter(c *fiber.Ctx) error {
	var req models.GuestEnterRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	in := service.EnterInput{
		Code:         c.Params("code"),
		Password:     req.Password,
		DisplayName:  req.DisplayName,
		CaptchaToken: req.CaptchaToken,
		IP:           c.IP(),
		UserAgent:    c.Get(fiber.HeaderUserAgent),
	}
	if event, err := h.eventService.GetPublicEvent(in.Code); err == nil {
		in.ExistingToken = c.Cookies(guestCookieName(event.ID))
	}

	sess, event, err := h.guestService.Enter(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     guestCookieName(event.ID),
		Value:    sess.Token,
		Path:     "/",
		Domain:   h.cookies.Domain,
		Expires:  time.Now().Add(guestCookieTTL),
		HTTPOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(models.SuccessResponse(models.GuestEnterResponse{
		Event:       models.NewPublicEventResponse(event),
		DisplayName: sess.DisplayName,
	}, "Welcome"))
}

// guestSession resolves the event behind :code and the caller's cookie for it.
func (h *GuestHandler) guestSession(c *fiber.Ctx) (*models.Event, *models.GuestSession, error) {
	event, err := h.eventService.GetPublicEvent(c.Params("code"))
	if err != nil {
		return nil, nil, err
	}
	sess, err := h.guestService.Resolve(c.Cookies(guestCookieName(event.ID)))
	if err != nil {
		return nil, nil, err
	}
	if sess.EventID != event.ID {
		return nil, nil, service.ErrUnauthorized
	}
	return event, sess, nil
}

func (h *GuestHandler) Gallery(c *fiber.Ctx) error {
	event, _, err := h.guestSession(c)
	if err != nil {
		return respondError(c, err)
	}

	page, err := h.galleryService.ListGallery(event.ID, c.QueryInt("page", 1), c.QueryInt("per_page", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(page, ""))
}

func (h *GuestHandler) Upload(c *fiber.Ctx) error {
	event, sess, err := h.guestSession(c)
	if err != nil {
		return respondError(c, err)
	}
	return runUpload(c, h.uploadService, service.UploadInput{EventID: event.ID, Guest: sess})
}
