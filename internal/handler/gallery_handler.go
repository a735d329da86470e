package handler

import (
	"mime"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/guestlens-backend/internal/middleware"
	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/service"
	"github.com/sefazor/guestlens-backend/pkg/media"
	"github.com/sefazor/guestlens-backend/pkg/utils"
)

// GalleryHandler covers the owner's view of an event's files and file
// streaming for owners and guests.
type GalleryHandler struct {
	galleryService *service.GalleryService
	uploadService  *service.UploadService
	validator      *utils.Validator
}

func NewGalleryHandler(galleryService *service.GalleryService, uploadService *service.UploadService, validator *utils.Validator) *GalleryHandler {
	return &GalleryHandler{
		galleryService: galleryService,
		uploadService:  uploadService,
		validator:      validator,
	}
}

func (h *GalleryHandler) Upload(c *fiber.Ctx) error {
	userID, eventID, err := ownerAndEvent(c)
	if err != nil {
		return err
	}
	return runUpload(c, h.uploadService, service.UploadInput{EventID: eventID, UserID: userID})
}

func (h *GalleryHandler) Gallery(c *fiber.Ctx) error {
	userID, eventID, err := ownerAndEvent(c)
	if err != nil {
		return err
	}

	page, err := h.galleryService.ListOwnerGallery(userID, eventID, c.QueryInt("page", 1), c.QueryInt("per_page", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(page, ""))
}

func (h *GalleryHandler) Trash(c *fiber.Ctx) error {
	userID, eventID, err := ownerAndEvent(c)
	if err != nil {
		return err
	}

	files, err := h.galleryService.ListTrash(userID, eventID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(files, ""))
}

func (h *GalleryHandler) DeleteFile(c *fiber.Ctx) error {
	userID, eventID, err := ownerAndEvent(c)
	if err != nil {
		return err
	}
	fileID, err := paramID(c, "fileId")
	if err != nil {
		return err
	}

	if err := h.galleryService.SoftDeleteFile(c.UserContext(), userID, eventID, fileID, c.IP()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.MessageResponse("File moved to trash"))
}

func (h *GalleryHandler) RestoreFile(c *fiber.Ctx) error {
	userID, eventID, err := ownerAndEvent(c)
	if err != nil {
		return err
	}
	fileID, err := paramID(c, "fileId")
	if err != nil {
		return err
	}

	if err := h.galleryService.RestoreFile(c.UserContext(), userID, eventID, fileID, c.IP()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.MessageResponse("File restored"))
}

func (h *GalleryHandler) BulkDelete(c *fiber.Ctx) error {
	userID, eventID, err := ownerAndEvent(c)
	if err != nil {
		return err
	}
	var req models.BulkFileRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	n, err := h.galleryService.SoftDelete(c.UserContext(), userID, eventID, req.FileIDs, c.IP())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(models.BulkResult{Affected: n}, "Files moved to trash"))
}

func (h *GalleryHandler) BulkRestore(c *fiber.Ctx) error {
	userID, eventID, err := ownerAndEvent(c)
	if err != nil {
		return err
	}
	var req models.BulkFileRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	n, err := h.galleryService.Restore(c.UserContext(), userID, eventID, req.FileIDs, c.IP())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(models.BulkResult{Affected: n}, "Files restored"))
}

func (h *GalleryHandler) Original(c *fiber.Ctx) error {
	return h.serve(c, service.VariantOriginal)
}

func (h *GalleryHandler) Thumbnail(c *fiber.Ctx) error {
	return h.serve(c, service.VariantThumbnail)
}

// serve streams a file to its owner (session) or to a guest of its event
// (per-event cookie).
func (h *GalleryHandler) serve(c *fiber.Ctx, variant string) error {
	fileID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	viewer := service.Viewer{
		GuestToken: func(eventID uint) string { return c.Cookies(guestCookieName(eventID)) },
	}
	if userID, ok := middleware.UserID(c); ok {
		viewer.UserID = userID
	}

	content, err := h.galleryService.OpenFile(c.UserContext(), viewer, fileID, variant)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, content.ContentType)
	c.Set(fiber.HeaderCacheControl, "private, max-age=3600")
	c.Set("X-Content-Type-Options", "nosniff")
	if variant == service.VariantOriginal {
		disposition := "inline"
		if media.IsScriptable(content.ContentType) {
			disposition = "attachment"
		}
		c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType(disposition, map[string]string{"filename": content.Name}))
	}
	c.Set("X-File-Variant", content.Variant)
	return c.SendStream(content.Body, int(content.Size))
}
