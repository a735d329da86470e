package handler

import (
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/service"
)

const maxFilesPerRequest = 50

// formParts collects the uploaded files from the "files" (or "file") field.
func formParts(c *fiber.Ctx) ([]service.UploadPart, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid form data")
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		headers = form.File["file"]
	}
	if len(headers) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "No files uploaded")
	}
	if len(headers) > maxFilesPerRequest {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Too many files in one request")
	}

	parts := make([]service.UploadPart, 0, len(headers))
	for _, fh := range headers {
		fh := fh
		parts = append(parts, service.UploadPart{
			FileName: fh.Filename,
			Open:     func() (io.ReadCloser, error) { return openHeader(fh) },
		})
	}
	return parts, nil
}

func openHeader(fh *multipart.FileHeader) (io.ReadCloser, error) {
	return fh.Open()
}

// runUpload answers a single file with its own status code and several
// files with per-file results.
func runUpload(c *fiber.Ctx, uploads *service.UploadService, base service.UploadInput) error {
	parts, err := formParts(c)
	if err != nil {
		return err
	}

	if len(parts) == 1 {
		body, err := parts[0].Open()
		if err != nil {
			return err
		}
		defer body.Close()

		in := base
		in.FileName, in.Body = parts[0].FileName, body
		file, err := uploads.Upload(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(models.NewFileResponse(file, 0), "File uploaded successfully"))
	}

	results := uploads.UploadMany(c.UserContext(), base, parts)
	return c.JSON(models.SuccessResponse(results, "Upload finished"))
}
