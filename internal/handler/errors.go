package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/guestlens-backend/internal/middleware"
	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/service"
	"github.com/sefazor/guestlens-backend/pkg/utils"
)

var statusByError = []struct {
	err    error
	status int
}{
	{service.ErrNotFound, fiber.StatusNotFound},
	{service.ErrForbidden, fiber.StatusForbidden},
	{service.ErrUnauthorized, fiber.StatusUnauthorized},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{service.ErrWrongPassword, fiber.StatusUnauthorized},
	{service.ErrInvalidToken, fiber.StatusBadRequest},
	{service.ErrEmailTaken, fiber.StatusConflict},
	{service.ErrDuplicateFile, fiber.StatusConflict},
	{service.ErrInvalidTransition, fiber.StatusConflict},
	{service.ErrDatesLocked, fiber.StatusConflict},
	{service.ErrTooManyAttempts, fiber.StatusTooManyRequests},
	{service.ErrCaptchaFailed, fiber.StatusBadRequest},
	{service.ErrInvalidInput, fiber.StatusBadRequest},
	{service.ErrPlanLimit, fiber.StatusPaymentRequired},
	{service.ErrQuotaExceeded, fiber.StatusPaymentRequired},
	{service.ErrFileTooLarge, fiber.StatusRequestEntityTooLarge},
	{service.ErrUnsupportedMedia, fiber.StatusUnsupportedMediaType},
	{service.ErrEventClosed, fiber.StatusForbidden},
	{service.ErrEventNotPublished, fiber.StatusForbidden},
	{service.ErrRetentionExpired, fiber.StatusGone},
	{service.ErrPaymentUnavailable, fiber.StatusBadGateway},
}

// StatusFor maps a service error to its HTTP status. Unknown errors are 500.
func StatusFor(err error) int {
	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return fiber.StatusInternalServerError
}

// respondError writes client errors directly; anything else goes to the
// app error handler, which logs it and hides the detail.
func respondError(c *fiber.Ctx, err error) error {
	if !service.IsUserError(err) {
		return err
	}
	return c.Status(StatusFor(err)).JSON(models.ErrorResponse(err.Error()))
}

// bind parses and validates the request body into req.
func bind(c *fiber.Ctx, v *utils.Validator, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := v.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

func currentUser(c *fiber.Ctx) (uint, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	return id, nil
}

// ErrorHandler renders every error in the response envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
		message = fe.Message
	case service.IsUserError(err):
		code = StatusFor(err)
		message = err.Error()
	}
	if code >= 500 {
		message = "Internal server error"
	}
	return c.Status(code).JSON(models.ErrorResponse(message))
}
