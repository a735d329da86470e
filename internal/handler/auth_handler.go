package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/guestlens-backend/internal/middleware"
	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/service"
	"github.com/sefazor/guestlens-backend/pkg/utils"
)

type AuthHandler struct {
	authService *service.AuthService
	cookies     middleware.Cookies
	validator   *utils.Validator
}

func NewAuthHandler(authService *service.AuthService, cookies middleware.Cookies, validator *utils.Validator) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
		validator:   validator,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	resp, err := h.authService.Register(c.UserContext(), req, c.IP())
	if err != nil {
		return respondError(c, err)
	}

	h.cookies.SetSession(c, resp.Token, h.authService.SessionTTL())
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(resp, "User registered successfully"))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	resp, err := h.authService.Login(req, c.IP())
	if err != nil {
		return respondError(c, err)
	}

	h.cookies.SetSession(c, resp.Token, h.authService.SessionTTL())
	return c.JSON(models.SuccessResponse(resp, "Login successful"))
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.cookies.ClearSession(c)
	return c.JSON(models.MessageResponse("Logged out"))
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req models.ForgotPasswordRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	if err := h.authService.ForgotPassword(req.Email); err != nil {
		return respondError(c, err)
	}

	// Kayıtlı olsun olmasın aynı cevap
	return c.JSON(models.MessageResponse("If the address is registered, a reset link has been sent"))
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req models.ResetPasswordRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	if err := h.authService.ResetPassword(req.Token, req.NewPassword); err != nil {
		return respondError(c, err)
	}

	h.cookies.ClearSession(c)
	return c.JSON(models.MessageResponse("Password reset successful"))
}

func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req models.VerifyEmailRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	if err := h.authService.VerifyEmail(req.Token); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.MessageResponse("Email verified"))
}

func (h *AuthHandler) ResendVerification(c *fiber.Ctx) error {
	var req models.ForgotPasswordRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	if err := h.authService.ResendVerification(req.Email); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.MessageResponse("If the address needs verification, an email has been sent"))
}
