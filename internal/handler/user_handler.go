package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/guestlens-backend/internal/middleware"
	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/service"
	"github.com/sefazor/guestlens-backend/pkg/utils"
)

type UserHandler struct {
	userService    *service.UserService
	authService    *service.AuthService
	billingService *service.BillingService
	cookies        middleware.Cookies
	validator      *utils.Validator
}

func NewUserHandler(
	userService *service.UserService,
	authService *service.AuthService,
	billingService *service.BillingService,
	cookies middleware.Cookies,
	validator *utils.Validator,
) *UserHandler {
	return &UserHandler{
		userService:    userService,
		authService:    authService,
		billingService: billingService,
		cookies:        cookies,
		validator:      validator,
	}
}

func (h *UserHandler) GetMyProfile(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	profile, err := h.userService.GetProfile(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(profile, ""))
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.UpdateProfileRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdateProfile(userID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(user, "Profile updated successfully"))
}

// ChangePassword ends every other session; the caller gets a fresh cookie.
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.ChangePasswordRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	token, err := h.userService.ChangePassword(userID, req)
	if err != nil {
		return respondError(c, err)
	}

	h.cookies.SetSession(c, token, h.authService.SessionTTL())
	return c.JSON(models.SuccessResponse(fiber.Map{"token": token}, "Password changed successfully"))
}

func (h *UserHandler) InitiateEmailChange(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.ChangeEmailRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	if err := h.userService.InitiateEmailChange(userID, req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.MessageResponse("Verification email sent to the new address"))
}

func (h *UserHandler) CompleteEmailChange(c *fiber.Ctx) error {
	var req models.VerifyEmailRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	user, err := h.userService.CompleteEmailChange(req.Token)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(user, "Email updated successfully"))
}

func (h *UserHandler) RequestDeletion(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.userService.RequestDeletion(userID); err != nil {
		return respondError(c, err)
	}

	h.cookies.ClearSession(c)
	return c.JSON(models.MessageResponse("Account deletion requested"))
}

func (h *UserHandler) CancelDeletion(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.userService.CancelDeletion(userID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.MessageResponse("Account deletion canceled"))
}

func (h *UserHandler) LogoutAll(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.authService.LogoutAll(userID); err != nil {
		return respondError(c, err)
	}

	h.cookies.ClearSession(c)
	return c.JSON(models.MessageResponse("Signed out of all sessions"))
}

func (h *UserHandler) ActivePlan(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	plan, features, err := h.billingService.GetActivePlan(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(models.ActivePlanResponse{Plan: plan, Features: features}, ""))
}

func (h *UserHandler) PurchaseHistory(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	history, err := h.billingService.PurchaseHistory(userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(history, ""))
}
