package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/guestlens-backend/internal/models"
)

// AdminLookup is satisfied by service.UserService.
type AdminLookup interface {
	GetUserByID(id uint) (*models.User, error)
}

// RequireAdmin must run after Auth.Required.
func RequireAdmin(users AdminLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := UserID(c)
		if !ok {
			return unauthorized(c)
		}
		user, err := users.GetUserByID(userID)
		if err != nil || !user.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("Admin access required"))
		}
		return c.Next()
	}
}
