package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/pkg/csrf"
)

// GuestCookiePrefix + event id names the per-event guest session cookie.
const GuestCookiePrefix = "guest_session_"

type CSRF struct {
	signer  *csrf.Signer
	cookies Cookies
}

func NewCSRF(signer *csrf.Signer, cookies Cookies) *CSRF {
	return &CSRF{signer: signer, cookies: cookies}
}

// Issue hands out a fresh token in a readable cookie and in the body.
func (m *CSRF) Issue(c *fiber.Ctx) error {
	token, err := m.signer.Issue()
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     csrf.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   m.cookies.Domain,
		Expires:  time.Now().Add(m.signer.TTL()),
		HTTPOnly: false,
		Secure:   m.cookies.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(models.SuccessResponse(models.CSRFResponse{Token: token}, ""))
}

// Protect checks the double-submit token on unsafe requests that rely on
// cookies. Bearer requests and cookie-less requests pass.
func (m *CSRF) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}
		if IsBearer(c) || !hasAuthCookie(c) {
			return c.Next()
		}

		submitted := c.Get(csrf.HeaderName)
		if submitted == "" {
			submitted = c.FormValue(csrf.FormField)
		}
		if err := m.signer.Check(c.Cookies(csrf.CookieName), submitted); err != nil {
			return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("Invalid CSRF token"))
		}
		return c.Next()
	}
}

func hasAuthCookie(c *fiber.Ctx) bool {
	if c.Cookies(SessionCookieName) != "" {
		return true
	}
	found := false
	c.Request().Header.VisitAllCookie(func(key, value []byte) {
		if len(value) > 0 && strings.HasPrefix(string(key), GuestCookiePrefix) {
			found = true
		}
	})
	return found
}
