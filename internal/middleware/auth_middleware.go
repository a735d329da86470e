package middleware

import (
	"errors"
	"time"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sefazor/guestlens-backend/internal/models"
	jwtPkg "github.com/sefazor/guestlens-backend/pkg/jwt"
	"go.uber.org/zap"
)

const (
	SessionCookieName = "session_token"
	localUserID       = "userID"
	localUserEmail    = "userEmail"
	localToken        = "sessionToken"
)

// SessionChecker returns the user's current session version. Tokens carrying
// an older version are rejected.
type SessionChecker interface {
	CurrentSessionVersion(userID uint) (int, error)
}

// Cookies writes the session cookie with the configured flags.
type Cookies struct {
	Secure bool
	Domain string
}

func (k Cookies) SetSession(c *fiber.Ctx, token string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   k.Domain,
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   k.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (k Cookies) ClearSession(c *fiber.Ctx) {
	k.clear(c, SessionCookieName, "/")
}

func (k Cookies) clear(c *fiber.Ctx, name, path string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Domain:   k.Domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   k.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

type Auth struct {
	manager  *jwtPkg.Manager
	sessions SessionChecker
	cookies  Cookies
	logger   *zap.Logger
}

func NewAuth(manager *jwtPkg.Manager, sessions SessionChecker, cookies Cookies, logger *zap.Logger) *Auth {
	return &Auth{manager: manager, sessions: sessions, cookies: cookies, logger: logger.Named("auth")}
}

func (a *Auth) config(success fiber.Handler, failure fiber.ErrorHandler) jwtware.Config {
	return jwtware.Config{
		KeyFunc:        a.manager.Keyfunc,
		Claims:         &jwtPkg.SessionClaims{},
		TokenLookup:    "header:Authorization,cookie:" + SessionCookieName,
		AuthScheme:     "Bearer",
		ContextKey:     localToken,
		SuccessHandler: success,
		ErrorHandler:   failure,
	}
}

// Required rejects requests without a valid, current session.
func (a *Auth) Required() fiber.Handler {
	return jwtware.New(a.config(
		func(c *fiber.Ctx) error {
			if err := a.accept(c); err != nil {
				return unauthorized(c)
			}
			return c.Next()
		},
		func(c *fiber.Ctx, err error) error {
			return unauthorized(c)
		},
	))
}

// Optional sets the user when a valid session is present and otherwise
// lets the request through anonymously.
func (a *Auth) Optional() fiber.Handler {
	return jwtware.New(a.config(
		func(c *fiber.Ctx) error {
			_ = a.accept(c)
			return c.Next()
		},
		func(c *fiber.Ctx, err error) error {
			return c.Next()
		},
	))
}

var errStaleSession = errors.New("stale session")

func (a *Auth) accept(c *fiber.Ctx) error {
	token, ok := c.Locals(localToken).(*jwt.Token)
	if !ok {
		return errStaleSession
	}
	claims, ok := token.Claims.(*jwtPkg.SessionClaims)
	if !ok || claims.UserID == 0 {
		return errStaleSession
	}

	sv, err := a.sessions.CurrentSessionVersion(claims.UserID)
	if err != nil || sv != claims.SessionVersion {
		return errStaleSession
	}

	c.Locals(localUserID, claims.UserID)
	c.Locals(localUserEmail, claims.Email)

	// Yarı ömrü geçen cookie yenilenir
	if c.Cookies(SessionCookieName) != "" && a.manager.NeedsRefresh(claims) {
		fresh, err := a.manager.GenerateToken(claims.UserID, claims.Email, claims.SessionVersion)
		if err != nil {
			a.logger.Warn("session refresh failed", zap.Uint("user_id", claims.UserID), zap.Error(err))
		} else {
			a.cookies.SetSession(c, fresh, a.manager.TTL())
		}
	}
	return nil
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("Unauthorized"))
}

// UserID returns the authenticated user, if any.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(localUserID).(uint)
	return id, ok && id != 0
}

// IsBearer reports whether the request authenticates with an Authorization header.
func IsBearer(c *fiber.Ctx) bool {
	h := c.Get(fiber.HeaderAuthorization)
	return len(h) > 7 && h[:7] == "Bearer "
}
