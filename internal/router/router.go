package router

import (
	"strings"
	"time"

	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/sefazor/guestlens-backend/internal/config"
	"github.com/sefazor/guestlens-backend/internal/handler"
	"github.com/sefazor/guestlens-backend/internal/middleware"
	"github.com/sefazor/guestlens-backend/internal/models"
	"go.uber.org/zap"
)

// Handlers groups everything the routes need; wire fills it.
type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Event   *handler.EventHandler
	Guest   *handler.GuestHandler
	Gallery *handler.GalleryHandler
	Payment *handler.PaymentHandler
	Catalog *handler.CatalogHandler
	Admin   *handler.AdminHandler
	Health  *handler.HealthHandler
}

// Middleware groups the request guards.
type Middleware struct {
	Auth  *middleware.Auth
	CSRF  *middleware.CSRF
	Admin middleware.AdminLookup
}

func rateLimit(max int, prefix string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return prefix + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse("Too many requests"))
		},
	})
}

func New(cfg *config.Config, logger *zap.Logger, h Handlers, mw Middleware) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "guestlens",
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		ErrorHandler: handler.ErrorHandler,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.IsDevelopment()}))
	if cfg.Sentry.DSN != "" {
		app.Use(sentryfiber.New(sentryfiber.Options{Repanic: true, WaitForDelivery: false}))
	}
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(middleware.RequestLogger(logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.ReplaceAll(cfg.Server.AllowedOrigins, " ", ""),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-CSRF-Token",
		AllowMethods:     "GET, POST, PUT, DELETE",
		AllowCredentials: true,
	}))
	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "same-site"}))

	app.Get("/healthz", h.Health.Health)

	// Stripe imzalı gövdeyi olduğu gibi ister, CSRF yok
	app.Post("/stripe/webhook", h.Payment.HandleStripeWebhook)

	api := app.Group("/api", rateLimit(cfg.Server.RateLimitPerMin, "api:"), mw.CSRF.Protect())
	api.Get("/csrf", mw.CSRF.Issue)

	authLimit := rateLimit(cfg.Server.AuthLimitPerMin, "auth:")
	auth := api.Group("/auth", authLimit)
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/logout", h.Auth.Logout)
	auth.Post("/forgot-password", h.Auth.ForgotPassword)
	auth.Post("/reset-password", h.Auth.ResetPassword)
	auth.Post("/verify-email", h.Auth.VerifyEmail)
	auth.Post("/resend-verification", h.Auth.ResendVerification)

	api.Get("/plans", h.Catalog.ListPlans)
	api.Get("/addons", h.Catalog.ListAddons)
	api.Get("/themes", h.Catalog.ListThemes)

	// Misafir tarafı
	public := api.Group("/e/:code")
	public.Get("/", h.Guest.GetPublicEvent)
	public.Post("/enter", authLimit, h.Guest.Enter)
	public.Get("/gallery", h.Guest.Gallery)
	public.Post("/uploads", h.Guest.Upload)

	files := api.Group("/files", mw.Auth.Optional())
	files.Get("/:id", h.Gallery.Original)
	files.Get("/:id/thumbnail", h.Gallery.Thumbnail)

	// Protected routes
	me := api.Group("/me", mw.Auth.Required())
	me.Get("/", h.User.GetMyProfile)
	me.Put("/", h.User.UpdateProfile)
	me.Post("/password", h.User.ChangePassword)
	me.Post("/email", h.User.InitiateEmailChange)
	me.Post("/email/confirm", h.User.CompleteEmailChange)
	me.Post("/delete", h.User.RequestDeletion)
	me.Post("/delete/cancel", h.User.CancelDeletion)
	me.Post("/logout-all", h.User.LogoutAll)
	me.Get("/plan", h.User.ActivePlan)
	me.Get("/purchases", h.User.PurchaseHistory)

	billing := api.Group("/billing", mw.Auth.Required())
	billing.Post("/checkout/plan/:planId", h.Payment.CreatePlanCheckout)
	billing.Post("/checkout/addon/:eventId/:addonId", h.Payment.CreateAddonCheckout)

	events := api.Group("/events", mw.Auth.Required())
	events.Get("/", h.Event.GetUserEvents)
	events.Post("/", h.Event.CreateEvent)
	events.Get("/:id", h.Event.GetEvent)
	events.Put("/:id", h.Event.UpdateEvent)
	events.Delete("/:id", h.Event.DeleteEvent)
	events.Post("/:id/publish", h.Event.Publish)
	events.Post("/:id/unpublish", h.Event.Unpublish)
	events.Post("/:id/lock-dates", h.Event.LockDates)
	events.Post("/:id/regenerate-code", h.Event.RegenerateCode)
	events.Post("/:id/password", h.Event.SetPassword)
	events.Post("/:id/theme", h.Event.SetTheme)
	events.Get("/:id/qrcode", h.Event.QRCode)
	events.Post("/:id/uploads", h.Gallery.Upload)
	events.Get("/:id/gallery", h.Gallery.Gallery)
	events.Get("/:id/trash", h.Gallery.Trash)
	events.Post("/:id/files/bulk-delete", h.Gallery.BulkDelete)
	events.Post("/:id/files/bulk-restore", h.Gallery.BulkRestore)
	events.Post("/:id/files/:fileId/delete", h.Gallery.DeleteFile)
	events.Post("/:id/files/:fileId/restore", h.Gallery.RestoreFile)

	admin := api.Group("/admin", mw.Auth.Required(), middleware.RequireAdmin(mw.Admin))
	admin.Get("/users", h.Admin.ListUsers)
	admin.Put("/events/:id/storage", h.Admin.SetEventStorage)
	admin.Put("/plans/:id", h.Admin.UpdatePlan)
	admin.Put("/addons/:id", h.Admin.UpdateAddon)
	admin.Post("/themes", h.Admin.SaveTheme)
	admin.Post("/events/:id/rebuild-order", h.Admin.RebuildGalleryOrder)
	admin.Get("/error-logs", h.Admin.ErrorLogs)
	admin.Get("/audit-logs", h.Admin.AuditLogs)

	return app
}
