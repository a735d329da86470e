package main

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/guestlens-backend/internal/config"
	"github.com/sefazor/guestlens-backend/internal/jobs"
	"github.com/sefazor/guestlens-backend/internal/middleware"
	"github.com/sefazor/guestlens-backend/internal/repository"
	"github.com/sefazor/guestlens-backend/internal/service"
	"github.com/sefazor/guestlens-backend/pkg/captcha"
	"github.com/sefazor/guestlens-backend/pkg/csrf"
	"github.com/sefazor/guestlens-backend/pkg/email"
	jwtPkg "github.com/sefazor/guestlens-backend/pkg/jwt"
	"github.com/sefazor/guestlens-backend/pkg/media"
	"github.com/sefazor/guestlens-backend/pkg/payment"
	"github.com/sefazor/guestlens-backend/pkg/qrcode"
	"github.com/sefazor/guestlens-backend/pkg/storage"
	"go.uber.org/zap"
)

// App is what main runs: the HTTP server plus the background jobs.
type App struct {
	Server    *fiber.App
	Scheduler *jobs.Scheduler
}

func provideStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	return storage.New(ctx, cfg)
}

func provideSessions(cfg *config.Config) *jwtPkg.Manager {
	return jwtPkg.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
}

func provideActionTokens(cfg *config.Config) *service.ActionTokens {
	return service.NewActionTokens(cfg.Auth.JWTSecret)
}

func provideCSRFSigner(cfg *config.Config) *csrf.Signer {
	return csrf.NewSigner(cfg.Auth.JWTSecret, cfg.Auth.CSRFTTL)
}

func provideCookies(cfg *config.Config) middleware.Cookies {
	return middleware.Cookies{Secure: cfg.Server.CookieSecure, Domain: cfg.Server.CookieDomain}
}

func provideStripe(cfg *config.Config) *payment.StripeService {
	return payment.NewStripeService(cfg.Stripe.SecretKey, cfg.Stripe.SuccessURL, cfg.Stripe.CancelURL)
}

func provideMailer(cfg *config.Config, logger *zap.Logger) *email.EmailService {
	sender := email.NewResendSender(cfg.Email.ResendAPIKey)
	return email.NewEmailService(sender, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Server.FrontendURL, logger)
}

func provideCaptcha(cfg *config.Config) *captcha.Verifier {
	return captcha.NewVerifier(cfg.Captcha.TurnstileSecret)
}

func provideThumbnailer(cfg *config.Config) *media.Thumbnailer {
	return media.NewThumbnailer(cfg.Upload.FFmpegPath)
}

func provideExtractor(cfg *config.Config) *media.Extractor {
	return media.NewExtractor(cfg.Upload.FFprobePath)
}

func provideQR(cfg *config.Config) *qrcode.QRService {
	return qrcode.NewQRService(cfg.Server.PublicEventURL)
}

func provideScheduler(
	billing *service.BillingService,
	limiter service.LoginLimiter,
	errorLogs *repository.ErrorLogRepository,
	logger *zap.Logger,
) *jobs.Scheduler {
	return jobs.NewScheduler(billing, limiter, errorLogs, logger)
}
