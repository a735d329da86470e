//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/sefazor/guestlens-backend/internal/config"
	"github.com/sefazor/guestlens-backend/internal/handler"
	"github.com/sefazor/guestlens-backend/internal/middleware"
	"github.com/sefazor/guestlens-backend/internal/repository"
	"github.com/sefazor/guestlens-backend/internal/router"
	"github.com/sefazor/guestlens-backend/internal/service"
	"github.com/sefazor/guestlens-backend/pkg/captcha"
	"github.com/sefazor/guestlens-backend/pkg/email"
	"github.com/sefazor/guestlens-backend/pkg/media"
	"github.com/sefazor/guestlens-backend/pkg/payment"
	"github.com/sefazor/guestlens-backend/pkg/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var repositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewEventRepository,
	repository.NewFileRepository,
	repository.NewGalleryOrderRepository,
	repository.NewGuestSessionRepository,
	repository.NewCatalogRepository,
	repository.NewPurchaseRepository,
	repository.NewWebhookEventRepository,
	repository.NewThemeRepository,
	repository.NewAuditRepository,
	repository.NewErrorLogRepository,
	repository.NewLoginAttemptRepository,
)

var infraSet = wire.NewSet(
	provideStorage,
	provideSessions,
	provideActionTokens,
	provideCSRFSigner,
	provideCookies,
	provideStripe,
	wire.Bind(new(payment.Gateway), new(*payment.StripeService)),
	provideMailer,
	wire.Bind(new(email.Mailer), new(*email.EmailService)),
	provideCaptcha,
	wire.Bind(new(service.CaptchaVerifier), new(*captcha.Verifier)),
	provideThumbnailer,
	wire.Bind(new(service.ThumbnailRenderer), new(*media.Thumbnailer)),
	provideExtractor,
	wire.Bind(new(service.MetadataExtractor), new(*media.Extractor)),
	provideQR,
	utils.NewValidator,
)

var serviceSet = wire.NewSet(
	service.NewGoDispatcher,
	service.NewAuditor,
	service.NewLoginLimiter,
	service.NewBillingService,
	service.NewEventService,
	service.NewGuestService,
	service.NewGalleryService,
	service.NewThumbnailService,
	service.NewUploadService,
	service.NewAuthService,
	service.NewUserService,
	service.NewThemeService,
	service.NewAdminService,
	provideScheduler,
)

var httpSet = wire.NewSet(
	handler.NewAuthHandler,
	handler.NewUserHandler,
	handler.NewEventHandler,
	handler.NewGuestHandler,
	handler.NewGalleryHandler,
	handler.NewPaymentHandler,
	handler.NewCatalogHandler,
	handler.NewAdminHandler,
	handler.NewHealthHandler,
	middleware.NewAuth,
	wire.Bind(new(middleware.SessionChecker), new(*service.AuthService)),
	middleware.NewCSRF,
	wire.Bind(new(middleware.AdminLookup), new(*service.UserService)),
	wire.Struct(new(router.Handlers), "*"),
	wire.Struct(new(router.Middleware), "*"),
	router.New,
)

func InitializeApp(ctx context.Context, cfg *config.Config, db *gorm.DB, logger *zap.Logger) (*App, error) {
	wire.Build(
		repositorySet,
		infraSet,
		serviceSet,
		httpSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil
}
