package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/sefazor/guestlens-backend/internal/config"
	"github.com/sefazor/guestlens-backend/internal/repository"
	"github.com/sefazor/guestlens-backend/internal/testutil"
	jwtPkg "github.com/sefazor/guestlens-backend/pkg/jwt"
	"github.com/sefazor/guestlens-backend/pkg/media"
	"github.com/sefazor/guestlens-backend/pkg/qrcode"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeRenderer struct {
	fail bool
}

func (f fakeRenderer) FromImage(r io.Reader) ([]byte, error) {
	if f.fail {
		return nil, io.ErrUnexpectedEOF
	}
	_, _ = io.Copy(io.Discard, r)
	return []byte("webp-thumb"), nil
}

func (f fakeRenderer) FromVideo(context.Context, string) ([]byte, error) {
	return f.FromImage(bytes.NewReader(nil))
}

type harness struct {
	db      *gorm.DB
	cfg     *config.Config
	store   *testutil.MemoryStorage
	gateway *testutil.FakeGateway
	mailer  *testutil.FakeMailer
	repos   struct {
		users    *repository.UserRepository
		events   *repository.EventRepository
		files    *repository.FileRepository
		order    *repository.GalleryOrderRepository
		purchase *repository.PurchaseRepository
		audit    *repository.AuditRepository
		webhooks *repository.WebhookEventRepository
		attempts *repository.LoginAttemptRepository
	}
	sessions *jwtPkg.Manager
	tokens   *ActionTokens
	limiter  LoginLimiter
	auth     *AuthService
	users    *UserService
	billing  *BillingService
	events   *EventService
	guests   *GuestService
	gallery  *GalleryService
	thumbs   *ThumbnailService
	uploads  *UploadService
	themes   *ThemeService
	admin    *AdminService
}

func testConfig() *config.Config {
	return &config.Config{
		Env: "test",
		Server: config.ServerConfig{
			PublicEventURL: "https://guestlens.test/e/",
		},
		Auth: config.AuthConfig{
			JWTSecret:    "test-secret",
			TokenTTL:     time.Hour,
			LoginLimiter: "memory",
			MaxFailures:  5,
			LockWindow:   15 * time.Minute,
		},
		Upload: config.UploadConfig{
			MaxFileMB:       1,
			AllowedPrefixes: "image/,video/",
			RetentionDays:   30,
		},
		Limits: config.LimitsConfig{
			FreeMaxEvents:    1,
			FreeMaxGuests:    2,
			FreeMaxStorageMB: 1,
		},
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		db:      testutil.NewDB(t),
		cfg:     testConfig(),
		store:   testutil.NewMemoryStorage(),
		gateway: testutil.NewFakeGateway(),
		mailer:  &testutil.FakeMailer{},
	}
	logger := zap.NewNop()

	h.repos.users = repository.NewUserRepository(h.db)
	h.repos.events = repository.NewEventRepository(h.db)
	h.repos.files = repository.NewFileRepository(h.db)
	h.repos.order = repository.NewGalleryOrderRepository(h.db)
	h.repos.purchase = repository.NewPurchaseRepository(h.db)
	h.repos.audit = repository.NewAuditRepository(h.db)
	h.repos.webhooks = repository.NewWebhookEventRepository(h.db)
	h.repos.attempts = repository.NewLoginAttemptRepository(h.db)

	auditor := NewAuditor(h.repos.audit, logger)
	captcha := testutil.StaticCaptcha{OK: true}
	dispatch := Dispatcher(SyncDispatcher)

	h.sessions = jwtPkg.NewManager(h.cfg.Auth.JWTSecret, h.cfg.Auth.TokenTTL)
	h.tokens = NewActionTokens(h.cfg.Auth.JWTSecret)
	h.limiter = NewLoginLimiter(h.cfg, h.repos.attempts)

	h.billing = NewBillingService(h.db, repository.NewCatalogRepository(h.db), h.repos.purchase, h.repos.events,
		h.repos.users, h.repos.webhooks, h.gateway, h.mailer, auditor, dispatch, h.cfg, logger)
	h.auth = NewAuthService(h.repos.users, h.mailer, h.sessions, h.tokens, h.limiter, captcha, auditor, dispatch, logger)
	h.users = NewUserService(h.repos.users, h.billing, h.mailer, h.sessions, h.tokens, auditor, dispatch, logger)
	h.events = NewEventService(h.repos.events, h.billing, qrcode.NewQRService(h.cfg.Server.PublicEventURL), auditor, logger)
	h.guests = NewGuestService(repository.NewGuestSessionRepository(h.db), h.events, h.billing, captcha, logger)
	h.gallery = NewGalleryService(h.db, h.repos.files, h.repos.order, h.repos.events, h.events, h.guests, h.store, auditor, h.cfg, logger)
	h.thumbs = NewThumbnailService(h.repos.files, h.store, fakeRenderer{}, dispatch, logger)
	h.uploads = NewUploadService(h.repos.events, h.repos.files, h.billing, h.gallery, h.thumbs, h.store,
		media.NewExtractor("ffprobe-not-installed"), h.cfg, logger)
	h.themes = NewThemeService(repository.NewThemeRepository(h.db), h.repos.events, h.events, auditor)
	h.admin = NewAdminService(h.repos.users, h.repos.events, repository.NewCatalogRepository(h.db), h.repos.audit,
		repository.NewErrorLogRepository(h.db), h.gallery, auditor)
	return h
}

func (h *harness) auditCount(t *testing.T, action string) int64 {
	t.Helper()
	n, err := h.repos.audit.CountByAction(action)
	if err != nil {
		t.Fatalf("count audit: %v", err)
	}
	return n
}

// pngBytes encodes a small distinct PNG; seed changes the pixels and so the checksum.
func pngBytes(t *testing.T, seed uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for x := 0; x < 4; x++ {
		for y := 0; y < 3; y++ {
			img.Set(x, y, color.RGBA{R: seed, G: uint8(x * 40), B: uint8(y * 60), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func mp4Bytes() []byte {
	b := []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'm', 'p', '4', '2', 0x00, 0x00, 0x00, 0x00, 'm', 'p', '4', '2', 'i', 's', 'o', 'm'}
	return append(b, make([]byte, 64)...)
}

func stringsReader(s string) io.Reader { return bytes.NewReader([]byte(s)) }
