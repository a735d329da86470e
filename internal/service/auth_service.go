package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/repository"
	"github.com/sefazor/guestlens-backend/pkg/bcrypt"
	"github.com/sefazor/guestlens-backend/pkg/email"
	jwtPkg "github.com/sefazor/guestlens-backend/pkg/jwt"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CaptchaVerifier is satisfied by captcha.Verifier.
type CaptchaVerifier interface {
	VerifyTurnstile(ctx context.Context, token, remoteIP string) (bool, error)
}

type AuthService struct {
	userRepo *repository.UserRepository
	mailer   email.Mailer
	sessions *jwtPkg.Manager
	tokens   *ActionTokens
	limiter  LoginLimiter
	captcha  CaptchaVerifier
	auditor  *Auditor
	dispatch Dispatcher
	logger   *zap.Logger
}

func NewAuthService(
	userRepo *repository.UserRepository,
	mailer email.Mailer,
	sessions *jwtPkg.Manager,
	tokens *ActionTokens,
	limiter LoginLimiter,
	captcha CaptchaVerifier,
	auditor *Auditor,
	dispatch Dispatcher,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		mailer:   mailer,
		sessions: sessions,
		tokens:   tokens,
		limiter:  limiter,
		captcha:  captcha,
		auditor:  auditor,
		dispatch: dispatch,
		logger:   logger.Named("auth"),
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest, ip string) (*models.AuthResponse, error) {
	ok, err := s.captcha.VerifyTurnstile(ctx, req.CaptchaToken, ip)
	if err != nil || !ok {
		if err != nil {
			s.logger.Info("captcha rejected", zap.Error(err))
		}
		return nil, ErrCaptchaFailed
	}

	addr := normalizeEmail(req.Email)
	exists, err := s.userRepo.EmailExists(addr)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FullName:       strings.TrimSpace(req.FullName),
		Email:          addr,
		Password:       hashedPassword,
		SessionVersion: 1,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	s.sendVerification(user)
	s.auditor.Record(AuditEntry{ActorUserID: actor(user.ID), Action: "user.registered", EntityType: "user", EntityID: user.ID, IPAddress: ip})

	token, err := s.sessions.GenerateToken(user.ID, user.Email, user.SessionVersion)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: *user}, nil
}

// Login checks the limiter before touching the password so a locked key
// cannot be used to enumerate credentials.
func (s *AuthService) Login(req models.LoginRequest, ip string) (*models.AuthResponse, error) {
	key := LoginKey(ip, req.Email)
	if err := s.limiter.Check(key); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(normalizeEmail(req.Email))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if user == nil || bcrypt.ComparePassword(user.Password, req.Password) != nil {
		if ferr := s.limiter.Fail(key); ferr != nil {
			s.logger.Error("login limiter update failed", zap.Error(ferr))
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.limiter.Reset(key); err != nil {
		s.logger.Error("login limiter reset failed", zap.Error(err))
	}

	token, err := s.sessions.GenerateToken(user.ID, user.Email, user.SessionVersion)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: *user}, nil
}

// LogoutAll invalidates every session of the user.
func (s *AuthService) LogoutAll(userID uint) error {
	if _, err := s.userRepo.BumpSessionVersion(userID); err != nil {
		return notFound(err, "user")
	}
	s.auditor.Record(AuditEntry{ActorUserID: actor(userID), Action: "user.logout_all", EntityType: "user", EntityID: userID})
	return nil
}

// CurrentSessionVersion is consulted by the auth middleware on every request.
func (s *AuthService) CurrentSessionVersion(userID uint) (int, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return 0, notFound(err, "user")
	}
	return user.SessionVersion, nil
}

// ForgotPassword never reveals whether the address is registered.
func (s *AuthService) ForgotPassword(addr string) error {
	user, err := s.userRepo.GetByEmail(normalizeEmail(addr))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	token, err := s.tokens.issue(actionClaims{
		Purpose:        purposeReset,
		UserID:         user.ID,
		Email:          user.Email,
		SessionVersion: user.SessionVersion,
	}, TokenExpiryReset)
	if err != nil {
		return err
	}

	to := user.Email
	s.dispatch(func() {
		if err := s.mailer.SendPasswordResetEmail(to, token); err != nil {
			s.logger.Error("password reset email failed", zap.String("email", to), zap.Error(err))
		}
	})
	return nil
}

// ResetPassword is single use: the token carries the session version, which
// the reset itself bumps.
func (s *AuthService) ResetPassword(token, newPassword string) error {
	claims, err := s.tokens.parse(purposeReset, token)
	if err != nil {
		return err
	}
	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if user.SessionVersion != claims.SessionVersion || user.Email != claims.Email {
		return ErrInvalidToken
	}

	hashed, err := bcrypt.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{"password": hashed}); err != nil {
		return err
	}
	if _, err := s.userRepo.BumpSessionVersion(user.ID); err != nil {
		return err
	}
	s.auditor.Record(AuditEntry{ActorUserID: actor(user.ID), Action: "user.password_reset", EntityType: "user", EntityID: user.ID})
	return nil
}

func (s *AuthService) VerifyEmail(token string) error {
	claims, err := s.tokens.parse(purposeVerifyEmail, token)
	if err != nil {
		return err
	}
	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	// Adres değiştiyse eski link geçersiz
	if user.Email != claims.Email {
		return ErrInvalidToken
	}
	if user.IsVerified {
		return nil
	}
	return s.userRepo.UpdateFields(user.ID, map[string]interface{}{"is_verified": true})
}

func (s *AuthService) ResendVerification(addr string) error {
	user, err := s.userRepo.GetByEmail(normalizeEmail(addr))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !user.IsVerified {
		s.sendVerification(user)
	}
	return nil
}

func (s *AuthService) sendVerification(user *models.User) {
	token, err := s.tokens.issue(actionClaims{
		Purpose: purposeVerifyEmail,
		UserID:  user.ID,
		Email:   user.Email,
	}, TokenExpiryEmailVerify)
	if err != nil {
		s.logger.Error("verification token failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return
	}

	to, name := user.Email, user.FullName
	s.dispatch(func() {
		if err := s.mailer.SendVerificationEmail(to, name, token); err != nil {
			s.logger.Error("verification email failed", zap.String("email", to), zap.Error(err))
		}
	})
}

// SessionTTL is the cookie lifetime used by the handlers.
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessions.TTL()
}
