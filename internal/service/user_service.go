package service

import (
	"context"
	"errors"
	"time"

	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/repository"
	"github.com/sefazor/guestlens-backend/pkg/bcrypt"
	"github.com/sefazor/guestlens-backend/pkg/email"
	jwtPkg "github.com/sefazor/guestlens-backend/pkg/jwt"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserService struct {
	userRepo *repository.UserRepository
	billing  *BillingService
	mailer   email.Mailer
	sessions *jwtPkg.Manager
	tokens   *ActionTokens
	auditor  *Auditor
	dispatch Dispatcher
	logger   *zap.Logger
	now      func() time.Time
}

func NewUserService(
	userRepo *repository.UserRepository,
	billing *BillingService,
	mailer email.Mailer,
	sessions *jwtPkg.Manager,
	tokens *ActionTokens,
	auditor *Auditor,
	dispatch Dispatcher,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		billing:  billing,
		mailer:   mailer,
		sessions: sessions,
		tokens:   tokens,
		auditor:  auditor,
		dispatch: dispatch,
		logger:   logger.Named("user"),
		now:      utcNow,
	}
}

func (s *UserService) GetUserByID(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.ProfileResponse, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	resp := &models.ProfileResponse{User: *user}

	plan, features, err := s.billing.GetActivePlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	if plan != nil {
		resp.ActivePlan = &models.PlanSummary{ID: plan.ID, Slug: plan.Slug, Name: plan.Name}
		resp.Features = &features
	}
	return resp, nil
}

func (s *UserService) UpdateProfile(userID uint, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	user.FullName = req.FullName
	if err := s.userRepo.UpdateFields(userID, map[string]interface{}{"full_name": req.FullName}); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword rotates the session version, so every other session ends.
// The returned token keeps the caller signed in.
func (s *UserService) ChangePassword(userID uint, req models.ChangePasswordRequest) (string, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", err
	}
	if err := bcrypt.ComparePassword(user.Password, req.CurrentPassword); err != nil {
		return "", ErrInvalidCredentials
	}

	hashed, err := bcrypt.HashPassword(req.NewPassword)
	if err != nil {
		return "", err
	}
	if err := s.userRepo.UpdateFields(userID, map[string]interface{}{"password": hashed}); err != nil {
		return "", err
	}
	sv, err := s.userRepo.BumpSessionVersion(userID)
	if err != nil {
		return "", err
	}
	s.auditor.Record(AuditEntry{ActorUserID: actor(userID), Action: "user.password_changed", EntityType: "user", EntityID: userID})
	return s.sessions.GenerateToken(user.ID, user.Email, sv)
}

func (s *UserService) InitiateEmailChange(userID uint, req models.ChangeEmailRequest) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if err := bcrypt.ComparePassword(user.Password, req.Password); err != nil {
		return ErrInvalidCredentials
	}

	newEmail := normalizeEmail(req.NewEmail)
	exists, err := s.userRepo.EmailExists(newEmail)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmailTaken
	}

	token, err := s.tokens.issue(actionClaims{
		Purpose:  purposeEmailChange,
		UserID:   user.ID,
		Email:    user.Email,
		NewEmail: newEmail,
	}, TokenExpiryEmailChange)
	if err != nil {
		return err
	}

	s.dispatch(func() {
		if err := s.mailer.SendEmailChangeVerification(newEmail, token); err != nil {
			s.logger.Error("email change verification failed", zap.String("email", newEmail), zap.Error(err))
		}
	})
	return nil
}

// CompleteEmailChange applies a confirmed address. The link proves control of
// the new address, so it is marked verified.
func (s *UserService) CompleteEmailChange(token string) (*models.User, error) {
	claims, err := s.tokens.parse(purposeEmailChange, token)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if user.Email != claims.Email {
		return nil, ErrInvalidToken
	}

	exists, err := s.userRepo.EmailExists(claims.NewEmail)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{
		"email":       claims.NewEmail,
		"is_verified": true,
	}); err != nil {
		return nil, err
	}
	s.auditor.Record(AuditEntry{
		ActorUserID: actor(user.ID), Action: "user.email_changed", EntityType: "user", EntityID: user.ID,
		Detail: map[string]interface{}{"from": user.Email, "to": claims.NewEmail},
	})
	user.Email = claims.NewEmail
	user.IsVerified = true
	return user, nil
}

// RequestDeletion flags the account and signs it out everywhere.
func (s *UserService) RequestDeletion(userID uint) error {
	if _, err := s.GetUserByID(userID); err != nil {
		return err
	}
	if err := s.userRepo.UpdateFields(userID, map[string]interface{}{"deletion_requested_at": s.now()}); err != nil {
		return err
	}
	if _, err := s.userRepo.BumpSessionVersion(userID); err != nil {
		return err
	}
	s.auditor.Record(AuditEntry{ActorUserID: actor(userID), Action: "user.deletion_requested", EntityType: "user", EntityID: userID})
	return nil
}

func (s *UserService) CancelDeletion(userID uint) error {
	if _, err := s.GetUserByID(userID); err != nil {
		return err
	}
	if err := s.userRepo.UpdateFields(userID, map[string]interface{}{"deletion_requested_at": nil}); err != nil {
		return err
	}
	s.auditor.Record(AuditEntry{ActorUserID: actor(userID), Action: "user.deletion_canceled", EntityType: "user", EntityID: userID})
	return nil
}
