package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/repository"
	"github.com/sefazor/guestlens-backend/pkg/bcrypt"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type GuestService struct {
	guestRepo *repository.GuestSessionRepository
	events    *EventService
	billing   *BillingService
	captcha   CaptchaVerifier
	logger    *zap.Logger
	now       func() time.Time
}

func NewGuestService(
	guestRepo *repository.GuestSessionRepository,
	events *EventService,
	billing *BillingService,
	captcha CaptchaVerifier,
	logger *zap.Logger,
) *GuestService {
	return &GuestService{
		guestRepo: guestRepo,
		events:    events,
		billing:   billing,
		captcha:   captcha,
		logger:    logger.Named("guest"),
		now:       utcNow,
	}
}

// EnterInput is one attempt to pass an event gate.
type EnterInput struct {
	Code          string
	Password      string
	DisplayName   string
	CaptchaToken  string
	ExistingToken string
	IP            string
	UserAgent     string
}

// Enter lets a guest into a published event. A still-valid session for the
// same event is reused without asking for the password again.
func (s *GuestService) Enter(ctx context.Context, in EnterInput) (*models.GuestSession, *models.Event, error) {
	event, err := s.events.GetPublicEvent(in.Code)
	if err != nil {
		return nil, nil, err
	}

	if in.ExistingToken != "" {
		sess, err := s.guestRepo.GetByToken(in.ExistingToken)
		if err == nil && sess.EventID == event.ID {
			s.touch(sess)
			return sess, event, nil
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, err
		}
	}

	ok, err := s.captcha.VerifyTurnstile(ctx, in.CaptchaToken, in.IP)
	if err != nil || !ok {
		return nil, nil, ErrCaptchaFailed
	}

	if event.HasPassword() {
		if err := bcrypt.ComparePassword(event.PasswordHash, in.Password); err != nil {
			return nil, nil, ErrWrongPassword
		}
	}

	limit, err := s.billing.GuestCap(ctx, event)
	if err != nil {
		return nil, nil, err
	}
	count, err := s.guestRepo.CountByEvent(event.ID)
	if err != nil {
		return nil, nil, err
	}
	if count >= int64(limit) {
		return nil, nil, fmt.Errorf("%w: event is full (%d guests)", ErrPlanLimit, limit)
	}

	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		name = "Guest"
	}
	sess := &models.GuestSession{
		EventID:     event.ID,
		Token:       uuid.NewString(),
		DisplayName: name,
		IPAddress:   in.IP,
		UserAgent:   in.UserAgent,
		LastSeenAt:  s.now(),
	}
	if err := s.guestRepo.Create(sess); err != nil {
		return nil, nil, err
	}
	return sess, event, nil
}

// Resolve loads the guest session behind a cookie value.
func (s *GuestService) Resolve(token string) (*models.GuestSession, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	sess, err := s.guestRepo.GetByToken(token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	s.touch(sess)
	return sess, nil
}

func (s *GuestService) touch(sess *models.GuestSession) {
	now := s.now()
	if err := s.guestRepo.Touch(sess.ID, now); err != nil {
		s.logger.Warn("guest touch failed", zap.Uint("guest_session_id", sess.ID), zap.Error(err))
		return
	}
	sess.LastSeenAt = now
}
