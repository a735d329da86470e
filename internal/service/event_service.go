package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/repository"
	"github.com/sefazor/guestlens-backend/pkg/bcrypt"
	"github.com/sefazor/guestlens-backend/pkg/qrcode"
	"github.com/sefazor/guestlens-backend/pkg/utils"
	"go.uber.org/zap"
)

const maxCodeAttempts = 5

type EventService struct {
	eventRepo *repository.EventRepository
	billing   *BillingService
	qr        *qrcode.QRService
	auditor   *Auditor
	logger    *zap.Logger
	newCode   func() string
}

func NewEventService(
	eventRepo *repository.EventRepository,
	billing *BillingService,
	qr *qrcode.QRService,
	auditor *Auditor,
	logger *zap.Logger,
) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		billing:   billing,
		qr:        qr,
		auditor:   auditor,
		logger:    logger.Named("event"),
		newCode:   utils.GenerateEventCode,
	}
}

func (s *EventService) uniqueCode() (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := s.newCode()
		exists, err := s.eventRepo.CodeExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique event code after %d attempts", maxCodeAttempts)
}

func (s *EventService) CreateEvent(ctx context.Context, userID uint, req models.EventRequest) (*models.Event, error) {
	if req.EndsAt.Before(req.StartsAt) {
		return nil, fmt.Errorf("ends_at before starts_at: %w", ErrInvalidInput)
	}

	ent, err := s.billing.Entitlements(ctx, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.eventRepo.CountByUser(userID)
	if err != nil {
		return nil, err
	}
	if count >= int64(ent.MaxEvents) {
		return nil, fmt.Errorf("%w: at most %d events", ErrPlanLimit, ent.MaxEvents)
	}

	code, err := s.uniqueCode()
	if err != nil {
		return nil, err
	}

	event := &models.Event{
		UserID:            userID,
		Title:             strings.TrimSpace(req.Title),
		Description:       req.Description,
		Location:          req.Location,
		Code:              code,
		AllowGuestUploads: req.AllowGuestUploads,
		StartsAt:          req.StartsAt.UTC(),
		EndsAt:            req.EndsAt.UTC(),
	}
	if req.Password != "" {
		hashed, err := bcrypt.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		event.PasswordHash = hashed
	}

	created, err := s.eventRepo.Create(event)
	if err != nil {
		return nil, err
	}
	s.auditor.Record(AuditEntry{ActorUserID: actor(userID), Action: "event.created", EntityType: "event", EntityID: created.ID})
	return created, nil
}

// Owned loads an event and checks that userID owns it.
func (s *EventService) Owned(userID, eventID uint) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		return nil, notFound(err, "event")
	}
	if event.UserID != userID {
		return nil, ErrForbidden
	}
	return event, nil
}

func (s *EventService) GetUserEvents(userID uint) ([]models.Event, error) {
	return s.eventRepo.GetUserEvents(userID)
}

// UpdateEvent applies the set fields. Dates cannot move once locked.
func (s *EventService) UpdateEvent(userID, eventID uint, req models.UpdateEventRequest) (*models.Event, error) {
	event, err := s.Owned(userID, eventID)
	if err != nil {
		return nil, err
	}

	if req.StartsAt != nil || req.EndsAt != nil {
		starts, ends := event.StartsAt, event.EndsAt
		if req.StartsAt != nil {
			starts = req.StartsAt.UTC()
		}
		if req.EndsAt != nil {
			ends = req.EndsAt.UTC()
		}
		if event.IsDateLocked && (!starts.Equal(event.StartsAt) || !ends.Equal(event.EndsAt)) {
			return nil, ErrDatesLocked
		}
		if ends.Before(starts) {
			return nil, fmt.Errorf("ends_at before starts_at: %w", ErrInvalidInput)
		}
		event.StartsAt, event.EndsAt = starts, ends
	}
	if req.Title != nil {
		event.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.AllowGuestUploads != nil {
		event.AllowGuestUploads = *req.AllowGuestUploads
	}

	if err := s.eventRepo.Update(event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) DeleteEvent(userID, eventID uint) error {
	if _, err := s.Owned(userID, eventID); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(eventID); err != nil {
		return err
	}
	s.auditor.Record(AuditEntry{ActorUserID: actor(userID), Action: "event.deleted", EntityType: "event", EntityID: eventID})
	return nil
}

func (s *EventService) SetPublished(userID, eventID uint, published bool) (*models.Event, error) {
	event, err := s.Owned(userID, eventID)
	if err != nil {
		return nil, err
	}
	if event.Published == published {
		return event, nil
	}
	if err := s.eventRepo.UpdateFields(eventID, map[string]interface{}{"published": published}); err != nil {
		return nil, err
	}
	event.Published = published

	action := "event.unpublished"
	if published {
		action = "event.published"
	}
	s.auditor.Record(AuditEntry{ActorUserID: actor(userID), Action: action, EntityType: "event", EntityID: eventID})
	return event, nil
}

// LockDates freezes StartsAt/EndsAt and enables the guest upload window.
// There is no unlock.
func (s *EventService) LockDates(userID, eventID uint) (*models.Event, error) {
	event, err := s.Owned(userID, eventID)
	if err != nil {
		return nil, err
	}
	if event.IsDateLocked {
		return event, nil
	}
	if err := s.eventRepo.UpdateFields(eventID, map[string]interface{}{"is_date_locked": true}); err != nil {
		return nil, err
	}
	event.IsDateLocked = true
	s.auditor.Record(AuditEntry{ActorUserID: actor(userID), Action: "event.dates_locked", EntityType: "event", EntityID: eventID})
	return event, nil
}

// SetPassword sets the guest gate password; an empty password removes it.
func (s *EventService) SetPassword(userID, eventID uint, password string) (*models.Event, error) {
	event, err := s.Owned(userID, eventID)
	if err != nil {
		return nil, err
	}
	hashed := ""
	if password != "" {
		if hashed, err = bcrypt.HashPassword(password); err != nil {
			return nil, err
		}
	}
	if err := s.eventRepo.UpdateFields(eventID, map[string]interface{}{"password_hash": hashed}); err != nil {
		return nil, err
	}
	event.PasswordHash = hashed
	s.auditor.Record(AuditEntry{
		ActorUserID: actor(userID), Action: "event.password_changed", EntityType: "event", EntityID: eventID,
		Detail: map[string]interface{}{"has_password": hashed != ""},
	})
	return event, nil
}

// RegenerateCode issues a new public code; the old link and QR stop working.
func (s *EventService) RegenerateCode(userID, eventID uint) (*models.Event, error) {
	event, err := s.Owned(userID, eventID)
	if err != nil {
		return nil, err
	}
	code, err := s.uniqueCode()
	if err != nil {
		return nil, err
	}
	if err := s.eventRepo.UpdateFields(eventID, map[string]interface{}{"code": code}); err != nil {
		return nil, err
	}
	s.auditor.Record(AuditEntry{
		ActorUserID: actor(userID), Action: "event.code_regenerated", EntityType: "event", EntityID: eventID,
		Detail: map[string]interface{}{"old": event.Code, "new": code},
	})
	event.Code = code
	return event, nil
}

func (s *EventService) QRCode(userID, eventID uint, size int) ([]byte, error) {
	event, err := s.Owned(userID, eventID)
	if err != nil {
		return nil, err
	}
	return s.qr.GenerateQRCode(event.Code, size)
}

// GetPublicEvent resolves a code for guests. Unpublished events look missing.
func (s *EventService) GetPublicEvent(code string) (*models.Event, error) {
	event, err := s.eventRepo.GetByCode(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, notFound(err, "event")
	}
	if !event.Published {
		return nil, fmt.Errorf("event: %w", ErrNotFound)
	}
	return event, nil
}

// uploadOpenForGuests reports whether a guest may upload to event at t.
func uploadOpenForGuests(event *models.Event, t time.Time) error {
	if !event.Published {
		return ErrEventNotPublished
	}
	if !event.AllowGuestUploads || !event.InUploadWindow(t) {
		return ErrEventClosed
	}
	return nil
}
