package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/repository"
	"gorm.io/gorm"
)

type ThemeService struct {
	themeRepo *repository.ThemeRepository
	eventRepo *repository.EventRepository
	events    *EventService
	auditor   *Auditor
}

func NewThemeService(themeRepo *repository.ThemeRepository, eventRepo *repository.EventRepository, events *EventService, auditor *Auditor) *ThemeService {
	return &ThemeService{themeRepo: themeRepo, eventRepo: eventRepo, events: events, auditor: auditor}
}

func (s *ThemeService) ListActive() ([]models.Theme, error) {
	return s.themeRepo.ListActive()
}

// SetEventTheme assigns an active theme; nil clears it.
func (s *ThemeService) SetEventTheme(userID, eventID uint, themeID *uint) (*models.Event, error) {
	event, err := s.events.Owned(userID, eventID)
	if err != nil {
		return nil, err
	}

	var theme *models.Theme
	if themeID != nil {
		theme, err = s.themeRepo.GetByID(*themeID)
		if err != nil {
			return nil, notFound(err, "theme")
		}
		if !theme.IsActive {
			return nil, fmt.Errorf("theme: %w", ErrNotFound)
		}
	}

	if err := s.eventRepo.UpdateFields(eventID, map[string]interface{}{"theme_id": themeID}); err != nil {
		return nil, err
	}
	event.ThemeID, event.Theme = themeID, theme
	return event, nil
}

// UpsertTheme creates the theme or replaces the one with the same slug.
func (s *ThemeService) UpsertTheme(adminID uint, req models.ThemeRequest) (*models.Theme, error) {
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	theme, err := s.themeRepo.GetBySlug(slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		theme, err = &models.Theme{Slug: slug}, nil
	}
	if err != nil {
		return nil, err
	}

	theme.Name = req.Name
	theme.PrimaryColor = strings.ToLower(req.PrimaryColor)
	theme.AccentColor = strings.ToLower(req.AccentColor)
	theme.FontFamily = req.FontFamily
	theme.IsActive = req.IsActive
	if err := s.themeRepo.Save(theme); err != nil {
		return nil, err
	}
	s.auditor.Record(AuditEntry{
		ActorUserID: actor(adminID), Action: "admin.theme_saved", EntityType: "theme", EntityID: theme.ID,
		Detail: map[string]interface{}{"slug": slug},
	})
	return theme, nil
}
