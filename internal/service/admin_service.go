package service

import (
	"context"

	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/repository"
	"github.com/sefazor/guestlens-backend/pkg/utils"
)

const maxLogRows = 200

type AdminService struct {
	userRepo    *repository.UserRepository
	eventRepo   *repository.EventRepository
	catalogRepo *repository.CatalogRepository
	auditRepo   *repository.AuditRepository
	errorRepo   *repository.ErrorLogRepository
	gallery     *GalleryService
	auditor     *Auditor
}

func NewAdminService(
	userRepo *repository.UserRepository,
	eventRepo *repository.EventRepository,
	catalogRepo *repository.CatalogRepository,
	auditRepo *repository.AuditRepository,
	errorRepo *repository.ErrorLogRepository,
	gallery *GalleryService,
	auditor *Auditor,
) *AdminService {
	return &AdminService{
		userRepo:    userRepo,
		eventRepo:   eventRepo,
		catalogRepo: catalogRepo,
		auditRepo:   auditRepo,
		errorRepo:   errorRepo,
		gallery:     gallery,
		auditor:     auditor,
	}
}

type UserPage struct {
	Items   []models.User `json:"items"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
	Total   int64         `json:"total"`
}

func (s *AdminService) ListUsers(page, perPage int) (*UserPage, error) {
	page, perPage = utils.ClampPage(page, perPage)
	users, total, err := s.userRepo.List(utils.Offset(page, perPage), perPage)
	if err != nil {
		return nil, err
	}
	return &UserPage{Items: users, Page: page, PerPage: perPage, Total: total}, nil
}

// SetEventStorage overrides the event's storage cap; nil returns it to the
// plan-derived value.
func (s *AdminService) SetEventStorage(adminID, eventID uint, storageMB *int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		return nil, notFound(err, "event")
	}
	if err := s.eventRepo.UpdateFields(eventID, map[string]interface{}{"custom_storage_mb": storageMB}); err != nil {
		return nil, err
	}
	event.CustomStorageMB = storageMB
	s.auditor.Record(AuditEntry{
		ActorUserID: actor(adminID), Action: "admin.event_storage_set", EntityType: "event", EntityID: eventID,
		Detail: map[string]interface{}{"storage_mb": storageMB},
	})
	return event, nil
}

func (s *AdminService) UpdatePlan(adminID, planID uint, req models.UpdateCatalogRequest) (*models.EventPlan, error) {
	plan, err := s.catalogRepo.GetPlan(planID)
	if err != nil {
		return nil, notFound(err, "plan")
	}
	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.PriceCents != nil {
		plan.PriceCents = *req.PriceCents
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}
	if req.Features != nil {
		plan.Features = models.MustFeatures(*req.Features)
	}
	if err := s.catalogRepo.SavePlan(plan); err != nil {
		return nil, err
	}
	s.auditor.Record(AuditEntry{
		ActorUserID: actor(adminID), Action: "admin.plan_updated", EntityType: "event_plan", EntityID: planID,
		Detail: map[string]interface{}{"request": req},
	})
	return plan, nil
}

func (s *AdminService) UpdateAddon(adminID, addonID uint, req models.UpdateCatalogRequest) (*models.AddonCatalog, error) {
	addon, err := s.catalogRepo.GetAddon(addonID)
	if err != nil {
		return nil, notFound(err, "addon")
	}
	if req.Name != nil {
		addon.Name = *req.Name
	}
	if req.PriceCents != nil {
		addon.PriceCents = *req.PriceCents
	}
	if req.IsActive != nil {
		addon.IsActive = *req.IsActive
	}
	if req.Features != nil {
		addon.Features = models.MustFeatures(*req.Features)
	}
	if err := s.catalogRepo.SaveAddon(addon); err != nil {
		return nil, err
	}
	s.auditor.Record(AuditEntry{
		ActorUserID: actor(adminID), Action: "admin.addon_updated", EntityType: "addon_catalog", EntityID: addonID,
		Detail: map[string]interface{}{"request": req},
	})
	return addon, nil
}

func (s *AdminService) RebuildGalleryOrder(ctx context.Context, adminID, eventID uint) error {
	if _, err := s.eventRepo.GetByID(eventID); err != nil {
		return notFound(err, "event")
	}
	if err := s.gallery.RebuildEventGalleryOrder(ctx, eventID); err != nil {
		return err
	}
	s.auditor.Record(AuditEntry{ActorUserID: actor(adminID), Action: "admin.gallery_rebuilt", EntityType: "event", EntityID: eventID})
	return nil
}

func (s *AdminService) ErrorLogs(limit int) ([]models.AppErrorLog, error) {
	return s.errorRepo.ListRecent(clampLimit(limit))
}

func (s *AdminService) AuditLogs(limit int) ([]models.AuditLog, error) {
	return s.auditRepo.ListRecent(clampLimit(limit))
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxLogRows {
		return maxLogRows
	}
	return limit
}
