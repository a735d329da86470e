package service

import (
	"context"

	"github.com/sefazor/guestlens-backend/internal/models"
	"go.uber.org/zap"
)

// Entitlements are the limits in force for a user: the active plan's
// features, with the configured free tier filling any zero value.
type Entitlements struct {
	Plan         *models.EventPlan
	Features     models.PlanFeatures
	MaxEvents    int
	MaxGuests    int
	MaxStorageMB int
	AllowVideo   bool
}

func (s *BillingService) Entitlements(ctx context.Context, userID uint) (Entitlements, error) {
	plan, f, err := s.GetActivePlan(ctx, userID)
	if err != nil {
		return Entitlements{}, err
	}
	return Entitlements{
		Plan:         plan,
		Features:     f,
		MaxEvents:    orDefault(f.MaxEvents, s.limits.FreeMaxEvents),
		MaxGuests:    orDefault(f.MaxGuests, s.limits.FreeMaxGuests),
		MaxStorageMB: orDefault(f.MaxStorageMB, s.limits.FreeMaxStorageMB),
		AllowVideo:   f.AllowVideo,
	}, nil
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// addonExtras sums the extras granted by the event's paid add-ons.
func (s *BillingService) addonExtras(eventID uint) (storageMB, guests int, err error) {
	addons, err := s.purchaseRepo.PaidAddonsForEvent(eventID)
	if err != nil {
		return 0, 0, err
	}
	for _, a := range addons {
		if a.Addon == nil {
			continue
		}
		f, err := models.ParseFeatures(a.Addon.Features)
		if err != nil {
			s.logger.Warn("bad addon features", zap.Uint("addon_id", a.AddonID), zap.Error(err))
			continue
		}
		storageMB += f.ExtraStorageMB
		guests += f.ExtraGuests
	}
	return storageMB, guests, nil
}

// EffectiveStorageCapMB is the admin override when set, otherwise the owner's
// plan cap plus the event's paid storage add-ons.
func (s *BillingService) EffectiveStorageCapMB(ctx context.Context, event *models.Event) (int, error) {
	if event.CustomStorageMB != nil {
		return *event.CustomStorageMB, nil
	}
	ent, err := s.Entitlements(ctx, event.UserID)
	if err != nil {
		return 0, err
	}
	extra, _, err := s.addonExtras(event.ID)
	if err != nil {
		return 0, err
	}
	return ent.MaxStorageMB + extra, nil
}

// GuestCap is the number of guest sessions an event may open.
func (s *BillingService) GuestCap(ctx context.Context, event *models.Event) (int, error) {
	ent, err := s.Entitlements(ctx, event.UserID)
	if err != nil {
		return 0, err
	}
	_, extra, err := s.addonExtras(event.ID)
	if err != nil {
		return 0, err
	}
	return ent.MaxGuests + extra, nil
}
