package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sefazor/guestlens-backend/internal/config"
	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/repository"
	"github.com/sefazor/guestlens-backend/pkg/email"
	"github.com/sefazor/guestlens-backend/pkg/payment"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Stripe checkout session states consulted during reconciliation.
const (
	sessionComplete = "complete"
	sessionExpired  = "expired"
	paymentPaid     = "paid"
	paymentUnpaid   = "unpaid"
	paymentNoneDue  = "no_payment_required"
)

type BillingService struct {
	db           *gorm.DB
	catalogRepo  *repository.CatalogRepository
	purchaseRepo *repository.PurchaseRepository
	eventRepo    *repository.EventRepository
	userRepo     *repository.UserRepository
	webhookRepo  *repository.WebhookEventRepository
	gateway      payment.Gateway
	mailer       email.Mailer
	auditor      *Auditor
	dispatch     Dispatcher
	limits       config.LimitsConfig
	logger       *zap.Logger
	now          func() time.Time
}

func NewBillingService(
	db *gorm.DB,
	catalogRepo *repository.CatalogRepository,
	purchaseRepo *repository.PurchaseRepository,
	eventRepo *repository.EventRepository,
	userRepo *repository.UserRepository,
	webhookRepo *repository.WebhookEventRepository,
	gateway payment.Gateway,
	mailer email.Mailer,
	auditor *Auditor,
	dispatch Dispatcher,
	cfg *config.Config,
	logger *zap.Logger,
) *BillingService {
	return &BillingService{
		db:           db,
		catalogRepo:  catalogRepo,
		purchaseRepo: purchaseRepo,
		eventRepo:    eventRepo,
		userRepo:     userRepo,
		webhookRepo:  webhookRepo,
		gateway:      gateway,
		mailer:       mailer,
		auditor:      auditor,
		dispatch:     dispatch,
		limits:       cfg.Limits,
		logger:       logger.Named("billing"),
		now:          utcNow,
	}
}

func (s *BillingService) ListPlans() ([]models.EventPlan, error) {
	return s.catalogRepo.ListActivePlans()
}

func (s *BillingService) ListAddons() ([]models.AddonCatalog, error) {
	return s.catalogRepo.ListActiveAddons()
}

// GetActivePlan resolves the user's current plan: pending purchases are
// reconciled first, then the most recent paid purchase wins. A user without
// one gets (nil, empty features).
func (s *BillingService) GetActivePlan(ctx context.Context, userID uint) (*models.EventPlan, models.PlanFeatures, error) {
	if err := s.ReconcilePending(ctx, userID); err != nil {
		s.logger.Warn("reconcile before plan lookup failed", zap.Uint("user_id", userID), zap.Error(err))
	}

	p, err := s.purchaseRepo.LatestPaid(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.PlanFeatures{}, nil
	}
	if err != nil {
		return nil, models.PlanFeatures{}, err
	}
	if p.Plan == nil {
		return nil, models.PlanFeatures{}, nil
	}

	features, err := models.ParseFeatures(p.Plan.Features)
	if err != nil {
		return nil, models.PlanFeatures{}, fmt.Errorf("plan %d features: %w", p.Plan.ID, err)
	}
	return p.Plan, features, nil
}

// ReconcilePending asks Stripe about every pending purchase of the user. It
// covers webhooks that never arrived. Gateway errors are logged and skipped.
func (s *BillingService) ReconcilePending(ctx context.Context, userID uint) error {
	plans, err := s.purchaseRepo.PendingForUser(userID)
	if err != nil {
		return err
	}
	addons, err := s.purchaseRepo.PendingAddonsForUser(userID)
	if err != nil {
		return err
	}
	if len(plans) == 0 && len(addons) == 0 {
		return nil
	}

	for i := range plans {
		p := &plans[i]
		next, intent, ok := s.sessionOutcome(ctx, p.StripeSessionID)
		if !ok {
			continue
		}
		if err := s.transition(ctx, p.StripeSessionID, "", next, intent, "reconcile"); err != nil {
			s.logger.Warn("reconcile purchase failed", zap.Uint("purchase_id", p.ID), zap.Error(err))
		}
	}
	for i := range addons {
		a := &addons[i]
		next, intent, ok := s.sessionOutcome(ctx, a.StripeSessionID)
		if !ok {
			continue
		}
		if err := s.transition(ctx, a.StripeSessionID, "", next, intent, "reconcile"); err != nil {
			s.logger.Warn("reconcile addon purchase failed", zap.Uint("addon_purchase_id", a.ID), zap.Error(err))
		}
	}
	return nil
}

// ReconcileAllPending is the periodic sweep over purchases that stayed
// pending longer than olderThan.
func (s *BillingService) ReconcileAllPending(ctx context.Context, olderThan time.Duration) (int, error) {
	users, err := s.purchaseRepo.PendingUsersBefore(s.now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	for _, id := range users {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		if err := s.ReconcilePending(ctx, id); err != nil {
			s.logger.Warn("reconcile user failed", zap.Uint("user_id", id), zap.Error(err))
		}
	}
	return len(users), nil
}

func (s *BillingService) sessionOutcome(ctx context.Context, sessionID string) (models.PurchaseStatus, string, bool) {
	sess, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		s.logger.Warn("checkout session lookup failed", zap.String("session_id", sessionID), zap.Error(err))
		return "", "", false
	}
	switch {
	case sess.Status == sessionComplete && (sess.PaymentStatus == paymentPaid || sess.PaymentStatus == paymentNoneDue):
		return models.PurchaseStatusPaid, sess.PaymentIntentID, true
	case sess.Status == sessionExpired:
		return models.PurchaseStatusCanceled, "", true
	}
	return "", "", false
}

// transition applies next to the purchase identified by session or intent
// id in its own transaction.
func (s *BillingService) transition(ctx context.Context, sessionID, intentID string, next models.PurchaseStatus, newIntent, source string) error {
	var notes []paidNotice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.applyTransition(tx, sessionID, intentID, next, newIntent, source)
		notes = n
		return err
	})
	if err == nil {
		s.notifyPaid(notes)
	}
	return err
}

type paidNotice struct {
	userID      uint
	item        string
	amountCents int64
	currency    string
}

// applyTransition looks the purchase up by session id, or by payment intent
// when sessionID is empty, and moves it to next. A purchase that is unknown
// here is ignored.
func (s *BillingService) applyTransition(tx *gorm.DB, sessionID, intentID string, next models.PurchaseStatus, newIntent, source string) ([]paidNotice, error) {
	repo := s.purchaseRepo.WithTx(tx).Locked()
	now := s.now()

	var (
		plan  *models.Purchase
		addon *models.EventAddonPurchase
		err   error
	)
	if sessionID != "" {
		plan, err = repo.GetBySessionID(sessionID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			addon, err = repo.GetAddonBySessionID(sessionID)
		}
	} else {
		plan, err = repo.GetByPaymentIntent(intentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			addon, err = repo.GetAddonByPaymentIntent(intentID)
		}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Info("no purchase for payment reference",
			zap.String("session_id", sessionID), zap.String("payment_intent", intentID))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	switch {
	case plan != nil:
		from := plan.Status
		changed, err := plan.Transition(next, newIntent, now)
		if err != nil {
			return nil, fmt.Errorf("purchase %d %s -> %s: %w", plan.ID, from, next, ErrInvalidTransition)
		}
		if !changed {
			return nil, nil
		}
		saved, err := repo.SaveTransition(plan, from)
		if err != nil {
			return nil, err
		}
		if !saved {
			s.logger.Info("purchase already moved by another writer", zap.Uint("purchase_id", plan.ID))
			return nil, nil
		}
		if err := s.auditor.RecordTx(tx, AuditEntry{
			ActorUserID: actor(plan.UserID),
			Action:      "purchase.status_changed",
			EntityType:  "purchase",
			EntityID:    plan.ID,
			Detail:      map[string]interface{}{"from": from, "to": next, "source": source},
		}); err != nil {
			return nil, err
		}
		if next == models.PurchaseStatusPaid && plan.Plan != nil {
			return []paidNotice{{plan.UserID, plan.Plan.Name, plan.AmountCents, plan.Currency}}, nil
		}
	case addon != nil:
		from := addon.Status
		changed, err := addon.Transition(next, newIntent, now)
		if err != nil {
			return nil, fmt.Errorf("addon purchase %d %s -> %s: %w", addon.ID, from, next, ErrInvalidTransition)
		}
		if !changed {
			return nil, nil
		}
		saved, err := repo.SaveAddonTransition(addon, from)
		if err != nil {
			return nil, err
		}
		if !saved {
			s.logger.Info("addon purchase already moved by another writer", zap.Uint("addon_purchase_id", addon.ID))
			return nil, nil
		}
		if err := s.auditor.RecordTx(tx, AuditEntry{
			ActorUserID: actor(addon.UserID),
			Action:      "addon_purchase.status_changed",
			EntityType:  "event_addon_purchase",
			EntityID:    addon.ID,
			Detail:      map[string]interface{}{"from": from, "to": next, "source": source, "event_id": addon.EventID},
		}); err != nil {
			return nil, err
		}
		if next == models.PurchaseStatusPaid && addon.Addon != nil {
			return []paidNotice{{addon.UserID, addon.Addon.Name, addon.AmountCents, addon.Currency}}, nil
		}
	}
	return nil, nil
}

func (s *BillingService) notifyPaid(notes []paidNotice) {
	for _, n := range notes {
		user, err := s.userRepo.GetByID(n.userID)
		if err != nil {
			s.logger.Warn("purchase confirmation skipped", zap.Uint("user_id", n.userID), zap.Error(err))
			continue
		}
		to, note := user.Email, n
		s.dispatch(func() {
			if err := s.mailer.SendPurchaseConfirmation(to, note.item, note.amountCents, note.currency); err != nil {
				s.logger.Error("purchase confirmation email failed", zap.String("email", to), zap.Error(err))
			}
		})
	}
}

// HandleWebhook applies one verified Stripe event. Each provider event id is
// processed at most once; duplicate reports a redelivery of a processed event.
// A failed event keeps its row unprocessed with the error recorded, so a
// redelivery retries it.
func (s *BillingService) HandleWebhook(ctx context.Context, evt *payment.WebhookEvent) (duplicate bool, err error) {
	var (
		notes   []paidNotice
		procErr error
	)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.webhookRepo.WithTx(tx).Claim(&models.WebhookEvent{
			Provider:        payment.ProviderStripe,
			ProviderEventID: evt.ID,
			EventType:       evt.Type,
			Payload:         datatypes.JSON(evt.Raw),
		})
		if err != nil {
			return err
		}
		if row.ProcessedAt != nil {
			duplicate = true
			return nil
		}

		// savepoint: a failed dispatch rolls back its own writes only
		perr := tx.Transaction(func(inner *gorm.DB) error {
			n, err := s.dispatchWebhook(inner, evt)
			notes = n
			return err
		})
		if perr != nil {
			procErr = perr
			notes = nil
			return s.webhookRepo.WithTx(tx).MarkFailed(row.ID, perr.Error())
		}
		return s.webhookRepo.WithTx(tx).MarkProcessed(row.ID, s.now())
	})
	if err != nil {
		return false, err
	}
	if procErr != nil {
		s.logger.Error("webhook processing failed",
			zap.String("event_id", evt.ID), zap.String("type", evt.Type), zap.Error(procErr))
		return false, procErr
	}

	s.notifyPaid(notes)
	return duplicate, nil
}

// dispatchWebhook maps the event type to a status change. A change the state
// machine refuses (e.g. refund of a pending purchase) is logged, not retried.
func (s *BillingService) dispatchWebhook(tx *gorm.DB, evt *payment.WebhookEvent) ([]paidNotice, error) {
	notes, err := s.applyWebhook(tx, evt)
	if errors.Is(err, ErrInvalidTransition) {
		s.logger.Warn("webhook transition refused", zap.String("event_id", evt.ID), zap.Error(err))
		return nil, nil
	}
	return notes, err
}

func (s *BillingService) applyWebhook(tx *gorm.DB, evt *payment.WebhookEvent) ([]paidNotice, error) {
	source := "webhook:" + evt.Type
	switch evt.Type {
	case "checkout.session.completed":
		if evt.PaymentStatus == paymentUnpaid {
			// async ödeme, sonucu ayrı event ile gelir
			return nil, nil
		}
		return s.applyTransition(tx, evt.SessionID, "", models.PurchaseStatusPaid, evt.PaymentIntentID, source)
	case "checkout.session.async_payment_succeeded":
		return s.applyTransition(tx, evt.SessionID, "", models.PurchaseStatusPaid, evt.PaymentIntentID, source)
	case "payment_intent.succeeded":
		return s.applyTransition(tx, "", evt.PaymentIntentID, models.PurchaseStatusPaid, evt.PaymentIntentID, source)
	case "checkout.session.expired", "checkout.session.async_payment_failed":
		return s.applyTransition(tx, evt.SessionID, "", models.PurchaseStatusCanceled, "", source)
	case "charge.refunded":
		return s.applyTransition(tx, "", evt.PaymentIntentID, models.PurchaseStatusRefunded, "", source)
	}
	s.logger.Info("ignoring webhook event type", zap.String("type", evt.Type), zap.String("event_id", evt.ID))
	return nil, nil
}

// abandonCheckout expires a Stripe session whose pending row could not be
// written; otherwise the customer could pay a session nothing here tracks.
func (s *BillingService) abandonCheckout(ctx context.Context, sessionID string, cause error) {
	s.logger.Error("pending purchase insert failed, expiring checkout session",
		zap.String("session_id", sessionID), zap.Error(cause))
	if err := s.gateway.ExpireCheckoutSession(context.WithoutCancel(ctx), sessionID); err != nil {
		s.logger.Error("checkout session left open", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (s *BillingService) CreatePlanCheckout(ctx context.Context, userID, planID uint) (*models.CheckoutSessionResponse, error) {
	plan, err := s.catalogRepo.GetPlan(planID)
	if err != nil {
		return nil, notFound(err, "plan")
	}
	if !plan.IsActive {
		return nil, fmt.Errorf("plan: %w", ErrNotFound)
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, notFound(err, "user")
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		CustomerEmail: user.Email,
		Name:          plan.Name,
		Description:   plan.Description,
		AmountCents:   plan.PriceCents,
		Currency:      plan.Currency,
		Metadata: map[string]string{
			"purchase_kind": "plan",
			"user_id":       strconv.FormatUint(uint64(userID), 10),
			"plan_id":       strconv.FormatUint(uint64(plan.ID), 10),
		},
	})
	if err != nil {
		s.logger.Error("plan checkout failed", zap.Uint("plan_id", plan.ID), zap.Error(err))
		return nil, ErrPaymentUnavailable
	}

	purchase := &models.Purchase{
		UserID: userID,
		PlanID: plan.ID,
		PaymentState: models.PaymentState{
			Status:          models.PurchaseStatusPending,
			AmountCents:     plan.PriceCents,
			Currency:        plan.Currency,
			StripeSessionID: sess.ID,
		},
	}
	if err := s.purchaseRepo.Create(purchase); err != nil {
		s.abandonCheckout(ctx, sess.ID, err)
		return nil, err
	}
	s.auditor.Record(AuditEntry{
		ActorUserID: actor(userID), Action: "purchase.checkout_created", EntityType: "purchase", EntityID: purchase.ID,
		Detail: map[string]interface{}{"plan_id": plan.ID, "session_id": sess.ID},
	})
	return &models.CheckoutSessionResponse{ID: sess.ID, URL: sess.URL}, nil
}

func (s *BillingService) CreateAddonCheckout(ctx context.Context, userID, eventID, addonID uint) (*models.CheckoutSessionResponse, error) {
	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		return nil, notFound(err, "event")
	}
	if event.UserID != userID {
		return nil, ErrForbidden
	}
	addon, err := s.catalogRepo.GetAddon(addonID)
	if err != nil {
		return nil, notFound(err, "addon")
	}
	if !addon.IsActive {
		return nil, fmt.Errorf("addon: %w", ErrNotFound)
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, notFound(err, "user")
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		CustomerEmail: user.Email,
		Name:          addon.Name + " - " + event.Title,
		Description:   addon.Description,
		AmountCents:   addon.PriceCents,
		Currency:      addon.Currency,
		Metadata: map[string]string{
			"purchase_kind": "addon",
			"user_id":       strconv.FormatUint(uint64(userID), 10),
			"addon_id":      strconv.FormatUint(uint64(addon.ID), 10),
			"event_id":      strconv.FormatUint(uint64(event.ID), 10),
		},
	})
	if err != nil {
		s.logger.Error("addon checkout failed", zap.Uint("addon_id", addon.ID), zap.Error(err))
		return nil, ErrPaymentUnavailable
	}

	purchase := &models.EventAddonPurchase{
		EventID: event.ID,
		UserID:  userID,
		AddonID: addon.ID,
		PaymentState: models.PaymentState{
			Status:          models.PurchaseStatusPending,
			AmountCents:     addon.PriceCents,
			Currency:        addon.Currency,
			StripeSessionID: sess.ID,
		},
	}
	if err := s.purchaseRepo.CreateAddon(purchase); err != nil {
		s.abandonCheckout(ctx, sess.ID, err)
		return nil, err
	}
	s.auditor.Record(AuditEntry{
		ActorUserID: actor(userID), Action: "addon_purchase.checkout_created", EntityType: "event_addon_purchase", EntityID: purchase.ID,
		Detail: map[string]interface{}{"addon_id": addon.ID, "event_id": event.ID, "session_id": sess.ID},
	})
	return &models.CheckoutSessionResponse{ID: sess.ID, URL: sess.URL}, nil
}

func (s *BillingService) PurchaseHistory(userID uint) (*models.PurchaseHistoryResponse, error) {
	plans, err := s.purchaseRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	addons, err := s.purchaseRepo.ListAddonsByUser(userID)
	if err != nil {
		return nil, err
	}
	return &models.PurchaseHistoryResponse{Plans: plans, Addons: addons}, nil
}
