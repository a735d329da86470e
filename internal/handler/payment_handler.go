package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/guestlens-backend/internal/config"
	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/service"
	"github.com/sefazor/guestlens-backend/pkg/payment"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	billingService *service.BillingService
	webhookSecret  string
	logger         *zap.Logger
}

func NewPaymentHandler(billingService *service.BillingService, cfg *config.Config, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		billingService: billingService,
		webhookSecret:  cfg.Stripe.WebhookSecret,
		logger:         logger.Named("stripe_webhook"),
	}
}

func (h *PaymentHandler) CreatePlanCheckout(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	planID, err := paramID(c, "planId")
	if err != nil {
		return err
	}

	session, err := h.billingService.CreatePlanCheckout(c.UserContext(), userID, planID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(session, ""))
}

func (h *PaymentHandler) CreateAddonCheckout(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	eventID, err := paramID(c, "eventId")
	if err != nil {
		return err
	}
	addonID, err := paramID(c, "addonId")
	if err != nil {
		return err
	}

	session, err := h.billingService.CreateAddonCheckout(c.UserContext(), userID, eventID, addonID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(session, ""))
}

// HandleStripeWebhook answers 400 for payloads that fail verification or
// parsing and 500 when processing fails, so Stripe redelivers.
func (h *PaymentHandler) HandleStripeWebhook(c *fiber.Ctx) error {
	payload := c.Body()

	event, err := payment.ParseWebhook(payload, c.Get("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		h.logger.Warn("webhook rejected",
			zap.Bool("bad_signature", errors.Is(err, payment.ErrInvalidSignature)),
			zap.Int("payload_bytes", len(payload)),
			zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid webhook"))
	}

	duplicate, err := h.billingService.HandleWebhook(c.UserContext(), event)
	if err != nil {
		h.logger.Error("webhook processing failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Webhook processing failed"))
	}

	h.logger.Info("webhook handled",
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
		zap.Bool("duplicate", duplicate))
	return c.JSON(models.WebhookAck{Received: true, Duplicate: duplicate})
}
