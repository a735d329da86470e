package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/guestlens-backend/internal/config"
	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/repository"
	"github.com/sefazor/guestlens-backend/internal/service"
	"github.com/sefazor/guestlens-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74/webhook"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func decode(t *testing.T, resp *http.Response) models.Response {
	t.Helper()
	var out models.Response
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func TestErrorEnvelope(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/quota", func(c *fiber.Ctx) error {
		return respondError(c, fmt.Errorf("upload: %w", service.ErrQuotaExceeded))
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return respondError(c, errors.New("pq: connection refused"))
	})
	app.Get("/bad/:id", func(c *fiber.Ctx) error {
		_, err := paramID(c, "id")
		return err
	})
	app.Get("/me", func(c *fiber.Ctx) error {
		_, err := currentUser(c)
		return err
	})

	cases := []struct {
		path   string
		status int
		msg    string
	}{
		{"/quota", fiber.StatusPaymentRequired, "upload: " + service.ErrQuotaExceeded.Error()},
		{"/boom", fiber.StatusInternalServerError, "Internal server error"},
		{"/bad/abc", fiber.StatusBadRequest, "Invalid id"},
		{"/me", fiber.StatusUnauthorized, "Unauthorized"},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, tc.path, nil))
		require.NoError(t, err)
		assert.Equal(t, tc.status, resp.StatusCode, tc.path)
		out := decode(t, resp)
		assert.False(t, out.Success)
		assert.Equal(t, tc.msg, out.Error, tc.path)
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, fiber.StatusNotFound, StatusFor(service.ErrNotFound))
	assert.Equal(t, fiber.StatusGone, StatusFor(service.ErrRetentionExpired))
	assert.Equal(t, fiber.StatusConflict, StatusFor(service.ErrDatesLocked))
	assert.Equal(t, fiber.StatusInternalServerError, StatusFor(errors.New("other")))
}

const webhookSecret = "whsec_test"

func webhookApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	logger := zap.NewNop()
	cfg := &config.Config{
		Stripe: config.StripeConfig{WebhookSecret: webhookSecret},
		Limits: config.LimitsConfig{FreeMaxEvents: 1, FreeMaxGuests: 10, FreeMaxStorageMB: 10},
	}
	billing := service.NewBillingService(db,
		repository.NewCatalogRepository(db),
		repository.NewPurchaseRepository(db),
		repository.NewEventRepository(db),
		repository.NewUserRepository(db),
		repository.NewWebhookEventRepository(db),
		testutil.NewFakeGateway(),
		&testutil.FakeMailer{},
		service.NewAuditor(repository.NewAuditRepository(db), logger),
		service.SyncDispatcher,
		cfg, logger)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Post("/stripe/webhook", NewPaymentHandler(billing, cfg, logger).HandleStripeWebhook)
	return app, db
}

func postWebhook(t *testing.T, app *fiber.App, payload []byte, secret string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/stripe/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	}).Header)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestStripeWebhook(t *testing.T) {
	app, db := webhookApp(t)
	user := testutil.CreateUser(t, db, "owner@guestlens.test")
	plan := testutil.CreatePlan(t, db, "pro", models.PlanFeatures{MaxEvents: 5})
	purchase := testutil.CreatePurchase(t, db, user.ID, plan.ID, "cs_hook_1", models.PurchaseStatusPending, nil)

	payload := []byte(`{
  "id": "evt_hook_1",
  "object": "event",
  "type": "checkout.session.completed",
  "data": {"object": {
    "id": "cs_hook_1",
    "object": "checkout.session",
    "payment_status": "paid",
    "payment_intent": "pi_hook_1"
  }}
}`)

	resp := postWebhook(t, app, payload, "wrong-secret")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = postWebhook(t, app, payload, webhookSecret)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var ack struct {
		Received  bool `json:"received"`
		Duplicate bool `json:"duplicate"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
	assert.True(t, ack.Received)
	assert.False(t, ack.Duplicate)

	var stored models.Purchase
	require.NoError(t, db.First(&stored, purchase.ID).Error)
	assert.Equal(t, models.PurchaseStatusPaid, stored.Status)
	assert.Equal(t, "pi_hook_1", stored.StripePaymentIntentID)

	// aynı event tekrar gelirse işlenmez
	resp = postWebhook(t, app, payload, webhookSecret)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
	assert.True(t, ack.Duplicate)
}
