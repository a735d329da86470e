package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74/webhook"
)

func sign(payload []byte, secret string, at time.Time) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: at,
	}).Header
}

const completedPayload = `{
  "id": "evt_123",
  "object": "event",
  "type": "checkout.session.completed",
  "data": {"object": {
    "id": "cs_test_1",
    "object": "checkout.session",
    "payment_status": "paid",
    "payment_intent": "pi_test_1",
    "metadata": {"purchase_kind": "plan", "user_id": "7"}
  }}
}`

func TestParseWebhookVerified(t *testing.T) {
	payload := []byte(completedPayload)
	evt, err := ParseWebhook(payload, sign(payload, "whsec_test", time.Now()), "whsec_test")
	require.NoError(t, err)

	assert.Equal(t, "evt_123", evt.ID)
	assert.Equal(t, "checkout.session.completed", evt.Type)
	assert.Equal(t, "cs_test_1", evt.SessionID)
	assert.Equal(t, "pi_test_1", evt.PaymentIntentID)
	assert.Equal(t, "paid", evt.PaymentStatus)
	assert.Equal(t, "plan", evt.Metadata["purchase_kind"])
}

func TestParseWebhookBadSignature(t *testing.T) {
	payload := []byte(completedPayload)
	_, err := ParseWebhook(payload, sign(payload, "other", time.Now()), "whsec_test")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = ParseWebhook(payload, "", "whsec_test")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	// tolerans dışı eski imza
	_, err = ParseWebhook(payload, sign(payload, "whsec_test", time.Now().Add(-time.Hour)), "whsec_test")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParseWebhookUnsigned(t *testing.T) {
	evt, err := ParseWebhook([]byte(`{"id":"evt_2","type":"charge.refunded","data":{"object":{"id":"ch_1","payment_intent":"pi_9"}}}`), "", "")
	require.NoError(t, err)
	assert.Equal(t, "pi_9", evt.PaymentIntentID)

	_, err = ParseWebhook([]byte(`{not json`), "", "")
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = ParseWebhook([]byte(`{"id":"evt_3"}`), "", "")
	assert.ErrorIs(t, err, ErrMalformedPayload)
}
