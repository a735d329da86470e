package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
)

// ParseWebhook verifies the Stripe-Signature header and normalises the event.
// An empty secret skips verification.
func ParseWebhook(payload []byte, sigHeader, secret string) (*WebhookEvent, error) {
	var event stripe.Event
	if secret != "" {
		var err error
		event, err = webhook.ConstructEventWithOptions(payload, sigHeader, secret, webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		})
		if err != nil {
			if isSignatureError(err) {
				return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
			}
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
	} else if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if event.ID == "" || event.Type == "" || event.Data == nil {
		return nil, fmt.Errorf("%w: missing id, type or data", ErrMalformedPayload)
	}

	out := &WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
		Raw:  payload,
	}

	var err error
	switch {
	case strings.HasPrefix(out.Type, "checkout.session."):
		var cs stripe.CheckoutSession
		if err = json.Unmarshal(event.Data.Raw, &cs); err == nil {
			out.SessionID = cs.ID
			out.PaymentStatus = string(cs.PaymentStatus)
			out.Metadata = cs.Metadata
			if cs.PaymentIntent != nil {
				out.PaymentIntentID = cs.PaymentIntent.ID
			}
		}
	case strings.HasPrefix(out.Type, "payment_intent."):
		var pi stripe.PaymentIntent
		if err = json.Unmarshal(event.Data.Raw, &pi); err == nil {
			out.PaymentIntentID = pi.ID
			out.Metadata = pi.Metadata
		}
	case strings.HasPrefix(out.Type, "charge."):
		var ch stripe.Charge
		if err = json.Unmarshal(event.Data.Raw, &ch); err == nil {
			out.Metadata = ch.Metadata
			if ch.PaymentIntent != nil {
				out.PaymentIntentID = ch.PaymentIntent.ID
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return out, nil
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}
