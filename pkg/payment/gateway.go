package payment

import (
	"context"
	"errors"
)

const ProviderStripe = "stripe"

var ErrInvalidSignature = errors.New("invalid webhook signature")
var ErrMalformedPayload = errors.New("malformed webhook payload")

type CheckoutRequest struct {
	CustomerEmail string
	Name          string
	Description   string
	AmountCents   int64
	Currency      string
	Metadata      map[string]string
}

// CheckoutSession is the provider-neutral view of a hosted checkout.
type CheckoutSession struct {
	ID              string
	URL             string
	Status          string // open | complete | expired
	PaymentStatus   string // paid | unpaid | no_payment_required
	PaymentIntentID string
}

// Gateway creates, looks up and expires hosted checkout sessions.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)
	ExpireCheckoutSession(ctx context.Context, id string) error
}

// WebhookEvent is a verified provider event reduced to what billing needs.
type WebhookEvent struct {
	ID              string
	Type            string
	SessionID       string
	PaymentIntentID string
	PaymentStatus   string
	Metadata        map[string]string
	Raw             []byte
}
