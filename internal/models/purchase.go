package models

import (
	"errors"
	"time"
)

type PurchaseStatus string

const (
	PurchaseStatusPending  PurchaseStatus = "pending"
	PurchaseStatusPaid     PurchaseStatus = "paid"
	PurchaseStatusRefunded PurchaseStatus = "refunded"
	PurchaseStatusCanceled PurchaseStatus = "canceled"
)

var ErrInvalidTransition = errors.New("invalid purchase status transition")

// CanTransitionTo reports whether s may move to next. Status only moves
// forward: pending -> paid|canceled, paid -> refunded.
func (s PurchaseStatus) CanTransitionTo(next PurchaseStatus) bool {
	switch s {
	case PurchaseStatusPending:
		return next == PurchaseStatusPaid || next == PurchaseStatusCanceled
	case PurchaseStatusPaid:
		return next == PurchaseStatusRefunded
	}
	return false
}

// PaymentState is the Stripe-facing part shared by plan and add-on purchases.
type PaymentState struct {
	Status                PurchaseStatus `json:"status" gorm:"size:20;not null;default:'pending';index"`
	AmountCents           int64          `json:"amount_cents" gorm:"not null"`
	Currency              string         `json:"currency" gorm:"size:3;not null"`
	StripeSessionID       string         `json:"stripe_session_id" gorm:"uniqueIndex;not null"`
	StripePaymentIntentID string         `json:"stripe_payment_intent_id,omitempty" gorm:"index"`
	PaidAt                *time.Time     `json:"paid_at,omitempty"`
	RefundedAt            *time.Time     `json:"refunded_at,omitempty"`
	CanceledAt            *time.Time     `json:"canceled_at,omitempty"`
}

// Transition moves the state to next. Repeating the current status is a
// no-op (changed=false); backwards or sideways moves fail.
func (p *PaymentState) Transition(next PurchaseStatus, intentID string, at time.Time) (changed bool, err error) {
	if p.Status == next {
		return false, nil
	}
	if !p.Status.CanTransitionTo(next) {
		return false, ErrInvalidTransition
	}

	p.Status = next
	switch next {
	case PurchaseStatusPaid:
		p.PaidAt = &at
	case PurchaseStatusRefunded:
		p.RefundedAt = &at
	case PurchaseStatusCanceled:
		p.CanceledAt = &at
	}
	if intentID != "" && p.StripePaymentIntentID == "" {
		p.StripePaymentIntentID = intentID
	}
	return true, nil
}

// Purchase is one checkout attempt for an EventPlan. The most recent paid row
// decides the user's current plan.
type Purchase struct {
	ID     uint       `json:"id" gorm:"primaryKey"`
	UserID uint       `json:"user_id" gorm:"not null;index"`
	PlanID uint       `json:"plan_id" gorm:"not null"`
	Plan   *EventPlan `json:"plan,omitempty" gorm:"foreignKey:PlanID"`
	PaymentState
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EventAddonPurchase is a checkout attempt for an add-on bound to one event.
type EventAddonPurchase struct {
	ID      uint          `json:"id" gorm:"primaryKey"`
	EventID uint          `json:"event_id" gorm:"not null;index"`
	UserID  uint          `json:"user_id" gorm:"not null;index"`
	AddonID uint          `json:"addon_id" gorm:"not null"`
	Addon   *AddonCatalog `json:"addon,omitempty" gorm:"foreignKey:AddonID"`
	PaymentState
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CheckoutSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type PurchaseHistoryResponse struct {
	Plans  []Purchase           `json:"plans"`
	Addons []EventAddonPurchase `json:"addons"`
}
