package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentStateTransition(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		from    PurchaseStatus
		to      PurchaseStatus
		changed bool
		err     error
	}{
		{PurchaseStatusPending, PurchaseStatusPaid, true, nil},
		{PurchaseStatusPending, PurchaseStatusCanceled, true, nil},
		{PurchaseStatusPaid, PurchaseStatusRefunded, true, nil},
		{PurchaseStatusPaid, PurchaseStatusPaid, false, nil},
		{PurchaseStatusRefunded, PurchaseStatusRefunded, false, nil},
		{PurchaseStatusPaid, PurchaseStatusPending, false, ErrInvalidTransition},
		{PurchaseStatusRefunded, PurchaseStatusPaid, false, ErrInvalidTransition},
		{PurchaseStatusCanceled, PurchaseStatusPaid, false, ErrInvalidTransition},
		{PurchaseStatusPending, PurchaseStatusRefunded, false, ErrInvalidTransition},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			st := PaymentState{Status: tt.from}
			changed, err := st.Transition(tt.to, "pi_1", at)
			assert.Equal(t, tt.changed, changed)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Equal(t, tt.from, st.Status)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTransitionStampsTimes(t *testing.T) {
	at := time.Now().UTC()
	st := PaymentState{Status: PurchaseStatusPending}

	_, err := st.Transition(PurchaseStatusPaid, "pi_9", at)
	require.NoError(t, err)
	require.NotNil(t, st.PaidAt)
	assert.Equal(t, "pi_9", st.StripePaymentIntentID)

	_, err = st.Transition(PurchaseStatusRefunded, "pi_other", at)
	require.NoError(t, err)
	require.NotNil(t, st.RefundedAt)
	assert.Equal(t, "pi_9", st.StripePaymentIntentID)
}

func TestEventUploadWindow(t *testing.T) {
	start := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	e := &Event{StartsAt: start, EndsAt: start.Add(6 * time.Hour)}

	assert.True(t, e.InUploadWindow(start.Add(-48*time.Hour)))

	e.IsDateLocked = true
	assert.False(t, e.InUploadWindow(start.Add(-time.Minute)))
	assert.True(t, e.InUploadWindow(start))
	assert.True(t, e.InUploadWindow(e.EndsAt.Add(23*time.Hour)))
	assert.False(t, e.InUploadWindow(e.EndsAt.Add(25*time.Hour)))
}

func TestParseFeatures(t *testing.T) {
	f, err := ParseFeatures(nil)
	require.NoError(t, err)
	assert.True(t, f.IsZero())

	f, err = ParseFeatures(MustFeatures(PlanFeatures{MaxEvents: 3, AllowVideo: true}))
	require.NoError(t, err)
	assert.Equal(t, 3, f.MaxEvents)
	assert.True(t, f.AllowVideo)

	_, err = ParseFeatures([]byte(`{"max_events":"many"}`))
	assert.Error(t, err)
}
