package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBilling struct {
	olderThan time.Duration
	err       error
}

func (f *fakeBilling) ReconcileAllPending(_ context.Context, olderThan time.Duration) (int, error) {
	f.olderThan = olderThan
	return 2, f.err
}

type fakeAttempts struct{ calls int }

func (f *fakeAttempts) Cleanup() (int64, error) {
	f.calls++
	return 3, nil
}

type fakeErrorLogs struct{ before time.Time }

func (f *fakeErrorLogs) DeleteOlderThan(t time.Time) (int64, error) {
	f.before = t
	return 1, nil
}

func TestJobsCallTheirTargets(t *testing.T) {
	billing, attempts, logs := &fakeBilling{}, &fakeAttempts{}, &fakeErrorLogs{}
	s := NewScheduler(billing, attempts, logs, zap.NewNop())
	now := time.Date(2024, 5, 31, 3, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.ReconcilePurchases()
	assert.Equal(t, 5*time.Minute, billing.olderThan)

	s.CleanupLoginAttempts()
	assert.Equal(t, 1, attempts.calls)

	s.PurgeErrorLogs()
	assert.Equal(t, time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC), logs.before)

	// hata sadece loglanır
	billing.err = errors.New("stripe down")
	assert.NotPanics(t, s.ReconcilePurchases)
}

func TestSchedulerStartsAndStops(t *testing.T) {
	s := NewScheduler(&fakeBilling{}, &fakeAttempts{}, &fakeErrorLogs{}, zap.NewNop())
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 3)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
