// Package jobs runs periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	ReconcileSchedule = "@every 15m"
	LimiterSchedule   = "@hourly"
	ErrorLogSchedule  = "@daily"
	reconcileAge      = 5 * time.Minute
	errorLogKeep      = 30 * 24 * time.Hour
	reconcileTimeout  = 4 * time.Minute
)

// PendingReconciler is satisfied by service.BillingService.
type PendingReconciler interface {
	ReconcileAllPending(ctx context.Context, olderThan time.Duration) (int, error)
}

// AttemptCleaner is satisfied by service.LoginLimiter.
type AttemptCleaner interface {
	Cleanup() (int64, error)
}

// ErrorLogPurger is satisfied by repository.ErrorLogRepository.
type ErrorLogPurger interface {
	DeleteOlderThan(t time.Time) (int64, error)
}

type Scheduler struct {
	cron      *cron.Cron
	billing   PendingReconciler
	attempts  AttemptCleaner
	errorLogs ErrorLogPurger
	logger    *zap.Logger
	now       func() time.Time
}

func NewScheduler(billing PendingReconciler, attempts AttemptCleaner, errorLogs ErrorLogPurger, logger *zap.Logger) *Scheduler {
	logger = logger.Named("jobs")
	adapter := cronLogger{logger.Sugar()}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC), cron.WithChain(
			cron.Recover(adapter),
			cron.SkipIfStillRunning(adapter),
		)),
		billing:   billing,
		attempts:  attempts,
		errorLogs: errorLogs,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	jobs := []struct {
		when string
		fn   func()
	}{
		{ReconcileSchedule, s.ReconcilePurchases},
		{LimiterSchedule, s.CleanupLoginAttempts},
		{ErrorLogSchedule, s.PurgeErrorLogs},
	}
	for _, j := range jobs {
		if _, err := s.cron.AddFunc(j.when, j.fn); err != nil {
			return err
		}
	}
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(jobs)))
	return nil
}

// Stop waits for running jobs up to the context deadline.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}

// ReconcilePurchases settles purchases whose webhook never arrived.
func (s *Scheduler) ReconcilePurchases() {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	n, err := s.billing.ReconcileAllPending(ctx, reconcileAge)
	if err != nil {
		s.logger.Error("reconcile pending purchases failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("reconciled pending purchases", zap.Int("checked", n))
	}
}

func (s *Scheduler) CleanupLoginAttempts() {
	n, err := s.attempts.Cleanup()
	if err != nil {
		s.logger.Error("login attempt cleanup failed", zap.Error(err))
		return
	}
	s.logger.Debug("login attempts cleaned", zap.Int64("deleted", n))
}

func (s *Scheduler) PurgeErrorLogs() {
	n, err := s.errorLogs.DeleteOlderThan(s.now().Add(-errorLogKeep))
	if err != nil {
		s.logger.Error("error log purge failed", zap.Error(err))
		return
	}
	s.logger.Info("error logs purged", zap.Int64("deleted", n))
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
