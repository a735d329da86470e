package service

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sefazor/guestlens-backend/internal/config"
	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/repository"
	"gorm.io/gorm"
)

// LoginLimiter counts failed logins per key. Once MaxFailures are reached
// inside one window the key stays locked until that window ends.
type LoginLimiter interface {
	// Check returns ErrTooManyAttempts while key is locked.
	Check(key string) error
	Fail(key string) error
	Reset(key string) error
	// Cleanup drops entries whose window and lock have both passed.
	Cleanup() (int64, error)
}

func LoginKey(ip, email string) string {
	return ip + "|" + strings.ToLower(strings.TrimSpace(email))
}

type limiterPolicy struct {
	maxFailures int
	window      time.Duration
	now         func() time.Time
}

func (p limiterPolicy) locked(a *models.LoginAttempt) bool {
	return a.LockedUntil != nil && p.now().Before(*a.LockedUntil)
}

// fail records one failure on a. The window restarts once it has elapsed.
func (p limiterPolicy) fail(a *models.LoginAttempt) {
	now := p.now()
	if a.WindowStart.IsZero() || !now.Before(a.WindowStart.Add(p.window)) {
		a.WindowStart = now
		a.Failures = 0
		a.LockedUntil = nil
	}
	a.Failures++
	if a.Failures >= p.maxFailures {
		until := a.WindowStart.Add(p.window)
		a.LockedUntil = &until
	}
}

func (p limiterPolicy) stale(a *models.LoginAttempt) bool {
	now := p.now()
	return !now.Before(a.WindowStart.Add(p.window)) && !p.locked(a)
}

func NewLoginLimiter(cfg *config.Config, repo *repository.LoginAttemptRepository) LoginLimiter {
	p := limiterPolicy{
		maxFailures: cfg.Auth.MaxFailures,
		window:      cfg.Auth.LockWindow,
		now:         func() time.Time { return time.Now().UTC() },
	}
	if p.maxFailures <= 0 {
		p.maxFailures = 5
	}
	if p.window <= 0 {
		p.window = 15 * time.Minute
	}
	if cfg.Auth.LoginLimiter == "db" {
		return &DBLoginLimiter{repo: repo, policy: p}
	}
	return &MemoryLoginLimiter{attempts: map[string]*models.LoginAttempt{}, policy: p}
}

// MemoryLoginLimiter is the single-instance limiter.
type MemoryLoginLimiter struct {
	mu       sync.Mutex
	attempts map[string]*models.LoginAttempt
	policy   limiterPolicy
}

func (m *MemoryLoginLimiter) Check(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.attempts[key]; ok && m.policy.locked(a) {
		return ErrTooManyAttempts
	}
	return nil
}

func (m *MemoryLoginLimiter) Fail(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[key]
	if !ok {
		a = &models.LoginAttempt{Key: key}
		m.attempts[key] = a
	}
	m.policy.fail(a)
	return nil
}

func (m *MemoryLoginLimiter) Reset(key string) error {
	m.mu.Lock()
	delete(m.attempts, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryLoginLimiter) Cleanup() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, a := range m.attempts {
		if m.policy.stale(a) {
			delete(m.attempts, k)
			n++
		}
	}
	return n, nil
}

// DBLoginLimiter shares counters between instances through login_attempts.
// Each update runs under SELECT ... FOR UPDATE.
type DBLoginLimiter struct {
	repo   *repository.LoginAttemptRepository
	policy limiterPolicy
}

func (d *DBLoginLimiter) Check(key string) error {
	a, err := d.repo.Get(key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if d.policy.locked(a) {
		return ErrTooManyAttempts
	}
	return nil
}

func (d *DBLoginLimiter) Fail(key string) error {
	return d.repo.Update(key, func(a *models.LoginAttempt) bool {
		d.policy.fail(a)
		return true
	})
}

func (d *DBLoginLimiter) Reset(key string) error {
	return d.repo.Update(key, func(*models.LoginAttempt) bool { return false })
}

func (d *DBLoginLimiter) Cleanup() (int64, error) {
	return d.repo.DeleteStale(d.policy.now(), d.policy.window)
}
