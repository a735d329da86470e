package service

import (
	"testing"
	"time"

	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/repository"
	"github.com/sefazor/guestlens-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func limiters(t *testing.T, clock *fakeClock) map[string]LoginLimiter {
	p := limiterPolicy{maxFailures: 5, window: 15 * time.Minute, now: clock.now}
	return map[string]LoginLimiter{
		"memory": &MemoryLoginLimiter{attempts: map[string]*models.LoginAttempt{}, policy: p},
		"db":     &DBLoginLimiter{repo: repository.NewLoginAttemptRepository(testutil.NewDB(t)), policy: p},
	}
}

func TestLoginLimiterLocksUntilWindowEnds(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	for name, l := range limiters(t, clock) {
		t.Run(name, func(t *testing.T) {
			clock.t = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
			key := LoginKey("1.2.3.4", "User@Example.com")
			assert.Equal(t, "1.2.3.4|user@example.com", key)

			for i := 0; i < 4; i++ {
				require.NoError(t, l.Fail(key))
				clock.t = clock.t.Add(time.Minute)
			}
			require.NoError(t, l.Check(key))

			require.NoError(t, l.Fail(key))
			assert.ErrorIs(t, l.Check(key), ErrTooManyAttempts)

			// kilit pencerenin sonuna kadar sürer
			clock.t = time.Date(2024, 1, 1, 10, 14, 59, 0, time.UTC)
			assert.ErrorIs(t, l.Check(key), ErrTooManyAttempts)
			clock.t = time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC)
			assert.NoError(t, l.Check(key))

			clock.t = clock.t.Add(time.Minute)
			n, err := l.Cleanup()
			require.NoError(t, err)
			assert.EqualValues(t, 1, n)
		})
	}
}

func TestLoginLimiterWindowRestartsAndResets(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	for name, l := range limiters(t, clock) {
		t.Run(name, func(t *testing.T) {
			clock.t = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
			key := LoginKey("5.6.7.8", "a@example.com")

			for i := 0; i < 4; i++ {
				require.NoError(t, l.Fail(key))
			}
			// pencere bitti, sayaç sıfırlanır
			clock.t = clock.t.Add(16 * time.Minute)
			require.NoError(t, l.Fail(key))
			require.NoError(t, l.Check(key))

			for i := 0; i < 3; i++ {
				require.NoError(t, l.Fail(key))
			}
			require.NoError(t, l.Reset(key))
			require.NoError(t, l.Fail(key))
			assert.NoError(t, l.Check(key))
		})
	}
}
