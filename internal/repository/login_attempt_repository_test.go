package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func bump(a *models.LoginAttempt) bool {
	if a.WindowStart.IsZero() {
		a.WindowStart = time.Now().UTC()
	}
	a.Failures++
	return true
}

func TestUpdateCountsFirstFailuresOnOneRow(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewLoginAttemptRepository(db)

	// başka bir instance, ilk okuma ile ekleme arasında satırı yaratır
	raced := false
	err := db.Callback().Query().After("gorm:query").Register("test:concurrent_first_failure", func(d *gorm.DB) {
		if raced || d.Statement.Table != "login_attempts" || !errors.Is(d.Error, gorm.ErrRecordNotFound) {
			return
		}
		raced = true
		other := d.Session(&gorm.Session{NewDB: true})
		other.Error = nil
		other.Create(&models.LoginAttempt{Key: "ip:1.2.3.4", Failures: 1, WindowStart: time.Now().UTC()})
	})
	require.NoError(t, err)

	require.NoError(t, repo.Update("ip:1.2.3.4", bump))
	require.True(t, raced)

	got, err := repo.Get("ip:1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Failures)
}

func TestUpdateSequentialAndReset(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewLoginAttemptRepository(db)

	require.NoError(t, repo.Update("user:a@example.com", bump))
	require.NoError(t, repo.Update("user:a@example.com", bump))
	got, err := repo.Get("user:a@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Failures)

	require.NoError(t, repo.Update("user:a@example.com", func(*models.LoginAttempt) bool { return false }))
	_, err = repo.Get("user:a@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// silinecek satır yoksa iz bırakmaz
	require.NoError(t, repo.Update("user:b@example.com", func(*models.LoginAttempt) bool { return false }))
	_, err = repo.Get("user:b@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
