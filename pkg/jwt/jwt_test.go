package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("secret", time.Hour)

	token, err := m.GenerateToken(42, "a@b.co", 3)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "a@b.co", claims.Email)
	assert.Equal(t, 3, claims.SessionVersion)
	assert.False(t, m.NeedsRefresh(claims))

	_, err = NewManager("other", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestExpiredAndRefresh(t *testing.T) {
	m := NewManager("secret", time.Hour)
	start := time.Now()
	m.now = func() time.Time { return start }

	token, err := m.GenerateToken(1, "x@y.co", 1)
	require.NoError(t, err)

	m.now = func() time.Time { return start.Add(40 * time.Minute) }
	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, m.NeedsRefresh(claims))

	m.now = func() time.Time { return start.Add(2 * time.Hour) }
	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}
