package csrf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	s := NewSigner("secret", time.Hour)
	token, err := s.Issue()
	require.NoError(t, err)

	assert.NoError(t, s.Check(token, token))
	assert.ErrorIs(t, s.Check(token, ""), ErrInvalidToken)
	assert.ErrorIs(t, s.Check("", token), ErrInvalidToken)

	other, err := s.Issue()
	require.NoError(t, err)
	assert.ErrorIs(t, s.Check(token, other), ErrInvalidToken)

	forged, err := NewSigner("another", time.Hour).Issue()
	require.NoError(t, err)
	assert.ErrorIs(t, s.Check(forged, forged), ErrInvalidToken)
}
