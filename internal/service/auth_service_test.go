package service

import (
	"context"
	"testing"

	"github.com/sefazor/guestlens-backend/internal/models"
	"github.com/sefazor/guestlens-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, h *harness, email string) *models.AuthResponse {
	t.Helper()
	resp, err := h.auth.Register(context.Background(), models.RegisterRequest{
		FullName: "Ada Lovelace",
		Email:    email,
		Password: "s3cret-password",
	}, "10.0.0.1")
	require.NoError(t, err)
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	h := newHarness(t)
	resp := register(t, h, " Ada@Example.com ")

	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.False(t, resp.User.IsVerified)
	claims, err := h.sessions.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, 1, claims.SessionVersion)

	_, ok := h.mailer.Last("verify")
	assert.True(t, ok)

	_, err = h.auth.Register(context.Background(), models.RegisterRequest{FullName: "X", Email: "ada@example.com", Password: "another-pass"}, "")
	assert.ErrorIs(t, err, ErrEmailTaken)

	login, err := h.auth.Login(models.LoginRequest{Email: "ADA@example.com", Password: "s3cret-password"}, "10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)

	_, err = h.auth.Login(models.LoginRequest{Email: "ada@example.com", Password: "wrong"}, "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = h.auth.Login(models.LoginRequest{Email: "nobody@example.com", Password: "wrong"}, "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterRejectsFailedCaptcha(t *testing.T) {
	h := newHarness(t)
	h.auth.captcha = testutil.StaticCaptcha{OK: false}

	_, err := h.auth.Register(context.Background(), models.RegisterRequest{FullName: "A", Email: "a@example.com", Password: "password123"}, "")
	assert.ErrorIs(t, err, ErrCaptchaFailed)
	exists, err := h.repos.users.EmailExists("a@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLoginLockout(t *testing.T) {
	h := newHarness(t)
	register(t, h, "ada@example.com")

	for i := 0; i < 5; i++ {
		_, err := h.auth.Login(models.LoginRequest{Email: "ada@example.com", Password: "nope"}, "10.0.0.9")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err := h.auth.Login(models.LoginRequest{Email: "ada@example.com", Password: "s3cret-password"}, "10.0.0.9")
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	// farklı IP ayrı anahtar
	_, err = h.auth.Login(models.LoginRequest{Email: "ada@example.com", Password: "s3cret-password"}, "10.0.0.10")
	assert.NoError(t, err)
}

func TestPasswordResetIsSingleUse(t *testing.T) {
	h := newHarness(t)
	resp := register(t, h, "ada@example.com")

	require.NoError(t, h.auth.ForgotPassword("nobody@example.com"))
	_, ok := h.mailer.Last("reset")
	assert.False(t, ok, "unknown address must not send mail")

	require.NoError(t, h.auth.ForgotPassword("ada@example.com"))
	mail, ok := h.mailer.Last("reset")
	require.True(t, ok)

	require.NoError(t, h.auth.ResetPassword(mail.Token, "brand-new-password"))
	assert.ErrorIs(t, h.auth.ResetPassword(mail.Token, "another-password"), ErrInvalidToken)

	sv, err := h.auth.CurrentSessionVersion(resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, sv, "reset revokes older sessions")

	_, err = h.auth.Login(models.LoginRequest{Email: "ada@example.com", Password: "brand-new-password"}, "")
	assert.NoError(t, err)
}

func TestActionTokensArePurposeBound(t *testing.T) {
	h := newHarness(t)
	register(t, h, "ada@example.com")
	mail, ok := h.mailer.Last("verify")
	require.True(t, ok)

	assert.ErrorIs(t, h.auth.ResetPassword(mail.Token, "brand-new-password"), ErrInvalidToken)
	assert.ErrorIs(t, h.auth.VerifyEmail("garbage"), ErrInvalidToken)

	require.NoError(t, h.auth.VerifyEmail(mail.Token))
	u, err := h.repos.users.GetByEmail("ada@example.com")
	require.NoError(t, err)
	assert.True(t, u.IsVerified)
	// ikinci kez: idempotent
	assert.NoError(t, h.auth.VerifyEmail(mail.Token))
}

func TestLogoutAllBumpsSessionVersion(t *testing.T) {
	h := newHarness(t)
	resp := register(t, h, "ada@example.com")

	require.NoError(t, h.auth.LogoutAll(resp.User.ID))
	sv, err := h.auth.CurrentSessionVersion(resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, sv)
	assert.ErrorIs(t, h.auth.LogoutAll(9999), ErrNotFound)
}
