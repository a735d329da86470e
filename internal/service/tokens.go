package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	// Token süreleri
	TokenExpiryReset       = 15 * time.Minute
	TokenExpiryEmailChange = 15 * time.Minute
	TokenExpiryEmailVerify = 24 * time.Hour
)

const (
	purposeVerifyEmail = "verify_email"
	purposeReset       = "password_reset"
	purposeEmailChange = "email_change"
)

type actionClaims struct {
	Purpose        string `json:"pur"`
	UserID         uint   `json:"user_id"`
	Email          string `json:"email,omitempty"`
	NewEmail       string `json:"new_email,omitempty"`
	SessionVersion int    `json:"sv,omitempty"`
	jwt.RegisteredClaims
}

// ActionTokens signs the single-purpose links sent by email. A token issued
// for one purpose never validates for another.
type ActionTokens struct {
	secret []byte
	now    func() time.Time
}

func NewActionTokens(secret string) *ActionTokens {
	return &ActionTokens{secret: []byte("action:" + secret), now: time.Now}
}

func (t *ActionTokens) issue(c actionClaims, ttl time.Duration) (string, error) {
	now := t.now()
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
}

func (t *ActionTokens) parse(purpose, token string) (*actionClaims, error) {
	c := &actionClaims{}
	parsed, err := jwt.ParseWithClaims(token, c, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid || c.Purpose != purpose || c.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return c, nil
}
