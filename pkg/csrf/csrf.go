// Package csrf issues and checks double-submit tokens signed as HS256 JWTs.
package csrf

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	CookieName = "csrf_token"
	HeaderName = "X-CSRF-Token"
	FormField  = "_csrf"
	purpose    = "csrf"
)

var ErrInvalidToken = errors.New("invalid csrf token")

type claims struct {
	Purpose string `json:"pur"`
	jwt.RegisteredClaims
}

type Signer struct {
	secret []byte
	ttl    time.Duration
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Signer{secret: []byte("csrf:" + secret), ttl: ttl}
}

func (s *Signer) TTL() time.Duration { return s.ttl }

func (s *Signer) Issue() (string, error) {
	now := time.Now()
	c := claims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

func (s *Signer) verify(token string) error {
	c := &claims{}
	parsed, err := jwt.ParseWithClaims(token, c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || c.Purpose != purpose {
		return ErrInvalidToken
	}
	return nil
}

// Check compares the cookie and submitted values and verifies the signature.
func (s *Signer) Check(cookieValue, submitted string) error {
	if cookieValue == "" || submitted == "" {
		return ErrInvalidToken
	}
	if subtle.ConstantTimeCompare([]byte(cookieValue), []byte(submitted)) != 1 {
		return ErrInvalidToken
	}
	return s.verify(submitted)
}
