package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token süresi (7 gün)
const TokenExpiryLogin = 7 * 24 * time.Hour

// SessionClaims is the payload of a session token. SessionVersion must match
// the user's current version for the token to be accepted.
type SessionClaims struct {
	UserID         uint   `json:"user_id"`
	Email          string `json:"email"`
	SessionVersion int    `json:"sv"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = TokenExpiryLogin
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *Manager) Secret() []byte { return m.secret }

func (m *Manager) TTL() time.Duration { return m.ttl }

func (m *Manager) GenerateToken(userID uint, email string, sessionVersion int) (string, error) {
	now := m.now()
	claims := SessionClaims{
		UserID:         userID,
		Email:          email,
		SessionVersion: sessionVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) ValidateToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, m.Keyfunc, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func (m *Manager) Keyfunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return m.secret, nil
}

// NeedsRefresh reports whether more than half of the token lifetime has passed.
func (m *Manager) NeedsRefresh(claims *SessionClaims) bool {
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return true
	}
	half := claims.ExpiresAt.Sub(claims.IssuedAt.Time) / 2
	return m.now().After(claims.IssuedAt.Add(half))
}
