// Package auth implements the control socket's one-shot preshared-secret
// handshake: when configured, the first frame of a new connection must
// be a JWT signed with the shared secret, or the daemon closes the
// connection without processing any request frames.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrHandshakeFailed = errors.New("auth: handshake token invalid or expired")

// Claims is the handshake token's payload. There is exactly one daemon
// and one shared secret, so unlike the teacher's HTTP middleware there is
// no per-user role to carry — the token only proves possession of the
// secret.
type Claims struct {
	jwt.RegisteredClaims
}

// Handshake validates and issues the control socket's bearer tokens.
type Handshake struct {
	secret []byte
	ttl    time.Duration
}

func New(secret string, ttl time.Duration) *Handshake {
	return &Handshake{secret: []byte(secret), ttl: ttl}
}

// IssueToken produces a signed token a client can present as the first
// frame of a connection.
func (h *Handshake) IssueToken() (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.secret)
}

// Verify validates a bearer token presented on a new connection.
func (h *Handshake) Verify(tokenString string) error {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return h.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrHandshakeFailed
	}
	return nil
}
