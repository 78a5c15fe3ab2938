package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandshake_IssueAndVerify(t *testing.T) {
	h := New("topsecret", time.Hour)

	token, err := h.IssueToken()
	require.NoError(t, err)
	assert.NoError(t, h.Verify(token))
}

func TestHandshake_VerifyRejectsWrongSecret(t *testing.T) {
	h := New("topsecret", time.Hour)
	other := New("wrongsecret", time.Hour)

	token, err := h.IssueToken()
	require.NoError(t, err)
	assert.ErrorIs(t, other.Verify(token), ErrHandshakeFailed)
}

func TestHandshake_VerifyRejectsExpiredToken(t *testing.T) {
	h := New("topsecret", -time.Minute)

	token, err := h.IssueToken()
	require.NoError(t, err)
	assert.ErrorIs(t, h.Verify(token), ErrHandshakeFailed)
}

func TestHandshake_VerifyRejectsGarbage(t *testing.T) {
	h := New("topsecret", time.Hour)
	assert.ErrorIs(t, h.Verify("not-a-jwt"), ErrHandshakeFailed)
}

func TestHandshake_VerifyRejectsAlgNone(t *testing.T) {
	h := New("topsecret", time.Hour)

	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	assert.ErrorIs(t, h.Verify(signed), ErrHandshakeFailed)
}
