package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signHS256(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestVerifier(t *testing.T) {
	v := NewVerifier("test-secret", nil)

	t.Run("valid HS256 token resolves subject", func(t *testing.T) {
		tok := signHS256(t, "test-secret", jwt.MapClaims{
			"sub":   "6f1c1f8e-0000-4000-8000-000000000001",
			"email": "seeker@example.com",
			"exp":   time.Now().Add(time.Hour).Unix(),
		})
		claims, err := v.Verify(tok)
		require.NoError(t, err)
		assert.Equal(t, "6f1c1f8e-0000-4000-8000-000000000001", claims.Subject)
		assert.Equal(t, "seeker@example.com", claims.Email)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		tok := signHS256(t, "other", jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()})
		_, err := v.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		tok := signHS256(t, "test-secret", jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Minute).Unix()})
		_, err := v.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing subject is rejected", func(t *testing.T) {
		tok := signHS256(t, "test-secret", jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
		_, err := v.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("HS256 without configured secret is rejected", func(t *testing.T) {
		tok := signHS256(t, "test-secret", jwt.MapClaims{"sub": "u1"})
		_, err := NewVerifier("", nil).Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
