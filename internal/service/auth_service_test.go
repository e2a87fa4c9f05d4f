package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/marksheet-analytics/internal/config"
)

func newAuth(secret string) *AuthService {
	return NewAuthService(&config.Config{JWTSecret: secret, JWTExpiry: time.Hour})
}

func TestAdminTokenRoundTrip(t *testing.T) {
	auth := newAuth("s3cret")

	tok, err := auth.GenerateAdminToken("ops")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAdmin, claims.TokenType)
	assert.Equal(t, "ops", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	tok, err := newAuth("one").GenerateAdminToken("ops")
	require.NoError(t, err)

	_, err = newAuth("two").ValidateToken(tok)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTokenExpired)
}

func TestValidateTokenExpired(t *testing.T) {
	auth := newAuth("s3cret")
	issued := time.Now().Add(-2 * time.Hour)
	auth.now = func() time.Time { return issued }

	tok, err := auth.GenerateAdminToken("ops")
	require.NoError(t, err)

	auth.now = time.Now
	_, err = auth.ValidateToken(tok)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateTokenRejectsNoneAlgorithm(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{TokenType: TokenTypeAdmin})
	raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newAuth("s3cret").ValidateToken(raw)
	require.Error(t, err)
}
