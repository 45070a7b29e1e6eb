package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-support-portal/models"
)

func TestGenerateSessionToken_RoundTrip(t *testing.T) {
	token, err := GenerateSessionToken("portal", models.Session{UserID: 123, TwoFactorAuth: true}, time.Hour, "secret-key")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	session, err := ValidateAndParseSessionToken(token, "secret-key", "portal")
	require.NoError(t, err)
	assert.Equal(t, int64(123), session.UserID)
	assert.True(t, session.TwoFactorAuth)
}

func TestGenerateSessionToken_InvalidParams(t *testing.T) {
	tests := []struct {
		name     string
		issuer   string
		duration time.Duration
		key      string
	}{
		{name: "empty issuer", duration: time.Hour, key: "k"},
		{name: "zero duration", issuer: "portal", key: "k"},
		{name: "empty key", issuer: "portal", duration: time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateSessionToken(tt.issuer, models.Session{UserID: 1}, tt.duration, tt.key)
			assert.Error(t, err)
		})
	}
}

func TestValidateAndParseSessionToken_InvalidKey(t *testing.T) {
	token, err := GenerateSessionToken("portal", models.Session{UserID: 1}, time.Hour, "right")
	require.NoError(t, err)

	_, err = ValidateAndParseSessionToken(token, "wrong", "portal")
	assert.Error(t, err)
}

func TestValidateAndParseSessionToken_WrongIssuer(t *testing.T) {
	token, err := GenerateSessionToken("portal", models.Session{UserID: 1}, time.Hour, "key")
	require.NoError(t, err)

	_, err = ValidateAndParseSessionToken(token, "key", "other")
	assert.Error(t, err)
}

func TestValidateAndParseSessionToken_Expired(t *testing.T) {
	claims := &models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "portal",
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("key"))
	require.NoError(t, err)

	_, err = ValidateAndParseSessionToken(token, "key", "portal")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateAndParseSessionToken_NonNumericSubject(t *testing.T) {
	claims := &models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "portal",
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("key"))
	require.NoError(t, err)

	_, err = ValidateAndParseSessionToken(token, "key", "portal")
	assert.Error(t, err)
}

func TestValidateAndParseSessionToken_Malformed(t *testing.T) {
	_, err := ValidateAndParseSessionToken("not.a.token", "key", "portal")
	assert.Error(t, err)
}
