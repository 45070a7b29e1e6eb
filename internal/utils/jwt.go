package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MKhiriev/go-support-portal/models"
)

// GenerateSessionToken creates a signed HMAC-SHA256 JWT carrying session.
//
// The token includes the following claims:
//   - Issuer    (iss): identifies the portal that issued the session
//   - Subject   (sub): the user ID encoded as a string
//   - IssuedAt  (iat): the current time
//   - ExpiresAt (exp): the current time plus sessionDuration
//   - tfa            : whether the session passed two-factor authentication
//
// All parameters are required. Returns an error if any of them are empty or zero.
//
// Example usage:
//
//	token, err := utils.GenerateSessionToken("portal", models.Session{UserID: 42}, time.Hour, "secret")
func GenerateSessionToken(issuer string, session models.Session, sessionDuration time.Duration, signKey string) (string, error) {
	if issuer == "" || sessionDuration == 0 || signKey == "" {
		return "", errors.New("invalid params for generating session token")
	}

	now := time.Now()
	claims := &models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(session.UserID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		TwoFactorAuth: session.TwoFactorAuth,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(signKey))
	if err != nil {
		return "", fmt.Errorf("error occurred during singing session token: %w", err)
	}

	return tokenString, nil
}

// ValidateAndParseSessionToken validates the given token string and extracts
// the session it carries.
//
// Validation includes the HS256 signature, the issuer, the expiration and a
// numeric subject.
func ValidateAndParseSessionToken(tokenString, signKey, issuer string) (models.Session, error) {
	claims := &models.SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return []byte(signKey), nil
	}, jwt.WithIssuer(issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.Session{}, fmt.Errorf("error occurred validating and parsing token: %w", err)
	}

	userID, err := claims.GetUserID()
	if err != nil {
		return models.Session{}, err
	}

	return models.Session{UserID: userID, TwoFactorAuth: claims.TwoFactorAuth}, nil
}
