package models

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the claim set of the signed session cookie.
//
// The "sub" claim carries the user identifier; TwoFactorAuth carries the
// per-session 2FA flag that is never stored with the user.
type SessionClaims struct {
	jwt.RegisteredClaims

	// TwoFactorAuth reports whether the session presented a valid TOTP code.
	TwoFactorAuth bool `json:"tfa"`
}

// GetUserID parses the "sub" claim as a base-10 int64.
func (c SessionClaims) GetUserID() (int64, error) {
	userIDString, err := c.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("error extracting UserID from token: %w", err)
	}

	userID, err := strconv.ParseInt(userIDString, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error converting UserID from token to int64: %w", err)
	}

	return userID, nil
}

// Session is the decoded session cookie.
type Session struct {
	UserID        int64
	TwoFactorAuth bool
}
