package models

import (
	"strconv"
	"time"
)

// User is a portal account. It carries the login credential material, the
// TOTP seed and the email-verification state.
// Sensitive fields must never be exposed outside trusted boundaries.
type User struct {
	// ID is assigned by the database on insert and never changes.
	ID int64 `json:"id"`

	// Email is the unique login identifier. It is always stored normalized
	// (trimmed, lower-cased).
	Email string `json:"email"`

	// PasswordHash is PBKDF2-HMAC-SHA256(password+pepper, Salt).
	PasswordHash []byte `json:"-"`

	// Salt is the 32-byte random salt generated once at account creation.
	Salt []byte `json:"-"`

	// Role grants access levels across the portal.
	Role Role `json:"role"`

	// Secret is the base32 TOTP seed. It is nil until 2FA enrollment starts.
	Secret *string `json:"-"`

	// LastLogin is updated on every successful password authentication.
	LastLogin *time.Time `json:"last_login,omitempty"`

	// EmailVerificationCode is the pending single-use verification token.
	EmailVerificationCode *string `json:"-"`

	// SignupEmailSent records the moment the last verification email was sent.
	SignupEmailSent *time.Time `json:"-"`

	EmailVerified    bool `json:"email_verified"`
	TwoFactorEnabled bool `json:"two_factor_enabled"`

	CreatedAt time.Time `json:"created_at"`
}

// NewUser constructs a not yet persisted [User]. Verification and 2FA flags
// start cleared.
func NewUser(email string, passwordHash, salt []byte, role Role, createdAt time.Time) User {
	return User{
		Email:        email,
		PasswordHash: passwordHash,
		Salt:         salt,
		Role:         role,
		CreatedAt:    createdAt,
	}
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// StringID returns the user identifier in decimal form.
func (u User) StringID() string {
	return strconv.FormatInt(u.ID, 10)
}

// HasSecret reports whether a TOTP seed has been generated for the user.
func (u User) HasSecret() bool {
	return u.Secret != nil && *u.Secret != ""
}

// HasVerificationCode reports whether a verification token is pending.
func (u User) HasVerificationCode() bool {
	return u.EmailVerificationCode != nil && *u.EmailVerificationCode != ""
}

// UserUpdate describes a partial update of a [User]. Only non-nil fields are
// written.
type UserUpdate struct {
	// ID selects the row to update. Required.
	ID int64

	Email                 *string
	PasswordHash          []byte
	Salt                  []byte
	Role                  *Role
	Secret                *string
	LastLogin             *time.Time
	EmailVerificationCode *string
	SignupEmailSent       *time.Time
	EmailVerified         *bool
	TwoFactorEnabled      *bool

	// ClearEmailVerificationCode sets the stored code to NULL. It takes
	// precedence over EmailVerificationCode.
	ClearEmailVerificationCode bool
}

// IsEmpty reports whether the update would not change any column.
func (u UserUpdate) IsEmpty() bool {
	return u.Email == nil &&
		u.PasswordHash == nil &&
		u.Salt == nil &&
		u.Role == nil &&
		u.Secret == nil &&
		u.LastLogin == nil &&
		u.EmailVerificationCode == nil &&
		u.SignupEmailSent == nil &&
		u.EmailVerified == nil &&
		u.TwoFactorEnabled == nil &&
		!u.ClearEmailVerificationCode
}

// UserField names a column a user can be looked up by.
type UserField string

const (
	ByID    UserField = "id"
	ByEmail UserField = "email"
)
