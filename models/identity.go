package models

// TwoFactorState is the position of an identity in the two-factor
// authentication lifecycle.
type TwoFactorState int

const (
	// NotEnrolled: no TOTP seed has been generated.
	NotEnrolled TwoFactorState = iota
	// Enrolling: a seed exists but no code has been confirmed yet.
	Enrolling
	// EnrolledNotPassed: 2FA is enabled but the current session has not
	// presented a valid code.
	EnrolledNotPassed
	// EnrolledAndPassed: 2FA is enabled and the current session passed it.
	EnrolledAndPassed
)

func (s TwoFactorState) String() string {
	switch s {
	case NotEnrolled:
		return "not_enrolled"
	case Enrolling:
		return "enrolling"
	case EnrolledNotPassed:
		return "enrolled_not_passed"
	case EnrolledAndPassed:
		return "enrolled_and_passed"
	}
	return "unknown"
}

// MarshalText implements [encoding.TextMarshaler].
func (s TwoFactorState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Step is the next action an authenticated identity has to complete before
// it is granted access to the portal.
type Step string

const (
	StepNone           Step = ""
	StepVerifyEmail    Step = "verify_email"
	StepSetupTwoFactor Step = "setup_2fa"
	StepTwoFactor      Step = "2fa"
)

// Identity is the authorization-ready view of a [User] for one session.
//
// TwoFactorAuth is session state: it is loaded from the session cookie on
// every request and is never persisted with the user.
type Identity struct {
	User

	// TwoFactorAuth reports whether this session presented a valid TOTP code.
	TwoFactorAuth bool `json:"two_factor_auth"`
}

// NewIdentity builds an [Identity] for a freshly loaded user. A new session
// has not passed 2FA.
func NewIdentity(u User) Identity {
	return Identity{User: u}
}

// IsAdmin reports whether the identity has administrative rights.
func (i Identity) IsAdmin() bool {
	return i.Role.IsAdmin()
}

// GetID returns the user identifier in decimal form.
func (i Identity) GetID() string {
	return i.StringID()
}

// TwoFactorState derives the 2FA lifecycle position from the persisted
// enrollment data and the session flag.
func (i Identity) TwoFactorState() TwoFactorState {
	switch {
	case i.TwoFactorEnabled && i.TwoFactorAuth:
		return EnrolledAndPassed
	case i.TwoFactorEnabled:
		return EnrolledNotPassed
	case i.HasSecret():
		return Enrolling
	default:
		return NotEnrolled
	}
}

// NextStep returns the step the identity must complete next. Email
// verification comes first, then 2FA enrollment, then the 2FA challenge.
func (i Identity) NextStep() Step {
	switch {
	case !i.EmailVerified:
		return StepVerifyEmail
	case !i.TwoFactorEnabled:
		return StepSetupTwoFactor
	case !i.TwoFactorAuth:
		return StepTwoFactor
	default:
		return StepNone
	}
}

// Enrollment is what a user needs to register the TOTP seed in an
// authenticator app.
type Enrollment struct {
	Secret          string
	ProvisioningURI string
	// QRCode is a PNG image of ProvisioningURI.
	QRCode []byte
}
