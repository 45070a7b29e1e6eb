package models

// StepResponse tells the client which step of the login flow comes next.
type StepResponse struct {
	// Next is empty when the identity has full access.
	Next Step `json:"next"`
}

// EnrollmentResponse is returned when 2FA enrollment starts.
type EnrollmentResponse struct {
	// Secret is the base32 seed, shown for manual entry.
	Secret string `json:"secret"`

	// ProvisioningURI is the otpauth:// URI encoded in the QR code.
	ProvisioningURI string `json:"provisioning_uri"`

	// QRCode is a data: URI with the PNG rendering of ProvisioningURI.
	QRCode string `json:"qr_code"`
}

// VerificationResponse reports the outcome of GET /verify_email.
type VerificationResponse struct {
	Verified bool `json:"verified"`
	Sent     bool `json:"sent"`
}

// MeResponse describes the current identity.
type MeResponse struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	Role           Role           `json:"role"`
	IsAdmin        bool           `json:"is_admin"`
	EmailVerified  bool           `json:"email_verified"`
	TwoFactorState TwoFactorState `json:"two_factor_state"`
	Next           Step           `json:"next"`
}

// RegisterResponse is returned by POST /register.
type RegisterResponse struct {
	ID int64 `json:"id"`
}
