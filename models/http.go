package models

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`

	// IP is filled from the request, never from the body.
	IP string `json:"-"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// TwoFactorRequest is the body of the 2FA confirmation endpoints.
type TwoFactorRequest struct {
	Code string `json:"code"`
}

// EmailVerificationRequest carries the query of GET /verify_email.
type EmailVerificationRequest struct {
	UserID int64
	Token  string
	Resend bool
}

// CreateUserRequest is the body of POST /admin/users.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// AccountUpdateRequest is the body of POST /account. Empty Email and
// NewPassword keep the stored values.
type AccountUpdateRequest struct {
	CurrentPassword string `json:"current_password"`
	Email           string `json:"email,omitempty"`
	NewPassword     string `json:"new_password,omitempty"`
	ConfirmPassword string `json:"confirm_password,omitempty"`
}
