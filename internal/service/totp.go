package service

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// TOTPSecretSize is the seed length in bytes (160 bits).
	TOTPSecretSize = 20
	// TOTPPeriod is the length of one time step.
	TOTPPeriod = 30 * time.Second
	// TOTPSkew is the number of adjacent steps accepted on each side.
	TOTPSkew = 1
)

var secretEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// TOTPEngine creates seeds and provisioning URIs and verifies RFC 6238
// codes (SHA1, 6 digits, 30 second steps).
type TOTPEngine struct {
	qr  QRRenderer
	now func() time.Time
}

// NewTOTPEngine returns an engine that renders QR codes with qr.
func NewTOTPEngine(qr QRRenderer) *TOTPEngine {
	return &TOTPEngine{
		qr:  qr,
		now: time.Now,
	}
}

// CreateSecret returns a fresh random seed in unpadded base32.
func (e *TOTPEngine) CreateSecret() (string, error) {
	raw := make([]byte, TOTPSecretSize)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("error generating TOTP secret: %w", err)
	}
	return secretEncoding.EncodeToString(raw), nil
}

// ProvisioningURI builds the otpauth://totp URI for secret.
func (e *TOTPEngine) ProvisioningURI(secret, account, issuer string) (string, error) {
	raw, err := secretEncoding.DecodeString(strings.ToUpper(secret))
	if err != nil {
		return "", fmt.Errorf("invalid TOTP secret: %w", err)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      uint(TOTPPeriod / time.Second),
		SecretSize:  TOTPSecretSize,
		Secret:      raw,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("error building provisioning URI: %w", err)
	}

	return key.URL(), nil
}

// RenderQR returns the PNG image of uri.
func (e *TOTPEngine) RenderQR(uri string) ([]byte, error) {
	image, err := e.qr.Render(uri)
	if err != nil {
		return nil, fmt.Errorf("error rendering QR code: %w", err)
	}
	return image, nil
}

// Verify reports whether code is valid for secret in the current step or
// one step either side of it.
func (e *TOTPEngine) Verify(code, secret string) bool {
	code = strings.ReplaceAll(strings.TrimSpace(code), " ", "")
	if code == "" || secret == "" {
		return false
	}

	valid, err := totp.ValidateCustom(code, secret, e.now().UTC(), totp.ValidateOpts{
		Period:    uint(TOTPPeriod / time.Second),
		Skew:      TOTPSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false
	}

	return valid
}
