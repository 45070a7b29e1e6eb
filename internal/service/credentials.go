package service

import (
	"bufio"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/crypto/pbkdf2"

	"github.com/MKhiriev/go-support-portal/internal/validators"
	"github.com/MKhiriev/go-support-portal/models"
)

const (
	// SaltSize is the length of the per-user random salt in bytes.
	SaltSize = 32
	// PBKDF2Iterations is the work factor of [HashPassword].
	PBKDF2Iterations = 100_000
	// HashSize is the length of the derived key in bytes.
	HashSize = 32
	// MinPasswordLength is the shortest password the policy accepts.
	MinPasswordLength = 8
)

// NewSalt returns SaltSize random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("error generating salt: %w", err)
	}
	return salt, nil
}

// HashPassword derives the stored hash of password. It is deterministic:
// the same password, salt and pepper always give the same bytes.
func HashPassword(password string, salt []byte, pepper string) []byte {
	return pbkdf2.Key([]byte(password+pepper), salt, PBKDF2Iterations, HashSize, sha256.New)
}

// VerifyPassword reports whether candidate is the password of user. The
// comparison runs in constant time.
func VerifyPassword(user models.User, candidate, pepper string) bool {
	if len(user.PasswordHash) == 0 || len(user.Salt) == 0 {
		return false
	}

	computed := HashPassword(candidate, user.Salt, pepper)
	return subtle.ConstantTimeCompare(computed, user.PasswordHash) == 1
}

// NormalizeEmail trims and lower-cases email.
func NormalizeEmail(email string) string {
	return validators.NormalizeEmail(email)
}

// ValidateEmail reports whether email looks like a deliverable address.
func ValidateEmail(email string) bool {
	return validators.IsEmail(email)
}

// PasswordPolicy checks new passwords against the strength rules and a
// blacklist of common passwords.
type PasswordPolicy struct {
	MinLength int

	blacklist map[string]struct{}
}

// NewPasswordPolicy returns a policy with the default rules and the given
// blacklist entries.
func NewPasswordPolicy(blacklist ...string) *PasswordPolicy {
	p := &PasswordPolicy{
		MinLength: MinPasswordLength,
		blacklist: make(map[string]struct{}, len(blacklist)),
	}
	for _, entry := range blacklist {
		if key := blacklistKey(entry); key != "" {
			p.blacklist[key] = struct{}{}
		}
	}
	return p
}

// LoadPasswordPolicy reads a newline-delimited blacklist file. An empty path
// yields a policy without a blacklist.
func LoadPasswordPolicy(path string) (*PasswordPolicy, error) {
	if path == "" {
		return NewPasswordPolicy(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening password blacklist: %w", err)
	}
	defer f.Close()

	var entries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		entries = append(entries, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading password blacklist: %w", err)
	}

	return NewPasswordPolicy(entries...), nil
}

// Check returns nil for an acceptable password and a *[WeakPasswordError]
// naming the first failed rule otherwise.
func (p *PasswordPolicy) Check(password string) error {
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLetter(r):
			hasSpecial = true
		}
	}

	switch {
	case len([]rune(password)) < p.MinLength:
		return &WeakPasswordError{Reason: fmt.Sprintf("password must be at least %d characters long", p.MinLength)}
	case !hasUpper:
		return &WeakPasswordError{Reason: "password must contain at least one uppercase letter"}
	case !hasLower:
		return &WeakPasswordError{Reason: "password must contain at least one lowercase letter"}
	case !hasDigit:
		return &WeakPasswordError{Reason: "password must contain at least one number"}
	case !hasSpecial:
		return &WeakPasswordError{Reason: "password must contain at least one special character"}
	case p.IsCommon(password):
		return &WeakPasswordError{Reason: "password is too common"}
	}

	return nil
}

// IsCommon reports whether password matches a blacklist entry once case,
// digits and punctuation are ignored.
func (p *PasswordPolicy) IsCommon(password string) bool {
	if len(p.blacklist) == 0 {
		return false
	}
	_, found := p.blacklist[blacklistKey(password)]
	return found
}

func blacklistKey(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}
