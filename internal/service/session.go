package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-support-portal/internal/config"
	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/internal/utils"
	"github.com/MKhiriev/go-support-portal/models"
)

// sessionService signs and parses the session cookie value.
type sessionService struct {
	// signKey is the HMAC secret used to sign and verify session tokens.
	signKey string

	// issuer is the "iss" claim embedded in every session token.
	// Tokens whose issuer does not match this value are rejected.
	issuer string

	// duration controls how long a session remains valid.
	duration time.Duration
}

// NewSessionService constructs a SessionService from the application
// configuration. It is safe for concurrent use.
func NewSessionService(cfg config.App) SessionService {
	return &sessionService{
		signKey:  cfg.SessionSignKey,
		issuer:   cfg.SessionIssuer,
		duration: cfg.SessionDuration,
	}
}

// CreateSession issues a session token for identity. The token carries the
// session's 2FA flag; nothing else about the user is embedded.
func (s *sessionService) CreateSession(ctx context.Context, identity models.Identity) (string, error) {
	token, err := utils.GenerateSessionToken(s.issuer, models.Session{
		UserID:        identity.ID,
		TwoFactorAuth: identity.TwoFactorAuth,
	}, s.duration, s.signKey)
	if err != nil {
		logger.FromContext(ctx).Err(err).Int64("user_id", identity.ID).Msg("error creating session")
		return "", fmt.Errorf("%w: %w", ErrSessionCreation, err)
	}

	return token, nil
}

// ParseSession validates token. Any failure (expired, wrong issuer or key,
// malformed) is reported as ErrInvalidSession.
func (s *sessionService) ParseSession(ctx context.Context, token string) (models.Session, error) {
	session, err := utils.ValidateAndParseSessionToken(token, s.signKey, s.issuer)
	if err != nil {
		return models.Session{}, ErrInvalidSession
	}

	return session, nil
}
