package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/internal/metrics"
	"github.com/MKhiriev/go-support-portal/internal/store"
	"github.com/MKhiriev/go-support-portal/models"
)

// VerificationTokenSize is the number of random bytes in a verification
// token. Encoded, a token is 43 URL-safe characters.
const VerificationTokenSize = 32

const verificationSubject = "Verify your email address"

// verificationWorkflow issues single-use email verification tokens and
// confirms them.
type verificationWorkflow struct {
	manager *store.Manager
	mail    MailSender
	metrics *metrics.Metrics

	// baseURL prefixes the verification link, e.g. "https://portal.example.com".
	baseURL string

	now func() time.Time
}

// NewVerificationWorkflow constructs a VerificationService. A nil m counts
// into unregistered metrics.
func NewVerificationWorkflow(manager *store.Manager, mail MailSender, baseURL string, m *metrics.Metrics) VerificationService {
	if m == nil {
		m = metrics.Nop()
	}

	return &verificationWorkflow{
		manager: manager,
		mail:    mail,
		metrics: m,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// NewVerificationToken returns a random URL-safe token.
func NewVerificationToken() (string, error) {
	raw := make([]byte, VerificationTokenSize)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("error generating verification token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Ensure mails a verification link to identity when it has no token yet, or
// when resend is set. It reports whether an email was sent. Verified
// identities are never mailed: an explicit resend for one fails with
// ErrAlreadyVerified.
//
// The token and the send time are written before the email is dispatched.
// On dispatch failure the caller must discard its unit of work.
func (v *verificationWorkflow) Ensure(ctx context.Context, identity *models.Identity, resend bool) (bool, error) {
	log := logger.FromContext(ctx)

	if identity == nil {
		return false, nil
	}
	if identity.EmailVerified {
		if resend {
			return false, ErrAlreadyVerified
		}
		return false, nil
	}
	if identity.HasVerificationCode() && !resend {
		return false, nil
	}

	update := models.UserUpdate{ID: identity.ID}
	token := ""
	if identity.HasVerificationCode() {
		token = *identity.EmailVerificationCode
	} else {
		var err error
		if token, err = NewVerificationToken(); err != nil {
			return false, err
		}
		update.EmailVerificationCode = &token
	}
	sentAt := v.now().UTC()
	update.SignupEmailSent = &sentAt

	err := inSession(ctx, v.manager, func(uow *store.UnitOfWork) error {
		if err := uow.Users().UpdateUser(ctx, update); err != nil {
			return persistenceFailure(err)
		}
		return nil
	})
	if err != nil {
		log.Err(err).Int64("user_id", identity.ID).Msg("error storing verification token")
		return false, err
	}

	if err := v.mail.Send(ctx, v.message(identity.ID, identity.Email, token)); err != nil {
		v.metrics.VerificationEmailsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		log.Err(err).Int64("user_id", identity.ID).Msg("error sending verification email")
		return false, fmt.Errorf("%w: %w", ErrMailDispatch, err)
	}
	v.metrics.VerificationEmailsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()

	identity.EmailVerificationCode = &token
	identity.SignupEmailSent = &sentAt

	log.Info().Int64("user_id", identity.ID).Bool("resend", resend).Msg("verification email sent")
	return true, nil
}

// Confirm marks userID verified when token matches its stored code and
// consumes the code. current is updated in place when it is the same user.
func (v *verificationWorkflow) Confirm(ctx context.Context, userID int64, token string, current *models.Identity) error {
	log := logger.FromContext(ctx)

	var outcome error
	err := inSession(ctx, v.manager, func(uow *store.UnitOfWork) error {
		user, err := uow.Users().FindUserByID(ctx, userID)
		if errors.Is(err, store.ErrNoUserWasFound) {
			outcome = ErrInvalidOrExpiredToken
			return nil
		}
		if err != nil {
			return persistenceFailure(err)
		}

		if !user.HasVerificationCode() || token == "" ||
			subtle.ConstantTimeCompare([]byte(*user.EmailVerificationCode), []byte(token)) != 1 {
			outcome = ErrInvalidOrExpiredToken
			return nil
		}

		verified := true
		if err := uow.Users().UpdateUser(ctx, models.UserUpdate{
			ID:                         userID,
			EmailVerified:              &verified,
			ClearEmailVerificationCode: true,
		}); err != nil {
			return persistenceFailure(err)
		}
		return nil
	})
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("error confirming email")
		return err
	}
	if outcome != nil {
		log.Warn().Int64("user_id", userID).Msg("invalid verification token")
		return outcome
	}

	if current != nil && current.ID == userID {
		current.EmailVerified = true
		current.EmailVerificationCode = nil
	}

	return nil
}

func (v *verificationWorkflow) message(userID int64, email, token string) models.MailMessage {
	link := v.link(userID, token)

	return models.MailMessage{
		To:      email,
		Subject: verificationSubject,
		HTML: fmt.Sprintf(`<p>Please confirm your email address for the support portal.</p>`+
			`<p><a href="%s">Verify email address</a></p>`, html.EscapeString(link)),
		Text: fmt.Sprintf("Please confirm your email address for the support portal:\n\n%s\n", link),
	}
}

func (v *verificationWorkflow) link(userID int64, token string) string {
	query := url.Values{}
	query.Set("token", token)
	query.Set("id", strconv.FormatInt(userID, 10))

	return v.baseURL + "/verify_email?" + query.Encode()
}
