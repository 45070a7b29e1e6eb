package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-support-portal/internal/config"
	"github.com/MKhiriev/go-support-portal/internal/logger"
	"github.com/MKhiriev/go-support-portal/internal/utils"
	"github.com/MKhiriev/go-support-portal/models"
)

const (
	mailgunUSBaseURL = "https://api.mailgun.net"
	mailgunEUBaseURL = "https://api.eu.mailgun.net"
)

// MailgunSender delivers mail through the Mailgun messages API.
type MailgunSender struct {
	client *utils.HTTPClient

	apiKey string
	domain string
	from   string

	logger *logger.Logger
}

// NewMailgunSender returns a sender for cfg.Domain. Region "us" uses the US
// endpoint, anything else the EU one.
func NewMailgunSender(cfg config.Mail, log *logger.Logger) *MailgunSender {
	baseURL := mailgunEUBaseURL
	if strings.EqualFold(cfg.Region, "us") {
		baseURL = mailgunUSBaseURL
	}

	client := utils.NewHTTPClient(cfg.Timeout)
	client.SetBaseURL(baseURL)

	return &MailgunSender{
		client: client,
		apiKey: cfg.APIKey,
		domain: cfg.Domain,
		from:   fmt.Sprintf("%s <noreply@%s>", cfg.FromName, cfg.Domain),
		logger: log,
	}
}

// Send posts msg as form data to /v3/{domain}/messages.
func (m *MailgunSender) Send(ctx context.Context, msg models.MailMessage) error {
	form := map[string]string{
		"from":    m.from,
		"to":      msg.To,
		"subject": msg.Subject,
		"html":    msg.HTML,
	}
	if msg.Text != "" {
		form["text"] = msg.Text
	}

	resp, err := m.client.R().
		SetContext(ctx).
		SetBasicAuth("api", m.apiKey).
		SetFormData(form).
		SetPathParam("domain", m.domain).
		Post("/v3/{domain}/messages")
	if err != nil {
		m.logger.Err(err).Str("func", "*MailgunSender.Send").Msg("mail request failed")
		return fmt.Errorf("mail request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		m.logger.Err(err).Str("func", "*MailgunSender.Send").Int("status", resp.StatusCode()).Msg("mail rejected")
		return err
	}

	return nil
}

// LogMailSender writes messages to the log instead of delivering them.
type LogMailSender struct {
	logger *logger.Logger
}

func NewLogMailSender(log *logger.Logger) *LogMailSender {
	return &LogMailSender{logger: log}
}

// Send logs msg and never fails.
func (l *LogMailSender) Send(ctx context.Context, msg models.MailMessage) error {
	l.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("text", msg.Text).
		Msg("mail delivery disabled, message logged")
	return nil
}
