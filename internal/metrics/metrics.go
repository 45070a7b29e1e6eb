// Package metrics holds the Prometheus collectors of the identity core.
//
// Collectors are registered on the Registerer passed to [New] so tests can
// use a private registry; the server passes prometheus.DefaultRegisterer and
// exposes it on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "support_portal"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeLocked  = "locked"
)

// Metrics groups the auth counters.
type Metrics struct {
	// LoginsTotal counts login attempts by outcome: success | failure | locked.
	LoginsTotal *prometheus.CounterVec
	// LockoutsTotal counts addresses that crossed the failure threshold.
	LockoutsTotal prometheus.Counter
	// TwoFactorTotal counts submitted TOTP codes by outcome.
	TwoFactorTotal *prometheus.CounterVec
	// VerificationEmailsTotal counts verification mails by outcome.
	VerificationEmailsTotal *prometheus.CounterVec
	// RegistrationsTotal counts sign-ups by outcome.
	RegistrationsTotal *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LoginsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "logins_total",
				Help:      "Total number of password logins by outcome.",
			},
			[]string{"outcome"},
		),
		LockoutsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "lockouts_total",
				Help:      "Total number of source addresses locked out after repeated failures.",
			},
		),
		TwoFactorTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "two_factor_total",
				Help:      "Total number of submitted TOTP codes by outcome.",
			},
			[]string{"outcome"},
		),
		VerificationEmailsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "verification_emails_total",
				Help:      "Total number of verification emails by outcome.",
			},
			[]string{"outcome"},
		),
		RegistrationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "registrations_total",
				Help:      "Total number of sign-ups by outcome.",
			},
			[]string{"outcome"},
		),
	}
}

// Nop returns collectors registered nowhere.
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}
