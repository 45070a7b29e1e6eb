package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-support-portal/internal/store"
	"github.com/MKhiriev/go-support-portal/models"
)

const (
	// LockoutWindow is how long after the last failure an address stays
	// locked.
	LockoutWindow = 300 * time.Second
	// LockoutThreshold is the failure count at which an address is locked.
	LockoutThreshold = 5
)

// LoginGuard decides lockouts from per-address failure counters.
//
// The window is checked lazily on every call; an expired window unlocks the
// address without resetting its counter. Only Clear resets it.
type LoginGuard struct {
	window    time.Duration
	threshold int
	now       func() time.Time
}

// NewLoginGuard returns a guard with the default window and threshold.
func NewLoginGuard() *LoginGuard {
	return &LoginGuard{
		window:    LockoutWindow,
		threshold: LockoutThreshold,
		now:       time.Now,
	}
}

// RecordFailure counts one failed attempt from ip.
func (g *LoginGuard) RecordFailure(ctx context.Context, repo store.FailedLoginRepository, ip string) (models.FailedLogin, error) {
	record, err := repo.Increment(ctx, ip, g.now().UTC())
	if err != nil {
		return models.FailedLogin{}, persistenceFailure(err)
	}
	return record, nil
}

// IsLocked reports whether ip has reached the threshold within the window.
func (g *LoginGuard) IsLocked(ctx context.Context, repo store.FailedLoginRepository, ip string) (bool, error) {
	record, err := repo.Find(ctx, ip)
	if errors.Is(err, store.ErrFailedLoginNotFound) {
		return false, nil
	}
	if err != nil {
		return false, persistenceFailure(err)
	}

	return g.locks(record), nil
}

// Clear forgets every failure from ip.
func (g *LoginGuard) Clear(ctx context.Context, repo store.FailedLoginRepository, ip string) error {
	if err := repo.Delete(ctx, ip); err != nil {
		return fmt.Errorf("error clearing failed logins: %w", persistenceFailure(err))
	}
	return nil
}

func (g *LoginGuard) locks(record models.FailedLogin) bool {
	if g.now().Sub(record.LastAttempt) > g.window {
		return false
	}
	return record.Attempts >= g.threshold
}
