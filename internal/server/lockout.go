// lockout.go - Account lockout mechanism to prevent brute-force attacks
package server

import (
	"sync"
	"time"
)

// LoginAttempt tracks failed login attempts for an account
type LoginAttempt struct {
	Count       int
	LastAttempt time.Time
	LockedUntil time.Time
}

// AccountLockout manages account lockout after failed login attempts.
// Attempts are keyed by the submitted email address.
type AccountLockout struct {
	mu              sync.RWMutex
	attempts        map[string]*LoginAttempt // email -> attempts
	maxAttempts     int
	lockoutDuration time.Duration
	windowDuration  time.Duration
}

// NewAccountLockout creates a new account lockout manager
// maxAttempts: number of failed attempts before lockout (e.g., 5)
// lockoutDuration: how long to lock the account (e.g., 15 minutes)
// windowDuration: time window to count attempts (e.g., 10 minutes)
func NewAccountLockout(maxAttempts int, lockoutDuration, windowDuration time.Duration) *AccountLockout {
	return &AccountLockout{
		attempts:        make(map[string]*LoginAttempt),
		maxAttempts:     maxAttempts,
		lockoutDuration: lockoutDuration,
		windowDuration:  windowDuration,
	}
}

// RecordFailedAttempt records a failed login attempt
// Returns true if the account is now locked
func (al *AccountLockout) RecordFailedAttempt(email string) (locked bool, lockedUntil time.Time) {
	al.mu.Lock()
	defer al.mu.Unlock()

	now := time.Now()

	attempt, exists := al.attempts[email]
	if !exists {
		attempt = &LoginAttempt{}
		al.attempts[email] = attempt
	}

	// Reset count if outside window
	if now.Sub(attempt.LastAttempt) > al.windowDuration {
		attempt.Count = 0
	}

	attempt.Count++
	attempt.LastAttempt = now

	// Lock account if max attempts exceeded
	if attempt.Count >= al.maxAttempts {
		attempt.LockedUntil = now.Add(al.lockoutDuration)
		return true, attempt.LockedUntil
	}

	return false, time.Time{}
}

// RecordSuccessfulLogin resets failed attempts for an email
func (al *AccountLockout) RecordSuccessfulLogin(email string) {
	al.mu.Lock()
	defer al.mu.Unlock()

	delete(al.attempts, email)
}

// IsLocked checks if an account is currently locked
// Returns true if locked, and the unlock time
func (al *AccountLockout) IsLocked(email string) (locked bool, lockedUntil time.Time) {
	al.mu.RLock()
	defer al.mu.RUnlock()

	attempt, exists := al.attempts[email]
	if !exists {
		return false, time.Time{}
	}

	now := time.Now()
	if !attempt.LockedUntil.IsZero() && now.Before(attempt.LockedUntil) {
		return true, attempt.LockedUntil
	}

	return false, time.Time{}
}
