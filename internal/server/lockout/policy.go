// Package lockout implements the per-account brute-force lockout state
// machine: open, administrator-locked, timed-locked.
package lockout

import (
	"time"

	"github.com/dkachan/equiadmin/internal/server/models"
)

const (
	// MaxFailedAttempts is the number of consecutive credential failures
	// that triggers a timed lock.
	MaxFailedAttempts = 3

	// LockDuration is the length of a timed lock.
	LockDuration = 30 * time.Minute
)

// Evaluate returns the effective lock state of an account at the given
// moment. The admin lock always wins; an expired timed lock reads as open
// (the persisted state is cleared lazily, on the next successful login or
// explicit unlock).
func Evaluate(account *models.Account, now time.Time) string {
	switch account.LockState {
	case models.LockStateAdmin:
		return models.LockStateAdmin
	case models.LockStateTimed:
		if account.LockExpiresAt != nil && now.After(*account.LockExpiresAt) {
			return models.LockStateOpen
		}
		return models.LockStateTimed
	default:
		return models.LockStateOpen
	}
}

// FailureResult carries the lockout fields to persist after a failed
// credential check, plus the attempts the caller may still make.
type FailureResult struct {
	LockState      string
	FailedAttempts int
	LockExpiresAt  *time.Time
	Remaining      int
}

// RegisterFailure advances the state machine for one failed credential
// check. The caller must persist the returned fields before responding.
// A failure after a timed lock has expired starts a fresh series.
func RegisterFailure(account *models.Account, now time.Time) FailureResult {
	attempts := account.FailedAttempts
	if account.LockState == models.LockStateTimed && Evaluate(account, now) == models.LockStateOpen {
		attempts = 0
	}
	attempts++

	result := FailureResult{
		LockState:      models.LockStateOpen,
		FailedAttempts: attempts,
	}
	if attempts >= MaxFailedAttempts {
		expires := now.Add(LockDuration)
		result.LockState = models.LockStateTimed
		result.LockExpiresAt = &expires
	}

	result.Remaining = MaxFailedAttempts - attempts
	if result.Remaining < 0 {
		result.Remaining = 0
	}
	return result
}
