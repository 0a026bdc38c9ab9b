// Package models defines the persistent data structures shared by
// repositories and services.
package models

import "time"

// Lock states for an account. The admin lock is imposed and cleared only by
// an explicit administrator action; the timed lock is entered automatically
// after repeated credential failures and expires on its own. The admin lock
// is always checked first.
const (
	LockStateOpen  = "open"
	LockStateAdmin = "admin"
	LockStateTimed = "timed"
)

// Account is one administrator account.
//
// ID is the stable internal reference (UUID); it is never reused. LoginID is
// the 5-digit display identifier handed out by the allocator and used in all
// human-facing lookups and in session tokens.
type Account struct {
	ID                 string
	LoginID            string
	PasswordHash       string
	Rights             []string
	Active             bool
	LockState          string
	FailedAttempts     int
	LockExpiresAt      *time.Time
	MustChangePassword bool
	LastLoginAt        *time.Time
	CreatedAt          time.Time
}
