// Package accounts declares the repository contract for administrator
// accounts in persistent storage.
package accounts

import (
	"context"
	"time"

	"github.com/dkachan/equiadmin/internal/server/models"
)

// Repository defines operations over stored administrator accounts.
type Repository interface {
	// Create inserts a new account and returns it with CreatedAt populated.
	// A uniqueness violation on the display identifier is returned as a
	// *common.DuplicateError so callers can detect allocation races.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// GetByID looks up an account by its stable internal reference.
	GetByID(ctx context.Context, id string) (*models.Account, error)

	// GetByLoginID looks up an account by its display identifier.
	GetByLoginID(ctx context.Context, loginID string) (*models.Account, error)

	// List returns all accounts ordered by display identifier.
	List(ctx context.Context) ([]*models.Account, error)

	// ListLoginIDs returns every display identifier in ascending order.
	// Used by the allocator's gap scan.
	ListLoginIDs(ctx context.Context) ([]string, error)

	// UpdateLockState persists the lockout fields of one account.
	UpdateLockState(ctx context.Context, id string, lockState string, failedAttempts int, lockExpiresAt *time.Time) error

	// RecordLogin marks a successful login: resets the failure counter,
	// clears a timed lock and stamps last_login_at.
	RecordLogin(ctx context.Context, id string, at time.Time) error

	// UpdatePassword replaces the credential hash and sets the
	// must-change-password flag.
	UpdatePassword(ctx context.Context, id string, passwordHash string, mustChange bool) error

	// Delete removes an account by display identifier. Returns
	// common.ErrorNotFound when no such account exists.
	Delete(ctx context.Context, loginID string) error
}
