// Package services contains server-side business logic. This file implements
// AccountService, which handles account creation with display-identifier
// allocation, login with brute-force lockout, session issuance/verification
// and administrative account management.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/dkachan/equiadmin/internal/common"
	"github.com/dkachan/equiadmin/internal/dbx"
	"github.com/dkachan/equiadmin/internal/server/allocator"
	"github.com/dkachan/equiadmin/internal/server/auth"
	"github.com/dkachan/equiadmin/internal/server/config"
	"github.com/dkachan/equiadmin/internal/server/lockout"
	"github.com/dkachan/equiadmin/internal/server/models"
	"github.com/dkachan/equiadmin/internal/server/repositories/repomanager"
	"github.com/dkachan/equiadmin/internal/server/rights"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

// Lock actions accepted by SetLock.
const (
	LockActionLock   = "lock"
	LockActionUnlock = "unlock"
)

var loginIDPattern = regexp.MustCompile(`^\d{5}$`)

// AccountService provides the administrative identity operations:
// - Create: allocate a display identifier and store a new account
// - Login: verify credentials under the lockout policy and mint a session
// - Authenticate: resolve a presented session token to a live account
// - ChangePassword / ResetPassword / SetLock / Delete / List
type AccountService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	sessionTokenValidityDuration time.Duration
	bcryptCost                   int
}

// NewAccountService constructs an AccountService using repositories and
// server config.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AccountService {
	return &AccountService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		sessionTokenValidityDuration: cfg.SessionTokenValidityDuration,
		bcryptCost:                   cfg.BcryptCost,
	}
}

// Create stores a new account. When loginID is empty the allocator assigns
// the next free display identifier; a duplicate-key failure during that path
// is treated as an allocation race and retried once with a fresh allocation.
// An explicit loginID must be a free 5-digit value above the bootstrap floor.
func (s *AccountService) Create(ctx context.Context, loginID string, password string, rightsList []string) (*models.Account, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrorValidation)
	}
	if len(rightsList) == 0 {
		rightsList = rights.Default()
	}
	for _, r := range rightsList {
		if !rights.Valid(r) {
			return nil, fmt.Errorf("%w: unknown right %q", common.ErrorValidation, r)
		}
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	repo := s.repomanager.Accounts(s.db)

	if loginID != "" {
		if loginID == allocator.BootstrapLoginID {
			return nil, fmt.Errorf("%w: login id %s is reserved", common.ErrorValidation, loginID)
		}
		if !loginIDPattern.MatchString(loginID) || loginID < allocator.BootstrapLoginID {
			return nil, fmt.Errorf("%w: login id must be a 5-digit number above %s", common.ErrorValidation, allocator.BootstrapLoginID)
		}
		return repo.Create(ctx, newAccount(loginID, hash, rightsList))
	}

	alloc := allocator.New(repo, s.repomanager.Counters(s.db))

	var created *models.Account
	backoff := retry.WithMaxRetries(1, retry.NewConstant(time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		id, err := alloc.Allocate(ctx)
		if err != nil {
			return err
		}
		account, err := repo.Create(ctx, newAccount(id, hash, rightsList))
		if err != nil {
			var dup *common.DuplicateError
			if errors.As(err, &dup) {
				// allocation race: another request claimed the identifier
				return retry.RetryableError(err)
			}
			return err
		}
		created = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func newAccount(loginID, passwordHash string, rightsList []string) *models.Account {
	return &models.Account{
		ID:           uuid.NewString(),
		LoginID:      loginID,
		PasswordHash: passwordHash,
		Rights:       rightsList,
		Active:       true,
		LockState:    models.LockStateOpen,
	}
}

// Login verifies the supplied credential under the lockout policy and, on
// success, returns a signed session token together with the account. The
// failed-attempt counter is persisted before any rejection is returned.
func (s *AccountService) Login(ctx context.Context, loginID string, password string) (string, *models.Account, error) {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, common.ErrorUnauthorized
		}
		return "", nil, common.ErrorInternal
	}
	if !account.Active {
		return "", nil, common.ErrorUnauthorized
	}

	now := time.Now()
	switch lockout.Evaluate(account, now) {
	case models.LockStateAdmin:
		return "", nil, &common.LockError{Type: common.LockTypeAdmin}
	case models.LockStateTimed:
		return "", nil, &common.LockError{Type: common.LockTypePassword}
	}

	if !auth.CheckPassword(account.PasswordHash, password) {
		result := lockout.RegisterFailure(account, now)
		if err := repo.UpdateLockState(ctx, account.ID, result.LockState, result.FailedAttempts, result.LockExpiresAt); err != nil {
			return "", nil, common.ErrorInternal
		}
		return "", nil, &common.CredentialsError{Remaining: result.Remaining}
	}

	if err := repo.RecordLogin(ctx, account.ID, now); err != nil {
		return "", nil, common.ErrorInternal
	}
	account.FailedAttempts = 0
	account.LockState = models.LockStateOpen
	account.LockExpiresAt = nil
	account.LastLoginAt = &now

	token, err := auth.GenerateToken(account, s.jwtSecret, s.sessionTokenValidityDuration)
	if err != nil {
		return "", nil, common.ErrorInternal
	}

	return token, account, nil
}

// Authenticate resolves a presented session token to the live account
// record. Rights embedded in the token are not trusted for authorization;
// the stored account is reloaded so that capability changes take effect on
// the next request.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*models.Account, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	return account, nil
}

// ChangePassword replaces the caller's own credential.
func (s *AccountService) ChangePassword(ctx context.Context, accountID string, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: password is required", common.ErrorValidation)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return common.ErrorInternal
	}

	return s.repomanager.Accounts(s.db).UpdatePassword(ctx, accountID, hash, false)
}

// ResetPassword replaces the target's credential on behalf of an
// administrator. It always sets the must-change-password flag and clears any
// lock state; the bootstrap account's lock state is left untouched.
func (s *AccountService) ResetPassword(ctx context.Context, targetLoginID string, newPassword string) (*models.Account, error) {
	if newPassword == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrorValidation)
	}

	repo := s.repomanager.Accounts(s.db)
	target, err := repo.GetByLoginID(ctx, targetLoginID)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.Accounts(tx)
		if err := repoTx.UpdatePassword(ctx, target.ID, hash, true); err != nil {
			return err
		}
		if target.LoginID == allocator.BootstrapLoginID {
			return nil
		}
		return repoTx.UpdateLockState(ctx, target.ID, models.LockStateOpen, 0, nil)
	}); err != nil {
		return nil, err
	}

	return repo.GetByID(ctx, target.ID)
}

// SetLock imposes or lifts the administrator lock on the target account. It
// refuses to touch the bootstrap account and refuses to let callers lock
// themselves out.
func (s *AccountService) SetLock(ctx context.Context, caller *models.Account, targetLoginID string, action string) (*models.Account, error) {
	if action != LockActionLock && action != LockActionUnlock {
		return nil, fmt.Errorf("%w: action must be %q or %q", common.ErrorValidation, LockActionLock, LockActionUnlock)
	}
	if targetLoginID == allocator.BootstrapLoginID {
		return nil, common.ErrorForbidden
	}

	repo := s.repomanager.Accounts(s.db)
	target, err := repo.GetByLoginID(ctx, targetLoginID)
	if err != nil {
		return nil, err
	}
	if caller != nil && caller.ID == target.ID {
		return nil, common.ErrorForbidden
	}

	if action == LockActionLock {
		err = repo.UpdateLockState(ctx, target.ID, models.LockStateAdmin, target.FailedAttempts, nil)
	} else {
		err = repo.UpdateLockState(ctx, target.ID, models.LockStateOpen, 0, nil)
	}
	if err != nil {
		return nil, err
	}

	return repo.GetByID(ctx, target.ID)
}

// Delete removes an account by display identifier. The bootstrap account can
// never be deleted.
func (s *AccountService) Delete(ctx context.Context, loginID string) error {
	if loginID == allocator.BootstrapLoginID {
		return common.ErrorForbidden
	}
	return s.repomanager.Accounts(s.db).Delete(ctx, loginID)
}

// List returns all accounts ordered by display identifier.
func (s *AccountService) List(ctx context.Context) ([]*models.Account, error) {
	return s.repomanager.Accounts(s.db).List(ctx)
}

// EnsureBootstrap provisions the bootstrap account with the full capability
// set, or resets its credential when it already exists. Used by the
// provisioning CLI, never exposed over HTTP.
func (s *AccountService) EnsureBootstrap(ctx context.Context, password string) (*models.Account, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrorValidation)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	repo := s.repomanager.Accounts(s.db)
	existing, err := repo.GetByLoginID(ctx, allocator.BootstrapLoginID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return repo.Create(ctx, newAccount(allocator.BootstrapLoginID, hash, rights.All()))
		}
		return nil, err
	}

	if err := repo.UpdatePassword(ctx, existing.ID, hash, false); err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, existing.ID)
}
