package accounts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dkachan/equiadmin/internal/common"
	"github.com/dkachan/equiadmin/internal/dbx"
	"github.com/dkachan/equiadmin/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is the PostgreSQL error code for a unique-constraint
// violation.
const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, login_id, password_hash, rights, active, lock_state,
	   failed_attempts, lock_expires_at, must_change_password, last_login_at, created_at`

func scanAccount(row interface{ Scan(dest ...any) error }) (*models.Account, error) {
	a := &models.Account{}
	var rights []byte
	err := row.Scan(&a.ID, &a.LoginID, &a.PasswordHash, &rights, &a.Active, &a.LockState,
		&a.FailedAttempts, &a.LockExpiresAt, &a.MustChangePassword, &a.LastLoginAt, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rights, &a.Rights); err != nil {
		return nil, fmt.Errorf("rights decode error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {

	rights, err := json.Marshal(account.Rights)
	if err != nil {
		return nil, fmt.Errorf("rights encode error: %w", err)
	}

	query :=
		`INSERT INTO accounts (id, login_id, password_hash, rights, active, lock_state,
		                       failed_attempts, must_change_password)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		account.ID, account.LoginID, account.PasswordHash, rights, account.Active,
		account.LockState, account.FailedAttempts, account.MustChangePassword).Scan(&account.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, &common.DuplicateError{Field: "login_id"}
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByLoginID(ctx context.Context, loginID string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE login_id = $1`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, loginID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY login_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) ListLoginIDs(ctx context.Context) ([]string, error) {
	query := `SELECT login_id FROM accounts ORDER BY login_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) UpdateLockState(ctx context.Context, id string, lockState string, failedAttempts int, lockExpiresAt *time.Time) error {
	query :=
		`UPDATE accounts
		 SET lock_state = $2, failed_attempts = $3, lock_expires_at = $4
		 WHERE id = $1
		 `

	return r.exec(ctx, query, id, lockState, failedAttempts, lockExpiresAt)
}

func (r *PostgresRepository) RecordLogin(ctx context.Context, id string, at time.Time) error {
	query :=
		`UPDATE accounts
		 SET failed_attempts = 0, lock_state = 'open', lock_expires_at = NULL, last_login_at = $2
		 WHERE id = $1
		 `

	return r.exec(ctx, query, id, at)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, passwordHash string, mustChange bool) error {
	query :=
		`UPDATE accounts
		 SET password_hash = $2, must_change_password = $3
		 WHERE id = $1
		 `

	return r.exec(ctx, query, id, passwordHash, mustChange)
}

func (r *PostgresRepository) Delete(ctx context.Context, loginID string) error {
	query := `DELETE FROM accounts WHERE login_id = $1`

	res, err := r.db.ExecContext(ctx, query, loginID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
