package counters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkachan/equiadmin/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, name string) (int64, error) {
	query := `SELECT value FROM counters WHERE name = $1`

	var value int64
	err := r.db.QueryRowContext(ctx, query, name).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return value, nil
}

func (r *PostgresRepository) Set(ctx context.Context, name string, value int64) error {
	query :=
		`INSERT INTO counters (name, value)
		 VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value
		 `

	if _, err := r.db.ExecContext(ctx, query, name, value); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
