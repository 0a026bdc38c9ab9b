// Package db opens the shared PostgreSQL handle used by all repositories.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// connectTimeout bounds the initial connectivity check. Individual queries
// carry no per-operation timeout.
const connectTimeout = 5 * time.Second

// Open connects to PostgreSQL using the pgx stdlib driver and verifies the
// connection once before returning.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	return conn, nil
}
