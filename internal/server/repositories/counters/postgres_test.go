package counters

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestGet_Existing(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"value"}).AddRow(int64(7))
	mock.ExpectQuery(`SELECT\s+value\s+FROM\s+counters\s+WHERE\s+name\s*=\s*\$1`).
		WithArgs(AccountLoginIDCounter).
		WillReturnRows(rows)

	got, err := repo.Get(context.Background(), AccountLoginIDCounter)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got != 7 {
		t.Fatalf("value = %d, want 7", got)
	}
}

func TestGet_MissingCounterIsZero(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+value\s+FROM\s+counters`).
		WithArgs("unknown").
		WillReturnError(sql.ErrNoRows)

	got, err := repo.Get(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got != 0 {
		t.Fatalf("missing counter must read as 0, got %d", got)
	}
}

func TestSet_Upserts(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)INSERT\s+INTO\s+counters.*ON\s+CONFLICT\s+\(name\)\s+DO\s+UPDATE`).
		WithArgs(AccountLoginIDCounter, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Set(context.Background(), AccountLoginIDCounter, 3); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSet_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+counters`).
		WillReturnError(errors.New("db down"))

	if err := repo.Set(context.Background(), AccountLoginIDCounter, 3); err == nil {
		t.Fatalf("expected error when the upsert fails")
	}
}
