package accounts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dkachan/equiadmin/internal/common"
	"github.com/dkachan/equiadmin/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func accountRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "login_id", "password_hash", "rights", "active", "lock_state",
		"failed_attempts", "lock_expires_at", "must_change_password", "last_login_at", "created_at",
	})
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+accounts\s*\(.*\)\s*VALUES\s*\(\$1.*\$8\)\s*RETURNING\s+created_at\s*$`

	rows := sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now())
	mock.ExpectQuery(q).
		WithArgs("id-1", "10001", "hash", []byte(`["view-records"]`), true, "open", 0, false).
		WillReturnRows(rows)

	a := &models.Account{
		ID:           "id-1",
		LoginID:      "10001",
		PasswordHash: "hash",
		Rights:       []string{"view-records"},
		Active:       true,
		LockState:    models.LockStateOpen,
	}
	got, err := repo.Create(context.Background(), a)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("CreatedAt not populated")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreate_UniqueViolationMapsToDuplicateError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+accounts`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_login_id_key"})

	_, err := repo.Create(context.Background(), &models.Account{
		ID: "id-1", LoginID: "10001", Rights: []string{},
	})
	var dup *common.DuplicateError
	if !errors.As(err, &dup) || dup.Field != "login_id" {
		t.Fatalf("expected DuplicateError on login_id, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+accounts`).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Account{ID: "id-1", LoginID: "10001", Rights: []string{}})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByLoginID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := accountRows().
		AddRow("id-1", "10001", "hash", []byte(`["view-records","manage-users"]`), true, "open",
			0, nil, false, nil, time.Now())
	mock.ExpectQuery(`SELECT\s+.*FROM\s+accounts\s+WHERE\s+login_id\s*=\s*\$1`).
		WithArgs("10001").
		WillReturnRows(rows)

	got, err := repo.GetByLoginID(context.Background(), "10001")
	if err != nil {
		t.Fatalf("GetByLoginID error: %v", err)
	}
	if got.ID != "id-1" || len(got.Rights) != 2 || got.Rights[1] != "manage-users" {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestGetByLoginID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+.*FROM\s+accounts\s+WHERE\s+login_id\s*=\s*\$1`).
		WithArgs("99999").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByLoginID(context.Background(), "99999")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestListLoginIDs_Ascending(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"login_id"}).
		AddRow("10000").AddRow("10001").AddRow("10004")
	mock.ExpectQuery(`SELECT\s+login_id\s+FROM\s+accounts\s+ORDER\s+BY\s+login_id`).
		WillReturnRows(rows)

	got, err := repo.ListLoginIDs(context.Background())
	if err != nil {
		t.Fatalf("ListLoginIDs error: %v", err)
	}
	if len(got) != 3 || got[2] != "10004" {
		t.Fatalf("unexpected ids: %v", got)
	}
}

func TestUpdateLockState_NoRowsIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+accounts\s+SET\s+lock_state`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateLockState(context.Background(), "missing", models.LockStateAdmin, 0, nil)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+accounts\s+WHERE\s+login_id\s*=\s*\$1`).
		WithArgs("10003").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "10003"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+accounts\s+WHERE\s+login_id\s*=\s*\$1`).
		WithArgs("10003").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "10003"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}
