// Package repomanager provides a factory for repositories bound to a given
// database handle or transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dkachan/equiadmin/internal/dbx"
	"github.com/dkachan/equiadmin/internal/server/repositories/accounts"
	"github.com/dkachan/equiadmin/internal/server/repositories/counters"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Counters(db dbx.DBTX) counters.Repository
}
