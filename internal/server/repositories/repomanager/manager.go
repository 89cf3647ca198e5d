// Package repomanager hands out repositories bound to a database handle and
// owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/memoriesapp/memories/internal/dbx"
	"github.com/memoriesapp/memories/internal/server/repositories/records"
	"github.com/memoriesapp/memories/internal/server/repositories/users"
)

// RepositoryManager creates repositories over a plain connection or a
// transaction (anything satisfying dbx.DBTX).
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Records(db dbx.DBTX) records.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
