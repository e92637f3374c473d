package repomanager

import (
	"context"
	"database/sql"

	"github.com/abdul977/voicenotes/internal/dbx"
	"github.com/abdul977/voicenotes/internal/repositories/entries"
	"github.com/abdul977/voicenotes/internal/repositories/notes"
)

// RepositoryManager vends repositories bound to a specific DBTX, which lets
// services run several repository calls inside one transaction.
type RepositoryManager interface {
	Notes(db dbx.DBTX) notes.Repository
	Entries(db dbx.DBTX) entries.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
