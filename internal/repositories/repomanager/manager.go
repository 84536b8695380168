// Package repomanager vends repository implementations for a metadata store
// and exposes its schema migration hook.
package repomanager

import (
	"context"
	"database/sql"

	"filevault/internal/dbx"
	"filevault/internal/repositories/files"
	"filevault/internal/repositories/folders"
	"filevault/internal/repositories/users"
)

type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Folders(db dbx.DBTX) folders.Repository
	Files(db dbx.DBTX) files.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
