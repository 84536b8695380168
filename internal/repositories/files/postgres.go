package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"filevault/internal/common"
	"filevault/internal/dbx"
	"filevault/internal/models"
)

// PostgresRepository implements file metadata storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const fileColumns = `id, owner_id, name, size, mime_type, storage_path, folder_id, created_at`

func (r *PostgresRepository) Create(ctx context.Context, file *models.FileMetadata) (*models.FileMetadata, error) {
	query := `
		INSERT INTO files (owner_id, name, size, mime_type, storage_path, folder_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + fileColumns

	row := r.db.QueryRowContext(ctx, query,
		file.OwnerID, file.Name, file.Size, file.MimeType, file.StoragePath, nullString(file.FolderID))
	created, err := scanFile(row)
	if err != nil {
		return nil, fmt.Errorf("%w: insert file: %v", common.ErrCollaborator, err)
	}
	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.FileMetadata, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id=$1`

	file, err := scanFile(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("file %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: select file: %v", common.ErrCollaborator, err)
	}
	return file, nil
}

func (r *PostgresRepository) ListByFolder(ctx context.Context, ownerID string, folderID *string) ([]*models.FileMetadata, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE owner_id=$1 AND folder_id IS NULL ORDER BY created_at DESC, id DESC`
	args := []any{ownerID}
	if folderID != nil {
		query = `SELECT ` + fileColumns + ` FROM files WHERE owner_id=$1 AND folder_id=$2 ORDER BY created_at DESC, id DESC`
		args = append(args, *folderID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: select files: %v", common.ErrCollaborator, err)
	}
	defer rows.Close()

	var result []*models.FileMetadata
	for rows.Next() {
		item, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan file: %v", common.ErrCollaborator, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: select files: %v", common.ErrCollaborator, err)
	}
	return result, nil
}

func (r *PostgresRepository) CountByFolder(ctx context.Context, ownerID string, folderID *string) (int, error) {
	query := `SELECT count(*) FROM files WHERE owner_id=$1 AND folder_id IS NULL`
	args := []any{ownerID}
	if folderID != nil {
		query = `SELECT count(*) FROM files WHERE owner_id=$1 AND folder_id=$2`
		args = append(args, *folderID)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count files: %v", common.ErrCollaborator, err)
	}
	return count, nil
}

func (r *PostgresRepository) SetFolder(ctx context.Context, id string, folderID *string) (*models.FileMetadata, error) {
	query := `
		UPDATE files SET folder_id=$2
		WHERE id=$1
		RETURNING ` + fileColumns

	file, err := scanFile(r.db.QueryRowContext(ctx, query, id, nullString(folderID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("file %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: move file: %v", common.ErrCollaborator, err)
	}
	return file, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM files WHERE id=$1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%w: delete file: %v", common.ErrCollaborator, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %v", common.ErrCollaborator, err)
	}
	if n == 0 {
		return fmt.Errorf("file %s: %w", id, common.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*models.FileMetadata, error) {
	var item models.FileMetadata
	var folderID sql.NullString
	if err := row.Scan(&item.ID, &item.OwnerID, &item.Name, &item.Size, &item.MimeType,
		&item.StoragePath, &folderID, &item.CreatedAt); err != nil {
		return nil, err
	}
	if folderID.Valid {
		item.FolderID = &folderID.String
	}
	return &item, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
