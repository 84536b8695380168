package folders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"filevault/internal/common"
	"filevault/internal/dbx"
	"filevault/internal/models"
)

// PostgresRepository implements folder storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const folderColumns = `id, owner_id, name, parent_id, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, folder *models.Folder) (*models.Folder, error) {
	query := `
		INSERT INTO folders (owner_id, name, parent_id)
		VALUES ($1, $2, $3)
		RETURNING ` + folderColumns

	row := r.db.QueryRowContext(ctx, query, folder.OwnerID, folder.Name, nullString(folder.ParentID))
	created, err := scanFolder(row)
	if err != nil {
		return nil, fmt.Errorf("%w: insert folder: %v", common.ErrCollaborator, err)
	}
	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE id=$1`

	folder, err := scanFolder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("folder %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: select folder: %v", common.ErrCollaborator, err)
	}
	return folder, nil
}

func (r *PostgresRepository) ListByParent(ctx context.Context, ownerID string, parentID *string) ([]*models.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE owner_id=$1 AND parent_id IS NULL ORDER BY name, id`
	args := []any{ownerID}
	if parentID != nil {
		query = `SELECT ` + folderColumns + ` FROM folders WHERE owner_id=$1 AND parent_id=$2 ORDER BY name, id`
		args = append(args, *parentID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: select folders: %v", common.ErrCollaborator, err)
	}
	defer rows.Close()

	var result []*models.Folder
	for rows.Next() {
		item, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan folder: %v", common.ErrCollaborator, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: select folders: %v", common.ErrCollaborator, err)
	}
	return result, nil
}

func (r *PostgresRepository) Rename(ctx context.Context, id string, newName string) (*models.Folder, error) {
	query := `
		UPDATE folders SET name=$2, updated_at=now()
		WHERE id=$1
		RETURNING ` + folderColumns

	folder, err := scanFolder(r.db.QueryRowContext(ctx, query, id, newName))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("folder %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: rename folder: %v", common.ErrCollaborator, err)
	}
	return folder, nil
}

func (r *PostgresRepository) SetParent(ctx context.Context, id string, parentID *string) (*models.Folder, error) {
	query := `
		UPDATE folders SET parent_id=$2, updated_at=now()
		WHERE id=$1
		RETURNING ` + folderColumns

	folder, err := scanFolder(r.db.QueryRowContext(ctx, query, id, nullString(parentID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("folder %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: move folder: %v", common.ErrCollaborator, err)
	}
	return folder, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM folders WHERE id=$1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%w: delete folder: %v", common.ErrCollaborator, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %v", common.ErrCollaborator, err)
	}
	if n == 0 {
		return fmt.Errorf("folder %s: %w", id, common.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFolder(row rowScanner) (*models.Folder, error) {
	var item models.Folder
	var parentID sql.NullString
	if err := row.Scan(&item.ID, &item.OwnerID, &item.Name, &parentID, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	if parentID.Valid {
		item.ParentID = &parentID.String
	}
	return &item, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
