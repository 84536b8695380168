// Package files persists file metadata rows in the metadata store.
package files

import (
	"context"

	"filevault/internal/models"
)

// Repository is the metadata-store port for file rows. folderID semantics:
// nil means the vault root, otherwise the id of the containing folder.
type Repository interface {
	Create(ctx context.Context, file *models.FileMetadata) (*models.FileMetadata, error)
	GetByID(ctx context.Context, id string) (*models.FileMetadata, error)

	// ListByFolder returns the owner's files in folderID, newest first.
	ListByFolder(ctx context.Context, ownerID string, folderID *string) ([]*models.FileMetadata, error)

	// CountByFolder counts the owner's files directly in folderID. Not recursive.
	CountByFolder(ctx context.Context, ownerID string, folderID *string) (int, error)

	SetFolder(ctx context.Context, id string, folderID *string) (*models.FileMetadata, error)
	Delete(ctx context.Context, id string) error
}
