// Package folders persists folder rows in the metadata store.
package folders

import (
	"context"

	"filevault/internal/models"
)

// Repository is the metadata-store port for folder rows. parentID semantics:
// nil means the vault root, otherwise the id of the parent folder.
type Repository interface {
	Create(ctx context.Context, folder *models.Folder) (*models.Folder, error)
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// ListByParent returns the owner's folders directly under parentID,
	// ordered by name ascending with ties broken by id.
	ListByParent(ctx context.Context, ownerID string, parentID *string) ([]*models.Folder, error)

	Rename(ctx context.Context, id string, newName string) (*models.Folder, error)
	SetParent(ctx context.Context, id string, parentID *string) (*models.Folder, error)

	// Delete removes the folder row. Descendant folders and files go with it:
	// cascading deletion is the store's referential contract, not walked here.
	Delete(ctx context.Context, id string) error
}
