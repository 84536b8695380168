// Package services implements the vault's core operations: the folder tree
// manager, the file record manager and the account service. Services hold
// their collaborator ports explicitly; there is no shared global client.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"filevault/internal/common"
	"filevault/internal/dbx"
	"filevault/internal/logging"
	"filevault/internal/models"
	"filevault/internal/repositories/files"
	"filevault/internal/repositories/folders"
	"filevault/internal/repositories/repomanager"
)

// FolderService manages a user's folder forest: creation, renaming, moving
// with a cycle guard, deletion, breadcrumb resolution and per-folder file
// counts. A nil folder/parent id always means the vault root.
//
// Moving runs its guard and update through the tx runner so both see one
// snapshot. Other mutations are single statements and race with
// last-write-wins semantics at the metadata store.
type FolderService struct {
	folders folders.Repository
	files   files.Repository
	log     logging.Logger

	// tx runs fn against a folder repository with a consistent view of the
	// folder rows. The default executes directly; NewFolderServiceTx swaps in
	// a database transaction.
	tx func(ctx context.Context, fn func(ctx context.Context, repo folders.Repository) error) error
}

func NewFolderService(folderRepo folders.Repository, fileRepo files.Repository, log logging.Logger) *FolderService {
	s := &FolderService{folders: folderRepo, files: fileRepo, log: log}
	s.tx = func(ctx context.Context, fn func(ctx context.Context, repo folders.Repository) error) error {
		return fn(ctx, s.folders)
	}
	return s
}

// NewFolderServiceTx builds a FolderService over the manager's PostgreSQL
// repositories, with the move guard running inside a database transaction.
func NewFolderServiceTx(db *sql.DB, manager repomanager.RepositoryManager, log logging.Logger) *FolderService {
	s := &FolderService{folders: manager.Folders(db), files: manager.Files(db), log: log}
	s.tx = func(ctx context.Context, fn func(ctx context.Context, repo folders.Repository) error) error {
		return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return fn(ctx, manager.Folders(tx))
		})
	}
	return s
}

// ListChildren returns the folders directly under parentID, ordered by name
// ascending with ties broken by id.
func (s *FolderService) ListChildren(ctx context.Context, ownerID string, parentID *string) ([]*models.Folder, error) {
	return s.folders.ListByParent(ctx, ownerID, parentID)
}

// Create adds a folder under parentID. The name must be non-empty after
// trimming; sibling folders may share a name (deliberate, as in the metadata
// model this implements). A non-nil parent must exist and belong to ownerID.
func (s *FolderService) Create(ctx context.Context, ownerID, name string, parentID *string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: folder name is empty", common.ErrValidation)
	}

	if parentID != nil {
		parent, err := s.folders.GetByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.OwnerID != ownerID {
			return nil, fmt.Errorf("folder %s: %w", *parentID, common.ErrNotFound)
		}
	}

	created, err := s.folders.Create(ctx, &models.Folder{
		OwnerID:  ownerID,
		Name:     name,
		ParentID: parentID,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "folder created", "folder_id", created.ID, "name", created.Name)
	return created, nil
}

// Rename changes a folder's name in place. The new name must be non-empty
// after trimming.
func (s *FolderService) Rename(ctx context.Context, folderID, newName string) (*models.Folder, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, fmt.Errorf("%w: folder name is empty", common.ErrValidation)
	}
	return s.folders.Rename(ctx, folderID, newName)
}

// Delete removes the folder and everything once reachable under it. The
// cascade is the metadata store's referential contract; the service does not
// walk the tree.
func (s *FolderService) Delete(ctx context.Context, folderID string) error {
	if err := s.folders.Delete(ctx, folderID); err != nil {
		return err
	}
	s.log.Info(ctx, "folder deleted", "folder_id", folderID)
	return nil
}

// Move re-parents a folder. A folder may not move into itself or into one of
// its own descendants: the target's ancestor chain is walked, and the walk and
// the reparent update run through the tx runner so a concurrent move cannot
// slip a cycle in between them.
func (s *FolderService) Move(ctx context.Context, folderID string, newParentID *string) (*models.Folder, error) {
	var moved *models.Folder
	err := s.tx(ctx, func(ctx context.Context, repo folders.Repository) error {
		if newParentID != nil {
			if *newParentID == folderID {
				return fmt.Errorf("%w: cannot move a folder into itself", common.ErrValidation)
			}

			ancestors, err := walkUp(ctx, repo, *newParentID)
			if err != nil {
				return err
			}
			for _, a := range ancestors {
				if a.ID == folderID {
					return fmt.Errorf("%w: cannot move a folder into its own descendant", common.ErrValidation)
				}
			}
		}

		var err error
		moved, err = repo.SetParent(ctx, folderID, newParentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// ResolvePath returns the chain of folders from the vault root down to
// folderID. A nil folderID (the root itself) yields an empty path.
func (s *FolderService) ResolvePath(ctx context.Context, folderID *string) ([]*models.Folder, error) {
	if folderID == nil {
		return nil, nil
	}

	chain, err := walkUp(ctx, s.folders, *folderID)
	if err != nil {
		return nil, err
	}

	// walkUp goes leaf to root; the breadcrumb reads root to leaf.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// CountFiles returns the number of files directly in folderID. Not recursive.
func (s *FolderService) CountFiles(ctx context.Context, ownerID string, folderID *string) (int, error) {
	return s.files.CountByFolder(ctx, ownerID, folderID)
}

// walkUp follows parent pointers from startID to the root, returning the
// folders leaf-first. The tree is required to be acyclic, but a corrupted
// parent pointer must not loop forever; a visited set turns such corruption
// into a collaborator error.
func walkUp(ctx context.Context, repo folders.Repository, startID string) ([]*models.Folder, error) {
	var chain []*models.Folder
	visited := make(map[string]bool)

	currentID := &startID
	for currentID != nil {
		if visited[*currentID] {
			return nil, fmt.Errorf("%w: folder parent chain contains a cycle at %s", common.ErrCollaborator, *currentID)
		}
		visited[*currentID] = true

		folder, err := repo.GetByID(ctx, *currentID)
		if err != nil {
			return nil, err
		}
		chain = append(chain, folder)
		currentID = folder.ParentID
	}
	return chain, nil
}
