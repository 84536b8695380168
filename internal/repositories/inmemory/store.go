// Package inmemory implements the metadata-store ports over plain maps.
//
// It honors the same contracts as the PostgreSQL repositories, including
// cascading folder deletion, so services can be exercised without a live
// database.
package inmemory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"filevault/internal/common"
	"filevault/internal/models"
	"filevault/internal/repositories/files"
	"filevault/internal/repositories/folders"
	"filevault/internal/repositories/users"
)

// Store holds all three collections behind one mutex so cascading deletes
// stay consistent. Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	now     func() time.Time
	users   map[string]*models.User
	folders map[string]*models.Folder
	files   map[string]*models.FileMetadata
	fileSeq map[string]int64
	seq     int64
}

func NewStore() *Store {
	return &Store{
		now:     time.Now,
		users:   make(map[string]*models.User),
		folders: make(map[string]*models.Folder),
		files:   make(map[string]*models.FileMetadata),
		fileSeq: make(map[string]int64),
	}
}

// SetClock replaces the store's time source. Tests use it to pin created_at.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Users returns the users.Repository view of the store.
func (s *Store) Users() users.Repository { return &userRepo{s} }

// Folders returns the folders.Repository view of the store.
func (s *Store) Folders() folders.Repository { return &folderRepo{s} }

// Files returns the files.Repository view of the store.
func (s *Store) Files() files.Repository { return &fileRepo{s} }

// --- users ---

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, fmt.Errorf("%s: %w", user.Email, common.ErrEmailAlreadyExists)
		}
	}

	created := *user
	created.ID = uuid.NewString()
	created.CreatedAt = r.s.now()
	r.s.users[created.ID] = &created

	out := created
	return &out, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			out := *u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, common.ErrNotFound)
}

// --- folders ---

type folderRepo struct{ s *Store }

func (r *folderRepo) Create(ctx context.Context, folder *models.Folder) (*models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	created := cloneFolder(folder)
	created.ID = uuid.NewString()
	created.CreatedAt = r.s.now()
	created.UpdatedAt = created.CreatedAt
	r.s.folders[created.ID] = created

	return cloneFolder(created), nil
}

func (r *folderRepo) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	folder, ok := r.s.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, common.ErrNotFound)
	}
	return cloneFolder(folder), nil
}

func (r *folderRepo) ListByParent(ctx context.Context, ownerID string, parentID *string) ([]*models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []*models.Folder
	for _, f := range r.s.folders {
		if f.OwnerID == ownerID && sameRef(f.ParentID, parentID) {
			result = append(result, cloneFolder(f))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *folderRepo) Rename(ctx context.Context, id string, newName string) (*models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	folder, ok := r.s.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, common.ErrNotFound)
	}
	folder.Name = newName
	folder.UpdatedAt = r.s.now()
	return cloneFolder(folder), nil
}

func (r *folderRepo) SetParent(ctx context.Context, id string, parentID *string) (*models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	folder, ok := r.s.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, common.ErrNotFound)
	}
	folder.ParentID = cloneRef(parentID)
	folder.UpdatedAt = r.s.now()
	return cloneFolder(folder), nil
}

// Delete removes the folder, every folder reachable under it, and their
// files, mirroring the ON DELETE CASCADE rules of the SQL schema.
func (r *folderRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.folders[id]; !ok {
		return fmt.Errorf("folder %s: %w", id, common.ErrNotFound)
	}

	doomed := map[string]bool{id: true}
	for {
		grew := false
		for _, f := range r.s.folders {
			if f.ParentID != nil && doomed[*f.ParentID] && !doomed[f.ID] {
				doomed[f.ID] = true
				grew = true
			}
		}
		if !grew {
			break
		}
	}

	for folderID := range doomed {
		delete(r.s.folders, folderID)
	}
	for fileID, f := range r.s.files {
		if f.FolderID != nil && doomed[*f.FolderID] {
			delete(r.s.files, fileID)
			delete(r.s.fileSeq, fileID)
		}
	}
	return nil
}

// --- files ---

type fileRepo struct{ s *Store }

func (r *fileRepo) Create(ctx context.Context, file *models.FileMetadata) (*models.FileMetadata, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	created := cloneFile(file)
	created.ID = uuid.NewString()
	created.CreatedAt = r.s.now()
	r.s.files[created.ID] = created
	r.s.seq++
	r.s.fileSeq[created.ID] = r.s.seq

	return cloneFile(created), nil
}

func (r *fileRepo) GetByID(ctx context.Context, id string) (*models.FileMetadata, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	file, ok := r.s.files[id]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", id, common.ErrNotFound)
	}
	return cloneFile(file), nil
}

func (r *fileRepo) ListByFolder(ctx context.Context, ownerID string, folderID *string) ([]*models.FileMetadata, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []*models.FileMetadata
	for _, f := range r.s.files {
		if f.OwnerID == ownerID && sameRef(f.FolderID, folderID) {
			result = append(result, cloneFile(f))
		}
	}
	// newest first; insertion order breaks same-timestamp ties
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return r.s.fileSeq[result[i].ID] > r.s.fileSeq[result[j].ID]
	})
	return result, nil
}

func (r *fileRepo) CountByFolder(ctx context.Context, ownerID string, folderID *string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	count := 0
	for _, f := range r.s.files {
		if f.OwnerID == ownerID && sameRef(f.FolderID, folderID) {
			count++
		}
	}
	return count, nil
}

func (r *fileRepo) SetFolder(ctx context.Context, id string, folderID *string) (*models.FileMetadata, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	file, ok := r.s.files[id]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", id, common.ErrNotFound)
	}
	file.FolderID = cloneRef(folderID)
	return cloneFile(file), nil
}

func (r *fileRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.files[id]; !ok {
		return fmt.Errorf("file %s: %w", id, common.ErrNotFound)
	}
	delete(r.s.files, id)
	delete(r.s.fileSeq, id)
	return nil
}

// --- helpers ---

func cloneFolder(f *models.Folder) *models.Folder {
	out := *f
	out.ParentID = cloneRef(f.ParentID)
	return &out
}

func cloneFile(f *models.FileMetadata) *models.FileMetadata {
	out := *f
	out.FolderID = cloneRef(f.FolderID)
	return &out
}

func cloneRef(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
