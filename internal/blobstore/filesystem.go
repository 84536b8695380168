package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"filevault/internal/common"
)

// FilesystemStore stores blobs as files under a root directory. Useful for
// development and single-machine deployments.
type FilesystemStore struct {
	root string
}

var _ BlobStore = (*FilesystemStore)(nil)

func NewFilesystemStore(root string) (*FilesystemStore, error) {
	if root == "" {
		return nil, fmt.Errorf("blob directory is not configured")
	}
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}
	return &FilesystemStore{root: root}, nil
}

func (s *FilesystemStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0700); err != nil {
		return fmt.Errorf("%w: creating blob subdirectory: %v", common.ErrCollaborator, err)
	}
	if err := os.WriteFile(full, data, 0600); err != nil {
		return fmt.Errorf("%w: writing blob %s: %v", common.ErrCollaborator, path, err)
	}
	return nil
}

func (s *FilesystemStore) Get(ctx context.Context, path string) ([]byte, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("blob %s: %w", path, common.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: reading blob %s: %v", common.ErrCollaborator, path, err)
	}
	return data, nil
}

func (s *FilesystemStore) Delete(ctx context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("blob %s: %w", path, common.ErrNotFound)
		}
		return fmt.Errorf("%w: deleting blob %s: %v", common.ErrCollaborator, path, err)
	}
	return nil
}

// resolve maps a storage path to a location under the root, rejecting paths
// that would escape it.
func (s *FilesystemStore) resolve(path string) (string, error) {
	if path == "" || strings.HasPrefix(path, "/") {
		return "", fmt.Errorf("%w: invalid storage path %q", common.ErrValidation, path)
	}
	clean := filepath.Clean(path)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: invalid storage path %q", common.ErrValidation, path)
	}
	return filepath.Join(s.root, clean), nil
}
