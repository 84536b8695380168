// Package blobstore defines the object-storage port the vault writes
// encrypted blobs through, plus its S3, filesystem and in-memory backends.
package blobstore

import (
	"context"
	"fmt"

	"filevault/internal/config"
)

// BlobStore is the object-storage collaborator contract. Blobs are opaque
// bytes addressed by a storage path; the vault never retries or backs off on
// its own — failures surface to the caller as collaborator errors.
//
// Storage paths are built from an upload timestamp and the original file
// name. Two uploads of the same name in the same millisecond would collide
// and the second Put would overwrite the first; the path scheme does not
// guard against this.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
	Get(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

// Supported backends.
const (
	BackendS3         = "s3"
	BackendFilesystem = "fs"
	BackendMemory     = "memory"
)

// New creates a BlobStore based on the configured backend.
func New(ctx context.Context, cfg *config.Config) (BlobStore, error) {
	switch cfg.BlobBackend {
	case BackendS3:
		return NewS3Store(ctx, cfg)
	case BackendFilesystem, "":
		return NewFilesystemStore(cfg.BlobDir)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown blob backend: %q", cfg.BlobBackend)
	}
}
