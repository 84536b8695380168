package services

import (
	"context"
	"fmt"
	"time"

	"filevault/internal/blobstore"
	"filevault/internal/common"
	"filevault/internal/cryptox"
	"filevault/internal/logging"
	"filevault/internal/models"
	"filevault/internal/repositories/files"
)

// FileService orchestrates the upload/download pipeline: key derivation,
// encryption, blob storage and the metadata row, in that order. Whole files
// are buffered in memory; there is no streaming or chunking, so the
// practical size ceiling is available memory.
type FileService struct {
	files files.Repository
	blobs blobstore.BlobStore
	codec cryptox.Codec
	log   logging.Logger
	now   func() time.Time
}

func NewFileService(fileRepo files.Repository, blobs blobstore.BlobStore, codec cryptox.Codec, log logging.Logger) *FileService {
	return &FileService{
		files: fileRepo,
		blobs: blobs,
		codec: codec,
		log:   log,
		now:   time.Now,
	}
}

// UploadInput carries one file to be encrypted and stored. Identity supplies
// the key-derivation pair; Name, Size and MimeType describe the plaintext.
type UploadInput struct {
	Identity models.Identity
	Name     string
	MimeType string
	Data     []byte
	FolderID *string
}

// DownloadResult is a decrypted file tagged with its original name and MIME
// type for client consumption.
type DownloadResult struct {
	Name     string
	MimeType string
	Data     []byte
}

// Upload encrypts the payload under the identity-derived key, stores the
// blob, then inserts the metadata row recording the original (pre-encryption)
// name, size and MIME type.
//
// If the metadata insert fails after the blob was stored, the blob is left
// orphaned: the failure is surfaced as-is and a reconciliation pass — not
// this call — is expected to clean up. The file must not appear in listings.
func (s *FileService) Upload(ctx context.Context, in UploadInput) (*models.FileMetadata, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: file name is empty", common.ErrValidation)
	}
	if in.Identity.UserID == "" || in.Identity.Email == "" {
		return nil, fmt.Errorf("%w: incomplete identity", common.ErrValidation)
	}

	key := cryptox.DeriveKey(in.Identity.UserID, in.Identity.Email)

	payload, err := s.codec.Encrypt(in.Data, key)
	if err != nil {
		return nil, fmt.Errorf("encrypting %s: %w", in.Name, err)
	}

	storagePath := s.storagePath(in.Name)
	if err := s.blobs.Put(ctx, storagePath, payload, "application/octet-stream"); err != nil {
		return nil, err
	}

	created, err := s.files.Create(ctx, &models.FileMetadata{
		OwnerID:     in.Identity.UserID,
		Name:        in.Name,
		Size:        int64(len(in.Data)),
		MimeType:    in.MimeType,
		StoragePath: storagePath,
		FolderID:    in.FolderID,
	})
	if err != nil {
		s.log.Warn(ctx, "metadata insert failed after blob store; blob orphaned",
			"storage_path", storagePath, "name", in.Name)
		return nil, err
	}

	s.log.Info(ctx, "file uploaded", "file_id", created.ID, "name", created.Name, "size", created.Size)
	return created, nil
}

// List returns the owner's files in folderID, newest first.
func (s *FileService) List(ctx context.Context, ownerID string, folderID *string) ([]*models.FileMetadata, error) {
	return s.files.ListByFolder(ctx, ownerID, folderID)
}

// Get fetches a file's metadata, scoped to the owner: a file belonging to
// someone else reads as absent.
func (s *FileService) Get(ctx context.Context, fileID, ownerID string) (*models.FileMetadata, error) {
	meta, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if meta.OwnerID != ownerID {
		return nil, fmt.Errorf("file %s: %w", fileID, common.ErrNotFound)
	}
	return meta, nil
}

// Download fetches the encrypted blob, derives the key from the identity and
// decrypts. The result carries the recorded MIME type; whether the bytes are
// actually well-formed for that type is the caller's concern — with the
// legacy codec a wrong key yields garbage, not an error.
func (s *FileService) Download(ctx context.Context, meta *models.FileMetadata, identity models.Identity) (*DownloadResult, error) {
	payload, err := s.blobs.Get(ctx, meta.StoragePath)
	if err != nil {
		return nil, err
	}

	key := cryptox.DeriveKey(identity.UserID, identity.Email)

	plain, err := s.codec.Decrypt(payload, key)
	if err != nil {
		return nil, fmt.Errorf("decrypting %s: %w", meta.Name, err)
	}

	return &DownloadResult{Name: meta.Name, MimeType: meta.MimeType, Data: plain}, nil
}

// Move relocates a file to another folder (nil means the vault root). A pure
// metadata update; the blob does not move.
func (s *FileService) Move(ctx context.Context, fileID string, newFolderID *string) (*models.FileMetadata, error) {
	return s.files.SetFolder(ctx, fileID, newFolderID)
}

// Delete removes the blob and then the metadata row. If the blob removal
// fails the row is kept, so the metadata never points at nothing while the
// blob still exists; the whole operation fails and may be retried.
func (s *FileService) Delete(ctx context.Context, meta *models.FileMetadata) error {
	if err := s.blobs.Delete(ctx, meta.StoragePath); err != nil {
		return err
	}
	if err := s.files.Delete(ctx, meta.ID); err != nil {
		return err
	}
	s.log.Info(ctx, "file deleted", "file_id", meta.ID, "name", meta.Name)
	return nil
}

// storagePath builds the blob address for an upload: upload time in
// milliseconds plus the original name, suffixed to mark the content as
// encrypted. Two uploads of the same name in the same millisecond collide;
// the scheme does not guard against that.
func (s *FileService) storagePath(name string) string {
	return fmt.Sprintf("%d_%s.encrypted", s.now().UnixMilli(), name)
}
