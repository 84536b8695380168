// Package models defines the vault's persistent record types.
package models

import "time"

// User is an account row in the metadata store.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	PasswordSalt []byte
	CreatedAt    time.Time
}

// Identity is the pair of public account identifiers the encryption key is
// derived from. It comes from the active session and is never mutated by the
// vault.
type Identity struct {
	UserID string
	Email  string
}

// Folder is a node in a user's folder forest. ParentID is nil for folders at
// the vault root; otherwise it references another folder of the same owner.
// The parent relation must stay acyclic.
type Folder struct {
	ID        string
	OwnerID   string
	Name      string
	ParentID  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FileMetadata describes one uploaded file. Name, Size and MimeType refer to
// the original plaintext; StoragePath addresses the encrypted blob in the
// object store. FolderID is nil for files at the vault root.
type FileMetadata struct {
	ID          string
	OwnerID     string
	Name        string
	Size        int64
	MimeType    string
	StoragePath string
	FolderID    *string
	CreatedAt   time.Time
}
