package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"filevault/internal/common"
)

// sessionFile is the on-disk shape of the active session.
type sessionFile struct {
	Token string `json:"token"`
}

// SaveSession writes the session token to path with owner-only permissions,
// creating parent directories as needed.
func SaveSession(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}

	data, err := json.Marshal(sessionFile{Token: token})
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

// LoadSession reads the session token from path. A missing file means the
// user is not logged in.
func LoadSession(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", common.ErrNoSession
		}
		return "", fmt.Errorf("reading session file: %w", err)
	}

	var s sessionFile
	if err := json.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("parsing session file: %w", err)
	}
	if s.Token == "" {
		return "", common.ErrNoSession
	}
	return s.Token, nil
}

// ClearSession removes the session file. Clearing an absent session is not
// an error.
func ClearSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}
