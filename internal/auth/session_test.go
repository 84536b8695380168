package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"filevault/internal/common"
)

func TestSession_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	if err := SaveSession(path, "token-value"); err != nil {
		t.Fatalf("save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected 0600 permissions, got %o", perm)
	}

	token, err := LoadSession(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if token != "token-value" {
		t.Errorf("unexpected token: %q", token)
	}
}

func TestLoadSession_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	if _, err := LoadSession(path); !errors.Is(err, common.ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestClearSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	if err := SaveSession(path, "token-value"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := ClearSession(path); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := LoadSession(path); !errors.Is(err, common.ErrNoSession) {
		t.Errorf("expected ErrNoSession after clear, got %v", err)
	}

	// clearing twice is fine
	if err := ClearSession(path); err != nil {
		t.Errorf("second clear: %v", err)
	}
}
