package inmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	"filevault/internal/common"
	"filevault/internal/models"
)

func TestFolderDelete_CascadesSubtree(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	a, err := store.Folders().Create(ctx, &models.Folder{OwnerID: "u1", Name: "A"})
	if err != nil {
		t.Fatalf("create A: %v", err)
	}
	b, err := store.Folders().Create(ctx, &models.Folder{OwnerID: "u1", Name: "B", ParentID: &a.ID})
	if err != nil {
		t.Fatalf("create B: %v", err)
	}
	c, err := store.Folders().Create(ctx, &models.Folder{OwnerID: "u1", Name: "C", ParentID: &b.ID})
	if err != nil {
		t.Fatalf("create C: %v", err)
	}
	sibling, err := store.Folders().Create(ctx, &models.Folder{OwnerID: "u1", Name: "Sibling"})
	if err != nil {
		t.Fatalf("create Sibling: %v", err)
	}

	if _, err := store.Files().Create(ctx, &models.FileMetadata{OwnerID: "u1", Name: "deep.txt", FolderID: &c.ID}); err != nil {
		t.Fatalf("create file: %v", err)
	}
	if _, err := store.Files().Create(ctx, &models.FileMetadata{OwnerID: "u1", Name: "kept.txt", FolderID: &sibling.ID}); err != nil {
		t.Fatalf("create file: %v", err)
	}

	if err := store.Folders().Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	for _, id := range []string{a.ID, b.ID, c.ID} {
		if _, err := store.Folders().GetByID(ctx, id); !errors.Is(err, common.ErrNotFound) {
			t.Errorf("folder %s: expected ErrNotFound, got %v", id, err)
		}
	}
	if _, err := store.Folders().GetByID(ctx, sibling.ID); err != nil {
		t.Errorf("sibling should survive: %v", err)
	}

	deep, err := store.Files().ListByFolder(ctx, "u1", &c.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(deep) != 0 {
		t.Errorf("expected cascaded file removal, got %d files", len(deep))
	}

	kept, err := store.Files().ListByFolder(ctx, "u1", &sibling.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(kept) != 1 {
		t.Errorf("expected sibling's file to survive, got %d files", len(kept))
	}
}

func TestFileListByFolder_NewestFirstWithSequenceTiebreak(t *testing.T) {
	store := NewStore()
	pinned := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return pinned })
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		if _, err := store.Files().Create(ctx, &models.FileMetadata{OwnerID: "u1", Name: name}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	result, err := store.Files().ListByFolder(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("expected 3 files, got %d", len(result))
	}
	// same timestamp everywhere, so the latest insert wins
	if result[0].Name != "third" || result[2].Name != "first" {
		t.Errorf("unexpected order: %s, %s, %s", result[0].Name, result[1].Name, result[2].Name)
	}
}

func TestRepositories_ReturnCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	folder, err := store.Folders().Create(ctx, &models.Folder{OwnerID: "u1", Name: "Docs"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	folder.Name = "mutated"
	other := "elsewhere"
	folder.ParentID = &other

	reread, err := store.Folders().GetByID(ctx, folder.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reread.Name != "Docs" || reread.ParentID != nil {
		t.Errorf("caller mutation leaked into the store: %+v", reread)
	}
}

func TestOwnersAreIsolated(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if _, err := store.Folders().Create(ctx, &models.Folder{OwnerID: "u1", Name: "Mine"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	result, err := store.Folders().ListByParent(ctx, "u2", nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("expected no folders for another owner, got %d", len(result))
	}
}
