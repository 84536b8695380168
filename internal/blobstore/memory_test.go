package blobstore

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"filevault/internal/common"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	data := []byte("payload")

	if err := store.Put(ctx, "p1", data, ""); err != nil {
		t.Fatalf("put: %v", err)
	}
	if store.Len() != 1 || !store.Has("p1") {
		t.Error("expected one stored blob")
	}

	got, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(data, got) {
		t.Error("round trip mismatch")
	}

	if err := store.Delete(ctx, "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "p1"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(ctx, "p1"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMemoryStore_CopiesData(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	data := []byte("payload")
	if err := store.Put(ctx, "p1", data, ""); err != nil {
		t.Fatalf("put: %v", err)
	}
	data[0] = 'X'

	got, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got[0] != 'p' {
		t.Error("caller mutation leaked into the store")
	}
	got[0] = 'Y'

	again, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again[0] != 'p' {
		t.Error("reader mutation leaked into the store")
	}
}
