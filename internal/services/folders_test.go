package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filevault/internal/common"
	"filevault/internal/logging"
	"filevault/internal/models"
	"filevault/internal/repositories/inmemory"
)

const owner = "owner-1"

func newFolderService(t *testing.T) (*FolderService, *inmemory.Store) {
	t.Helper()
	store := inmemory.NewStore()
	return NewFolderService(store.Folders(), store.Files(), logging.NewDiscardLogger()), store
}

func mustCreate(t *testing.T, s *FolderService, name string, parentID *string) *models.Folder {
	t.Helper()
	folder, err := s.Create(context.Background(), owner, name, parentID)
	require.NoError(t, err)
	return folder
}

func TestFolderCreate_TrimsAndValidatesName(t *testing.T) {
	s, _ := newFolderService(t)
	ctx := context.Background()

	folder := mustCreate(t, s, "  Docs  ", nil)
	assert.Equal(t, "Docs", folder.Name)

	_, err := s.Create(ctx, owner, "   ", nil)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestFolderCreate_MissingParent(t *testing.T) {
	s, _ := newFolderService(t)

	missing := "no-such-folder"
	_, err := s.Create(context.Background(), owner, "Docs", &missing)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestFolderCreate_ForeignParentReadsAsAbsent(t *testing.T) {
	s, _ := newFolderService(t)
	ctx := context.Background()

	theirs, err := s.Create(ctx, "someone-else", "Theirs", nil)
	require.NoError(t, err)

	_, err = s.Create(ctx, owner, "Docs", &theirs.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestFolderCreate_SiblingsMayShareAName(t *testing.T) {
	s, _ := newFolderService(t)
	ctx := context.Background()

	mustCreate(t, s, "Docs", nil)
	mustCreate(t, s, "Docs", nil)

	children, err := s.ListChildren(ctx, owner, nil)
	require.NoError(t, err)
	assert.Len(t, children, 2)
}

func TestListChildren_OrderedByName(t *testing.T) {
	s, _ := newFolderService(t)

	mustCreate(t, s, "beta", nil)
	mustCreate(t, s, "alpha", nil)
	mustCreate(t, s, "gamma", nil)

	children, err := s.ListChildren(context.Background(), owner, nil)
	require.NoError(t, err)

	names := []string{}
	for _, f := range children {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, names)
}

func TestRename_Validates(t *testing.T) {
	s, _ := newFolderService(t)
	ctx := context.Background()

	folder := mustCreate(t, s, "Docs", nil)

	renamed, err := s.Rename(ctx, folder.ID, "Archive")
	require.NoError(t, err)
	assert.Equal(t, "Archive", renamed.Name)

	_, err = s.Rename(ctx, folder.ID, "  ")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestResolvePath_RootToLeaf(t *testing.T) {
	s, _ := newFolderService(t)
	ctx := context.Background()

	docs := mustCreate(t, s, "Docs", nil)
	y2024 := mustCreate(t, s, "2024", &docs.ID)
	q1 := mustCreate(t, s, "Q1", &y2024.ID)

	path, err := s.ResolvePath(ctx, &q1.ID)
	require.NoError(t, err)
	require.Len(t, path, 3)
	assert.Equal(t, "Docs", path[0].Name)
	assert.Equal(t, "2024", path[1].Name)
	assert.Equal(t, "Q1", path[2].Name)

	empty, err := s.ResolvePath(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMove_RejectsSelfAndDescendants(t *testing.T) {
	s, _ := newFolderService(t)
	ctx := context.Background()

	a := mustCreate(t, s, "A", nil)
	b := mustCreate(t, s, "B", &a.ID)
	c := mustCreate(t, s, "C", &b.ID)

	_, err := s.Move(ctx, a.ID, &a.ID)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = s.Move(ctx, a.ID, &c.ID)
	assert.ErrorIs(t, err, common.ErrValidation)

	// sideways move stays legal
	moved, err := s.Move(ctx, c.ID, &a.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, a.ID, *moved.ParentID)

	// to the root
	moved, err = s.Move(ctx, b.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)
}

// After any sequence of creates and moves, walking parent pointers from any
// folder must reach the root within the total folder count.
func TestTreeStaysAcyclic(t *testing.T) {
	s, _ := newFolderService(t)
	ctx := context.Background()

	a := mustCreate(t, s, "A", nil)
	b := mustCreate(t, s, "B", &a.ID)
	c := mustCreate(t, s, "C", &b.ID)
	d := mustCreate(t, s, "D", &c.ID)

	_, err := s.Move(ctx, d.ID, &a.ID)
	require.NoError(t, err)
	_, err = s.Move(ctx, c.ID, &d.ID)
	require.NoError(t, err)

	for _, folder := range []*models.Folder{a, b, c, d} {
		path, err := s.ResolvePath(ctx, &folder.ID)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(path), 4)
	}
}

func TestDelete_CascadesToContents(t *testing.T) {
	s, store := newFolderService(t)
	ctx := context.Background()

	a := mustCreate(t, s, "A", nil)
	b := mustCreate(t, s, "B", &a.ID)

	_, err := store.Files().Create(ctx, &models.FileMetadata{OwnerID: owner, Name: "f.txt", FolderID: &a.ID})
	require.NoError(t, err)
	_, err = store.Files().Create(ctx, &models.FileMetadata{OwnerID: owner, Name: "g.txt", FolderID: &b.ID})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, a.ID))

	children, err := s.ListChildren(ctx, owner, nil)
	require.NoError(t, err)
	assert.Empty(t, children)

	for _, id := range []*string{&a.ID, &b.ID} {
		left, err := store.Files().ListByFolder(ctx, owner, id)
		require.NoError(t, err)
		assert.Empty(t, left)
	}

	err = s.Delete(ctx, a.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCountFiles_NotRecursive(t *testing.T) {
	s, store := newFolderService(t)
	ctx := context.Background()

	a := mustCreate(t, s, "A", nil)
	b := mustCreate(t, s, "B", &a.ID)

	_, err := store.Files().Create(ctx, &models.FileMetadata{OwnerID: owner, Name: "f.txt", FolderID: &a.ID})
	require.NoError(t, err)
	_, err = store.Files().Create(ctx, &models.FileMetadata{OwnerID: owner, Name: "g.txt", FolderID: &b.ID})
	require.NoError(t, err)

	count, err := s.CountFiles(ctx, owner, &a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	rootCount, err := s.CountFiles(ctx, owner, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, rootCount)
}

// A corrupted parent pointer must terminate with an error, not hang.
func TestResolvePath_CorruptedCycle(t *testing.T) {
	s, store := newFolderService(t)
	ctx := context.Background()

	a := mustCreate(t, s, "A", nil)
	b := mustCreate(t, s, "B", &a.ID)

	// corrupt the store directly, bypassing the service's guard
	_, err := store.Folders().SetParent(ctx, a.ID, &b.ID)
	require.NoError(t, err)

	_, err = s.ResolvePath(ctx, &b.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrCollaborator))
}
