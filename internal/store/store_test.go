package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/sheetmerge/internal/record"
)

func TestFileStore_LoadMissing(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "storage", "data.json"))

	set, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, set)
	assert.Empty(t, set)
}

func TestFileStore_LoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	set, err := NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestFileStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path).Load(context.Background())
	assert.ErrorIs(t, err, ErrRead)
}

func TestFileStore_SaveCreatesDirAndRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage", "data.json")
	s := NewFileStore(path)

	want := record.Set{
		record.New("name", "A", "id", 1),
		record.New("id", 2, "name", nil, "active", false),
	}
	require.NoError(t, s.Save(context.Background(), want))

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"name", "id"}, got[0].Keys())
	assert.Equal(t, []string{"id", "name", "active"}, got[1].Keys())
}

func TestFileStore_SaveReplacesAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, "data.json"))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, record.Set{record.New("id", 1), record.New("id", 2)}))
	require.NoError(t, s.Save(ctx, record.Set{record.New("id", 3)}))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "data.json", entries[0].Name())
}

func TestFileStore_SaveNilWritesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, NewFileStore(path).Save(context.Background(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestFileStore_SaveFailureKeepsPreviousSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	s := NewFileStore(path)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, record.Set{record.New("id", 1)}))

	// A directory where the file should be makes the rename fail.
	blocked := NewFileStore(filepath.Join(dir, "blocked"))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "blocked", "child"), 0o755))
	err := blocked.Save(ctx, record.Set{record.New("id", 2)})
	assert.ErrorIs(t, err, ErrWrite)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFileStore_Defaults(t *testing.T) {
	s := NewFileStore("")
	assert.Equal(t, DefaultFilePath, s.Path())
	assert.Equal(t, "file", s.Name())
}
