package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/sheetmerge/internal/record"
)

// DefaultFilePath is where the file store keeps the set when no path is configured.
const DefaultFilePath = "storage/data.json"

// FileStore keeps the set as an indented JSON array in one file.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store backed by path. An empty path means DefaultFilePath.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFilePath
	}
	return &FileStore{path: path}
}

// Path returns the file the store reads and writes.
func (s *FileStore) Path() string { return s.path }

// Name implements Store.
func (s *FileStore) Name() string { return "file" }

// Load implements Store. A missing file is an empty set.
func (s *FileStore) Load(ctx context.Context) (record.Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return record.Set{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrRead, s.path, err)
	}
	defer f.Close()

	set, err := record.DecodeSet(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrRead, s.path, err)
	}
	return set, nil
}

// Save implements Store. The set is written to a temp file in the same directory,
// synced, and renamed over the old file.
func (s *FileStore) Save(ctx context.Context, set record.Set) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrWrite, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrWrite, err)
	}
	tmpPath := tmp.Name()

	if err := writeAndSync(tmp, set); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: write %s: %v", ErrWrite, tmpPath, err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: rename %s -> %s: %v", ErrWrite, tmpPath, s.path, err)
	}
	return nil
}

func writeAndSync(f *os.File, set record.Set) error {
	if err := record.EncodeSet(f, set); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
