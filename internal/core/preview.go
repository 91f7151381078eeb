package core

import (
	"context"
	"io"
	"path/filepath"

	"github.com/JonMunkholm/sheetmerge/internal/record"
)

// Preview runs a full merge of an uploaded file against the stored set and
// reports what an import would do. Nothing is saved and the import slot is not taken.
func (s *Service) Preview(ctx context.Context, name string, r io.Reader) (*ImportResult, error) {
	return s.run(ctx, filepath.Base(name), true, func(ctx context.Context) (record.Set, error) {
		return s.reader.Read(ctx, name, r)
	})
}

// PreviewFile is Preview for the file at path.
func (s *Service) PreviewFile(ctx context.Context, path string) (*ImportResult, error) {
	return s.run(ctx, path, true, func(ctx context.Context) (record.Set, error) {
		return s.reader.ReadFile(ctx, path)
	})
}
