// Package source reads tabular files (CSV and Excel workbooks) into record sets.
//
// The first row of a sheet is the header. Every data row becomes a record with one
// column per header cell, in header order; missing cells are null. Cell text is typed
// with record.Infer.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/sheetmerge/internal/record"
)

// DefaultMaxFileSize bounds a single source file.
const DefaultMaxFileSize = 50 * 1024 * 1024

// ctxCheckInterval is how many rows are read between context checks.
const ctxCheckInterval = 100

var (
	ErrSourceNotFound    = errors.New("source file not found")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrFileTooLarge      = errors.New("source file too large")
	ErrNoSheet           = errors.New("sheet not found in workbook")
)

// Reader turns a tabular file into a batch of records.
type Reader interface {
	// ReadFile reads the file at path.
	ReadFile(ctx context.Context, path string) (record.Set, error)

	// Read reads an already opened file. name is only used for its extension.
	Read(ctx context.Context, name string, r io.Reader) (record.Set, error)
}

// Format identifies a supported file type.
type Format int

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatWorkbook
)

// DetectFormat maps a file name to its format by extension.
func DetectFormat(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV
	case ".xlsx", ".xlsm":
		return FormatWorkbook
	default:
		return FormatUnknown
	}
}

// TabularReader reads CSV files and Excel workbooks.
type TabularReader struct {
	// SheetName selects the workbook sheet. Empty means the first sheet.
	SheetName string

	// MaxFileSize limits input size in bytes. Zero means DefaultMaxFileSize.
	MaxFileSize int64
}

var _ Reader = (*TabularReader)(nil)

// NewTabularReader creates a reader for the given sheet and size limit.
func NewTabularReader(sheet string, maxFileSize int64) *TabularReader {
	return &TabularReader{SheetName: sheet, MaxFileSize: maxFileSize}
}

func (t *TabularReader) maxSize() int64 {
	if t.MaxFileSize <= 0 {
		return DefaultMaxFileSize
	}
	return t.MaxFileSize
}

// ReadFile implements Reader.
func (t *TabularReader) ReadFile(ctx context.Context, path string) (record.Set, error) {
	if DetectFormat(path) == FormatUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrSourceNotFound, path)
	}
	if info.Size() > t.maxSize() {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, info.Size(), t.maxSize())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	return t.Read(ctx, path, f)
}

// Read implements Reader.
func (t *TabularReader) Read(ctx context.Context, name string, r io.Reader) (record.Set, error) {
	limited := &sizeLimitReader{r: r, remaining: t.maxSize()}

	var (
		rows [][]string
		err  error
	)
	switch DetectFormat(name) {
	case FormatCSV:
		rows, err = readCSVRows(ctx, limited)
	case FormatWorkbook:
		rows, err = readWorkbookRows(ctx, limited, t.SheetName)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
	if err != nil {
		return nil, err
	}

	return buildRecords(rows), nil
}

// sizeLimitReader fails with ErrFileTooLarge once more than remaining bytes are read.
type sizeLimitReader struct {
	r         io.Reader
	remaining int64
}

func (l *sizeLimitReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, ErrFileTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, ErrFileTooLarge
	}
	return n, err
}
