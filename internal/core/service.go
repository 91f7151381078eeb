package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/sheetmerge/internal/config"
	"github.com/JonMunkholm/sheetmerge/internal/logging"
	"github.com/JonMunkholm/sheetmerge/internal/merge"
	"github.com/JonMunkholm/sheetmerge/internal/record"
	"github.com/JonMunkholm/sheetmerge/internal/source"
	"github.com/JonMunkholm/sheetmerge/internal/store"
)

// Service is the entry point for imports and reads of the merged set.
type Service struct {
	store   store.Store
	reader  source.Reader
	engine  *merge.Engine
	limiter *ImportLimiter
	history *history
	cfg     *config.Config
}

// NewService wires a store and a reader to a merge engine configured from cfg.
func NewService(st store.Store, rd source.Reader, cfg *config.Config) (*Service, error) {
	if st == nil {
		return nil, errors.New("core: store is required")
	}
	if rd == nil {
		return nil, errors.New("core: reader is required")
	}
	if cfg == nil {
		return nil, errors.New("core: config is required")
	}

	return &Service{
		store:   st,
		reader:  rd,
		engine:  merge.NewEngine(merge.Options{PreferredKeyName: cfg.Merge.PreferredKey}),
		limiter: NewImportLimiter(1, cfg.Import.MaxWaitTime),
		history: newHistory(cfg.Import.HistorySize),
		cfg:     cfg,
	}, nil
}

// StoreName names the storage backend.
func (s *Service) StoreName() string { return s.store.Name() }

// ImportConfigured imports the spreadsheet at the configured source path.
func (s *Service) ImportConfigured(ctx context.Context) (*ImportResult, error) {
	return s.ImportFile(ctx, s.cfg.Source.Path)
}

// ImportFile imports the spreadsheet at path and persists the merged set.
func (s *Service) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	return s.run(ctx, path, false, func(ctx context.Context) (record.Set, error) {
		return s.reader.ReadFile(ctx, path)
	})
}

// ImportUpload imports an uploaded spreadsheet. name supplies the file extension.
func (s *Service) ImportUpload(ctx context.Context, name string, r io.Reader) (*ImportResult, error) {
	return s.run(ctx, filepath.Base(name), false, func(ctx context.Context) (record.Set, error) {
		return s.reader.Read(ctx, name, r)
	})
}

// Records returns the persisted set.
func (s *Service) Records(ctx context.Context) (record.Set, error) {
	return s.store.Load(ctx)
}

// History returns recent imports and previews, newest first.
func (s *Service) History() []ImportResult {
	return s.history.list()
}

// ImportByID returns one entry from the history.
func (s *Service) ImportByID(id string) (ImportResult, error) {
	r, ok := s.history.get(id)
	if !ok {
		return ImportResult{}, fmt.Errorf("%w: %s", ErrImportNotFound, id)
	}
	return r, nil
}

// LimiterStatus reports whether an import is running.
func (s *Service) LimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until the running import finishes or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// run executes one import: read the batch, load the stored set, merge, and save
// unless dryRun. Nothing is written when any step before Save fails, or when the
// batch is empty. Real imports hold the import slot from load to save.
func (s *Service) run(ctx context.Context, src string, dryRun bool, read func(context.Context) (record.Set, error)) (*ImportResult, error) {
	result := ImportResult{
		ImportID:  uuid.NewString(),
		Source:    src,
		DryRun:    dryRun,
		StartedAt: time.Now(),
		ClientIP:  ClientIPFromContext(ctx),
		UserAgent: UserAgentFromContext(ctx),
	}
	logger := logging.WithFields(ctx, "import_id", result.ImportID, "source", src, "dry_run", dryRun)

	report, err := s.execute(ctx, dryRun, read)
	result.DurationMs = time.Since(result.StartedAt).Milliseconds()
	if err != nil {
		result.Error = err.Error()
		s.history.add(result)
		logger.Warn("import failed", "error", err, "duration_ms", result.DurationMs)
		return nil, err
	}

	result.Report = report
	s.history.add(result)
	logger.Info("import complete",
		"status", report.Status,
		"key_column", report.KeyColumn,
		"added", report.Added,
		"updated", report.Updated,
		"duplicates_removed", report.DuplicatesRemoved,
		"discarded", report.Discarded,
		"total_rows", report.TotalRows,
		"duration_ms", result.DurationMs,
	)
	return &result, nil
}

func (s *Service) execute(ctx context.Context, dryRun bool, read func(context.Context) (record.Set, error)) (merge.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Import.Timeout)
	defer cancel()

	if !dryRun {
		if err := s.limiter.Acquire(ctx); err != nil {
			return merge.Report{}, err
		}
		defer s.limiter.Release()
	}

	batch, err := read(ctx)
	if err != nil {
		return merge.Report{}, err
	}

	existing, err := s.store.Load(ctx)
	if err != nil {
		return merge.Report{}, err
	}

	res, err := s.engine.Merge(existing, batch)
	if err != nil {
		return merge.Report{}, err
	}
	if dryRun || res.Report.Empty() {
		return res.Report, nil
	}

	if err := s.store.Save(ctx, res.Records); err != nil {
		return merge.Report{}, err
	}
	return res.Report, nil
}
