package merge

import (
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/sheetmerge/internal/record"
)

// Engine merges record sets. It is safe to reuse but does not coordinate
// concurrent callers.
type Engine struct {
	opts   Options
	cmp    Comparator
	logger *slog.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithComparator replaces the default LooseComparator.
func WithComparator(c Comparator) Option {
	return func(e *Engine) { e.cmp = c }
}

// WithLogger sets the logger used for fallback and validation warnings.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine. An empty PreferredKeyName means DefaultPreferredKey.
func NewEngine(opts Options, options ...Option) *Engine {
	if opts.PreferredKeyName == "" {
		opts.PreferredKeyName = DefaultPreferredKey
	}
	e := &Engine{
		opts:   opts,
		cmp:    LooseComparator{},
		logger: slog.Default(),
	}
	for _, o := range options {
		o(e)
	}
	return e
}

// Merge is the one-call form of the pipeline using the default comparator.
func Merge(existing, batch record.Set, preferredKeyName string) (Result, error) {
	return NewEngine(Options{PreferredKeyName: preferredKeyName}).Merge(existing, batch)
}

// Merge resolves the key from the batch, merges it into existing and sweeps
// exact duplicates. An empty batch returns existing unchanged with StatusEmptyBatch.
func (e *Engine) Merge(existing, batch record.Set) (Result, error) {
	if len(batch) == 0 {
		return Result{
			Records: existing,
			Report:  Report{Status: StatusEmptyBatch},
		}, nil
	}

	key, fellBack, err := ResolveKey(batch[0], e.opts.PreferredKeyName)
	if err != nil {
		return Result{}, err
	}
	if fellBack {
		e.logger.Warn("merge key fallback",
			"preferred_key", e.opts.PreferredKeyName,
			"key_column", key,
		)
	}

	merged, report := e.MergeWithKey(existing, batch, key)
	report.KeyFallback = fellBack
	report.TypeWarnings = e.checkTypes(batch)

	final, removed := e.Sweep(merged)
	report.DuplicatesRemoved += removed
	report.TotalRows = len(final)

	e.logger.Debug("merge complete",
		"key_column", key,
		"existing", len(existing),
		"batch", len(batch),
		"added", report.Added,
		"updated", report.Updated,
		"duplicates_removed", report.DuplicatesRemoved,
		"discarded", report.Discarded,
		"total_rows", report.TotalRows,
	)

	return Result{Records: final, Report: report}, nil
}

// MergeWithKey merges batch into existing using key as record identity.
//
// Existing records keep their positions; an update replaces a record in place.
// New keys are appended in batch order. Existing records without a key are kept
// as they are. Batch records without a key are discarded. When the existing set
// itself repeats a key, the later record takes the earlier one's position.
//
// The returned report has Added, Updated, DuplicatesRemoved, Discarded, KeyColumn
// and Status set; TotalRows is the length of the returned set.
func (e *Engine) MergeWithKey(existing, batch record.Set, key string) (record.Set, Report) {
	report := Report{KeyColumn: key, Status: StatusMerged}

	out := make(record.Set, 0, len(existing)+len(batch))
	index := make(map[string]int, len(existing)+len(batch))

	for _, r := range existing {
		k, ok := e.cmp.Key(r, key)
		if !ok {
			out = append(out, r)
			continue
		}
		if pos, seen := index[k]; seen {
			out[pos] = r
			continue
		}
		index[k] = len(out)
		out = append(out, r)
	}

	for _, r := range batch {
		k, ok := e.cmp.Key(r, key)
		if !ok {
			report.Discarded++
			continue
		}

		pos, seen := index[k]
		switch {
		case !seen:
			index[k] = len(out)
			out = append(out, r)
			report.Added++
		case e.cmp.Identical(out[pos], r):
			report.DuplicatesRemoved++
		default:
			out[pos] = r
			report.Updated++
		}
	}

	report.TotalRows = len(out)
	return out, report
}

// checkTypes compares every batch row against the first one.
func (e *Engine) checkTypes(batch record.Set) []string {
	if len(batch) < 2 {
		return nil
	}

	var warnings []string
	reference := batch[0]
	for i, r := range batch[1:] {
		err := e.cmp.Compatible(r, reference)
		if err == nil {
			continue
		}
		e.logger.Debug("batch row type mismatch", "row", i+2, "error", err)
		if len(warnings) < MaxTypeWarnings {
			warnings = append(warnings, fmt.Sprintf("row %d: %v", i+2, err))
		}
	}
	return warnings
}
