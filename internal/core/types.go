package core

import (
	"errors"
	"time"

	"github.com/JonMunkholm/sheetmerge/internal/merge"
)

// ErrImportNotFound is returned when an import ID is not in the history.
var ErrImportNotFound = errors.New("import not found")

// ImportResult describes one import or preview run.
type ImportResult struct {
	ImportID   string       `json:"importId"`
	Source     string       `json:"source"`
	DryRun     bool         `json:"dryRun"`
	Report     merge.Report `json:"report"`
	StartedAt  time.Time    `json:"startedAt"`
	DurationMs int64        `json:"durationMs"`
	ClientIP   string       `json:"clientIp,omitempty"`
	UserAgent  string       `json:"userAgent,omitempty"`
	Error      string       `json:"error,omitempty"`
}

// Succeeded reports whether the run finished without error.
func (r ImportResult) Succeeded() bool { return r.Error == "" }
