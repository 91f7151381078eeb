package merge

import (
	"errors"

	"github.com/JonMunkholm/sheetmerge/internal/record"
)

// DefaultPreferredKey is the key column used when none is configured.
const DefaultPreferredKey = "id"

// MaxTypeWarnings caps the number of type mismatch messages kept in a report.
const MaxTypeWarnings = 20

// ErrUnresolvableKey is returned when the batch's first record has no columns,
// so no key column can be chosen.
var ErrUnresolvableKey = errors.New("unresolvable key: first record of batch has no columns")

// Options configures a merge.
type Options struct {
	// PreferredKeyName is the column used as record identity when the batch has it.
	PreferredKeyName string
}

// Status describes how a merge ended.
type Status string

const (
	StatusMerged     Status = "merged"
	StatusEmptyBatch Status = "empty_batch"
)

// Report summarizes one merge. It is produced per call and never persisted.
type Report struct {
	TotalRows         int      `json:"totalRows"`
	Added             int      `json:"added"`
	Updated           int      `json:"updated"`
	DuplicatesRemoved int      `json:"duplicatesRemoved"`
	KeyColumn         string   `json:"uniqueKeyColumn"`
	Status            Status   `json:"status"`
	KeyFallback       bool     `json:"keyFallback,omitempty"`
	Discarded         int      `json:"discarded"`
	TypeWarnings      []string `json:"typeWarnings,omitempty"`
}

// Empty reports whether the merge was a no-op because the batch had no rows.
func (r Report) Empty() bool {
	return r.Status == StatusEmptyBatch
}

// Result is the outcome of a full merge: the replacement set and its report.
type Result struct {
	Records record.Set
	Report  Report
}
