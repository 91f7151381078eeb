package merge

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JonMunkholm/sheetmerge/internal/record"
)

// Comparator decides record identity and equality for a merge.
type Comparator interface {
	// Key returns the identity of r under column, or false when r has no usable key.
	Key(r record.Record, column string) (string, bool)

	// Identical reports whether a and b are the same row for deduplication.
	Identical(a, b record.Record) bool

	// Compatible checks row's value kinds against a reference row.
	// A non-nil error describes the first mismatch; it is advisory only.
	Compatible(row, reference record.Record) error
}

// LooseComparator compares values by their trimmed text form,
// so "5" and 5 are equal and null equals "".
type LooseComparator struct{}

var _ Comparator = LooseComparator{}

// Key returns the normalized text of the column. Missing, null and blank values have no key.
func (LooseComparator) Key(r record.Record, column string) (string, bool) {
	v, ok := r.Get(column)
	if !ok || v.IsNull() {
		return "", false
	}
	k := v.Normalized()
	return k, k != ""
}

// Identical is true when both records have the same column set and every column
// has the same normalized text.
func (LooseComparator) Identical(a, b record.Record) bool {
	if a.Len() != b.Len() {
		return false
	}
	for _, col := range a.Keys() {
		bv, ok := b.Get(col)
		if !ok {
			return false
		}
		av, _ := a.Get(col)
		if av.Normalized() != bv.Normalized() {
			return false
		}
	}
	return true
}

// Compatible walks the reference's columns. Null on either side is never a mismatch;
// a numeric string is accepted where the reference holds a number.
func (LooseComparator) Compatible(row, reference record.Record) error {
	for _, col := range reference.Keys() {
		ref, _ := reference.Get(col)
		got, ok := row.Get(col)
		if !ok || got.IsNull() || ref.IsNull() {
			continue
		}
		if got.Kind() == ref.Kind() {
			continue
		}
		if got.Kind() == record.KindString && ref.Kind() == record.KindNumber && isNumeric(got.Text()) {
			continue
		}
		return fmt.Errorf("type mismatch for field '%s': expected %s, got %s", col, ref.Kind(), got.Kind())
	}
	return nil
}

func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		// Blank text converts to a number.
		return true
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
