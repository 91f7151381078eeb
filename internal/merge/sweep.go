package merge

import (
	"sort"
	"strconv"
	"strings"

	"github.com/JonMunkholm/sheetmerge/internal/record"
)

// Sweep drops exact repeats from set, keeping the first occurrence of each
// distinct record. Two records repeat each other when they have the same column
// set and every column holds the same kind and content, regardless of column
// order. It returns the kept records and how many were dropped.
func (e *Engine) Sweep(set record.Set) (record.Set, int) {
	seen := make(map[string]struct{}, len(set))
	out := make(record.Set, 0, len(set))

	for _, r := range set {
		sig := canonical(r)
		if _, dup := seen[sig]; dup {
			continue
		}
		seen[sig] = struct{}{}
		out = append(out, r)
	}

	return out, len(set) - len(out)
}

// canonical serializes r with sorted column names and kind-tagged values.
func canonical(r record.Record) string {
	cols := r.Keys()
	sort.Strings(cols)

	var b strings.Builder
	for _, col := range cols {
		v, _ := r.Get(col)
		b.WriteString(strconv.Quote(col))
		b.WriteByte('=')
		b.WriteByte(byte('0' + v.Kind()))
		b.WriteByte(':')
		b.WriteString(strconv.Quote(v.Text()))
		b.WriteByte(';')
	}
	return b.String()
}
