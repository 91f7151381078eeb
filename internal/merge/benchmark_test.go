package merge

import (
	"strconv"
	"testing"

	"github.com/JonMunkholm/sheetmerge/internal/record"
)

func benchSet(n, offset int) record.Set {
	out := make(record.Set, n)
	for i := range out {
		id := i + offset
		out[i] = record.New(
			"id", id,
			"sku", "SKU-"+strconv.Itoa(id),
			"qty", id%17,
			"active", id%2 == 0,
		)
	}
	return out
}

// ============================================================================
// Merge Benchmarks
// ============================================================================

// BenchmarkMerge_Reimport benchmarks importing a batch that is already stored.
// This is the common case for a daily re-export of the same sheet.
func BenchmarkMerge_Reimport(b *testing.B) {
	existing := benchSet(10000, 0)
	batch := benchSet(10000, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Merge(existing, batch, "id"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkMerge_HalfNew benchmarks a batch where half the keys are new.
func BenchmarkMerge_HalfNew(b *testing.B) {
	existing := benchSet(10000, 0)
	batch := benchSet(10000, 5000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Merge(existing, batch, "id"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSweep benchmarks the duplicate sweep over a set with no repeats.
func BenchmarkSweep(b *testing.B) {
	s := benchSet(10000, 0)
	e := NewEngine(Options{PreferredKeyName: "id"})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Sweep(s)
	}
}

// ============================================================================
// Comparator Benchmarks
// ============================================================================

// BenchmarkIdentical benchmarks full-record equality, run once per matched key.
func BenchmarkIdentical(b *testing.B) {
	a := record.New("id", 1, "sku", "SKU-1", "qty", 5, "active", true)
	c := a.Clone()
	var cmp LooseComparator

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cmp.Identical(a, c)
	}
}
