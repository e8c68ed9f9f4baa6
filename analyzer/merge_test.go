package analyzer_test

import (
	"reflect"
	"testing"

	"github.com/Sewer56/struct-compression-analyzer/analyzer"
)

func resultsFromValues(t *testing.T, path string, values []uint64) *analyzer.Results {
	t.Helper()
	s := mustParse(t, bc1Schema)
	var data []byte
	for _, v := range values {
		data = append(data, byte(v>>24), byte(v>>16), byte(v>>8), byte(v), 0, 0, 0, 0)
	}
	ext, err := analyzer.Extract(s, data, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return analyzer.NewResults(s, path, ext, analyzer.DefaultStatsConfig())
}

// TestMergeAssociative checks that merge(a, merge(b,c)) and
// merge(merge(a,b), c) agree pointwise on value counts, histograms and
// per-bit tallies for every leaf (associativity up to concatenation
// order, which only affects LZ/zstd scoring downstream).
func TestMergeAssociative(t *testing.T) {
	a := resultsFromValues(t, "a", []uint64{1, 2})
	b := resultsFromValues(t, "b", []uint64{3})
	c := resultsFromValues(t, "c", []uint64{4, 5, 6})

	left := analyzer.Merge(analyzer.Merge(a, b), c)
	right := analyzer.Merge(a, analyzer.Merge(b, c))

	if left.RecordCount != right.RecordCount {
		t.Fatalf("record counts differ: %d vs %d", left.RecordCount, right.RecordCount)
	}
	for i := range left.Accumulators {
		la, ra := left.Accumulators[i], right.Accumulators[i]
		if la.ValueCount != ra.ValueCount {
			t.Fatalf("leaf %d: value counts differ: %d vs %d", i, la.ValueCount, ra.ValueCount)
		}
		if !reflect.DeepEqual(la.Histogram.Snapshot(), ra.Histogram.Snapshot()) {
			t.Fatalf("leaf %d: histograms differ", i)
		}
		if la.BitCounts != ra.BitCounts {
			t.Fatalf("leaf %d: bit counts differ", i)
		}
	}
}

// TestMergeAllEmpty confirms MergeAll returns nil for an empty slice,
// so callers can treat "no files matched" without a special case.
func TestMergeAllEmpty(t *testing.T) {
	if got := analyzer.MergeAll(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

// TestMergeNilOperands checks Merge's nil-safety: merging with a nil
// Results returns the other operand unchanged.
func TestMergeNilOperands(t *testing.T) {
	a := resultsFromValues(t, "a", []uint64{1})
	if got := analyzer.Merge(nil, a); got != a {
		t.Fatalf("expected Merge(nil, a) == a")
	}
	if got := analyzer.Merge(a, nil); got != a {
		t.Fatalf("expected Merge(a, nil) == a")
	}
}
