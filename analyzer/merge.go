package analyzer

import "github.com/google/uuid"

// Merge combines two Results produced from disjoint record sets under
// the same schema into one. Accumulator bit buffers
// concatenate in merge order (a before b); value counts, per-bit
// counts, and histograms all add pointwise; LZApprox adds per leaf
// (the cheap approximation — BuildReport always recomputes the exact
// count from the concatenated bytes regardless).
//
// The combine is commutative up to concatenation order: swapping a and
// b changes LZ and zstd once a Report is built, but never the
// histograms, per-bit counts, or value counts.
func Merge(a, b *Results) *Results {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}

	out := &Results{
		Schema:      a.Schema,
		Cfg:         a.Cfg,
		RecordCount: a.RecordCount + b.RecordCount,
		RunID:       uuid.New(),
		SourcePaths: append(append([]string{}, a.SourcePaths...), b.SourcePaths...),
	}

	out.Accumulators = make([]*Accumulator, len(a.Accumulators))
	for i := range a.Accumulators {
		out.Accumulators[i] = mergeAccumulator(a.Accumulators[i], b.Accumulators[i])
	}

	out.Warnings = append(append([]Warning{}, a.Warnings...), b.Warnings...)

	out.LZApprox = make(map[string]int, len(a.LZApprox))
	for name, c := range a.LZApprox {
		out.LZApprox[name] = c
	}
	for name, c := range b.LZApprox {
		out.LZApprox[name] += c
	}

	return out
}

// MergeAll folds results left-to-right in the given order (the
// orchestrator sorts by source path first, so aggregate numbers stay
// reproducible run to run). Returns nil for an empty slice.
func MergeAll(results []*Results) *Results {
	var out *Results
	for _, r := range results {
		out = Merge(out, r)
	}
	return out
}
