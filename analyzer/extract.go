package analyzer

import (
	"fmt"

	"github.com/Sewer56/struct-compression-analyzer/bitio"
	"github.com/Sewer56/struct-compression-analyzer/schema"
)

// Extraction is the per-file output of Extract: one accumulator per
// schema leaf (indexed by schema.Field.Index), the number of complete
// records consumed, and any recoverable warnings.
type Extraction struct {
	Accumulators []*Accumulator
	RecordCount  uint64
	Warnings     []Warning
}

// Extract demultiplexes data (starting at byte start) into one
// accumulator per leaf of s, walking the schema tree once per record
// in declaration order. freqCap bounds value-frequency histogramming
// (clamped to [1, MaxFreqCap]; DefaultFreqCap if non-positive).
func Extract(s *schema.Schema, data []byte, start int, freqCap int) (*Extraction, error) {
	if freqCap <= 0 {
		freqCap = DefaultFreqCap
	}
	if freqCap > MaxFreqCap {
		freqCap = MaxFreqCap
	}

	accs := make([]*Accumulator, len(s.Leaves))
	for i, f := range s.Leaves {
		accs[i] = NewAccumulator(f, freqCap)
	}

	var warnings []Warning
	for _, f := range s.Leaves {
		if !f.SkipFreq && f.Bits > freqCap {
			warnings = append(warnings, Warning{
				Kind:  WarnFrequencyCapExceeded,
				Field: f.NameStr,
				Message: fmt.Sprintf(
					"field width %d exceeds frequency cap %d: histogram disabled",
					f.Bits, freqCap),
			})
		}
	}

	if start < 0 || start > len(data) {
		start = len(data)
	}
	available := data[start:]

	recordBits := uint64(s.RecordBits)
	totalBits := uint64(len(available)) * 8
	recordCount := totalBits / recordBits
	if recordCount == 0 {
		warnings = append(warnings, Warning{
			Kind:    WarnInputTooShort,
			Message: "file cannot provide even one record after start_offset",
		})
		return &Extraction{Accumulators: accs, RecordCount: 0, Warnings: warnings}, nil
	}

	if residual := totalBits - recordCount*recordBits; residual > 0 {
		warnings = append(warnings, Warning{
			Kind:    WarnResidualBitsDiscarded,
			Message: fmt.Sprintf("%d residual bits discarded", residual),
		})
	}

	skipped := evaluateSkipIfNot(s.Root, available)

	r := bitio.NewReader(available)
	for rec := uint64(0); rec < recordCount; rec++ {
		extractRecord(s.Root, r, accs, skipped)
	}

	return &Extraction{Accumulators: accs, RecordCount: recordCount, Warnings: warnings}, nil
}

// skipSet records, for every node in the schema tree, whether it (or
// an ancestor) failed its skip_if_not predicate. Evaluated once per
// file, before the record loop.
type skipSet map[schema.Node]bool

func evaluateSkipIfNot(root *schema.Group, header []byte) skipSet {
	out := skipSet{}
	var walk func(n schema.Node, inherited bool)
	walk = func(n schema.Node, inherited bool) {
		skip := inherited
		if !skip {
			var conds []schema.Condition
			switch v := n.(type) {
			case *schema.Field:
				conds = v.SkipIfNot
			case *schema.Group:
				conds = v.SkipIfNot
			}
			if len(conds) > 0 && !schema.ConditionsMatch(header, conds) {
				skip = true
			}
		}
		out[n] = skip
		if g, ok := n.(*schema.Group); ok {
			for _, c := range g.Children {
				walk(c, skip)
			}
		}
	}
	walk(root, false)
	return out
}

// extractRecord reads one record's worth of bits from r, in
// declaration order. Skipped fields still have their bits consumed
// from r (the physical record layout is unaffected by skip_if_not) but
// their value is not appended to the accumulator.
func extractRecord(n schema.Node, r *bitio.Reader, accs []*Accumulator, skipped skipSet) {
	switch v := n.(type) {
	case *schema.Field:
		val, err := r.Read(v.Bits, v.Order)
		if err != nil {
			panic("analyzer: extract: " + err.Error())
		}
		if !skipped[n] {
			accs[v.Index].Append(val)
		}
	case *schema.Group:
		for _, c := range v.Children {
			extractRecord(c, r, accs, skipped)
		}
	}
}
