// Package report renders an analyzer.Report to a concise or detailed
// human-readable form, or to CSV.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Sewer56/struct-compression-analyzer/analyzer"
)

// histogramTopK is how many of a field's most frequent values the
// detailed writer prints.
const histogramTopK = 8

// Printer writes one analyzer.Report to w.
type Printer interface {
	Print(w io.Writer, r *analyzer.Report) error
}

// ConciseWriter prints one line per field, and one summary line per
// group: name, bits-per-byte, LZ match count, original/estimated/zstd
// sizes, and percent of the owning group's estimated size.
type ConciseWriter struct{}

func (ConciseWriter) Print(w io.Writer, r *analyzer.Report) error {
	fmt.Fprintf(w, "run %s (%d record(s), %d file(s))\n", r.RunID, r.RecordCount, len(r.SourcePaths))
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn.String())
	}
	return printGroupConcise(w, r.Root, "")
}

func printGroupConcise(w io.Writer, g *analyzer.GroupReport, prefix string) error {
	path := joinPath(prefix, g.Name)
	if _, err := fmt.Fprintf(w, "%-40s %8d B  bpb=%5.2f lz=%5d est=%8.1f B zstd=%8d B (%5.1f%%)\n",
		path, g.Metrics.OriginalBytes, g.Metrics.Entropy, g.Metrics.LZMatches,
		g.Metrics.EstimatedSize, g.Metrics.ZstdSize, g.PercentOfParent); err != nil {
		return err
	}
	for _, f := range g.Fields {
		fp := joinPath(path, f.Name)
		if _, err := fmt.Fprintf(w, "%-40s %8d B  bpb=%5.2f lz=%5d est=%8.1f B zstd=%8d B (%5.1f%%)\n",
			fp, f.Metrics.OriginalBytes, f.Metrics.Entropy, f.Metrics.LZMatches,
			f.Metrics.EstimatedSize, f.Metrics.ZstdSize, f.PercentOfParent); err != nil {
			return err
		}
	}
	for _, child := range g.Groups {
		if err := printGroupConcise(w, child, path); err != nil {
			return err
		}
	}
	return nil
}

// DetailedWriter prints every Metrics field per leaf, plus split-group
// and compare-group ratios.
type DetailedWriter struct{}

func (DetailedWriter) Print(w io.Writer, r *analyzer.Report) error {
	fmt.Fprintf(w, "run %s (%d record(s), %d file(s))\n", r.RunID, r.RecordCount, len(r.SourcePaths))
	for _, path := range r.SourcePaths {
		fmt.Fprintf(w, "  source: %s\n", path)
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn.String())
	}
	if err := printGroupDetailed(w, r.Root, ""); err != nil {
		return err
	}
	for _, sg := range r.SplitGroups {
		fmt.Fprintf(w, "split %s: group_1 %.1f B, group_2 %.1f B, ratio %.4f\n",
			sg.Name, sg.Group1.EstimatedSize, sg.Group2.EstimatedSize,
			sg.Ratio(func(m analyzer.Metrics) float64 { return m.EstimatedSize }))
	}
	for _, cg := range r.CompareGroups {
		fmt.Fprintf(w, "compare %s: baseline %.1f B\n", cg.Name, cg.Baseline.EstimatedSize)
		for _, label := range cg.ComparisonOrder {
			m := cg.Comparisons[label]
			fmt.Fprintf(w, "  %s: %.1f B (ratio %.4f)\n", label, m.EstimatedSize,
				cg.Ratio(label, func(m analyzer.Metrics) float64 { return m.EstimatedSize }))
		}
	}
	return nil
}

func printGroupDetailed(w io.Writer, g *analyzer.GroupReport, prefix string) error {
	path := joinPath(prefix, g.Name)
	fmt.Fprintf(w, "group %s\n", path)
	fmt.Fprintf(w, "  bits=%d bytes=%d entropy=%.4f lz=%d zstd=%d est=%.1f (%.1f%% of parent)\n",
		g.Metrics.OriginalBits, g.Metrics.OriginalBytes, g.Metrics.Entropy,
		g.Metrics.LZMatches, g.Metrics.ZstdSize, g.Metrics.EstimatedSize, g.PercentOfParent)
	for _, f := range g.Fields {
		fmt.Fprintf(w, "  field %s bits=%d bytes=%d entropy=%.4f lz=%d (approx=%d) zstd=%d est=%.1f (%.1f%% of parent)\n",
			joinPath(path, f.Name), f.Metrics.OriginalBits, f.Metrics.OriginalBytes,
			f.Metrics.Entropy, f.Metrics.LZMatches, f.LZMatchesApprox, f.Metrics.ZstdSize,
			f.Metrics.EstimatedSize, f.PercentOfParent)
		if err := printBitDistribution(w, f); err != nil {
			return err
		}
		if err := printHistogramTopK(w, f); err != nil {
			return err
		}
	}
	for _, child := range g.Groups {
		if err := printGroupDetailed(w, child, path); err != nil {
			return err
		}
	}
	return nil
}

// printBitDistribution prints the 0/1 tally at every bit position the
// field actually uses, high bit first.
func printBitDistribution(w io.Writer, f *analyzer.FieldReport) error {
	if _, err := fmt.Fprintf(w, "    bits:"); err != nil {
		return err
	}
	for i := 0; i < f.Bits; i++ {
		c := f.BitCounts[i]
		if _, err := fmt.Fprintf(w, " %d:%d/%d", i, c.Ones, c.Zeros); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// printHistogramTopK prints the histogramTopK most frequent values of
// f, most frequent first, or nothing if histogramming was disabled for
// this field.
func printHistogramTopK(w io.Writer, f *analyzer.FieldReport) error {
	if len(f.Histogram) == 0 {
		return nil
	}
	type entry struct {
		value uint64
		count uint64
	}
	entries := make([]entry, 0, len(f.Histogram))
	for v, c := range f.Histogram {
		entries = append(entries, entry{value: v, count: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].value < entries[j].value
	})
	if len(entries) > histogramTopK {
		entries = entries[:histogramTopK]
	}
	if _, err := fmt.Fprintf(w, "    top values:"); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, " %#x=%d", e.value, e.count); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteByte('.')
	b.WriteString(name)
	return b.String()
}
