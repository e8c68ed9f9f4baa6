package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/Sewer56/struct-compression-analyzer/analyzer"
)

var fieldColumns = []string{
	"path", "original_bits", "original_bytes", "entropy",
	"lz_matches", "estimated_size", "zstd_size", "percent_of_parent",
}

var compareColumns = []string{
	"comparison", "label", "baseline_estimated_size",
	"comparison_estimated_size", "ratio",
}

// CSV writes every field row (flattened, group path as a dotted
// prefix) followed by every compare-group ratio row, each section
// preceded by its own header.
func CSV(w io.Writer, r *analyzer.Report) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(fieldColumns); err != nil {
		return fmt.Errorf("report: csv: %w", err)
	}
	if err := writeFieldRows(cw, r.Root, ""); err != nil {
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("report: csv: %w", err)
	}

	if len(r.CompareGroups) == 0 {
		return nil
	}

	if err := cw.Write(compareColumns); err != nil {
		return fmt.Errorf("report: csv: %w", err)
	}
	for _, cg := range r.CompareGroups {
		for _, label := range cg.ComparisonOrder {
			m := cg.Comparisons[label]
			row := []string{
				cg.Name, label,
				fmt.Sprintf("%.4f", cg.Baseline.EstimatedSize),
				fmt.Sprintf("%.4f", m.EstimatedSize),
				fmt.Sprintf("%.6f", cg.Ratio(label, func(m analyzer.Metrics) float64 { return m.EstimatedSize })),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("report: csv: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeFieldRows(cw *csv.Writer, g *analyzer.GroupReport, prefix string) error {
	path := joinPath(prefix, g.Name)
	for _, f := range g.Fields {
		row := []string{
			joinPath(path, f.Name),
			fmt.Sprintf("%d", f.Metrics.OriginalBits),
			fmt.Sprintf("%d", f.Metrics.OriginalBytes),
			fmt.Sprintf("%.6f", f.Metrics.Entropy),
			fmt.Sprintf("%d", f.Metrics.LZMatches),
			fmt.Sprintf("%.4f", f.Metrics.EstimatedSize),
			fmt.Sprintf("%d", f.Metrics.ZstdSize),
			fmt.Sprintf("%.4f", f.PercentOfParent),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("report: csv: %w", err)
		}
	}
	for _, child := range g.Groups {
		if err := writeFieldRows(cw, child, path); err != nil {
			return err
		}
	}
	return nil
}
