package analyzer

import (
	"github.com/google/uuid"

	"github.com/Sewer56/struct-compression-analyzer/bitio"
	"github.com/Sewer56/struct-compression-analyzer/schema"
)

// Results is the mergeable, write-once-per-file output of one
// extraction: the schema it was extracted against, every leaf's
// accumulator, and bookkeeping needed to merge with another Results
// over a disjoint record set. Reports (the printable, scored view) are
// derived from Results on demand by BuildReport.
type Results struct {
	Schema       *schema.Schema
	Cfg          StatsConfig
	Accumulators []*Accumulator // indexed by schema.Field.Index
	RecordCount  uint64
	Warnings     []Warning
	RunID        uuid.UUID

	// SourcePaths lists every file folded into this Results, in the
	// order they were merged. The orchestrator sorts paths before the
	// first merge so aggregate numbers are reproducible.
	SourcePaths []string

	// LZApprox is the per-leaf LZ match count carried through merges by
	// plain addition rather than recomputation on the concatenated
	// stream — cheap, but blind to matches that straddle a merge
	// boundary. BuildReport always recomputes the exact count from the
	// accumulator's actual bytes; LZApprox is reported alongside it for
	// comparison.
	LZApprox map[string]int
}

// NewResults wraps one file's extraction into a Results ready to merge
// or report on.
func NewResults(s *schema.Schema, path string, ext *Extraction, cfg StatsConfig) *Results {
	cfg = cfg.WithDefaults()
	lz := make(map[string]int, len(ext.Accumulators))
	for _, a := range ext.Accumulators {
		lz[a.Field.NameStr] = countLZMatches(a.Bytes(), cfg.LZWindow, cfg.LZMinMatch)
	}
	return &Results{
		Schema:       s,
		Cfg:          cfg,
		Accumulators: ext.Accumulators,
		RecordCount:  ext.RecordCount,
		Warnings:     ext.Warnings,
		RunID:        uuid.New(),
		SourcePaths:  []string{path},
		LZApprox:     lz,
	}
}

// FieldReport is one leaf's scored output. PercentOfParent is the
// field's estimated size as a percentage of its owning group's
// estimated size (not the root's).
type FieldReport struct {
	Name            string
	Bits            int
	Metrics         Metrics
	LZMatchesApprox int
	BitCounts       [64]BitCount
	Histogram       map[uint64]uint64
	PercentOfParent float64
}

// GroupReport is one group's scored output, mirroring the schema
// tree: Metrics scores the concatenation of every descendant leaf's
// bits, in declaration order. PercentOfParent is this group's
// estimated size as a percentage of its owning group's estimated size;
// the root group has no parent and reports 100.
type GroupReport struct {
	Name            string
	Description     string
	Metrics         Metrics
	PercentOfParent float64
	Fields          []*FieldReport
	Groups          []*GroupReport
}

// SplitGroupReport scores both sides of a split_groups entry.
type SplitGroupReport struct {
	Name        string
	Description string
	Group1      Metrics
	Group2      Metrics
}

// Ratio computes score(group_2)/score(group_1) for the given metric
// selector: the ratio a split-groups entry reports.
func (s SplitGroupReport) Ratio(metric func(Metrics) float64) float64 {
	base := metric(s.Group1)
	if base == 0 {
		return 0
	}
	return metric(s.Group2) / base
}

// CompareGroupReport scores a compare_groups entry's baseline and
// every labeled comparison.
type CompareGroupReport struct {
	Name            string
	Description     string
	Baseline        Metrics
	Comparisons     map[string]Metrics
	ComparisonOrder []string
}

// Ratio computes score(comparison)/score(baseline) for label.
func (c CompareGroupReport) Ratio(label string, metric func(Metrics) float64) float64 {
	base := metric(c.Baseline)
	if base == 0 {
		return 0
	}
	return metric(c.Comparisons[label]) / base
}

// Report is the printable, fully-scored view of a Results: built once,
// after every merge that contributes to it has already happened.
type Report struct {
	RunID         uuid.UUID
	SourcePaths   []string
	RecordCount   uint64
	Warnings      []Warning
	Root          *GroupReport
	SplitGroups   []*SplitGroupReport
	CompareGroups []*CompareGroupReport
}

// BuildReport scores every leaf, group, split-group and compare-group
// of r against r's current accumulators. Because Results always keeps
// its accumulators' real bytes (merging concatenates them, never
// discards them), every metric BuildReport computes is exact for
// whatever Results it is given — including a fully-merged, directory-
// wide Results.
func BuildReport(r *Results) *Report {
	return &Report{
		RunID:         r.RunID,
		SourcePaths:   r.SourcePaths,
		RecordCount:   r.RecordCount,
		Warnings:      r.Warnings,
		Root:          buildGroupReport(r.Schema.Root, r.Accumulators, r.LZApprox, r.Cfg, nil),
		SplitGroups:   buildSplitGroupReports(r.Schema.SplitGroups, r.Accumulators, r.Cfg),
		CompareGroups: buildCompareGroupReports(r.Schema.CompareGroups, r.Schema.DefaultOrder, r.Accumulators, r.Cfg),
	}
}

// buildGroupReport scores g and every descendant. parent is the
// owning group's already-computed Metrics, used to derive g's
// PercentOfParent (g's direct field children are measured against g's
// own Metrics); nil for the root group, which has no parent and
// reports 100.
func buildGroupReport(g *schema.Group, accs []*Accumulator, lzApprox map[string]int, cfg StatsConfig, parent *Metrics) *GroupReport {
	data, bits := concatLeaves(groupLeafIndices(g), accs)
	metrics := Measure(data, bits, cfg)

	gr := &GroupReport{
		Name:            g.Name(),
		Description:     g.Description,
		Metrics:         metrics,
		PercentOfParent: percentOfParent(metrics, parent),
	}
	for _, child := range g.Children {
		switch v := child.(type) {
		case *schema.Field:
			a := accs[v.Index]
			approx, ok := lzApprox[v.NameStr]
			fieldMetrics := Measure(a.Bytes(), a.Bits(), cfg)
			if !ok {
				approx = fieldMetrics.LZMatches
			}
			gr.Fields = append(gr.Fields, &FieldReport{
				Name:            v.NameStr,
				Bits:            v.Bits,
				Metrics:         fieldMetrics,
				LZMatchesApprox: approx,
				BitCounts:       a.BitCounts,
				Histogram:       a.Histogram.Snapshot(),
				PercentOfParent: percentOfParent(fieldMetrics, &metrics),
			})
		case *schema.Group:
			gr.Groups = append(gr.Groups, buildGroupReport(v, accs, lzApprox, cfg, &metrics))
		}
	}
	return gr
}

// percentOfParent reports child's estimated size as a percentage of
// parent's, or 100 if there is no parent (the root group), or 0 if the
// parent is empty.
func percentOfParent(child Metrics, parent *Metrics) float64 {
	if parent == nil {
		return 100
	}
	if parent.EstimatedSize == 0 {
		return 0
	}
	return 100 * child.EstimatedSize / parent.EstimatedSize
}

func groupLeafIndices(g *schema.Group) []int {
	leaves := g.Leaves()
	idx := make([]int, len(leaves))
	for i, f := range leaves {
		idx[i] = f.Index
	}
	return idx
}

func buildSplitGroupReports(sgs []schema.SplitGroup, accs []*Accumulator, cfg StatsConfig) []*SplitGroupReport {
	var out []*SplitGroupReport
	for i := range sgs {
		sg := &sgs[i]
		g1, g2, b1, b2 := ReplaySplitGroup(sg, accs)
		out = append(out, &SplitGroupReport{
			Name:        sg.Name,
			Description: sg.Description,
			Group1:      Measure(g1, b1, cfg),
			Group2:      Measure(g2, b2, cfg),
		})
	}
	return out
}

func buildCompareGroupReports(cgs []schema.CompareGroup, order bitio.Order, accs []*Accumulator, cfg StatsConfig) []*CompareGroupReport {
	var out []*CompareGroupReport
	for i := range cgs {
		cg := &cgs[i]
		baseData, baseBits := ReplayLayoutOps(cg.Baseline, accs, order)
		cr := &CompareGroupReport{
			Name:            cg.Name,
			Description:     cg.Description,
			ComparisonOrder: cg.ComparisonOrder,
			Comparisons:     make(map[string]Metrics, len(cg.ComparisonOrder)),
			Baseline:        Measure(baseData, baseBits, cfg),
		}
		for _, label := range cg.ComparisonOrder {
			data, bits := ReplayLayoutOps(cg.Comparisons[label], accs, order)
			cr.Comparisons[label] = Measure(data, bits, cfg)
		}
		out = append(out, cr)
	}
	return out
}
