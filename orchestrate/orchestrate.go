// Package orchestrate drives one or many file extractions across a
// worker pool and reduces their results into a single, reproducible
// Results tree.
package orchestrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/Sewer56/struct-compression-analyzer/analyzer"
	"github.com/Sewer56/struct-compression-analyzer/schema"
)

// Config tunes a run across every file it touches.
type Config struct {
	FreqCap  int
	StatsCfg analyzer.StatsConfig
	Workers  int // 0 uses runtime.GOMAXPROCS(0)
}

func (c Config) withDefaults() Config {
	if c.Workers < 1 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	c.StatsCfg = c.StatsCfg.WithDefaults()
	return c
}

// Orchestrator analyzes one file or a directory tree of files against
// one schema.
type Orchestrator struct {
	Schema *schema.Schema
	Cfg    Config
}

// New builds an Orchestrator for s, applying cfg's defaults.
func New(s *schema.Schema, cfg Config) *Orchestrator {
	return &Orchestrator{Schema: s, Cfg: cfg.withDefaults()}
}

// AnalyzeFile extracts and scores a single file.
func (o *Orchestrator) AnalyzeFile(ctx context.Context, path string) (*analyzer.Results, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("orchestrate: read %s: %w", path, err)
	}
	start := schema.ResolveOffset(data, o.Schema.ConditionalOffsets)
	ext, err := analyzer.Extract(o.Schema, data, start, o.Cfg.FreqCap)
	if err != nil {
		return nil, fmt.Errorf("orchestrate: extract %s: %w", path, err)
	}
	return analyzer.NewResults(o.Schema, path, ext, o.Cfg.StatsCfg), nil
}

// AnalyzeDirectory walks root, analyzes every regular file it finds in
// path-sorted order across a worker pool sized by Cfg.Workers, and
// folds the per-file results left to right into one aggregate. A
// context cancellation checked before each dispatch drops any
// not-yet-started file; results already in flight still complete but
// are discarded rather than merged once cancellation is observed.
func (o *Orchestrator) AnalyzeDirectory(ctx context.Context, root string) (*analyzer.Results, error) {
	paths, err := listFiles(root)
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	type outcome struct {
		idx int
		res *analyzer.Results
		err error
	}
	results := make([]*analyzer.Results, len(paths))
	outcomes := make(chan outcome, len(paths))

	pool := newWorkerPool(o.Cfg.Workers)
	var dispatched int
	for i, p := range paths {
		if ctx.Err() != nil {
			break
		}
		i, p := i, p
		pool.Enqueue(func() {
			res, err := o.AnalyzeFile(ctx, p)
			outcomes <- outcome{idx: i, res: res, err: err}
		})
		dispatched++
	}
	pool.Close()

	var firstErr error
	for n := 0; n < dispatched; n++ {
		oc := <-outcomes
		if oc.err != nil && firstErr == nil {
			firstErr = oc.err
		}
		results[oc.idx] = oc.res
	}
	pool.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return analyzer.MergeAll(results), nil
}

func listFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("orchestrate: walk %s: %w", root, err)
	}
	return out, nil
}
