// Command csa analyzes bit-packed binary records against a YAML
// schema descriptor and reports, per field and group, how much of the
// file each field's bits occupy and how compressible they are.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Sewer56/struct-compression-analyzer/analyzer"
	"github.com/Sewer56/struct-compression-analyzer/orchestrate"
	"github.com/Sewer56/struct-compression-analyzer/report"
	"github.com/Sewer56/struct-compression-analyzer/schema"
)

const (
	exitOK       = 0
	exitSchema   = 2
	exitIO       = 3
	exitInternal = 4
)

func exitf(code int, f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	os.Exit(code)
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "    %s analyze-file -schema <schema.yaml> <file>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "    %s analyze-directory -schema <schema.yaml> <dir>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "flag usage:\n")
	flag.Usage()
}

func main() {
	schemaPath := flag.String("schema", "", "path to the schema YAML descriptor")
	outputPath := flag.String("output", "-", "output file, or - for stdout")
	format := flag.String("format", "concise", "report format: concise, detailed, or csv")
	zstdLevel := flag.Int("zstd-level", analyzer.DefaultZstdLevel, "zstd compression level used when estimating size")
	freqCap := flag.Int("freq-cap", analyzer.DefaultFreqCap, "maximum field width, in bits, that still gets a value histogram")
	workers := flag.Int("workers", 0, "worker count for analyze-directory (0 uses all CPUs)")
	flag.Parse()

	args := flag.Args()
	// Flags may also follow the subcommand, as the usage text shows.
	if len(args) > 0 {
		sub := args[0]
		flag.CommandLine.Parse(args[1:])
		args = append([]string{sub}, flag.Args()...)
	}
	if len(args) != 2 {
		usage()
		os.Exit(exitInternal)
	}
	subcommand, target := args[0], args[1]

	if *schemaPath == "" {
		exitf(exitInternal, "missing required -schema flag")
	}
	s, err := schema.Load(*schemaPath)
	if err != nil {
		exitf(exitSchema, "schema: %s", err)
	}

	cfg := orchestrate.Config{
		FreqCap: *freqCap,
		Workers: *workers,
		StatsCfg: analyzer.StatsConfig{
			ZstdLevel: *zstdLevel,
		},
	}
	o := orchestrate.New(s, cfg)

	ctx := context.Background()
	var res *analyzer.Results
	switch subcommand {
	case "analyze-file":
		res, err = o.AnalyzeFile(ctx, target)
	case "analyze-directory":
		res, err = o.AnalyzeDirectory(ctx, target)
	default:
		usage()
		os.Exit(exitInternal)
	}
	if err != nil {
		exitf(exitIO, "%s: %s", subcommand, err)
	}
	if res == nil {
		exitf(exitIO, "%s: no files matched", target)
	}

	out := os.Stdout
	if *outputPath != "-" {
		f, err := os.Create(*outputPath)
		if err != nil {
			exitf(exitIO, "output: %s", err)
		}
		defer f.Close()
		out = f
	}

	rep := analyzer.BuildReport(res)
	switch *format {
	case "concise":
		err = (report.ConciseWriter{}).Print(out, rep)
	case "detailed":
		err = (report.DetailedWriter{}).Print(out, rep)
	case "csv":
		err = report.CSV(out, rep)
	default:
		exitf(exitInternal, "unknown -format %q", *format)
	}
	if err != nil {
		exitf(exitInternal, "report: %s", err)
	}
	os.Exit(exitOK)
}
