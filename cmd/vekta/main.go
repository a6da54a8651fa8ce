// Command vekta is the CLI entry point: add, list, search, and config
// subcommands over a single packed record store (spec §6).
//
// Grounded on original_source/src/main.rs for the subcommand shape and
// exit-code mapping; no CLI framework is used because none appears
// anywhere in the retrieval pack's go.mod files, so dispatch is a plain
// os.Args[1] switch, in the pack's own idiom.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rahulunair/vekta/config"
	"github.com/rahulunair/vekta/logging"
	"github.com/rahulunair/vekta/metrics"
	"github.com/rahulunair/vekta/query"
	"github.com/rahulunair/vekta/record"
	"github.com/rahulunair/vekta/store"
	"github.com/rahulunair/vekta/wire"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "usage: vekta <add|list|search|config> [-config path]")
		return 1
	}

	sub := args[0]
	fs := flag.NewFlagSet(sub, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to vekta.yaml (default: $VEKTA_CONFIG or ./vekta.yaml)")
	if err := fs.Parse(args[1:]); err != nil {
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, "config error:", err)
		return 1
	}
	logger := logging.New(cfg.Verbose)

	switch sub {
	case "config":
		return cmdConfig(cfg, stdout)
	case "add":
		return cmdAdd(cfg, logger, stdin, stderr)
	case "list":
		return cmdList(cfg, logger, stdout, stderr)
	case "search":
		return cmdSearch(cfg, logger, stdin, stdout, stderr)
	default:
		fmt.Fprintln(stderr, "unknown command:", sub)
		return 1
	}
}

func cmdConfig(cfg config.Config, stdout io.Writer) int {
	fmt.Fprintf(stdout, "path=%s\n", cfg.Path)
	fmt.Fprintf(stdout, "dimensions=%d\n", cfg.Dimensions)
	fmt.Fprintf(stdout, "label_size=%d\n", cfg.LabelSize)
	fmt.Fprintf(stdout, "top_k=%d\n", cfg.TopK)
	fmt.Fprintf(stdout, "search_method=%s\n", cfg.SearchMethod)
	fmt.Fprintf(stdout, "ann_num_projections=%d\n", cfg.ANNNumProjections)
	fmt.Fprintf(stdout, "workers=%d\n", cfg.Workers)
	fmt.Fprintf(stdout, "verbose=%t\n", cfg.Verbose)
	return 0
}

func layoutFromConfig(cfg config.Config) record.Layout {
	return record.Layout{LabelSize: cfg.LabelSize, Dimensions: cfg.Dimensions}
}

// newCollector builds a fresh Prometheus-backed metrics.Collector for one
// CLI invocation. Each call gets its own registry: vekta is invoked once
// per command, not scraped, so there is nothing to share across runs and
// nothing to gain from a package-level registry.
func newCollector() metrics.Collector {
	return metrics.NewPrometheus(prometheus.NewRegistry())
}

// l2Normalize returns v scaled to unit L2 norm. A zero vector is returned
// unchanged rather than divided by zero, matching the kernel's treatment
// of zero vectors as a degenerate but valid input (spec §3).
func l2Normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return v
	}
	norm := float32(math.Sqrt(sumSq))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func cmdAdd(cfg config.Config, logger *logging.Logger, stdin io.Reader, stderr io.Writer) int {
	collector := newCollector()
	st, err := store.Open(cfg.Path, layoutFromConfig(cfg), logger, collector)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitCode(err)
	}
	defer st.Close()

	allOK := true
	err = wire.ReadRecords(stdin, func(line int, rec wire.InputRecord, parseErr error) error {
		if parseErr != nil {
			logger.SkippedRecord(line, parseErr)
			collector.RecordSkipped()
			allOK = false
			return nil
		}
		vec := l2Normalize(rec.Vector)
		if appendErr := st.Append(record.Record{Label: rec.Label, Vector: vec}); appendErr != nil {
			if errors.Is(appendErr, store.ErrConfigMismatch) || errors.Is(appendErr, store.ErrCorruptLength) {
				return appendErr
			}
			logger.SkippedRecord(line, appendErr)
			collector.RecordSkipped()
			allOK = false
			return nil
		}
		return nil
	})
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitCode(err)
	}
	if !allOK {
		return 2
	}
	return 0
}

func cmdList(cfg config.Config, logger *logging.Logger, stdout, stderr io.Writer) int {
	st, err := store.Open(cfg.Path, layoutFromConfig(cfg), logger, newCollector())
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitCode(err)
	}
	defer st.Close()

	release, err := st.AcquireShared()
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitCode(err)
	}
	defer release()

	err = st.Iter(func(_ int, r record.Record) error {
		return wire.WriteRecord(stdout, wire.InputRecord{Label: r.Label, Vector: r.Vector})
	})
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitCode(err)
	}
	return 0
}

func cmdSearch(cfg config.Config, logger *logging.Logger, stdin io.Reader, stdout, stderr io.Writer) int {
	collector := newCollector()
	st, err := store.Open(cfg.Path, layoutFromConfig(cfg), logger, collector)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitCode(err)
	}
	defer st.Close()

	req, err := wire.ReadOne(stdin)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}
	scoringVector := l2Normalize(req.Vector)

	method := query.MethodExact
	if cfg.SearchMethod == config.SearchANN {
		method = query.MethodANN
	}
	coord, err := query.New(st, method, cfg.ANNNumProjections, cfg.Workers, logger.LSHFallback, collector)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitCode(err)
	}

	release, err := st.AcquireShared()
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitCode(err)
	}
	defer release()

	results, err := coord.Search(context.Background(), scoringVector, cfg.TopK)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitCode(err)
	}

	hits := make([]wire.ResultHit, len(results))
	for i, r := range results {
		hits[i] = wire.ResultHit{Label: r.Label, Similarity: r.Similarity}
	}
	resp := wire.SearchResponse{
		Query:   wire.InputRecord{Label: req.Label, Vector: req.Vector},
		Results: hits,
	}
	if err := wire.WriteSearchResponse(stdout, resp); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitCode(err)
	}
	return 0
}

// exitCode maps an error to spec §6/§7's exit-code table: 1 configuration
// error, 2 input parse error (including DimensionMismatch, LabelTooLong,
// NonFinite), 3 I/O or lock error. A store opened under a config that
// mismatches its on-disk manifest is a DimensionMismatch, not an I/O
// failure, so it exits 2 alongside the rest of that bucket.
func exitCode(err error) int {
	switch {
	case errors.Is(err, config.ErrInvalidDimensions):
		return 1
	case errors.Is(err, record.ErrDimensionMismatch),
		errors.Is(err, record.ErrLabelTooLong),
		errors.Is(err, record.ErrNonFinite),
		errors.Is(err, query.ErrDimensionMismatch),
		errors.Is(err, store.ErrConfigMismatch):
		return 2
	case errors.Is(err, store.ErrCorruptLength):
		return 3
	default:
		return 3
	}
}
