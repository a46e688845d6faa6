// Command gapfill repairs an hourly observation feature collection on disk.
// It reads the input document, inserts a placeholder for every missing hour,
// writes the corrected document, and prints the inserted timestamps.
//
// Usage:
//
//	go run ./cmd/gapfill -in data.json -out datafixed.json
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/observation-gapfill/internal/adapter/file"
	"github.com/couchcryptid/observation-gapfill/internal/config"
	"github.com/couchcryptid/observation-gapfill/internal/observability"
	"github.com/couchcryptid/observation-gapfill/internal/report"
)

func main() {
	in := flag.String("in", "data.json", "path of the feature collection to repair")
	out := flag.String("out", "datafixed.json", "path to write the repaired feature collection")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg)

	if err := run(*in, *out, cfg.FillMaxPasses, os.Stdout, logger); err != nil {
		logger.Error("gap fill failed", "error", err, "in", *in)
		os.Exit(1)
	}
}

func run(in, out string, maxPasses int, w io.Writer, logger *slog.Logger) error {
	doc, err := file.ReadDocument(in)
	if err != nil {
		return err
	}

	result, err := doc.Fill(maxPasses)
	if err != nil {
		return fmt.Errorf("fill %s: %w", in, err)
	}

	if err := file.WriteDocument(out, doc); err != nil {
		return err
	}
	logger.Info("document filled",
		"in", in,
		"out", out,
		"observations", len(result.Observations),
		"synthesized", len(result.Synthesized),
		"passes", result.Passes,
	)

	return report.Write(w, result.Synthesized)
}
