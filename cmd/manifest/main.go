// Manifest generator - assigns themes and color presets to a range of
// tracks and writes the batch manifest CSV.
//
// Usage: go run ./cmd/manifest -first 10 -last 100 -out manifest.csv
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/passeth/neural-visuals-v2/pipeline"
	"github.com/passeth/neural-visuals-v2/themes"
)

func main() {
	first := flag.Int("first", 10, "First track number")
	last := flag.Int("last", 100, "Last track number (inclusive)")
	seed := flag.Int64("seed", 0, "Shuffle seed (0 = time-based)")
	outPath := flag.String("out", "manifest.csv", "Output CSV path ('-' = stdout)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	rows, err := pipeline.GenerateManifest(themes.NewRegistry(), pipeline.DefaultQuotas, *first, *last, rand.New(rand.NewSource(rngSeed)))
	if err != nil {
		slog.Error("failed to generate manifest", "error", err)
		os.Exit(1)
	}

	out := os.Stdout
	if *outPath != "-" {
		f, err := os.Create(*outPath)
		if err != nil {
			slog.Error("failed to create manifest", "path", *outPath, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	if err := pipeline.WriteManifest(out, rows); err != nil {
		slog.Error("failed to write manifest", "error", err)
		os.Exit(1)
	}

	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.Theme]++
	}
	slog.Info("manifest written", "path", *outPath, "rows", len(rows), "seed", rngSeed, "themes", counts)
	if *outPath != "-" {
		fmt.Printf("Manifest written to: %s (%d tracks)\n", *outPath, len(rows))
	}
}
