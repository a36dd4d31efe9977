// Command arassemble splits processed pairs chronologically into train, val,
// and test partitions, computes per-channel normalization statistics on the
// training partition only, and materializes the final dataset layout.
//
// Configuration comes from the environment: MANIFEST_PATH, PROCESSED_DIR,
// FINAL_DIR, VAL_FRACTION, TEST_FRACTION.
package main

import (
	"log/slog"
	"os"

	"github.com/munim110/ar-downscaling/internal/config"
	"github.com/munim110/ar-downscaling/internal/dataset"
	"github.com/munim110/ar-downscaling/internal/manifest"
	"github.com/munim110/ar-downscaling/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg)

	entries, err := manifest.Read(cfg.ManifestPath)
	if err != nil {
		logger.Error("failed to read manifest", "path", cfg.ManifestPath, "error", err)
		os.Exit(1)
	}

	assembler := dataset.NewAssembler(cfg.ProcessedDir, cfg.FinalDir, cfg.ValFraction, cfg.TestFraction, logger)
	stats, err := assembler.Assemble(entries)
	if err != nil {
		logger.Error("dataset assembly failed", "error", err)
		os.Exit(1)
	}

	logger.Info("dataset assembled",
		"final_dir", cfg.FinalDir,
		"target_mean", stats.TargetMean,
		"target_std", stats.TargetStd,
	)
}
