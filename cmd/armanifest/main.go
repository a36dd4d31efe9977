// Command armanifest pairs per-timestamp satellite files with the monthly
// ERA5 file covering them and writes the pairing manifest CSV. Timestamps
// with no covering monthly file are dropped and counted, never fatal.
//
// Configuration comes from the environment: COARSE_DIR, FINE_DIR,
// MANIFEST_PATH.
package main

import (
	"log/slog"
	"os"

	"github.com/munim110/ar-downscaling/internal/config"
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

	builder := manifest.NewBuilder(cfg.CoarseDir, cfg.FineDir, logger)
	entries, dropped, err := builder.Build()
	if err != nil {
		logger.Error("manifest build failed", "error", err)
		os.Exit(1)
	}

	if err := manifest.Write(cfg.ManifestPath, entries); err != nil {
		logger.Error("failed to write manifest", "path", cfg.ManifestPath, "error", err)
		os.Exit(1)
	}
	logger.Info("manifest written",
		"path", cfg.ManifestPath, "entries", len(entries), "dropped", dropped)
}
