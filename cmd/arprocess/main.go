// Command arprocess runs the pair-processing stage: each manifest entry is
// turned into a regridded predictor stack and target grid saved as .npy
// artifacts. Entries run on a bounded worker pool; failures are logged and
// tallied, never fatal. Health, readiness, progress, and Prometheus metrics
// are served over HTTP for the duration of the run.
//
// Configuration comes from the environment: MANIFEST_PATH, PROCESSED_DIR,
// MAX_WORKERS, COARSE_INTERVAL, HTTP_ADDR.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/munim110/ar-downscaling/internal/adapter/http"
	"github.com/munim110/ar-downscaling/internal/adapter/netcdf"
	"github.com/munim110/ar-downscaling/internal/config"
	"github.com/munim110/ar-downscaling/internal/manifest"
	"github.com/munim110/ar-downscaling/internal/observability"
	"github.com/munim110/ar-downscaling/internal/pipeline"
)

// granuleOpener bridges the netcdf adapter to the pipeline's opener
// interface.
type granuleOpener struct{}

func (granuleOpener) OpenCoarse(path string) (pipeline.CoarseGranule, error) {
	g, err := netcdf.OpenCoarse(path)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (granuleOpener) OpenFine(path string) (pipeline.FineGranule, error) {
	g, err := netcdf.OpenFine(path)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	entries, err := manifest.Read(cfg.ManifestPath)
	if err != nil {
		logger.Error("failed to read manifest", "path", cfg.ManifestPath, "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.ProcessedDir, 0o755); err != nil {
		logger.Error("failed to create output dir", "dir", cfg.ProcessedDir, "error", err)
		os.Exit(1)
	}

	proc := pipeline.NewProcessor(granuleOpener{}, cfg.ProcessedDir, cfg.CoarseInterval, logger)
	runner := pipeline.NewRunner(proc, cfg.MaxWorkers, logger, metrics, clockwork.NewRealClock())

	srv := httpadapter.NewServer(cfg.HTTPAddr, runner, runner, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tally := runner.Run(ctx, entries)
	onDisk, ok := pipeline.VerifyArtifacts(cfg.ProcessedDir, tally, logger)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("arprocess finished",
		"succeeded", tally.Succeeded,
		"skipped", tally.Skipped,
		"failed", tally.Failed,
		"artifacts_on_disk", onDisk,
		"verified", ok,
	)
}
