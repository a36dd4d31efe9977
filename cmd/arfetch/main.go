// Command arfetch acquires the satellite granules backing the event list.
// For each event timestamp it downloads the Himawari full-disk segments from
// the public NOAA buckets, decompresses them, and invokes the external
// hisd2netcdf converter to produce a region-subsetted NetCDF granule.
// Already-acquired timestamps are skipped. The per-month ERA5 request plan
// implied by the event list is logged for submission to the reanalysis
// archive.
//
// Configuration comes from the environment: EVENT_LIST_PATH, FINE_DIR,
// CONVERTER_PATH, BAND, RESOLUTION_DEG, REGION_NORTH/SOUTH/WEST/EAST.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/munim110/ar-downscaling/internal/acquire"
	"github.com/munim110/ar-downscaling/internal/config"
	"github.com/munim110/ar-downscaling/internal/events"
	"github.com/munim110/ar-downscaling/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg)

	eventTimes, err := events.ReadEventList(cfg.EventListPath)
	if err != nil {
		logger.Error("failed to read event list", "path", cfg.EventListPath, "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.FineDir, 0o755); err != nil {
		logger.Error("failed to create output dir", "dir", cfg.FineDir, "error", err)
		os.Exit(1)
	}

	for _, req := range acquire.GroupRequests(eventTimes) {
		logger.Info("era5 request month",
			"year", req.Year, "month", int(req.Month), "days", req.Days)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher := acquire.NewFetcher(cfg.ConverterPath, cfg.FineDir, cfg.Region, cfg.Band, cfg.ResolutionDeg, logger)
	failed := fetcher.FetchAll(ctx, eventTimes)

	logger.Info("acquisition finished", "events", len(eventTimes), "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}
