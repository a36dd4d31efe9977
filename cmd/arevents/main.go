// Command arevents scans the atmospheric-river catalog for timestamps where
// an AR shape overlaps the region of interest and writes them to the event
// list, one ISO timestamp per line.
//
// Configuration comes from the environment: CATALOG_PATH, EVENT_LIST_PATH,
// REGION_NORTH/SOUTH/WEST/EAST, START_DATE, END_DATE.
package main

import (
	"log/slog"
	"os"

	"github.com/munim110/ar-downscaling/internal/adapter/netcdf"
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

	catalog, err := netcdf.OpenCatalog(cfg.CatalogPath)
	if err != nil {
		logger.Error("failed to open catalog", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}
	defer catalog.Close()

	selector := events.NewSelector(cfg.Region, cfg.StartDate, cfg.EndDate, logger)
	selected, err := selector.Select(catalog)
	if err != nil {
		logger.Error("event selection failed", "error", err)
		os.Exit(1)
	}

	if err := events.WriteEventList(cfg.EventListPath, selected); err != nil {
		logger.Error("failed to write event list", "path", cfg.EventListPath, "error", err)
		os.Exit(1)
	}
	logger.Info("event list written", "path", cfg.EventListPath, "events", len(selected))
}
