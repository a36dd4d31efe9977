package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/munim110/ar-downscaling/internal/domain"
)

// Config holds all pipeline settings, populated from environment variables.
// Every component receives the values it needs explicitly; nothing reads the
// environment after start-up.
type Config struct {
	// Inputs.
	CatalogPath string // AR catalog NetCDF (shapemap mask)
	CoarseDir   string // monthly combined ERA5 files
	FineDir     string // per-timestamp Himawari files

	// Intermediate and final artifacts.
	EventListPath string
	ManifestPath  string
	ProcessedDir  string
	FinalDir      string

	// Region and interval of interest.
	Region    domain.BoundingRegion
	StartDate time.Time
	EndDate   time.Time

	// Split fractions and processing.
	ValFraction    float64
	TestFraction   float64
	MaxWorkers     int
	CoarseInterval time.Duration // coarse source cadence; bounds the nearest-slice tolerance

	// Acquisition.
	ConverterPath string // hisd2netcdf binary
	Band          int
	ResolutionDeg float64

	// Ambient.
	HTTPAddr  string
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables, applying defaults
// where unset. Only configuration errors are fatal; per-unit data errors are
// handled downstream.
func Load() (*Config, error) {
	region, err := parseRegion()
	if err != nil {
		return nil, err
	}

	startDate, err := parseDate("START_DATE", "2015-01-01")
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate("END_DATE", "2023-12-31")
	if err != nil {
		return nil, err
	}
	if endDate.Before(startDate) {
		return nil, errors.New("END_DATE is before START_DATE")
	}

	valFraction, err := parseFraction("VAL_FRACTION", 0.10)
	if err != nil {
		return nil, err
	}
	testFraction, err := parseFraction("TEST_FRACTION", 0.10)
	if err != nil {
		return nil, err
	}
	if valFraction+testFraction >= 1 {
		return nil, errors.New("VAL_FRACTION and TEST_FRACTION must sum below 1")
	}

	maxWorkers, err := parsePositiveInt("MAX_WORKERS", 8)
	if err != nil {
		return nil, err
	}
	band, err := parsePositiveInt("SATELLITE_BAND", 8)
	if err != nil {
		return nil, err
	}

	coarseInterval, err := parseDuration("COARSE_INTERVAL", 6*time.Hour)
	if err != nil {
		return nil, err
	}

	resolutionDeg, err := parsePositiveFloat("RESOLUTION_DEG", 0.02)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		CatalogPath:   envOrDefault("CATALOG_PATH", "globalARcatalog_ERA5_1940-2024_v4.0.nc"),
		CoarseDir:     envOrDefault("COARSE_DIR", "era5_data"),
		FineDir:       envOrDefault("FINE_DIR", "himawari"),
		EventListPath: envOrDefault("EVENT_LIST_PATH", "ar_dates.txt"),
		ManifestPath:  envOrDefault("MANIFEST_PATH", "data_manifest.csv"),
		ProcessedDir:  envOrDefault("PROCESSED_DIR", "data_processed"),
		FinalDir:      envOrDefault("FINAL_DIR", "final_dataset"),

		Region:         region,
		StartDate:      startDate,
		EndDate:        endDate,
		ValFraction:    valFraction,
		TestFraction:   testFraction,
		MaxWorkers:     maxWorkers,
		CoarseInterval: coarseInterval,

		ConverterPath: envOrDefault("HISD2NETCDF_PATH", "hisd2netcdf"),
		Band:          band,
		ResolutionDeg: resolutionDeg,

		HTTPAddr:  envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "text"),
	}

	return cfg, nil
}

// parseRegion reads the bounding box, defaulting to Bangladesh and the Bay
// of Bengal.
func parseRegion() (domain.BoundingRegion, error) {
	north, err := parseFloat("REGION_NORTH", 27)
	if err != nil {
		return domain.BoundingRegion{}, err
	}
	south, err := parseFloat("REGION_SOUTH", 20)
	if err != nil {
		return domain.BoundingRegion{}, err
	}
	west, err := parseFloat("REGION_WEST", 88)
	if err != nil {
		return domain.BoundingRegion{}, err
	}
	east, err := parseFloat("REGION_EAST", 93)
	if err != nil {
		return domain.BoundingRegion{}, err
	}

	region := domain.BoundingRegion{North: north, South: south, West: west, East: east}
	if err := region.Validate(); err != nil {
		return domain.BoundingRegion{}, err
	}
	return region, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDate(key, def string) (time.Time, error) {
	s := envOrDefault(key, def)
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return t, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return v, nil
}

func parsePositiveFloat(key string, def float64) (float64, error) {
	v, err := parseFloat(key, def)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %g", key, v)
	}
	return v, nil
}

func parseFraction(key string, def float64) (float64, error) {
	v, err := parseFloat(key, def)
	if err != nil {
		return 0, err
	}
	if v < 0 || v >= 1 {
		return 0, fmt.Errorf("%s must be in [0,1), got %g", key, v)
	}
	return v, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, s)
	}
	return v, nil
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, s)
	}
	return d, nil
}
