package acquire

import (
	"bytes"
	"compress/bzip2"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/munim110/ar-downscaling/internal/domain"
)

// Satellite generation boundaries. Himawari-8 published full-disk band data
// as a single segment before 2019-12-09T18:10, ten segments after;
// Himawari-9 took over on 2022-12-01.
var (
	h8MultiSegmentStart = time.Date(2019, 12, 9, 18, 10, 0, 0, time.UTC)
	h9Start             = time.Date(2022, 12, 1, 0, 0, 0, 0, time.UTC)
)

// segmentConcurrency bounds parallel segment downloads per timestamp.
const segmentConcurrency = 5

// downloadPlan describes where one timestamp's segments live.
type downloadPlan struct {
	prefix    string // HS_H08 or HS_H09
	bucket    string // noaa-himawari8 or noaa-himawari9
	segments  int
	segSuffix string // printf-style segment counter suffix
}

// planFor selects satellite, bucket and segment layout for a timestamp.
func planFor(ts time.Time) downloadPlan {
	switch {
	case ts.Before(h8MultiSegmentStart):
		return downloadPlan{prefix: "HS_H08", bucket: "noaa-himawari8", segments: 1, segSuffix: "%02d01"}
	case ts.Before(h9Start):
		return downloadPlan{prefix: "HS_H08", bucket: "noaa-himawari8", segments: 10, segSuffix: "%02d10"}
	default:
		return downloadPlan{prefix: "HS_H09", bucket: "noaa-himawari9", segments: 10, segSuffix: "%02d10"}
	}
}

// resolutionCode is the AHI resolution code for 2 km bands.
const resolutionCode = 20

// segmentURL builds the public S3 object URL of one L1b segment.
func segmentURL(plan downloadPlan, ts time.Time, band, segment int) (url, filename string) {
	filename = fmt.Sprintf("%s_%s_B%02d_FLDK_R%02d_S%s.DAT.bz2",
		plan.prefix, ts.Format("20060102_1504"), band, resolutionCode,
		fmt.Sprintf(plan.segSuffix, segment))
	url = fmt.Sprintf("https://%s.s3.amazonaws.com/AHI-L1b-FLDK/%s/%s",
		plan.bucket, ts.Format("2006/01/02/1504"), filename)
	return url, filename
}

// granuleName is the final subsetted NetCDF filename for a timestamp.
func granuleName(plan downloadPlan, ts time.Time, band int) string {
	return fmt.Sprintf("%s_%s_B%02d_BANGLADESH.nc", plan.prefix, ts.Format("20060102_1504"), band)
}

// Fetcher downloads and converts Himawari granules for event timestamps.
type Fetcher struct {
	client        *resty.Client
	converterPath string
	outputDir     string
	region        domain.BoundingRegion
	band          int
	resolutionDeg float64
	logger        *slog.Logger
}

// NewFetcher creates a Fetcher writing granules into outputDir. The
// converter is the external hisd2netcdf binary.
func NewFetcher(converterPath, outputDir string, region domain.BoundingRegion, band int, resolutionDeg float64, logger *slog.Logger) *Fetcher {
	client := resty.New().
		SetTimeout(60 * time.Second).
		SetRetryCount(2)
	return &Fetcher{
		client:        client,
		converterPath: converterPath,
		outputDir:     outputDir,
		region:        region,
		band:          band,
		resolutionDeg: resolutionDeg,
		logger:        logger,
	}
}

// Fetch acquires one timestamp: download all segments, decompress, convert
// to a single region-subsetted NetCDF, clean up. Idempotent per timestamp;
// the temp segment directory is unit-scoped and removed regardless of
// outcome.
func (f *Fetcher) Fetch(ctx context.Context, ts time.Time) error {
	plan := planFor(ts)
	finalPath := filepath.Join(f.outputDir, granuleName(plan, ts, f.band))
	if _, err := os.Stat(finalPath); err == nil {
		f.logger.Info("granule exists, skipping", "path", finalPath)
		return nil
	}

	tempDir := filepath.Join(f.outputDir, "temp_dat", domain.FormatKey(ts))
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return fmt.Errorf("create temp dir %s: %w", tempDir, err)
	}
	defer os.RemoveAll(tempDir)

	segments, err := f.downloadSegments(ctx, plan, ts, tempDir)
	if err != nil {
		return err
	}
	return f.convert(ctx, segments, finalPath)
}

// downloadSegments fetches and decompresses all segments concurrently,
// bounded by segmentConcurrency.
func (f *Fetcher) downloadSegments(ctx context.Context, plan downloadPlan, ts time.Time, tempDir string) ([]string, error) {
	paths := make([]string, plan.segments)
	errs := make([]error, plan.segments)

	sem := make(chan struct{}, segmentConcurrency)
	var wg sync.WaitGroup
	for s := 1; s <= plan.segments; s++ {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			url, filename := segmentURL(plan, ts, f.band, s)
			// Strip the .bz2 suffix: we store the decompressed segment.
			path := filepath.Join(tempDir, filename[:len(filename)-4])
			paths[s-1] = path
			errs[s-1] = f.downloadSegment(ctx, url, path)
		}(s)
	}
	wg.Wait()

	for s, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("segment %d of %s: %w", s+1, domain.FormatKey(ts), err)
		}
	}
	return paths, nil
}

func (f *Fetcher) downloadSegment(ctx context.Context, url, path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	if resp.IsError() {
		return fmt.Errorf("download %s: status %s", url, resp.Status())
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create segment %s: %w", path, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, bzip2.NewReader(bytes.NewReader(resp.Body()))); err != nil {
		os.Remove(path)
		return fmt.Errorf("decompress %s: %w", url, err)
	}
	return out.Close()
}

// convert runs hisd2netcdf over the downloaded segments, producing the
// subsetted granule on the configured equal-angle grid.
func (f *Fetcher) convert(ctx context.Context, segments []string, finalPath string) error {
	width := int((f.region.East-f.region.West)/f.resolutionDeg) + 1
	height := int((f.region.North-f.region.South)/f.resolutionDeg) + 1

	args := []string{
		"-width", strconv.Itoa(width),
		"-height", strconv.Itoa(height),
		"-lat", strconv.FormatFloat(f.region.North, 'g', -1, 64),
		"-lon", strconv.FormatFloat(f.region.West, 'g', -1, 64),
		"-dlat", strconv.FormatFloat(f.resolutionDeg, 'g', -1, 64),
		"-dlon", strconv.FormatFloat(f.resolutionDeg, 'g', -1, 64),
		"-o", finalPath,
	}
	for _, seg := range segments {
		args = append(args, "-i", seg)
	}

	cmd := exec.CommandContext(ctx, f.converterPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		os.Remove(finalPath)
		return fmt.Errorf("hisd2netcdf failed for %s: %w: %s", finalPath, err, output)
	}
	f.logger.Info("granule created", "path", finalPath)
	return nil
}

// FetchAll acquires every event timestamp sequentially, isolating per-unit
// failures. Returns the number of failures.
func (f *Fetcher) FetchAll(ctx context.Context, events []time.Time) int {
	failed := 0
	for _, ts := range events {
		if ctx.Err() != nil {
			break
		}
		if err := f.Fetch(ctx, ts); err != nil {
			failed++
			f.logger.Error("acquisition failed",
				"timestamp", domain.FormatKey(ts), "error", err)
		}
	}
	return failed
}
