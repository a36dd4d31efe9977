// Package manifest pairs satellite observation timestamps with the monthly
// ERA5 files that cover them, and reads/writes the manifest CSV.
package manifest

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/munim110/ar-downscaling/internal/domain"
)

var (
	// coarseKeyRe extracts (year, month) from monthly ERA5 filenames,
	// e.g. 2015-03_era5_combined.nc -> (2015, 3).
	coarseKeyRe = regexp.MustCompile(`(\d{4})-(\d{2})`)

	// fineKeyRe extracts the observation timestamp from Himawari filenames,
	// e.g. HS_H08_20191209_1810_B08_BANGLADESH.nc -> 2019-12-09T18:10.
	fineKeyRe = regexp.MustCompile(`_(\d{8})_(\d{4})_`)
)

// MonthKey identifies one coarse granule.
type MonthKey struct {
	Year  int
	Month time.Month
}

// ParseCoarseKey recovers the (year, month) key embedded in a coarse
// granule filename.
func ParseCoarseKey(name string) (MonthKey, bool) {
	m := coarseKeyRe.FindStringSubmatch(name)
	if m == nil {
		return MonthKey{}, false
	}
	year := atoi(m[1])
	month := atoi(m[2])
	if month < 1 || month > 12 {
		return MonthKey{}, false
	}
	return MonthKey{Year: year, Month: time.Month(month)}, true
}

// ParseFineKey recovers the timestamp key embedded in a fine granule
// filename.
func ParseFineKey(name string) (time.Time, bool) {
	m := fineKeyRe.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation("200601021504", m[1]+m[2], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

// Builder scans granule directories and joins them into a manifest.
type Builder struct {
	coarseDir string
	fineDir   string
	logger    *slog.Logger
}

// NewBuilder creates a Builder over the two granule directories.
func NewBuilder(coarseDir, fineDir string, logger *slog.Logger) *Builder {
	return &Builder{coarseDir: coarseDir, fineDir: fineDir, logger: logger}
}

// Build scans the directories and emits one entry per fine granule whose
// (year, month) has a coarse granule. Unmatched fine granules are dropped
// and counted. The result is sorted ascending by timestamp. Empty source
// sets produce an empty manifest, not an error; the caller decides whether
// that is fatal.
func (b *Builder) Build() ([]domain.ManifestEntry, int, error) {
	coarse, err := b.scanCoarse()
	if err != nil {
		return nil, 0, err
	}
	fine, err := b.scanFine()
	if err != nil {
		return nil, 0, err
	}
	b.logger.Info("scanned granule directories",
		"coarse_granules", len(coarse), "fine_granules", len(fine))

	var entries []domain.ManifestEntry
	dropped := 0
	for ts, finePath := range fine {
		key := MonthKey{Year: ts.Year(), Month: ts.Month()}
		coarsePath, ok := coarse[key]
		if !ok {
			dropped++
			b.logger.Debug("no coarse granule for fine timestamp",
				"timestamp", ts.Format(domain.ISOFormat), "fine_path", finePath)
			continue
		}
		entries = append(entries, domain.ManifestEntry{
			Timestamp:  ts,
			CoarsePath: coarsePath,
			FinePath:   finePath,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})

	b.logger.Info("manifest built", "matched", len(entries), "dropped", dropped)
	return entries, dropped, nil
}

func (b *Builder) scanCoarse() (map[MonthKey]string, error) {
	paths, err := filepath.Glob(filepath.Join(b.coarseDir, "*_era5_combined.nc"))
	if err != nil {
		return nil, fmt.Errorf("scan coarse dir %s: %w", b.coarseDir, err)
	}
	out := make(map[MonthKey]string, len(paths))
	for _, p := range paths {
		key, ok := ParseCoarseKey(filepath.Base(p))
		if !ok {
			continue
		}
		out[key] = p
	}
	return out, nil
}

func (b *Builder) scanFine() (map[time.Time]string, error) {
	paths, err := filepath.Glob(filepath.Join(b.fineDir, "*.nc"))
	if err != nil {
		return nil, fmt.Errorf("scan fine dir %s: %w", b.fineDir, err)
	}
	out := make(map[time.Time]string, len(paths))
	for _, p := range paths {
		ts, ok := ParseFineKey(filepath.Base(p))
		if !ok {
			continue
		}
		out[ts] = p
	}
	return out, nil
}

// manifest CSV column order.
var header = []string{"timestamp", "era5_path", "satellite_path"}

// Write persists the manifest as a CSV with a header row.
func Write(path string, entries []domain.ManifestEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create manifest %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write manifest header: %w", err)
	}
	for _, e := range entries {
		record := []string{
			e.Timestamp.UTC().Format(domain.ManifestFormat),
			e.CoarsePath,
			e.FinePath,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write manifest row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush manifest %s: %w", path, err)
	}
	return nil
}

// Read loads a manifest CSV written by Write.
func Read(path string) ([]domain.ManifestEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	entries := make([]domain.ManifestEntry, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("manifest %s row %d: expected %d columns, got %d", path, i+2, len(header), len(rec))
		}
		ts, err := time.ParseInLocation(domain.ManifestFormat, rec[0], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("manifest %s row %d: bad timestamp %q: %w", path, i+2, rec[0], err)
		}
		entries = append(entries, domain.ManifestEntry{
			Timestamp:  ts,
			CoarsePath: rec[1],
			FinePath:   rec[2],
		})
	}
	return entries, nil
}
