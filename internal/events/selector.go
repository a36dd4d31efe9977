// Package events selects the timestamps at which an atmospheric river is
// present inside the bounding region, and reads/writes event list files.
package events

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/munim110/ar-downscaling/internal/domain"
)

// Catalog is the read surface of the AR catalog mask the selector needs.
// Implemented by the netcdf adapter; tests use in-memory fakes.
type Catalog interface {
	Times() []time.Time
	Latitudes() []float64
	Longitudes() []float64
	// AnyPresent ORs the mask over the given inclusive spatial index ranges
	// and all auxiliary dimensions at one timestamp.
	AnyPresent(timeIndex, latFrom, latTo, lonFrom, lonTo int) (bool, error)
}

// Selector scans a catalog for event timestamps.
type Selector struct {
	region domain.BoundingRegion
	start  time.Time
	end    time.Time
	logger *slog.Logger
}

// NewSelector creates a Selector for a region and closed interval
// [start, end].
func NewSelector(region domain.BoundingRegion, start, end time.Time, logger *slog.Logger) *Selector {
	return &Selector{region: region, start: start, end: end, logger: logger}
}

// Select returns the ordered, deduplicated timestamps at which the mask is
// non-zero anywhere inside the region. Selection is label-based: spatial
// bounds are resolved against the coordinate axes, not assumed positions,
// and a latitude axis stored north-to-south is handled by detecting its
// order. An empty selection is valid and returns an empty slice.
func (s *Selector) Select(cat Catalog) ([]time.Time, error) {
	latFrom, latTo, latOK := indexRange(cat.Latitudes(), s.region.South, s.region.North)
	lonFrom, lonTo, lonOK := indexRange(cat.Longitudes(), s.region.West, s.region.East)
	if !latOK || !lonOK {
		return nil, fmt.Errorf("bounding region %+v does not intersect the catalog grid", s.region)
	}

	times := cat.Times()
	var selected []time.Time
	var prev time.Time
	for i, ts := range times {
		if ts.Before(s.start) || ts.After(s.end) {
			continue
		}
		present, err := cat.AnyPresent(i, latFrom, latTo, lonFrom, lonTo)
		if err != nil {
			return nil, fmt.Errorf("scan catalog at %s: %w", ts.Format(domain.ISOFormat), err)
		}
		if !present {
			continue
		}
		// Some catalog builds repeat a timestamp across ensemble members.
		if len(selected) > 0 && ts.Equal(prev) {
			continue
		}
		selected = append(selected, ts)
		prev = ts
	}

	s.logger.Info("event selection complete",
		"candidates", len(times),
		"selected", len(selected),
		"start", s.start.Format(domain.ISOFormat),
		"end", s.end.Format(domain.ISOFormat),
	)
	return selected, nil
}

// indexRange resolves the inclusive index span of axis values within
// [lo, hi], for an axis stored in either ascending or descending order.
// ok is false when no axis point falls inside the bounds.
func indexRange(axis []float64, lo, hi float64) (from, to int, ok bool) {
	from, to = -1, -1
	for i, v := range axis {
		if v < lo || v > hi {
			continue
		}
		if from == -1 {
			from = i
		}
		to = i
	}
	if from == -1 {
		return 0, 0, false
	}
	return from, to, true
}

// WriteEventList writes timestamps as one ISO-8601 line each, no header.
func WriteEventList(path string, times []time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create event list %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, ts := range times {
		if _, err := fmt.Fprintln(w, ts.UTC().Format(domain.ISOFormat)); err != nil {
			return fmt.Errorf("write event list %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush event list %s: %w", path, err)
	}
	return nil
}

// ReadEventList parses an event list file. Blank lines are ignored.
func ReadEventList(path string) ([]time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open event list %s: %w", path, err)
	}
	defer f.Close()

	var times []time.Time
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		ts, err := time.ParseInLocation(domain.ISOFormat, line, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("event list %s: bad timestamp %q: %w", path, line, err)
		}
		times = append(times, ts)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read event list %s: %w", path, err)
	}
	return times, nil
}
