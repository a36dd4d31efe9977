package domain

import (
	"fmt"
	"time"
)

// KeyFormat is the timestamp layout used to key processed artifacts on disk.
const KeyFormat = "20060102_1504"

// ISOFormat is the timestamp layout used in event list files.
const ISOFormat = "2006-01-02T15:04:05"

// ManifestFormat is the timestamp layout used in the manifest CSV.
const ManifestFormat = "2006-01-02 15:04:05"

// FormatKey renders a timestamp as an artifact key, e.g. 20191209_1810.
func FormatKey(t time.Time) string {
	return t.UTC().Format(KeyFormat)
}

// ParseKey parses an artifact key back into a UTC timestamp.
func ParseKey(s string) (time.Time, error) {
	t, err := time.ParseInLocation(KeyFormat, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp key %q: %w", s, err)
	}
	return t, nil
}

// BoundingRegion is a fixed rectangular area of interest in degrees.
// North/South are latitudes, West/East longitudes. Immutable for a run.
type BoundingRegion struct {
	North float64
	South float64
	West  float64
	East  float64
}

// Validate checks that the region is non-degenerate.
func (r BoundingRegion) Validate() error {
	if r.North <= r.South {
		return fmt.Errorf("bounding region: north (%g) must exceed south (%g)", r.North, r.South)
	}
	if r.East <= r.West {
		return fmt.Errorf("bounding region: east (%g) must exceed west (%g)", r.East, r.West)
	}
	return nil
}

// ContainsLat reports whether a latitude falls inside the region.
func (r BoundingRegion) ContainsLat(lat float64) bool {
	return lat >= r.South && lat <= r.North
}

// ContainsLon reports whether a longitude falls inside the region.
func (r BoundingRegion) ContainsLon(lon float64) bool {
	return lon >= r.West && lon <= r.East
}

// ManifestEntry pairs one satellite observation with the monthly ERA5 file
// covering it. Entries are unique by Timestamp and chronologically ordered;
// the ordering determines split boundaries.
type ManifestEntry struct {
	Timestamp  time.Time
	CoarsePath string
	FinePath   string
}

// PredictorTensor is the regridded multi-channel predictor stack,
// shape (Channels, Height, Width), row-major.
type PredictorTensor struct {
	Channels int
	Height   int
	Width    int
	Data     []float32
}

// NewPredictorTensor allocates a zeroed predictor stack.
func NewPredictorTensor(channels, height, width int) PredictorTensor {
	return PredictorTensor{
		Channels: channels,
		Height:   height,
		Width:    width,
		Data:     make([]float32, channels*height*width),
	}
}

// Channel returns the backing slice of one channel plane.
func (p PredictorTensor) Channel(c int) []float32 {
	size := p.Height * p.Width
	return p.Data[c*size : (c+1)*size]
}

// TargetTensor is the satellite brightness temperature field at native
// resolution, shape (Height, Width), row-major.
type TargetTensor struct {
	Height int
	Width  int
	Data   []float32
}
