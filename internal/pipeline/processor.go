// Package pipeline turns manifest entries into paired predictor/target
// artifacts using a bounded worker pool.
package pipeline

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/munim110/ar-downscaling/internal/adapter/npy"
	"github.com/munim110/ar-downscaling/internal/domain"
	"github.com/munim110/ar-downscaling/internal/regrid"
)

// CoarseGranule is the read surface of one monthly ERA5 file.
type CoarseGranule interface {
	Times() []time.Time
	Latitudes() []float64
	Longitudes() []float64
	Field(name string, timeIndex int) ([][]float64, error)
	FieldAtLevel(name string, level float64, timeIndex int) ([][]float64, error)
	Close() error
}

// FineGranule is the read surface of one satellite file.
type FineGranule interface {
	Latitudes() []float64
	Longitudes() []float64
	Target() ([][]float64, error)
	Close() error
}

// GranuleOpener opens granules by path. Implemented by the netcdf adapter;
// tests use in-memory fakes.
type GranuleOpener interface {
	OpenCoarse(path string) (CoarseGranule, error)
	OpenFine(path string) (FineGranule, error)
}

// Outcome classifies the result of processing one manifest entry.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Processor converts one manifest entry into a predictor/target artifact
// pair on disk.
type Processor struct {
	opener         GranuleOpener
	outputDir      string
	coarseInterval time.Duration
	logger         *slog.Logger
}

// NewProcessor creates a Processor writing artifacts into outputDir.
// coarseInterval is the expected coarse cadence, used to bound the
// nearest-slice tolerance when a granule's own time axis cannot provide one.
func NewProcessor(opener GranuleOpener, outputDir string, coarseInterval time.Duration, logger *slog.Logger) *Processor {
	return &Processor{
		opener:         opener,
		outputDir:      outputDir,
		coarseInterval: coarseInterval,
		logger:         logger,
	}
}

// Process runs the extract-regrid-persist cycle for one entry. If both
// output artifacts already exist the entry is skipped, never recomputed.
// Failures are returned, not propagated to sibling entries.
func (p *Processor) Process(entry domain.ManifestEntry) (Outcome, error) {
	predictorPath := filepath.Join(p.outputDir, npy.PredictorName(entry.Timestamp))
	targetPath := filepath.Join(p.outputDir, npy.TargetName(entry.Timestamp))
	if fileExists(predictorPath) && fileExists(targetPath) {
		return OutcomeSkipped, nil
	}

	coarse, err := p.opener.OpenCoarse(entry.CoarsePath)
	if err != nil {
		return OutcomeFailed, err
	}
	defer coarse.Close()

	timeIndex, err := p.nearestSlice(coarse, entry.Timestamp)
	if err != nil {
		return OutcomeFailed, err
	}

	fine, err := p.opener.OpenFine(entry.FinePath)
	if err != nil {
		return OutcomeFailed, err
	}
	defer fine.Close()

	predictor, err := p.buildPredictor(coarse, fine, timeIndex)
	if err != nil {
		return OutcomeFailed, err
	}

	target, err := p.buildTarget(fine)
	if err != nil {
		return OutcomeFailed, err
	}

	if target.Height != predictor.Height || target.Width != predictor.Width {
		return OutcomeFailed, fmt.Errorf("%w: predictor is %dx%d but target is %dx%d",
			domain.ErrAlignment, predictor.Height, predictor.Width, target.Height, target.Width)
	}

	if err := npy.SavePredictor(predictorPath, predictor); err != nil {
		return OutcomeFailed, err
	}
	if err := npy.SaveTarget(targetPath, target); err != nil {
		// Do not leave a lone predictor behind: it would make a later run
		// treat this entry as partially done forever.
		os.Remove(predictorPath)
		return OutcomeFailed, err
	}
	return OutcomeSuccess, nil
}

// nearestSlice finds the coarse time index closest to ts and enforces the
// alignment tolerance: half the coarse sampling interval, measured from the
// granule's own time axis when it has at least two steps.
func (p *Processor) nearestSlice(coarse CoarseGranule, ts time.Time) (int, error) {
	times := coarse.Times()
	if len(times) == 0 {
		return 0, fmt.Errorf("%w: coarse granule has an empty time axis", domain.ErrSchema)
	}

	best, bestDist := 0, absDuration(times[0].Sub(ts))
	for i, t := range times[1:] {
		if d := absDuration(t.Sub(ts)); d < bestDist {
			best, bestDist = i+1, d
		}
	}

	interval := p.coarseInterval
	if len(times) >= 2 {
		interval = sampleInterval(times)
	}
	if bestDist > interval/2 {
		return 0, fmt.Errorf("%w: nearest coarse slice %s is %s from %s, tolerance %s",
			domain.ErrAlignment,
			times[best].Format(domain.ISOFormat), bestDist,
			ts.Format(domain.ISOFormat), interval/2)
	}
	return best, nil
}

// sampleInterval estimates the cadence as the smallest positive gap on the
// axis. Day-filtered months have large gaps between event days, so the
// minimum, not the mean, reflects the true cadence.
func sampleInterval(times []time.Time) time.Duration {
	min := time.Duration(math.MaxInt64)
	for i := 1; i < len(times); i++ {
		if d := times[i].Sub(times[i-1]); d > 0 && d < min {
			min = d
		}
	}
	if min == time.Duration(math.MaxInt64) {
		return 0
	}
	return min
}

// buildPredictor derives the fixed channel set, regrids every channel onto
// the fine grid, and stacks them in schema order.
func (p *Processor) buildPredictor(coarse CoarseGranule, fine FineGranule, timeIndex int) (domain.PredictorTensor, error) {
	dstLat, dstLon := fine.Latitudes(), fine.Longitudes()
	tensor := domain.NewPredictorTensor(len(domain.Channels), len(dstLat), len(dstLon))

	for ci, spec := range domain.Channels {
		field, err := p.channelField(coarse, spec, timeIndex)
		if err != nil {
			return domain.PredictorTensor{}, fmt.Errorf("channel %s: %w", spec.Name, err)
		}
		regridded, err := regrid.Bilinear(field, coarse.Latitudes(), coarse.Longitudes(), dstLat, dstLon)
		if err != nil {
			return domain.PredictorTensor{}, fmt.Errorf("channel %s: regrid: %w", spec.Name, err)
		}
		plane := tensor.Channel(ci)
		for i, row := range regridded {
			for j, v := range row {
				plane[i*tensor.Width+j] = float32(v)
			}
		}
	}
	return tensor, nil
}

// channelField reads one channel's source field: the derived IVT magnitude
// or a direct pressure-level selection.
func (p *Processor) channelField(coarse CoarseGranule, spec domain.ChannelSpec, timeIndex int) ([][]float64, error) {
	if !spec.Derived() {
		return coarse.FieldAtLevel(spec.Field, spec.Level, timeIndex)
	}

	east, err := coarse.Field(domain.IVTEastField, timeIndex)
	if err != nil {
		return nil, err
	}
	north, err := coarse.Field(domain.IVTNorthField, timeIndex)
	if err != nil {
		return nil, err
	}
	if len(east) != len(north) {
		return nil, fmt.Errorf("%w: IVT components have %d and %d rows", domain.ErrSchema, len(east), len(north))
	}
	ivt := make([][]float64, len(east))
	for i := range east {
		if len(east[i]) != len(north[i]) {
			return nil, fmt.Errorf("%w: IVT component rows differ at %d", domain.ErrSchema, i)
		}
		row := make([]float64, len(east[i]))
		for j := range east[i] {
			row[j] = math.Hypot(east[i][j], north[i][j])
		}
		ivt[i] = row
	}
	return ivt, nil
}

func (p *Processor) buildTarget(fine FineGranule) (domain.TargetTensor, error) {
	grid, err := fine.Target()
	if err != nil {
		return domain.TargetTensor{}, err
	}
	height := len(grid)
	if height == 0 {
		return domain.TargetTensor{}, fmt.Errorf("%w: empty target field", domain.ErrSchema)
	}
	width := len(grid[0])

	tensor := domain.TargetTensor{Height: height, Width: width, Data: make([]float32, height*width)}
	for i, row := range grid {
		if len(row) != width {
			return domain.TargetTensor{}, fmt.Errorf("%w: ragged target field at row %d", domain.ErrSchema, i)
		}
		for j, v := range row {
			tensor.Data[i*width+j] = float32(v)
		}
	}
	return tensor, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
