// Package dataset materializes the final chronological train/val/test split
// and computes the training-set normalization statistics.
package dataset

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/munim110/ar-downscaling/internal/adapter/npy"
	"github.com/munim110/ar-downscaling/internal/domain"
)

// StatsFilename is the normalization stats artifact inside the final
// dataset directory.
const StatsFilename = "normalization_stats.json"

// Assembler builds the final dataset from processed pair artifacts.
type Assembler struct {
	processedDir string
	finalDir     string
	valFraction  float64
	testFraction float64
	logger       *slog.Logger
}

// NewAssembler creates an Assembler reading pairs from processedDir and
// writing the split under finalDir.
func NewAssembler(processedDir, finalDir string, valFraction, testFraction float64, logger *slog.Logger) *Assembler {
	return &Assembler{
		processedDir: processedDir,
		finalDir:     finalDir,
		valFraction:  valFraction,
		testFraction: testFraction,
		logger:       logger,
	}
}

// Assemble partitions the processed pairs chronologically, computes
// normalization statistics from the training partition only, and copies the
// artifacts into train/, val/ and test/ directories. Entries without both
// artifacts on disk are dropped and counted; pairs whose spatial shapes
// disagree are rejected as alignment failures. Returns the persisted stats.
func (a *Assembler) Assemble(entries []domain.ManifestEntry) (*domain.NormalizationStats, error) {
	usable, err := a.validatePairs(entries)
	if err != nil {
		return nil, err
	}
	if len(usable) == 0 {
		return nil, errors.New("no processed pairs available to assemble")
	}

	split, err := domain.ChronologicalSplit(usable, a.valFraction, a.testFraction)
	if err != nil {
		return nil, err
	}
	a.logger.Info("chronological split",
		"train", len(split.Train), "val", len(split.Val), "test", len(split.Test))

	stats, err := a.trainingStats(split.Train)
	if err != nil {
		return nil, err
	}

	for name, part := range map[string][]domain.ManifestEntry{
		"train": split.Train,
		"val":   split.Val,
		"test":  split.Test,
	} {
		if err := a.materialize(name, part); err != nil {
			return nil, err
		}
	}

	statsPath := filepath.Join(a.finalDir, StatsFilename)
	if err := domain.SaveStats(statsPath, stats); err != nil {
		return nil, err
	}
	a.logger.Info("normalization stats persisted", "path", statsPath)
	return stats, nil
}

// validatePairs keeps entries whose two artifacts exist and agree on
// spatial shape. The shape equality of predictor (C,H,W) and target (H,W)
// is a hard invariant; a violating pair is never carried into the split.
func (a *Assembler) validatePairs(entries []domain.ManifestEntry) ([]domain.ManifestEntry, error) {
	var usable []domain.ManifestEntry
	missing := 0
	for _, e := range entries {
		predictorPath := a.processedPath(npy.PredictorName(e.Timestamp))
		targetPath := a.processedPath(npy.TargetName(e.Timestamp))
		if !fileExists(predictorPath) || !fileExists(targetPath) {
			missing++
			continue
		}

		_, ph, pw, err := npy.PredictorShape(predictorPath)
		if err != nil {
			return nil, err
		}
		th, tw, err := npy.TargetShape(targetPath)
		if err != nil {
			return nil, err
		}
		if ph != th || pw != tw {
			return nil, fmt.Errorf("%w: pair %s: predictor is %dx%d but target is %dx%d",
				domain.ErrAlignment, domain.FormatKey(e.Timestamp), ph, pw, th, tw)
		}
		usable = append(usable, e)
	}
	if missing > 0 {
		a.logger.Warn("entries without processed artifacts dropped", "dropped", missing)
	}
	return usable, nil
}

// trainingStats streams the training tensors one at a time through Welford
// accumulators: one per predictor channel over every pixel, one for the
// target. The training set is never resident in memory at once.
func (a *Assembler) trainingStats(train []domain.ManifestEntry) (*domain.NormalizationStats, error) {
	channels := make([]domain.RunningStats, len(domain.Channels))
	var target domain.RunningStats

	for _, e := range train {
		predictor, err := npy.LoadPredictor(a.processedPath(npy.PredictorName(e.Timestamp)))
		if err != nil {
			return nil, err
		}
		if predictor.Channels != len(channels) {
			return nil, fmt.Errorf("%w: pair %s has %d channels, schema has %d",
				domain.ErrSchema, domain.FormatKey(e.Timestamp), predictor.Channels, len(channels))
		}
		for c := range channels {
			channels[c].UpdateSlice(predictor.Channel(c))
		}

		tt, err := npy.LoadTarget(a.processedPath(npy.TargetName(e.Timestamp)))
		if err != nil {
			return nil, err
		}
		target.UpdateSlice(tt.Data)
	}

	stats := &domain.NormalizationStats{
		PredictorMean: make([]float64, len(channels)),
		PredictorStd:  make([]float64, len(channels)),
		TargetMean:    target.Mean(),
		TargetStd:     target.Std(),
		Variables:     domain.ChannelNames(),
	}
	for c := range channels {
		stats.PredictorMean[c] = channels[c].Mean()
		stats.PredictorStd[c] = channels[c].Std()
	}

	for i, name := range stats.Variables {
		a.logger.Info("channel statistics", "channel", name,
			"mean", stats.PredictorMean[i], "std", stats.PredictorStd[i])
	}
	a.logger.Info("target statistics", "mean", stats.TargetMean, "std", stats.TargetStd)
	return stats, nil
}

// materialize copies a partition's artifacts into its directory.
func (a *Assembler) materialize(name string, part []domain.ManifestEntry) error {
	dir := filepath.Join(a.finalDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create partition dir %s: %w", dir, err)
	}
	for _, e := range part {
		for _, filename := range []string{npy.PredictorName(e.Timestamp), npy.TargetName(e.Timestamp)} {
			if err := copyFile(a.processedPath(filename), filepath.Join(dir, filename)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *Assembler) processedPath(filename string) string {
	return filepath.Join(a.processedDir, filename)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return out.Close()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
