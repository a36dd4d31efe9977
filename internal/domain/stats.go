package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// RunningStats accumulates mean and variance over a stream of values using
// Welford's single-pass update. It never holds the stream in memory, so it
// tolerates arbitrarily large pixel counts. Updates are not safe for
// concurrent use; the statistics pass is intentionally sequential.
type RunningStats struct {
	count int64
	mean  float64
	m2    float64
}

// Update folds one value into the running statistics.
func (s *RunningStats) Update(x float64) {
	s.count++
	delta := x - s.mean
	s.mean += delta / float64(s.count)
	s.m2 += delta * (x - s.mean)
}

// UpdateSlice folds a whole plane of values into the running statistics.
func (s *RunningStats) UpdateSlice(xs []float32) {
	for _, x := range xs {
		s.Update(float64(x))
	}
}

// Count returns the number of values accumulated so far.
func (s *RunningStats) Count() int64 { return s.count }

// Mean returns the running mean.
func (s *RunningStats) Mean() float64 { return s.mean }

// Variance returns the sample variance m2/(count-1). NaN below two values.
func (s *RunningStats) Variance() float64 {
	if s.count < 2 {
		return math.NaN()
	}
	return s.m2 / float64(s.count-1)
}

// Std returns the sample standard deviation.
func (s *RunningStats) Std() float64 {
	return math.Sqrt(s.Variance())
}

// NormalizationStats is the persisted per-channel normalization record.
// It is computed exclusively from the training partition, written once, and
// reused identically for validation and test normalization; recomputing it on
// other partitions would leak information.
type NormalizationStats struct {
	PredictorMean []float64 `json:"predictor_mean"`
	PredictorStd  []float64 `json:"predictor_std"`
	TargetMean    float64   `json:"target_mean"`
	TargetStd     float64   `json:"target_std"`
	Variables     []string  `json:"variables"`
}

// Validate checks the record is self-consistent and matches the fixed
// channel schema.
func (s *NormalizationStats) Validate() error {
	if len(s.PredictorMean) != len(s.Variables) || len(s.PredictorStd) != len(s.Variables) {
		return fmt.Errorf("normalization stats: %d variables but %d means / %d stds",
			len(s.Variables), len(s.PredictorMean), len(s.PredictorStd))
	}
	names := ChannelNames()
	if len(s.Variables) != len(names) {
		return fmt.Errorf("normalization stats: expected %d channels, got %d", len(names), len(s.Variables))
	}
	for i, name := range names {
		if s.Variables[i] != name {
			return fmt.Errorf("normalization stats: channel %d is %q, schema expects %q", i, s.Variables[i], name)
		}
	}
	return nil
}

// SaveStats writes the record as a single JSON artifact.
func SaveStats(path string, stats *NormalizationStats) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal normalization stats: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write normalization stats: %w", err)
	}
	return nil
}

// LoadStats reads and validates a normalization stats artifact.
func LoadStats(path string) (*NormalizationStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read normalization stats: %w", err)
	}
	var stats NormalizationStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("parse normalization stats: %w", err)
	}
	if err := stats.Validate(); err != nil {
		return nil, err
	}
	return &stats, nil
}
