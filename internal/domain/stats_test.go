package domain

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestRunningStats_KnownDistribution(t *testing.T) {
	// Uniform ramp 0..999 has mean 499.5 and a known sample variance.
	var s RunningStats
	for i := 0; i < 1000; i++ {
		s.Update(float64(i))
	}

	assert.EqualValues(t, 1000, s.Count())
	assert.InDelta(t, 499.5, s.Mean(), 1e-9)
	// Sample variance of 0..n-1 is n*(n+1)/12 with n=1000.
	assert.InDelta(t, 1000.0*1001.0/12.0, s.Variance(), 1e-6)
}

func TestRunningStats_MatchesTwoPass(t *testing.T) {
	// Pseudo-random values with large offset, the regime where naive
	// sum-of-squares loses precision and Welford must not.
	xs := make([]float64, 5000)
	v := 1.0
	for i := range xs {
		v = math.Mod(v*997.0+1.0, 4096.0)
		xs[i] = 1e6 + v/4096.0
	}

	var s RunningStats
	for _, x := range xs {
		s.Update(x)
	}

	mean, variance := stat.MeanVariance(xs, nil)
	assert.InEpsilon(t, mean, s.Mean(), 1e-6)
	assert.InEpsilon(t, variance, s.Variance(), 1e-6)
	assert.InEpsilon(t, math.Sqrt(variance), s.Std(), 1e-6)
}

func TestRunningStats_UpdateSlice(t *testing.T) {
	var a, b RunningStats
	plane := []float32{1.5, 2.5, 3.5, 4.5}

	a.UpdateSlice(plane)
	for _, x := range plane {
		b.Update(float64(x))
	}

	assert.Equal(t, b.Count(), a.Count())
	assert.Equal(t, b.Mean(), a.Mean())
	assert.Equal(t, b.Variance(), a.Variance())
}

func TestRunningStats_DegenerateCounts(t *testing.T) {
	var s RunningStats
	assert.True(t, math.IsNaN(s.Variance()))

	s.Update(3.0)
	assert.Equal(t, 3.0, s.Mean())
	assert.True(t, math.IsNaN(s.Variance()), "variance undefined for a single value")
}

func TestNormalizationStats_RoundTrip(t *testing.T) {
	stats := &NormalizationStats{
		PredictorMean: []float64{310.2, 253.1, 285.7, 61.4, -0.02},
		PredictorStd:  []float64{140.8, 4.9, 6.1, 22.5, 0.15},
		TargetMean:    241.6,
		TargetStd:     18.9,
		Variables:     ChannelNames(),
	}

	path := filepath.Join(t.TempDir(), "normalization_stats.json")
	require.NoError(t, SaveStats(path, stats))

	loaded, err := LoadStats(path)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(stats, loaded))
}

func TestNormalizationStats_Validate(t *testing.T) {
	t.Run("wrong channel order", func(t *testing.T) {
		stats := &NormalizationStats{
			PredictorMean: make([]float64, 5),
			PredictorStd:  make([]float64, 5),
			Variables:     []string{"t_500", "ivt", "t_850", "rh_700", "w_500"},
		}
		assert.Error(t, stats.Validate())
	})

	t.Run("length mismatch", func(t *testing.T) {
		stats := &NormalizationStats{
			PredictorMean: make([]float64, 4),
			PredictorStd:  make([]float64, 5),
			Variables:     ChannelNames(),
		}
		assert.Error(t, stats.Validate())
	})
}

func TestTimestampKeys(t *testing.T) {
	ts, err := ParseKey("20191209_1810")
	require.NoError(t, err)
	assert.Equal(t, 2019, ts.Year())
	assert.Equal(t, 18, ts.Hour())
	assert.Equal(t, "20191209_1810", FormatKey(ts))

	_, err = ParseKey("2019-12-09")
	assert.Error(t, err)
}
