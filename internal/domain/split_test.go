package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeEntries(n int) []ManifestEntry {
	base := time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)
	entries := make([]ManifestEntry, n)
	for i := range entries {
		entries[i] = ManifestEntry{Timestamp: base.Add(time.Duration(i) * 6 * time.Hour)}
	}
	return entries
}

func TestChronologicalSplit_Sizes(t *testing.T) {
	cases := []struct {
		name         string
		n            int
		fVal, fTest  float64
		nVal, nTest  int
	}{
		{name: "ten entries default fractions", n: 10, fVal: 0.1, fTest: 0.1, nVal: 1, nTest: 1},
		{name: "floor rounding", n: 7, fVal: 0.1, fTest: 0.1, nVal: 0, nTest: 0},
		{name: "larger fractions", n: 20, fVal: 0.25, fTest: 0.15, nVal: 5, nTest: 3},
		{name: "minimum viable", n: 3, fVal: 0.34, fTest: 0.34, nVal: 1, nTest: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			split, err := ChronologicalSplit(makeEntries(tc.n), tc.fVal, tc.fTest)
			require.NoError(t, err)

			assert.Len(t, split.Val, tc.nVal)
			assert.Len(t, split.Test, tc.nTest)
			assert.Len(t, split.Train, tc.n-tc.nVal-tc.nTest)
		})
	}
}

func TestChronologicalSplit_NoTemporalOverlap(t *testing.T) {
	split, err := ChronologicalSplit(makeEntries(50), 0.2, 0.2)
	require.NoError(t, err)
	require.NotEmpty(t, split.Train)
	require.NotEmpty(t, split.Val)
	require.NotEmpty(t, split.Test)

	lastTrain := split.Train[len(split.Train)-1].Timestamp
	firstVal := split.Val[0].Timestamp
	lastVal := split.Val[len(split.Val)-1].Timestamp
	firstTest := split.Test[0].Timestamp

	assert.True(t, lastTrain.Before(firstVal), "train must end before validation begins")
	assert.True(t, lastVal.Before(firstTest), "validation must end before test begins")
}

func TestChronologicalSplit_SortsUnorderedInput(t *testing.T) {
	entries := makeEntries(12)
	// shuffle deterministically
	for i := range entries {
		j := (i * 7) % len(entries)
		entries[i], entries[j] = entries[j], entries[i]
	}

	split, err := ChronologicalSplit(entries, 0.25, 0.25)
	require.NoError(t, err)

	prev := time.Time{}
	for _, part := range [][]ManifestEntry{split.Train, split.Val, split.Test} {
		for _, e := range part {
			assert.True(t, e.Timestamp.After(prev))
			prev = e.Timestamp
		}
	}
}

func TestChronologicalSplit_RejectsBadFractions(t *testing.T) {
	_, err := ChronologicalSplit(makeEntries(10), 0.5, 0.5)
	assert.Error(t, err)

	_, err = ChronologicalSplit(makeEntries(10), -0.1, 0.1)
	assert.Error(t, err)
}
