package domain

import (
	"fmt"
	"sort"
)

// Split is a chronological three-way partition of manifest entries. Test
// covers the most recent slice, validation the slice before it, train the
// remainder. Partitions never overlap in time; the order is load-bearing for
// preventing temporal leakage into training.
type Split struct {
	Train []ManifestEntry
	Val   []ManifestEntry
	Test  []ManifestEntry
}

// ChronologicalSplit sorts entries by timestamp and cuts them into
// train/val/test using floor(n*fraction) sizes taken from the end:
// the last n_test entries are test, the preceding n_val are validation.
// No shuffling.
func ChronologicalSplit(entries []ManifestEntry, valFraction, testFraction float64) (Split, error) {
	if valFraction < 0 || testFraction < 0 || valFraction+testFraction >= 1 {
		return Split{}, fmt.Errorf("split fractions val=%g test=%g must be non-negative and sum below 1", valFraction, testFraction)
	}

	sorted := make([]ManifestEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	n := len(sorted)
	nTest := int(float64(n) * testFraction)
	nVal := int(float64(n) * valFraction)

	return Split{
		Train: sorted[:n-nTest-nVal],
		Val:   sorted[n-nTest-nVal : n-nTest],
		Test:  sorted[n-nTest:],
	}, nil
}
