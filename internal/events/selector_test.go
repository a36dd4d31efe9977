package events

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munim110/ar-downscaling/internal/domain"
)

// fakeCatalog serves a mask from an in-memory (time, lat, lon) cube.
type fakeCatalog struct {
	times []time.Time
	lat   []float64
	lon   []float64
	mask  [][][]int8 // indexed [time][lat][lon]
}

func (f *fakeCatalog) Times() []time.Time    { return f.times }
func (f *fakeCatalog) Latitudes() []float64  { return f.lat }
func (f *fakeCatalog) Longitudes() []float64 { return f.lon }

func (f *fakeCatalog) AnyPresent(ti, latFrom, latTo, lonFrom, lonTo int) (bool, error) {
	for i := latFrom; i <= latTo; i++ {
		for j := lonFrom; j <= lonTo; j++ {
			if f.mask[ti][i][j] != 0 {
				return true, nil
			}
		}
	}
	return false, nil
}

var testRegion = domain.BoundingRegion{North: 27, South: 20, West: 88, East: 93}

func newFakeCatalog(n int) *fakeCatalog {
	base := time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)
	cat := &fakeCatalog{
		// Descending latitude, the order the real catalog uses.
		lat: []float64{30, 27, 24, 21, 18},
		lon: []float64{85, 88, 91, 94},
	}
	for i := 0; i < n; i++ {
		cat.times = append(cat.times, base.Add(time.Duration(i)*6*time.Hour))
		cat.mask = append(cat.mask, make([][]int8, len(cat.lat)))
		for li := range cat.mask[i] {
			cat.mask[i][li] = make([]int8, len(cat.lon))
		}
	}
	return cat
}

func testSelector(cat *fakeCatalog) *Selector {
	first := cat.times[0]
	last := cat.times[len(cat.times)-1]
	return NewSelector(testRegion, first, last, slog.Default())
}

func TestSelect_FindsEventsInsideRegion(t *testing.T) {
	cat := newFakeCatalog(4)
	cat.mask[1][2][1] = 1 // lat 24, lon 88: inside
	cat.mask[3][3][2] = 1 // lat 21, lon 91: inside

	got, err := testSelector(cat).Select(cat)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{cat.times[1], cat.times[3]}, got)
}

func TestSelect_IgnoresMaskOutsideRegion(t *testing.T) {
	cat := newFakeCatalog(3)
	cat.mask[0][0][1] = 1 // lat 30: north of region
	cat.mask[1][4][1] = 1 // lat 18: south of region
	cat.mask[2][2][0] = 1 // lon 85: west of region

	got, err := testSelector(cat).Select(cat)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelect_AllFalseMaskIsEmptyNotError(t *testing.T) {
	cat := newFakeCatalog(8)

	got, err := testSelector(cat).Select(cat)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelect_RespectsInterval(t *testing.T) {
	cat := newFakeCatalog(6)
	for i := range cat.times {
		cat.mask[i][2][1] = 1
	}

	sel := NewSelector(testRegion, cat.times[2], cat.times[4], slog.Default())
	got, err := sel.Select(cat)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{cat.times[2], cat.times[3], cat.times[4]}, got)
}

func TestSelect_DeduplicatesRepeatedTimestamps(t *testing.T) {
	cat := newFakeCatalog(3)
	cat.times[1] = cat.times[0]
	cat.mask[0][2][1] = 1
	cat.mask[1][2][1] = 1

	got, err := testSelector(cat).Select(cat)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSelect_DisjointRegionErrors(t *testing.T) {
	cat := newFakeCatalog(2)
	sel := NewSelector(domain.BoundingRegion{North: 60, South: 50, West: 0, East: 10},
		cat.times[0], cat.times[1], slog.Default())

	_, err := sel.Select(cat)
	assert.Error(t, err)
}

func TestEventList_RoundTrip(t *testing.T) {
	times := []time.Time{
		time.Date(2019, 12, 9, 18, 10, 0, 0, time.UTC),
		time.Date(2019, 12, 10, 0, 0, 0, 0, time.UTC),
	}

	path := filepath.Join(t.TempDir(), "ar_dates.txt")
	require.NoError(t, WriteEventList(path, times))

	got, err := ReadEventList(path)
	require.NoError(t, err)
	assert.Equal(t, times, got)
}

func TestWriteEventList_EmptyProducesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ar_dates.txt")
	require.NoError(t, WriteEventList(path, nil))

	got, err := ReadEventList(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}
