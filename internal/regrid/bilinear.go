// Package regrid resamples fields between rectilinear latitude/longitude
// grids.
package regrid

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Bilinear resamples src, a (len(srcLat), len(srcLon)) row-major field, onto
// the grid spanned by dstLat and dstLon using bilinear interpolation.
//
// Axes may be ascending or descending; descending axes are reversed
// internally together with the field, so ERA5's north-to-south latitude
// ordering needs no caller-side handling.
//
// Extrapolation policy: destination points outside the source grid are
// clamped to the edge values. Both sources are acquired over the same
// bounding box, so overhang is at most one coarse cell at the border;
// clamping there is preferred over discarding whole granules.
func Bilinear(src [][]float64, srcLat, srcLon, dstLat, dstLon []float64) ([][]float64, error) {
	if len(src) != len(srcLat) {
		return nil, fmt.Errorf("regrid: field has %d rows, latitude axis has %d", len(src), len(srcLat))
	}
	for i, row := range src {
		if len(row) != len(srcLon) {
			return nil, fmt.Errorf("regrid: row %d has %d columns, longitude axis has %d", i, len(row), len(srcLon))
		}
	}
	if len(srcLat) < 2 || len(srcLon) < 2 {
		return nil, fmt.Errorf("regrid: source grid %dx%d is too small", len(srcLat), len(srcLon))
	}

	lat, field, err := ascendingRows(srcLat, src)
	if err != nil {
		return nil, err
	}
	lon, field, err := ascendingCols(srcLon, field)
	if err != nil {
		return nil, err
	}

	out := make([][]float64, len(dstLat))
	for i, la := range dstLat {
		row := make([]float64, len(dstLon))
		i0, i1, fy := bracket(lat, la)
		for j, lo := range dstLon {
			j0, j1, fx := bracket(lon, lo)
			v00 := field[i0][j0]
			v01 := field[i0][j1]
			v10 := field[i1][j0]
			v11 := field[i1][j1]
			top := v00 + fx*(v01-v00)
			bot := v10 + fx*(v11-v10)
			row[j] = top + fy*(bot-top)
		}
		out[i] = row
	}
	return out, nil
}

// bracket locates value x on ascending axis, returning the surrounding index
// pair and the interpolation weight in [0,1]. Out-of-range values clamp to
// the nearest edge cell with weight 0 or 1.
func bracket(axis []float64, x float64) (int, int, float64) {
	n := len(axis)
	if x <= axis[0] {
		return 0, 0, 0
	}
	if x >= axis[n-1] {
		return n - 1, n - 1, 0
	}
	// First index with axis[i] >= x; the bracketing cell is [i-1, i].
	i := sort.SearchFloat64s(axis, x)
	if axis[i] == x {
		return i, i, 0
	}
	lo, hi := i-1, i
	f := (x - axis[lo]) / (axis[hi] - axis[lo])
	return lo, hi, f
}

// ascendingRows returns the latitude axis in ascending order, reversing the
// field rows when the source stores latitude north-to-south.
func ascendingRows(axis []float64, field [][]float64) ([]float64, [][]float64, error) {
	switch {
	case sort.Float64sAreSorted(axis):
		return axis, field, nil
	case descending(axis):
		rev := make([]float64, len(axis))
		copy(rev, axis)
		floats.Reverse(rev)
		flipped := make([][]float64, len(field))
		for i := range field {
			flipped[i] = field[len(field)-1-i]
		}
		return rev, flipped, nil
	default:
		return nil, nil, fmt.Errorf("regrid: latitude axis is not monotonic")
	}
}

// ascendingCols is the longitude counterpart of ascendingRows.
func ascendingCols(axis []float64, field [][]float64) ([]float64, [][]float64, error) {
	switch {
	case sort.Float64sAreSorted(axis):
		return axis, field, nil
	case descending(axis):
		rev := make([]float64, len(axis))
		copy(rev, axis)
		floats.Reverse(rev)
		flipped := make([][]float64, len(field))
		for i, row := range field {
			r := make([]float64, len(row))
			for j := range row {
				r[j] = row[len(row)-1-j]
			}
			flipped[i] = r
		}
		return rev, flipped, nil
	default:
		return nil, nil, fmt.Errorf("regrid: longitude axis is not monotonic")
	}
}

func descending(axis []float64) bool {
	for i := 1; i < len(axis); i++ {
		if axis[i] >= axis[i-1] {
			return false
		}
	}
	return true
}
