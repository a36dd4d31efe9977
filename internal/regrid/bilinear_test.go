package regrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// planeField builds a field that is linear in both coordinates; bilinear
// interpolation must reproduce it exactly at any interior point.
func planeField(lat, lon []float64) [][]float64 {
	field := make([][]float64, len(lat))
	for i, la := range lat {
		row := make([]float64, len(lon))
		for j, lo := range lon {
			row[j] = 2*la + 3*lo + 1
		}
		field[i] = row
	}
	return field
}

func TestBilinear_ExactOnLinearField(t *testing.T) {
	srcLat := []float64{20, 21, 22, 23, 24}
	srcLon := []float64{88, 89, 90, 91}
	src := planeField(srcLat, srcLon)

	dstLat := []float64{20.25, 21.5, 23.75}
	dstLon := []float64{88.1, 89.9, 90.5}

	out, err := Bilinear(src, srcLat, srcLon, dstLat, dstLon)
	require.NoError(t, err)

	for i, la := range dstLat {
		for j, lo := range dstLon {
			assert.InDelta(t, 2*la+3*lo+1, out[i][j], 1e-9, "at (%g, %g)", la, lo)
		}
	}
}

func TestBilinear_DescendingLatitude(t *testing.T) {
	// ERA5 stores latitude north-to-south.
	srcLat := []float64{24, 23, 22, 21, 20}
	srcLon := []float64{88, 89, 90, 91}
	src := planeField(srcLat, srcLon)

	out, err := Bilinear(src, srcLat, srcLon, []float64{21.5}, []float64{89.25})
	require.NoError(t, err)
	assert.InDelta(t, 2*21.5+3*89.25+1, out[0][0], 1e-9)
}

func TestBilinear_ClampsOutsideGrid(t *testing.T) {
	srcLat := []float64{20, 21}
	srcLon := []float64{88, 89}
	src := [][]float64{{1, 2}, {3, 4}}

	out, err := Bilinear(src, srcLat, srcLon, []float64{19, 22}, []float64{87, 90})
	require.NoError(t, err)

	// Corners clamp to the nearest edge value, never extrapolate.
	assert.Equal(t, 1.0, out[0][0])
	assert.Equal(t, 2.0, out[0][1])
	assert.Equal(t, 3.0, out[1][0])
	assert.Equal(t, 4.0, out[1][1])
}

func TestBilinear_ExactGridPoints(t *testing.T) {
	srcLat := []float64{20, 21, 22}
	srcLon := []float64{88, 89, 90}
	src := [][]float64{{5, 6, 7}, {8, 9, 10}, {11, 12, 13}}

	out, err := Bilinear(src, srcLat, srcLon, srcLat, srcLon)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestBilinear_Errors(t *testing.T) {
	t.Run("shape mismatch", func(t *testing.T) {
		_, err := Bilinear([][]float64{{1, 2}}, []float64{20, 21}, []float64{88, 89}, []float64{20}, []float64{88})
		assert.Error(t, err)
	})

	t.Run("degenerate axis", func(t *testing.T) {
		_, err := Bilinear([][]float64{{1}}, []float64{20}, []float64{88}, []float64{20}, []float64{88})
		assert.Error(t, err)
	})

	t.Run("non-monotonic axis", func(t *testing.T) {
		src := [][]float64{{1, 2}, {3, 4}, {5, 6}}
		_, err := Bilinear(src, []float64{20, 22, 21}, []float64{88, 89}, []float64{20}, []float64{88})
		assert.Error(t, err)
	})
}
