package netcdf

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/munim110/ar-downscaling/internal/domain"
)

// maskVariable is the AR shape mask in the tARget catalog.
const maskVariable = "shapemap"

// Catalog reads the global AR catalog. The shapemap variable carries the
// time dimension first, followed by auxiliary dimensions (ensemble, level)
// and the spatial axes in file order. Slices are fetched one timestamp at a
// time; the full catalog never fits in memory.
type Catalog struct {
	nc      api.Group
	mask    api.VarGetter
	dims    []string
	latName string
	lonName string
	times   []time.Time
	lat     []float64
	lon     []float64
}

// OpenCatalog opens the AR catalog file.
func OpenCatalog(path string) (*Catalog, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}

	c := &Catalog{nc: nc}
	c.times, _, err = timeAxis(nc, "time", "valid_time")
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%w: catalog %s: %v", domain.ErrSchema, path, err)
	}
	c.lat, c.latName, err = axisFloat64(nc, "lat", "latitude")
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%w: catalog %s: %v", domain.ErrSchema, path, err)
	}
	c.lon, c.lonName, err = axisFloat64(nc, "lon", "longitude")
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%w: catalog %s: %v", domain.ErrSchema, path, err)
	}

	c.mask, err = nc.GetVarGetter(maskVariable)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%w: catalog %s: variable %q missing: %v", domain.ErrSchema, path, maskVariable, err)
	}
	c.dims = c.mask.Dimensions()
	if len(c.dims) == 0 || (c.dims[0] != "time" && c.dims[0] != "valid_time") {
		nc.Close()
		return nil, fmt.Errorf("%w: catalog %s: %q must have a leading time dimension, has %v",
			domain.ErrSchema, path, maskVariable, c.dims)
	}
	return c, nil
}

// Times returns the catalog's time axis.
func (c *Catalog) Times() []time.Time { return c.times }

// Latitudes returns the latitude axis in file order.
func (c *Catalog) Latitudes() []float64 { return c.lat }

// Longitudes returns the longitude axis.
func (c *Catalog) Longitudes() []float64 { return c.lon }

// AnyPresent reports whether the mask is non-zero anywhere inside the given
// inclusive spatial index ranges at one timestamp. Auxiliary dimensions
// (ensemble, level) are reduced with a logical OR over their full extent.
func (c *Catalog) AnyPresent(timeIndex, latFrom, latTo, lonFrom, lonTo int) (bool, error) {
	if timeIndex < 0 || timeIndex >= len(c.times) {
		return false, fmt.Errorf("time index %d out of range [0,%d)", timeIndex, len(c.times))
	}
	v, err := c.mask.GetSlice(int64(timeIndex), int64(timeIndex)+1)
	if err != nil {
		return false, fmt.Errorf("read %q at time index %d: %w", maskVariable, timeIndex, err)
	}
	return c.anyNonzero(reflect.ValueOf(v), c.dims, latFrom, latTo, lonFrom, lonTo), nil
}

func (c *Catalog) anyNonzero(v reflect.Value, dims []string, latFrom, latTo, lonFrom, lonTo int) bool {
	if len(dims) == 0 || v.Kind() != reflect.Slice {
		if !v.CanConvert(float64Type) {
			return false
		}
		f := v.Convert(float64Type).Float()
		return f != 0 && !math.IsNaN(f)
	}

	from, to := 0, v.Len()-1
	switch dims[0] {
	case c.latName:
		from, to = latFrom, latTo
	case c.lonName:
		from, to = lonFrom, lonTo
	}
	if from < 0 {
		from = 0
	}
	if to > v.Len()-1 {
		to = v.Len() - 1
	}
	for i := from; i <= to; i++ {
		if c.anyNonzero(v.Index(i), dims[1:], latFrom, latTo, lonFrom, lonTo) {
			return true
		}
	}
	return false
}

// Close releases the underlying file.
func (c *Catalog) Close() error {
	c.nc.Close()
	return nil
}
