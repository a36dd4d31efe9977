package netcdf

import (
	"fmt"
	"reflect"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/munim110/ar-downscaling/internal/domain"
)

// Coarse reads one monthly combined ERA5 file. Single-level variables are
// stored as (valid_time, latitude, longitude); pressure-level variables as
// (valid_time, pressure_level, latitude, longitude). Values are unpacked
// with scale_factor/add_offset when present.
type Coarse struct {
	nc     api.Group
	times  []time.Time
	lat    []float64
	lon    []float64
	levels []float64
}

// OpenCoarse opens a combined ERA5 granule.
func OpenCoarse(path string) (*Coarse, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open coarse granule %s: %w", path, err)
	}

	c := &Coarse{nc: nc}
	c.times, _, err = timeAxis(nc, "valid_time", "time")
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%w: coarse granule %s: %v", domain.ErrSchema, path, err)
	}
	c.lat, _, err = axisFloat64(nc, "latitude", "lat")
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%w: coarse granule %s: %v", domain.ErrSchema, path, err)
	}
	c.lon, _, err = axisFloat64(nc, "longitude", "lon")
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%w: coarse granule %s: %v", domain.ErrSchema, path, err)
	}
	c.levels, _, err = axisFloat64(nc, "pressure_level", "level")
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%w: coarse granule %s: %v", domain.ErrSchema, path, err)
	}
	return c, nil
}

// Times returns the granule's time axis.
func (c *Coarse) Times() []time.Time { return c.times }

// Latitudes returns the latitude axis in file order (typically descending).
func (c *Coarse) Latitudes() []float64 { return c.lat }

// Longitudes returns the longitude axis.
func (c *Coarse) Longitudes() []float64 { return c.lon }

// Field reads one time slice of a single-level variable.
func (c *Coarse) Field(name string, timeIndex int) ([][]float64, error) {
	slab, attrs, err := c.timeSlab(name, timeIndex)
	if err != nil {
		return nil, err
	}
	rv := reflect.ValueOf(slab)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%w: variable %q has unexpected layout %T", domain.ErrSchema, name, slab)
	}
	scale, offset := packing(attrs)
	grid, err := grid2D(slab, scale, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: variable %q: %v", domain.ErrSchema, name, err)
	}
	return grid, nil
}

// FieldAtLevel reads one time slice of a pressure-level variable at the
// given level, located by label on the pressure axis.
func (c *Coarse) FieldAtLevel(name string, level float64, timeIndex int) ([][]float64, error) {
	li, err := levelIndex(c.levels, level)
	if err != nil {
		return nil, fmt.Errorf("%w: variable %q: %v", domain.ErrSchema, name, err)
	}
	slab, attrs, err := c.timeSlab(name, timeIndex)
	if err != nil {
		return nil, err
	}
	rv := reflect.ValueOf(slab)
	if rv.Kind() != reflect.Slice || li >= rv.Len() {
		return nil, fmt.Errorf("%w: variable %q has no level index %d", domain.ErrSchema, name, li)
	}
	scale, offset := packing(attrs)
	grid, err := grid2D(rv.Index(li).Interface(), scale, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: variable %q: %v", domain.ErrSchema, name, err)
	}
	return grid, nil
}

// timeSlab fetches the hyperslab of one variable at one time index, with the
// leading time dimension stripped.
func (c *Coarse) timeSlab(name string, timeIndex int) (any, api.AttributeMap, error) {
	vg, err := c.nc.GetVarGetter(name)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: variable %q missing: %v", domain.ErrSchema, name, err)
	}
	if timeIndex < 0 || timeIndex >= len(c.times) {
		return nil, nil, fmt.Errorf("time index %d out of range [0,%d)", timeIndex, len(c.times))
	}
	v, err := vg.GetSlice(int64(timeIndex), int64(timeIndex)+1)
	if err != nil {
		return nil, nil, fmt.Errorf("read variable %q at time index %d: %w", name, timeIndex, err)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.Len() != 1 {
		return nil, nil, fmt.Errorf("%w: variable %q has unexpected layout %T", domain.ErrSchema, name, v)
	}
	return rv.Index(0).Interface(), vg.Attributes(), nil
}

// Close releases the underlying file.
func (c *Coarse) Close() error {
	c.nc.Close()
	return nil
}
