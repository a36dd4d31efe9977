package netcdf

import (
	"fmt"
	"reflect"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/munim110/ar-downscaling/internal/domain"
)

// Fine reads one Himawari brightness temperature granule produced by
// hisd2netcdf: a single tbb field over (latitude, longitude).
type Fine struct {
	nc  api.Group
	lat []float64
	lon []float64
}

// OpenFine opens a satellite granule.
func OpenFine(path string) (*Fine, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fine granule %s: %w", path, err)
	}

	f := &Fine{nc: nc}
	f.lat, _, err = axisFloat64(nc, "latitude", "lat")
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%w: fine granule %s: %v", domain.ErrSchema, path, err)
	}
	f.lon, _, err = axisFloat64(nc, "longitude", "lon")
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%w: fine granule %s: %v", domain.ErrSchema, path, err)
	}
	return f, nil
}

// Latitudes returns the latitude axis in file order.
func (f *Fine) Latitudes() []float64 { return f.lat }

// Longitudes returns the longitude axis.
func (f *Fine) Longitudes() []float64 { return f.lon }

// Target reads the brightness temperature field. A leading length-one time
// dimension, present in some converter outputs, is stripped.
func (f *Fine) Target() ([][]float64, error) {
	vg, err := f.nc.GetVarGetter(domain.TargetField)
	if err != nil {
		return nil, fmt.Errorf("%w: variable %q missing: %v", domain.ErrSchema, domain.TargetField, err)
	}
	v, err := vg.Values()
	if err != nil {
		return nil, fmt.Errorf("read variable %q: %w", domain.TargetField, err)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.Len() == 1 &&
		rv.Index(0).Kind() == reflect.Slice && rv.Index(0).Len() > 0 &&
		rv.Index(0).Index(0).Kind() == reflect.Slice {
		v = rv.Index(0).Interface()
	}

	scale, offset := packing(vg.Attributes())
	grid, err := grid2D(v, scale, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: variable %q: %v", domain.ErrSchema, domain.TargetField, err)
	}
	return grid, nil
}

// Close releases the underlying file.
func (f *Fine) Close() error {
	f.nc.Close()
	return nil
}
