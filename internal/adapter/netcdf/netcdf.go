// Package netcdf reads the three NetCDF granule kinds the pipeline consumes:
// the AR catalog mask, monthly combined ERA5 files, and per-timestamp
// Himawari brightness temperature files.
package netcdf

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

var float64Type = reflect.TypeOf(float64(0))

// axisFloat64 reads a 1-D coordinate variable as float64, trying each of the
// given names in order.
func axisFloat64(nc api.Group, names ...string) ([]float64, string, error) {
	for _, name := range names {
		vg, err := nc.GetVarGetter(name)
		if err != nil {
			continue
		}
		v, err := vg.Values()
		if err != nil {
			return nil, "", fmt.Errorf("read axis %q: %w", name, err)
		}
		axis, err := toFloat64s(v)
		if err != nil {
			return nil, "", fmt.Errorf("axis %q: %w", name, err)
		}
		return axis, name, nil
	}
	return nil, "", fmt.Errorf("none of the coordinate variables %v present", names)
}

// toFloat64s converts any 1-D numeric slice to float64.
func toFloat64s(v any) ([]float64, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("expected a slice, got %T", v)
	}
	out := make([]float64, rv.Len())
	for i := range out {
		e := rv.Index(i)
		if !e.CanConvert(float64Type) {
			return nil, fmt.Errorf("element %d is %s, not numeric", i, e.Kind())
		}
		out[i] = e.Convert(float64Type).Float()
	}
	return out, nil
}

// grid2D converts a nested 2-D numeric slice to float64, applying the
// packed-variable scale and offset.
func grid2D(v any, scale, offset float64) ([][]float64, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("expected a 2-D slice, got %T", v)
	}
	out := make([][]float64, rv.Len())
	for i := range out {
		row, err := toFloat64s(rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if scale != 1 || offset != 0 {
			for j := range row {
				row[j] = row[j]*scale + offset
			}
		}
		out[i] = row
	}
	return out, nil
}

// packing reads the scale_factor/add_offset attributes of a variable,
// defaulting to the identity transform for unpacked data.
func packing(attrs api.AttributeMap) (scale, offset float64) {
	scale, offset = 1, 0
	if attrs == nil {
		return
	}
	if v, has := attrs.Get("scale_factor"); has {
		if f, err := attrFloat(v); err == nil {
			scale = f
		}
	}
	if v, has := attrs.Get("add_offset"); has {
		if f, err := attrFloat(v); err == nil {
			offset = f
		}
	}
	return
}

func attrFloat(v any) (float64, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.Len() == 1 {
		rv = rv.Index(0)
	}
	if !rv.CanConvert(float64Type) {
		return 0, fmt.Errorf("attribute value %T is not numeric", v)
	}
	return rv.Convert(float64Type).Float(), nil
}

// unitsRe parses CF time units, e.g. "hours since 1900-01-01 00:00:00.0".
var unitsRe = regexp.MustCompile(`^(\w+)\s+since\s+(\d{4}-\d{1,2}-\d{1,2})(?:[T ](\d{1,2}:\d{2}(?::\d{2})?))?`)

// timeAxis decodes a CF-convention time coordinate into UTC instants using
// the variable's units attribute.
func timeAxis(nc api.Group, names ...string) ([]time.Time, string, error) {
	for _, name := range names {
		v, err := nc.GetVariable(name)
		if err != nil {
			continue
		}
		raw, err := toFloat64s(v.Values)
		if err != nil {
			return nil, "", fmt.Errorf("time axis %q: %w", name, err)
		}
		units := "seconds since 1970-01-01"
		if v.Attributes != nil {
			if u, has := v.Attributes.Get("units"); has {
				if s, ok := u.(string); ok {
					units = s
				}
			}
		}
		step, epoch, err := parseTimeUnits(units)
		if err != nil {
			return nil, "", fmt.Errorf("time axis %q: %w", name, err)
		}
		out := make([]time.Time, len(raw))
		for i, r := range raw {
			out[i] = epoch.Add(time.Duration(r * float64(step))).UTC()
		}
		return out, name, nil
	}
	return nil, "", fmt.Errorf("none of the time variables %v present", names)
}

func parseTimeUnits(units string) (time.Duration, time.Time, error) {
	m := unitsRe.FindStringSubmatch(units)
	if m == nil {
		return 0, time.Time{}, fmt.Errorf("unsupported time units %q", units)
	}

	var step time.Duration
	switch m[1] {
	case "seconds", "second":
		step = time.Second
	case "minutes", "minute":
		step = time.Minute
	case "hours", "hour":
		step = time.Hour
	case "days", "day":
		step = 24 * time.Hour
	default:
		return 0, time.Time{}, fmt.Errorf("unsupported time unit %q", m[1])
	}

	clock := m[3]
	if clock == "" {
		clock = "00:00:00"
	} else if len(clock) == 5 {
		clock += ":00"
	}
	epoch, err := time.ParseInLocation("2006-1-2 15:04:05", m[2]+" "+clock, time.UTC)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("parse time epoch in %q: %w", units, err)
	}
	return step, epoch, nil
}

// levelIndex locates a pressure level on the level axis by label.
func levelIndex(levels []float64, level float64) (int, error) {
	for i, l := range levels {
		if l == level {
			return i, nil
		}
	}
	return 0, fmt.Errorf("pressure level %s not present in %v",
		strconv.FormatFloat(level, 'g', -1, 64), levels)
}
