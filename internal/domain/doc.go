// Package domain models the data entities of the AR downscaling dataset
// pipeline.
//
// # Data Sources
//
// Atmospheric river (AR) events come from the tARget v4 global AR catalog
// (Guan & Waliser), a 6-hourly NetCDF mask on a 0.25 degree grid. The
// "shapemap" variable is non-zero wherever an AR shape covers a grid cell.
//
// Predictors come from ERA5 reanalysis, downloaded from the Copernicus
// Climate Data Store as one combined NetCDF file per calendar month. Each
// file carries the vertically integrated water vapour flux components
// (viwve, viwvn) on single levels plus temperature (t), relative humidity
// (r) and vertical velocity (w) on pressure levels, 6-hourly, ~0.25 degrees.
//
// Targets come from Himawari-8/9 AHI band 8 (water vapour) brightness
// temperature, one NetCDF file per observation timestamp, regridded to an
// equal-angle grid (~2 km) by the hisd2netcdf converter during acquisition.
//
// # Channel Schema
//
// The predictor stack is a fixed, ordered set of five channels:
//
//	ivt     sqrt(viwve^2 + viwvn^2), integrated vapour transport magnitude
//	t_500   temperature at 500 hPa
//	t_850   temperature at 850 hPa
//	rh_700  relative humidity at 700 hPa
//	w_500   vertical velocity at 500 hPa
//
// The order is load-bearing: normalization statistics are stored per channel
// in this order and downstream consumers index into them positionally.
//
// # Timestamp Keys
//
// Every artifact is keyed by its observation timestamp formatted as
// YYYYMMDD_HHMM (e.g. 20191209_1810). Event list files use ISO-8601
// (2006-01-02T15:04:05). The timestamp is the universal join key between the
// catalog, the two granule sources, the manifest, and the processed arrays.
package domain
