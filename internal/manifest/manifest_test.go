package manifest

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munim110/ar-downscaling/internal/domain"
)

func TestParseCoarseKey(t *testing.T) {
	cases := []struct {
		name string
		want MonthKey
		ok   bool
	}{
		{name: "2015-03_era5_combined.nc", want: MonthKey{2015, time.March}, ok: true},
		{name: "2023-12_era5_combined.nc", want: MonthKey{2023, time.December}, ok: true},
		{name: "2015-13_era5_combined.nc", ok: false},
		{name: "era5_combined.nc", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, ok := ParseCoarseKey(tc.name)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, key)
			}
		})
	}
}

func TestParseFineKey(t *testing.T) {
	ts, ok := ParseFineKey("HS_H08_20191209_1810_B08_BANGLADESH.nc")
	require.True(t, ok)
	assert.Equal(t, time.Date(2019, 12, 9, 18, 10, 0, 0, time.UTC), ts)

	_, ok = ParseFineKey("HS_H08_notadate_B08.nc")
	assert.False(t, ok)
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestBuild_MatchesAndDrops(t *testing.T) {
	coarseDir := t.TempDir()
	fineDir := t.TempDir()

	touch(t, filepath.Join(coarseDir, "2019-12_era5_combined.nc"))
	touch(t, filepath.Join(coarseDir, "2020-01_era5_combined.nc"))
	touch(t, filepath.Join(coarseDir, "notes.txt")) // ignored: wrong suffix

	touch(t, filepath.Join(fineDir, "HS_H08_20191209_1810_B08_BANGLADESH.nc"))
	touch(t, filepath.Join(fineDir, "HS_H08_20191209_0600_B08_BANGLADESH.nc"))
	touch(t, filepath.Join(fineDir, "HS_H09_20200115_1200_B08_BANGLADESH.nc"))
	touch(t, filepath.Join(fineDir, "HS_H08_20210301_0000_B08_BANGLADESH.nc")) // no 2021-03 coarse granule

	entries, dropped, err := NewBuilder(coarseDir, fineDir, slog.Default()).Build()
	require.NoError(t, err)

	assert.Equal(t, 1, dropped)
	require.Len(t, entries, 3)

	// Sorted ascending by timestamp.
	assert.Equal(t, time.Date(2019, 12, 9, 6, 0, 0, 0, time.UTC), entries[0].Timestamp)
	assert.Equal(t, time.Date(2019, 12, 9, 18, 10, 0, 0, time.UTC), entries[1].Timestamp)
	assert.Equal(t, time.Date(2020, 1, 15, 12, 0, 0, 0, time.UTC), entries[2].Timestamp)

	assert.Equal(t, filepath.Join(coarseDir, "2019-12_era5_combined.nc"), entries[0].CoarsePath)
	assert.Equal(t, filepath.Join(fineDir, "HS_H08_20191209_0600_B08_BANGLADESH.nc"), entries[0].FinePath)
}

func TestBuild_EmptySourcesFailSoftly(t *testing.T) {
	entries, dropped, err := NewBuilder(t.TempDir(), t.TempDir(), slog.Default()).Build()
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Zero(t, dropped)
}

func TestManifestCSV_RoundTrip(t *testing.T) {
	entries := []domain.ManifestEntry{
		{
			Timestamp:  time.Date(2019, 12, 9, 18, 10, 0, 0, time.UTC),
			CoarsePath: "era5/2019-12_era5_combined.nc",
			FinePath:   "himawari/HS_H08_20191209_1810_B08_BANGLADESH.nc",
		},
		{
			Timestamp:  time.Date(2020, 1, 15, 12, 0, 0, 0, time.UTC),
			CoarsePath: "era5/2020-01_era5_combined.nc",
			FinePath:   "himawari/HS_H09_20200115_1200_B08_BANGLADESH.nc",
		},
	}

	path := filepath.Join(t.TempDir(), "data_manifest.csv")
	require.NoError(t, Write(path, entries))

	loaded, err := Read(path)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(entries, loaded))
}

func TestManifestCSV_HeaderRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data_manifest.csv")
	require.NoError(t, Write(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "timestamp,era5_path,satellite_path\n", string(data))
}
