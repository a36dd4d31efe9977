package acquire

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanFor(t *testing.T) {
	tests := []struct {
		name         string
		ts           time.Time
		wantPrefix   string
		wantBucket   string
		wantSegments int
	}{
		{
			name:         "early himawari-8 single segment",
			ts:           time.Date(2017, 6, 1, 6, 0, 0, 0, time.UTC),
			wantPrefix:   "HS_H08",
			wantBucket:   "noaa-himawari8",
			wantSegments: 1,
		},
		{
			name:         "multi-segment boundary is inclusive",
			ts:           time.Date(2019, 12, 9, 18, 10, 0, 0, time.UTC),
			wantPrefix:   "HS_H08",
			wantBucket:   "noaa-himawari8",
			wantSegments: 10,
		},
		{
			name:         "late himawari-8",
			ts:           time.Date(2021, 5, 20, 0, 0, 0, 0, time.UTC),
			wantPrefix:   "HS_H08",
			wantBucket:   "noaa-himawari8",
			wantSegments: 10,
		},
		{
			name:         "himawari-9 era",
			ts:           time.Date(2023, 8, 15, 12, 0, 0, 0, time.UTC),
			wantPrefix:   "HS_H09",
			wantBucket:   "noaa-himawari9",
			wantSegments: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := planFor(tt.ts)
			assert.Equal(t, tt.wantPrefix, plan.prefix)
			assert.Equal(t, tt.wantBucket, plan.bucket)
			assert.Equal(t, tt.wantSegments, plan.segments)
		})
	}
}

func TestSegmentURL(t *testing.T) {
	t.Run("single segment", func(t *testing.T) {
		ts := time.Date(2017, 6, 1, 6, 0, 0, 0, time.UTC)
		url, filename := segmentURL(planFor(ts), ts, 8, 1)
		assert.Equal(t, "HS_H08_20170601_0600_B08_FLDK_R20_S0101.DAT.bz2", filename)
		assert.Equal(t,
			"https://noaa-himawari8.s3.amazonaws.com/AHI-L1b-FLDK/2017/06/01/0600/HS_H08_20170601_0600_B08_FLDK_R20_S0101.DAT.bz2",
			url)
	})

	t.Run("segment of ten", func(t *testing.T) {
		ts := time.Date(2023, 8, 15, 12, 0, 0, 0, time.UTC)
		url, filename := segmentURL(planFor(ts), ts, 8, 7)
		assert.Equal(t, "HS_H09_20230815_1200_B08_FLDK_R20_S0710.DAT.bz2", filename)
		assert.Contains(t, url, "noaa-himawari9.s3.amazonaws.com/AHI-L1b-FLDK/2023/08/15/1200/")
	})
}

func TestGranuleName(t *testing.T) {
	ts := time.Date(2023, 8, 15, 12, 0, 0, 0, time.UTC)
	got := granuleName(planFor(ts), ts, 8)
	require.Equal(t, "HS_H09_20230815_1200_B08_BANGLADESH.nc", got)
}
