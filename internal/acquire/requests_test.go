package acquire

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestGroupRequests(t *testing.T) {
	events := []time.Time{
		time.Date(2015, 3, 14, 6, 0, 0, 0, time.UTC),
		time.Date(2015, 3, 14, 12, 0, 0, 0, time.UTC),
		time.Date(2015, 3, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2015, 4, 1, 18, 0, 0, 0, time.UTC),
		time.Date(2014, 11, 30, 0, 0, 0, 0, time.UTC),
	}

	got := GroupRequests(events)
	want := []MonthRequest{
		{Year: 2014, Month: time.November, Days: []int{30}},
		{Year: 2015, Month: time.March, Days: []int{2, 14}},
		{Year: 2015, Month: time.April, Days: []int{1}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("request grouping mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupRequestsEmpty(t *testing.T) {
	assert.Empty(t, GroupRequests(nil))
}
