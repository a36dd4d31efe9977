// Package acquire implements the source-acquisition collaborators: grouping
// event timestamps into monthly ERA5 retrieval requests, and downloading
// Himawari L1b segments into region-subsetted NetCDF granules. The
// processing pipeline never calls this package directly; it only requires
// the granules to exist on disk.
package acquire

import (
	"sort"
	"time"
)

// MonthRequest asks the coarse-source collaborator for one calendar month,
// restricted to the event days inside it.
type MonthRequest struct {
	Year  int
	Month time.Month
	Days  []int
}

// GroupRequests folds event timestamps into per-month requests with sorted,
// deduplicated day lists, ordered chronologically. Monthly grouping keeps
// the number of remote retrievals small: the CDS API prices requests, not
// volume.
func GroupRequests(events []time.Time) []MonthRequest {
	type key struct {
		year  int
		month time.Month
	}
	days := make(map[key]map[int]struct{})
	for _, ts := range events {
		ts = ts.UTC()
		k := key{ts.Year(), ts.Month()}
		if days[k] == nil {
			days[k] = make(map[int]struct{})
		}
		days[k][ts.Day()] = struct{}{}
	}

	requests := make([]MonthRequest, 0, len(days))
	for k, set := range days {
		req := MonthRequest{Year: k.year, Month: k.month}
		for d := range set {
			req.Days = append(req.Days, d)
		}
		sort.Ints(req.Days)
		requests = append(requests, req)
	}
	sort.Slice(requests, func(i, j int) bool {
		if requests[i].Year != requests[j].Year {
			return requests[i].Year < requests[j].Year
		}
		return requests[i].Month < requests[j].Month
	})
	return requests
}
