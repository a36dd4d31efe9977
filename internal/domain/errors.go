package domain

import "errors"

// Sentinel errors classifying per-entry processing failures. Callers match
// with errors.Is to decide how an outcome is tallied and reported.
var (
	// ErrAlignment marks a pair whose temporal or spatial alignment is
	// unacceptable: the nearest coarse time slice is too far from the entry
	// timestamp, or predictor and target spatial shapes disagree.
	ErrAlignment = errors.New("alignment failure")

	// ErrSchema marks a granule missing an expected variable, pressure level
	// or coordinate axis.
	ErrSchema = errors.New("schema violation")

	// ErrSourceUnavailable marks an entry whose granule or processed
	// artifacts are absent on disk.
	ErrSourceUnavailable = errors.New("source unavailable")
)
