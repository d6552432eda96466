package domain

import "time"

// DispatchStats holds statistics about a single dispatch tick.
type DispatchStats struct {
	Now       time.Time
	Due       int
	Published int
	Failed    int
	Skipped   int
	Errors    int
	Duration  time.Duration
}
