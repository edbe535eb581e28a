package domain

import "time"

// HarvestStats holds counters for one category harvest.
type HarvestStats struct {
	Category   string
	SearchTerm string
	Fetched    int
	Rejected   int
	Duplicates int
	Published  int
	Recorded   int
	Errors     int
	Duration   time.Duration
}
