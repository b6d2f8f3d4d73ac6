package service

import "time"

// TimeWindow is a half-open interval [Start, End).
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the two windows share any instant.  Windows
// that only touch at an endpoint do not overlap.
func (w TimeWindow) Overlaps(o TimeWindow) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// Minutes returns the window length in whole minutes.
func (w TimeWindow) Minutes() int {
	return int(w.End.Sub(w.Start) / time.Minute)
}

// Valid reports whether Start precedes End.
func (w TimeWindow) Valid() bool { return w.Start.Before(w.End) }
