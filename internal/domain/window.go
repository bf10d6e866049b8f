package domain

import "time"

// Window is a half-open time interval [Start, End).
// All overlap checks in the engine use half-open semantics, so a window
// ending at 11:00 and one starting at 11:00 do not conflict.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether w and other have a non-empty intersection.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// Duration returns End - Start.
// Callers must validate the window first; an invalid window yields a
// non-positive duration.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Valid reports whether End is strictly after Start.
func (w Window) Valid() bool {
	return w.End.After(w.Start)
}

// Contains reports whether t falls inside the window.
// The start is inclusive, the end exclusive.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}
