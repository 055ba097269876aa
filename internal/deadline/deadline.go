// Package deadline implements the D-day countdown used by correction-order
// and deadline tracking. The count is whole calendar days: an off-by-one
// here is a user-visible bug in a legal-deadline tracker, so both endpoints
// are normalized to midnight before differencing.
package deadline

import "time"

// Status is the urgency bucket shown next to a deadline.
type Status string

const (
	StatusExpired Status = "expired"
	StatusUrgent  Status = "urgent"
	StatusNormal  Status = "normal"
)

// urgentWithinDays marks deadlines fewer than this many days out as urgent.
const urgentWithinDays = 3

// DaysUntil returns the signed number of calendar days from now until due.
// Time-of-day is stripped from both sides in due's location, so the result
// is 0 whenever due falls on today, regardless of the current wall-clock
// hour. Negative means the deadline has passed.
func DaysUntil(due, now time.Time) int {
	d := dateOnly(due)
	n := dateOnly(now.In(due.Location()))
	return int(d.Sub(n).Hours() / 24)
}

// Classify maps a day count to its urgency bucket. This labeling is a
// presentation policy layered on the exact count, kept here so every caller
// buckets the same way.
func Classify(days int) Status {
	switch {
	case days < 0:
		return StatusExpired
	case days < urgentWithinDays:
		return StatusUrgent
	default:
		return StatusNormal
	}
}

// dateOnly re-anchors the calendar date at midnight UTC, where every day is
// exactly 24 hours. Differencing in the deadline's own location would come up
// an hour short across a DST spring-forward and truncate the count.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
