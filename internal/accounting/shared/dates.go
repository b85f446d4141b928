package shared

import "time"

// DateOnly drops the clock part and location so calendar comparisons are stable.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WithinDates reports whether date falls in [start, end], inclusive, by calendar day.
func WithinDates(date, start, end time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(start)) && !d.After(DateOnly(end))
}
