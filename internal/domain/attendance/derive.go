package attendance

import (
	"math"
	"time"
)

const (
	fullDayHours = 8
	halfDayHours = 4
)

// Derive recomputes WorkHours and Status from the check-in and check-out
// times. It must run before every persist.
//
// When both times are present the derived status wins over any status set
// explicitly. Below the half-day threshold the current status is kept.
func Derive(a *Attendance) {
	if a.CheckIn == nil || a.CheckOut == nil {
		return
	}

	hours := RoundHours(a.CheckOut.Time.Sub(a.CheckIn.Time).Hours())
	a.WorkHours = hours

	switch {
	case hours >= fullDayHours:
		a.Status = StatusPresent
	case hours >= halfDayHours:
		a.Status = StatusHalfDay
	}
}

// RoundHours rounds to two decimal places.
func RoundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

// DayBounds returns the inclusive local-time interval covering the day of t.
func DayBounds(t time.Time) (start, end time.Time) {
	start = DayOf(t)
	end = start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end
}

// DayOf normalizes t to local midnight.
func DayOf(t time.Time) time.Time {
	y, m, d := t.In(time.Local).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// LocalDay re-anchors a calendar date decoded in another zone (a DATE column
// comes back as UTC midnight) onto local midnight of the same date.
func LocalDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
