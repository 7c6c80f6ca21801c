// Package schedule provides pure calendar arithmetic for recurring
// obligations: frequency advancement with month-length clamping, and
// calendar-month windows for aggregation.
package schedule

import (
	"time"

	"finwell/internal/logger"
)

// Frequency represents how often an obligation recurs.
type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyBiannual  Frequency = "biannual"
	FrequencyAnnual    Frequency = "annual"
)

// IsValid reports whether f is a known frequency.
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly,
		FrequencyQuarterly, FrequencyBiannual, FrequencyAnnual:
		return true
	}
	return false
}

// Advance computes the next occurrence date after anchor for the given
// frequency. preferredDay (1-31, 0 when unset) applies to monthly
// advancement only and is clamped to 28 so it is valid in every month.
// For anchors on the 29th-31st, the day is clamped down to the target
// month's length, so advancement is total for any input day.
//
// An unknown frequency falls back to a fixed 30-day step. That is a
// deliberate degraded policy rather than an error, and it is logged so
// it can never pass silently.
func Advance(anchor time.Time, frequency Frequency, preferredDay int) time.Time {
	switch frequency {
	case FrequencyDaily:
		return anchor.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return anchor.AddDate(0, 0, 7)
	case FrequencyBiweekly:
		return anchor.AddDate(0, 0, 14)
	case FrequencyMonthly:
		return advanceMonths(anchor, 1, preferredDay)
	case FrequencyQuarterly:
		return advanceMonths(anchor, 3, 0)
	case FrequencyBiannual:
		return advanceMonths(anchor, 6, 0)
	case FrequencyAnnual:
		return dateOnly(anchor.Year()+1, anchor.Month(), minInt(anchor.Day(), 28), anchor.Location())
	}

	logger.Get().Warnw("unknown obligation frequency, falling back to 30-day advance",
		"frequency", string(frequency),
		"anchor", anchor.Format("2006-01-02"),
	)
	return anchor.AddDate(0, 0, 30)
}

// advanceMonths moves anchor forward by months whole months. For the
// single-month (monthly) case the preferred day wins when set, clamped
// to 28; otherwise the anchor's day carries over and is clamped to the
// target month's length. Multi-month steps always clamp to 28.
func advanceMonths(anchor time.Time, months, preferredDay int) time.Time {
	year := anchor.Year()
	month := int(anchor.Month()) + months
	for month > 12 {
		month -= 12
		year++
	}

	var day int
	switch {
	case months > 1:
		day = minInt(anchor.Day(), 28)
	case preferredDay > 0:
		day = minInt(preferredDay, 28)
	default:
		day = anchor.Day()
	}
	if last := DaysInMonth(year, time.Month(month)); day > last {
		day = last
	}

	return dateOnly(year, time.Month(month), day, anchor.Location())
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day zero of the following month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Window is a half-open calendar-month interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Label formats the window's month for display, e.g. "Jan".
func (w Window) Label() string {
	return w.Start.Format("Jan")
}

// MonthWindow returns the calendar-month window containing t.
func MonthWindow(t time.Time) Window {
	start := MonthStart(t)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// MonthStart returns the first day of t's month at midnight.
func MonthStart(t time.Time) time.Time {
	return dateOnly(t.Year(), t.Month(), 1, t.Location())
}

// MonthWindowsBack returns the month window i steps before anchor,
// computed as anchor minus 30*i days floored to first-of-month. This
// mirrors the trailing-average and trend queries and is a known
// approximation: near the 29th-31st it can skip or repeat a boundary
// month versus true calendar subtraction.
func MonthWindowsBack(anchor time.Time, i int) Window {
	return MonthWindow(anchor.AddDate(0, 0, -30*i))
}

func dateOnly(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
