package strategy

import "time"

// Interval is how often a strategy buys.
type Interval string

const (
	IntervalHourly  Interval = "HOURLY"
	IntervalDaily   Interval = "DAILY"
	IntervalWeekly  Interval = "WEEKLY"
	IntervalMonthly Interval = "MONTHLY"
)

// Duration returns the fixed wall-clock length of the interval.
// MONTHLY is a 30-day approximation and drifts from calendar months.
func (i Interval) Duration() time.Duration {
	switch i {
	case IntervalHourly:
		return time.Hour
	case IntervalDaily:
		return 24 * time.Hour
	case IntervalWeekly:
		return 7 * 24 * time.Hour
	case IntervalMonthly:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// Valid reports whether the interval is one of the known values.
func (i Interval) Valid() bool {
	switch i {
	case IntervalHourly, IntervalDaily, IntervalWeekly, IntervalMonthly:
		return true
	}
	return false
}
