package core

import (
	"time"
)

// Recurrence predicates and occurrence search. All date math is done at day
// granularity in UTC; callers pass any time.Time and it is normalized first.
//
// CUSTOM patterns are opaque to the engine: the expression text is display
// data only, and every in-range date counts as eligible so the task stays
// available for manual scheduling.

// DateOnly normalizes t to midnight UTC on the same calendar date
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// isoWeekday returns the ISO 8601 weekday: Monday=1 .. Sunday=7
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// daysBetween returns the whole days from a to b (b - a)
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// occurrenceProbeBound caps the linear search in the occurrence functions at
// one pattern period. MONTHLY needs up to a full month of probes; everything
// else repeats within two weeks. An unknown pattern gets zero probes so a
// malformed task can never send the search into an unbounded walk.
func occurrenceProbeBound(pattern string) int {
	switch pattern {
	case RecurrenceDaily, RecurrenceCustom, RecurrenceOnce:
		return 1
	case RecurrenceWeekdays, RecurrenceWeekends, RecurrenceWeekly:
		return 7
	case RecurrenceBiweekly:
		return 14
	case RecurrenceMonthly:
		return 32
	default:
		return 0
	}
}

// OccursOn reports whether a task with the given pattern and anchor date is
// scheduled on candidate. endDate, when set, bounds every pattern: nothing
// occurs after it.
func OccursOn(pattern string, anchor time.Time, endDate *time.Time, candidate time.Time) bool {
	anchor = DateOnly(anchor)
	candidate = DateOnly(candidate)

	if candidate.Before(anchor) {
		return false
	}
	if endDate != nil && candidate.After(DateOnly(*endDate)) {
		return false
	}

	switch pattern {
	case RecurrenceDaily:
		return true
	case RecurrenceWeekdays:
		return isoWeekday(candidate) <= 5
	case RecurrenceWeekends:
		return isoWeekday(candidate) >= 6
	case RecurrenceWeekly:
		return daysBetween(anchor, candidate)%7 == 0
	case RecurrenceBiweekly:
		return daysBetween(anchor, candidate)%14 == 0
	case RecurrenceMonthly:
		// Anchor days beyond a short month clamp to that month's last day.
		want := anchor.Day()
		if last := lastDayOfMonth(candidate); want > last {
			want = last
		}
		return candidate.Day() == want
	case RecurrenceCustom:
		return true
	case RecurrenceOnce:
		return candidate.Equal(anchor)
	}
	return false
}

// NextOccurrenceOnOrAfter returns the earliest eligible date >= from, or
// false when no occurrence remains before endDate. The search probes at most
// one pattern period of dates.
func NextOccurrenceOnOrAfter(pattern string, anchor time.Time, endDate *time.Time, from time.Time) (time.Time, bool) {
	anchor = DateOnly(anchor)
	start := DateOnly(from)
	if start.Before(anchor) {
		start = anchor
	}

	for i := 0; i < occurrenceProbeBound(pattern); i++ {
		d := start.AddDate(0, 0, i)
		if endDate != nil && d.After(DateOnly(*endDate)) {
			return time.Time{}, false
		}
		if OccursOn(pattern, anchor, endDate, d) {
			return d, true
		}
	}
	return time.Time{}, false
}

// PreviousOccurrenceOnOrBefore returns the latest eligible date <= from, or
// false when the pattern has not occurred yet by then. Like the forward
// search, it probes at most one pattern period.
func PreviousOccurrenceOnOrBefore(pattern string, anchor time.Time, endDate *time.Time, from time.Time) (time.Time, bool) {
	anchor = DateOnly(anchor)
	end := DateOnly(from)
	if endDate != nil {
		if e := DateOnly(*endDate); e.Before(end) {
			end = e
		}
	}
	if end.Before(anchor) {
		return time.Time{}, false
	}

	// ONCE occurs on the anchor alone, which may sit arbitrarily far back.
	if pattern == RecurrenceOnce {
		return anchor, true
	}

	for i := 0; i < occurrenceProbeBound(pattern); i++ {
		d := end.AddDate(0, 0, -i)
		if d.Before(anchor) {
			return time.Time{}, false
		}
		if OccursOn(pattern, anchor, endDate, d) {
			return d, true
		}
	}
	return time.Time{}, false
}
