package maintenance

import (
	"fmt"
	"time"
)

// NextDue rolls a cycle's due date forward from the given instant. Month and
// year cycles use calendar arithmetic with end-of-month clamping, so Jan 31
// plus one month lands on Feb 28 (or 29), never Mar 2. The result is always
// strictly after from.
func NextDue(cycle string, from time.Time) (time.Time, error) {
	switch cycle {
	case Cycle3Minutes:
		return from.Add(3 * time.Minute), nil
	case Cycle3Months:
		return addMonthsClamped(from, 3), nil
	case Cycle6Months:
		return addMonthsClamped(from, 6), nil
	case Cycle1Year:
		return addMonthsClamped(from, 12), nil
	default:
		return time.Time{}, fmt.Errorf("unknown cycle: %s", cycle)
	}
}

// addMonthsClamped adds months keeping the day-of-month, clamped to the last
// day of the target month. time.Time.AddDate is not used because it
// normalizes overflow (Jan 31 + 1 month = Mar 2 or 3).
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	m := int(month) + months
	year += (m - 1) / 12
	m = (m-1)%12 + 1

	if last := daysInMonth(year, time.Month(m)); day > last {
		day = last
	}
	h, min, sec := t.Clock()
	return time.Date(year, time.Month(m), day, h, min, sec, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
