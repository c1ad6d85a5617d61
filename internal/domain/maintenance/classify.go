package maintenance

import (
	"fmt"
	"time"
)

// Unit selects the scale the classifier reasons in. Day-based cycles use
// UnitDays; the 3-minute test cycle uses UnitMinutes.
type Unit string

const (
	UnitDays    Unit = "days"
	UnitMinutes Unit = "minutes"
)

// Classification is the urgency verdict for a due date.
type Classification struct {
	Priority string
	Phrase   string
	Emit     bool
}

const (
	dayMillis    = 24 * 60 * 60 * 1000
	minuteMillis = 60 * 1000
)

// ceilDiv is mathematical ceiling division for int64.
func ceilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a > 0) == (b > 0) {
		q++
	}
	return q
}

// UnitForCycle returns the scale a cycle is classified on.
func UnitForCycle(cycle string) Unit {
	if cycle == Cycle3Minutes {
		return UnitMinutes
	}
	return UnitDays
}

// Classify computes the urgency tier for a due date. The remaining time is
// converted to whole units with ceiling division, so one millisecond in the
// future still counts as one unit away. An already-due date is critical with
// overdue phrasing; the lateness uses the same ceiling, so a barely missed
// due date reads as one unit late rather than zero. A date beyond the watch
// horizon does not emit at all.
func Classify(now, dueAt time.Time, unit Unit) Classification {
	unitMillis := int64(dayMillis)
	unitWord := "jour(s)"
	if unit == UnitMinutes {
		unitMillis = minuteMillis
		unitWord = "minute(s)"
	}

	remaining := ceilDiv(dueAt.Sub(now).Milliseconds(), unitMillis)

	if remaining <= 0 {
		late := ceilDiv(now.Sub(dueAt).Milliseconds(), unitMillis)
		if late < 0 {
			late = 0
		}
		return Classification{
			Priority: "critical",
			Phrase:   fmt.Sprintf("EN RETARD de %d %s", late, unitWord),
			Emit:     true,
		}
	}

	phrase := fmt.Sprintf("dans %d %s", remaining, unitWord)

	if unit == UnitMinutes {
		switch {
		case remaining <= 1:
			return Classification{Priority: "high", Phrase: phrase, Emit: true}
		case remaining <= 3:
			return Classification{Priority: "medium", Phrase: phrase, Emit: true}
		default:
			return Classification{Phrase: phrase}
		}
	}

	switch {
	case remaining <= 7:
		return Classification{Priority: "high", Phrase: phrase, Emit: true}
	case remaining <= 30:
		return Classification{Priority: "medium", Phrase: phrase, Emit: true}
	case remaining <= 60:
		return Classification{Priority: "low", Phrase: phrase, Emit: true}
	default:
		return Classification{Phrase: phrase}
	}
}
