package task

import "time"

const (
	dateLayout   = "2006-01-02"
	timeLayout   = "15:04"
	anchorLayout = "2006-01-02T15:04"
)

// Occurrence is a single future firing of a scheduled task item. Occurrences
// are recomputed on every pass and never stored; only the reminder derived
// from one is.
type Occurrence struct {
	Date string // YYYY-MM-DD
	Time string // HH:MM
	At   time.Time
}

// ParseAnchor combines an item's date and time strings into its anchor
// instant, interpreted in UTC.
func ParseAnchor(it Item) (time.Time, error) {
	at, err := time.ParseInLocation(anchorLayout, it.Date+"T"+it.Time, time.UTC)
	if err != nil {
		// Some producers include seconds in the time field.
		at, err = time.ParseInLocation("2006-01-02T15:04:05", it.Date+"T"+it.Time, time.UTC)
	}
	return at, err
}

// Occurrences computes the firings of it strictly after now: at most maxCount
// of them, none later than now plus horizonDays. A once item yields its
// anchor alone, and only while the anchor is still in the future. An item
// with a missing or unparseable date/time yields nothing.
//
// Stepping is anchored: occurrence n is the anchor advanced by n steps, so a
// daily task anchored at 08:00 fires at 08:00 no matter when the generator
// runs. A monthly anchor on day 29-31 clamps to the last day of shorter
// months and returns to its own day afterwards.
func Occurrences(it Item, now time.Time, horizonDays, maxCount int) []Occurrence {
	if !it.Schedulable() {
		return nil
	}
	anchor, err := ParseAnchor(it)
	if err != nil {
		return nil
	}

	freq := ParseFrequency(it.Frequency)
	if freq == FrequencyOnce {
		if anchor.After(now) {
			return []Occurrence{{Date: it.Date, Time: it.Time, At: anchor}}
		}
		return nil
	}

	limit := now.AddDate(0, 0, horizonDays)
	out := make([]Occurrence, 0, maxCount)
	for n := firstStepAfter(anchor, freq, now); len(out) < maxCount; n++ {
		at := step(anchor, freq, n)
		if at.After(limit) {
			break
		}
		out = append(out, Occurrence{
			Date: at.Format(dateLayout),
			Time: at.Format(timeLayout),
			At:   at,
		})
	}
	return out
}

// step returns the anchor advanced by n applications of the frequency's
// interval.
func step(anchor time.Time, freq Frequency, n int) time.Time {
	switch freq {
	case FrequencyWeekly:
		return anchor.AddDate(0, 0, 7*n)
	case FrequencyBiweekly:
		return anchor.AddDate(0, 0, 14*n)
	case FrequencyMonthly:
		return addMonths(anchor, n)
	default:
		return anchor.AddDate(0, 0, n)
	}
}

// firstStepAfter returns the smallest n for which step(anchor, freq, n) is
// strictly after now.
func firstStepAfter(anchor time.Time, freq Frequency, now time.Time) int {
	if anchor.After(now) {
		return 0
	}

	switch freq {
	case FrequencyMonthly:
		n := (now.Year()-anchor.Year())*12 + int(now.Month()) - int(anchor.Month())
		if n < 0 {
			n = 0
		}
		for !addMonths(anchor, n).After(now) {
			n++
		}
		return n
	default:
		days := 1
		if freq == FrequencyWeekly {
			days = 7
		} else if freq == FrequencyBiweekly {
			days = 14
		}
		interval := time.Duration(days) * 24 * time.Hour
		return int(now.Sub(anchor)/interval) + 1
	}
}

// addMonths advances t by n calendar months, clamping the day-of-month to the
// last valid day of the target month. Unlike time.AddDate it never spills
// into the following month (Jan 31 + 1 month is Feb 28, not Mar 3).
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	months := int(m) - 1 + n
	y += months / 12
	months %= 12
	if months < 0 {
		months += 12
		y--
	}
	month := time.Month(months + 1)
	if last := daysIn(y, month); d > last {
		d = last
	}
	return time.Date(y, month, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, m time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
