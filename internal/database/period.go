package database

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the on-disk format for scan dates and period bounds.
const DateLayout = "2006-01-02"

const periodSep = ".."

// Today returns the current local date in DateLayout.
func Today() string {
	return time.Now().Format(DateLayout)
}

// MakePeriodID joins start and end into a period_id. A single day is stored
// as the bare date, a range as "start..end".
func MakePeriodID(start, end string) string {
	if start == end {
		return start
	}
	return start + periodSep + end
}

// PeriodFor returns the period_id covering days calendar days ending at end.
func PeriodFor(end time.Time, days int) string {
	if days < 1 {
		days = 1
	}
	start := end.AddDate(0, 0, -(days - 1))
	return MakePeriodID(start.Format(DateLayout), end.Format(DateLayout))
}

// DaysSince counts whole calendar days from the date last to now.
func DaysSince(last string, now time.Time) (int, error) {
	from, err := time.Parse(DateLayout, last)
	if err != nil {
		return 0, fmt.Errorf("parsing scan date %q: %w", last, err)
	}
	to, _ := time.Parse(DateLayout, now.Format(DateLayout))
	return int(to.Sub(from).Hours() / 24), nil
}

func splitPeriod(periodID string) (start, end string) {
	if s, e, ok := strings.Cut(periodID, periodSep); ok {
		return s, e
	}
	return periodID, periodID
}

// FormatPeriodDisplay renders a period_id as "Feb 06, 2026" or
// "Feb 01 - Feb 06, 2026". Unparseable ids are returned unchanged.
func FormatPeriodDisplay(periodID string) string {
	s, e := splitPeriod(periodID)
	start, err := time.Parse(DateLayout, s)
	if err != nil {
		return periodID
	}
	end, err := time.Parse(DateLayout, e)
	if err != nil {
		return periodID
	}
	if s == e {
		return end.Format("Jan 02, 2006")
	}
	return fmt.Sprintf("%s - %s", start.Format("Jan 02"), end.Format("Jan 02, 2006"))
}

// PeriodEndDate returns the last day of a period_id.
func PeriodEndDate(periodID string) string {
	_, end := splitPeriod(periodID)
	return end
}
