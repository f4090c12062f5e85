package swimtime

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseDate parses a calendar date in any of the layouts found in club
// exports (2012-12-31, 31/12/2012, 31 Dec 2012, ...). Ambiguous numeric
// dates are read day-first.
func ParseDate(s string) (time.Time, error) {
	raw := strings.TrimSpace(s)
	if raw == "" || strings.EqualFold(raw, "null") {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	t, err := dateparse.ParseIn(raw, time.UTC, dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidDate, s, err)
	}
	return t, nil
}

// ComputeAge returns the competition age on ref: the difference in years,
// less one when the birthday has not yet occurred by ref. A zero dob
// yields 0.
func ComputeAge(dob, ref time.Time) int {
	if dob.IsZero() {
		return 0
	}
	age := ref.Year() - dob.Year()
	if ref.Month() < dob.Month() || (ref.Month() == dob.Month() && ref.Day() < dob.Day()) {
		age--
	}
	return age
}

// SeasonCutoff returns 31 December of year, the usual age reference date.
func SeasonCutoff(year int) time.Time {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// AgeFromString parses dob and returns the age on ref. Unparsable dates
// yield 0 and the parse error, which callers report as a warning.
func AgeFromString(dob string, ref time.Time) (int, error) {
	t, err := ParseDate(dob)
	if err != nil {
		return 0, err
	}
	return ComputeAge(t, ref), nil
}
