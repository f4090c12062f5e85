// Package swimtime converts swim times and competition ages between their
// textual and numeric forms.
package swimtime

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Time resolution constants.
const (
	hundredthsPerSecond = 100
	secondsPerMinute    = 60
	minutesPerHour      = 60
	maxTimeParts        = 3
	fractionDigits      = 2
)

// Sentinel kinds for this package.
var (
	ErrInvalidTime = errors.New("invalid time")
	ErrInvalidDate = errors.New("invalid date")
)

// Time is a swim time in hundredths of a second. Integer hundredths keep
// sums and comparisons exact.
type Time int64

// FromSeconds converts a float seconds value, rounding to the nearest hundredth.
func FromSeconds(s float64) Time {
	return Time(math.Round(s * hundredthsPerSecond))
}

// Seconds returns the time as float seconds.
func (t Time) Seconds() float64 {
	return float64(t) / hundredthsPerSecond
}

// String formats the time as mm:ss.cc. Minutes are not wrapped into hours.
func (t Time) String() string {
	sign := ""
	if t < 0 {
		sign = "-"
		t = -t
	}
	perMinute := Time(hundredthsPerSecond * secondsPerMinute)
	minutes := t / perMinute
	rem := t % perMinute
	return fmt.Sprintf("%s%02d:%02d.%02d", sign, minutes, rem/hundredthsPerSecond, rem%hundredthsPerSecond)
}

// Parse converts H:MM:SS.ss, M:SS.ss, SS.ss or SS into a Time.
// Fractions shorter than two digits are right-padded ("35.8" is 35.80);
// longer fractions are rounded to hundredths.
func Parse(s string) (Time, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidTime)
	}
	parts := strings.Split(raw, ":")
	if len(parts) > maxTimeParts {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	var hours, minutes int64
	var err error
	switch len(parts) {
	case 3:
		if hours, err = parseWhole(parts[0]); err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
		if minutes, err = parseWhole(parts[1]); err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
	case 2:
		if minutes, err = parseWhole(parts[0]); err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
	}

	secs, hundredths, err := parseSeconds(parts[len(parts)-1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	total := ((hours*minutesPerHour+minutes)*secondsPerMinute+secs)*hundredthsPerSecond + hundredths
	return Time(total), nil
}

// MustParse is Parse for literals in tests and presets; it panics on error.
func MustParse(s string) Time {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func parseWhole(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidTime
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrInvalidTime
		}
	}
	return strconv.ParseInt(s, 10, 64)
}

func parseSeconds(s string) (int64, int64, error) {
	whole, frac, hasFrac := strings.Cut(strings.TrimSpace(s), ".")
	secs, err := parseWhole(whole)
	if err != nil {
		return 0, 0, err
	}
	if !hasFrac {
		return secs, 0, nil
	}
	if frac == "" {
		return secs, 0, nil
	}
	if _, err := parseWhole(frac); err != nil {
		return 0, 0, err
	}

	roundUp := false
	if len(frac) > fractionDigits {
		roundUp = frac[fractionDigits] >= '5'
		frac = frac[:fractionDigits]
	}
	for len(frac) < fractionDigits {
		frac += "0"
	}
	hundredths, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, 0, err
	}
	if roundUp {
		hundredths++
	}
	return secs, hundredths, nil
}
