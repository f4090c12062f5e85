package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/swimtime"
)

// Swimmer is a roster entry. Immutable during a run.
type Swimmer struct {
	ID        string // external identifier (ASA number)
	FirstName string
	LastName  string
	// BirthDate is zero when the source date could not be parsed.
	BirthDate    time.Time
	BirthDateRaw string
	Gender       Gender
	Available    bool
}

// DisplayName returns "First Last".
func (s Swimmer) DisplayName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// LessID orders external identifiers. ASA numbers compare numerically, so
// "9" sorts before "10"; a numeric id sorts before a non-numeric one and
// the rest compare as strings.
func LessID(a, b string) bool {
	na, errA := strconv.ParseUint(a, 10, 64)
	nb, errB := strconv.ParseUint(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		if na != nb {
			return na < nb
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

// PerformanceRecord is one recorded swim.
type PerformanceRecord struct {
	SwimmerID   string
	Event       string // canonical individual event name
	Course      Course
	Time        swimtime.Time
	Meet        string
	MeetDate    time.Time
	QualifyFlag string
	Order       int // input order
}

// Better reports whether r ranks ahead of o as a personal best: lower time,
// then more recent meet, then earlier input order.
func (r PerformanceRecord) Better(o PerformanceRecord) bool {
	if r.Time != o.Time {
		return r.Time < o.Time
	}
	if !r.MeetDate.Equal(o.MeetDate) {
		return r.MeetDate.After(o.MeetDate)
	}
	return r.Order < o.Order
}

// QualifyingStandard is a reference time for (event, age, gender, course).
type QualifyingStandard struct {
	Event    string
	Age      AgeCategory
	Gender   Gender
	Course   Course
	TimeType string
	Time     swimtime.Time
}

// IndividualPin binds a swimmer to one instance of an individual slot.
type IndividualPin struct {
	Slot      EventSlot
	SwimmerID string
}

// RelayPin binds a swimmer to a leg of a relay team. Team and Leg are
// 1-based; Stroke may be StrokeUnspecified.
type RelayPin struct {
	Slot      EventSlot
	Team      int
	Leg       int
	Stroke    Stroke
	SwimmerID string
}

// Pins is the caller's full pre-assignment set.
type Pins struct {
	Individual []IndividualPin
	Relay      []RelayPin
}

// Empty reports whether there are no pins at all.
func (p Pins) Empty() bool {
	return len(p.Individual) == 0 && len(p.Relay) == 0
}
