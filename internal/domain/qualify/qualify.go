// Package qualify classifies swims against county qualifying standards.
package qualify

import (
	"math"
	"strings"

	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/model"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/swimtime"
)

// Default classifier configuration.
const (
	DefaultTimeType        = "QT"
	DefaultOpenFallbackAge = 17
	DefaultMinStandardAge  = 11
	indexPrecision         = 1000
)

// Status is the qualifying status token of a result row.
type Status string

// Status tokens.
const (
	StatusQT       Status = "QT"
	StatusCT       Status = "CT"
	StatusNA       Status = "N/A"
	StatusUnfilled Status = "unfilled"
)

// Classification is the outcome of comparing a time with a standard.
// Index is nil when there was no standard.
type Classification struct {
	Status Status
	Index  *float64
}

// Qualifies reports whether the classification met the standard.
func (c Classification) Qualifies() bool { return c.Status == StatusQT }

// Classify compares t with standard. The index is t/standard rounded to
// three decimals; status is QT iff t <= standard.
func Classify(t, standard swimtime.Time) Classification {
	if standard <= 0 {
		return Classification{Status: StatusNA}
	}
	idx := math.Round(float64(t)/float64(standard)*indexPrecision) / indexPrecision
	status := StatusCT
	if t <= standard {
		status = StatusQT
	}
	return Classification{Status: status, Index: &idx}
}

type standardKey struct {
	event  string
	age    model.AgeCategory
	gender model.Gender
}

// Classifier looks standards up by (event, age, gender, course) and
// classifies times against them.
type Classifier struct {
	standards       map[standardKey][]model.QualifyingStandard
	timeType        string
	fallbacks       bool
	openFallbackAge int
	minStandardAge  int
}

// NewClassifier indexes the standards of the configured time type.
func NewClassifier(standards []model.QualifyingStandard, opts ...Option) *Classifier {
	c := &Classifier{
		standards:       make(map[standardKey][]model.QualifyingStandard),
		timeType:        DefaultTimeType,
		fallbacks:       true,
		openFallbackAge: DefaultOpenFallbackAge,
		minStandardAge:  DefaultMinStandardAge,
	}

	for _, opt := range opts {
		opt(c)
	}

	for _, s := range standards {
		if s.TimeType != "" && !strings.EqualFold(strings.TrimSpace(s.TimeType), c.timeType) {
			continue
		}
		if s.Time <= 0 {
			continue
		}
		k := standardKey{event: model.CanonicalEventName(s.Event), age: s.Age, gender: s.Gender}
		c.standards[k] = append(c.standards[k], s)
	}

	return c
}

// Len returns the number of indexed standards.
func (c *Classifier) Len() int {
	n := 0
	for _, v := range c.standards {
		n += len(v)
	}
	return n
}

// Standard finds the standard for a slot. When the slot's own category
// has none, Open falls back to the open fallback age and categories below
// the minimum standard age fall back to that age.
func (c *Classifier) Standard(slot model.EventSlot, course model.Course) (model.QualifyingStandard, bool) {
	if s, ok := c.lookup(slot.Event, slot.Age, slot.Gender, course); ok {
		return s, true
	}
	if !c.fallbacks {
		return model.QualifyingStandard{}, false
	}
	if slot.Age.IsOpen() {
		return c.lookup(slot.Event, model.UpTo(c.openFallbackAge), slot.Gender, course)
	}
	if maxAge, ok := slot.Age.MaxAge(); ok && maxAge < c.minStandardAge {
		return c.lookup(slot.Event, model.UpTo(c.minStandardAge), slot.Gender, course)
	}
	return model.QualifyingStandard{}, false
}

func (c *Classifier) lookup(event string, age model.AgeCategory, gender model.Gender, course model.Course) (model.QualifyingStandard, bool) {
	candidates := c.standards[standardKey{event: model.CanonicalEventName(event), age: age, gender: gender}]
	// Exact course first, then course-less or any-course entries.
	for _, s := range candidates {
		if s.Course == course {
			return s, true
		}
	}
	for _, s := range candidates {
		if course.Matches(s.Course) {
			return s, true
		}
	}
	return model.QualifyingStandard{}, false
}

// ClassifySlot classifies t for a slot; no standard yields N/A.
func (c *Classifier) ClassifySlot(slot model.EventSlot, course model.Course, t swimtime.Time) Classification {
	s, ok := c.Standard(slot, course)
	if !ok {
		return Classification{Status: StatusNA}
	}
	return Classify(t, s.Time)
}
