// Package model contains the domain types shared by the optimizer layers:
// swimmers, performances, standards, event slots and pre-assignments.
package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Relay defaults.
const (
	DefaultRelayLegs     = 4
	DefaultLegDistance   = 50
	CrossCategoryLegs    = 8
	crossCategoryName    = "Squadrun"
	medleyRelayLegsCount = 4
)

// RelayKind distinguishes individual events from the three relay shapes.
type RelayKind uint8

// Relay kinds.
const (
	NotRelay RelayKind = iota
	UniformRelay
	MedleyRelay
	CrossCategoryRelay
)

func (k RelayKind) String() string {
	switch k {
	case UniformRelay:
		return "uniform"
	case MedleyRelay:
		return "medley"
	case CrossCategoryRelay:
		return "cross-category"
	default:
		return "individual"
	}
}

// EventSpec is a parsed event name.
type EventSpec struct {
	// Name is the canonical event name, e.g. "50m Freestyle" or "4x50m Medley".
	Name string
	// Distance is the individual distance, or the leg distance for relays.
	Distance int
	Stroke   Stroke
	Relay    RelayKind
	Legs     int
}

// IsRelay reports whether the event is any kind of relay.
func (e EventSpec) IsRelay() bool { return e.Relay != NotRelay }

// LegEvent is the individual event whose times rank swimmers for a leg
// swum in stroke, e.g. "50m Backstroke".
func (e EventSpec) LegEvent(stroke Stroke) string {
	return IndividualEventName(e.Distance, stroke)
}

// IndividualEventName formats the canonical individual event name.
func IndividualEventName(distance int, stroke Stroke) string {
	return fmt.Sprintf("%dm %s", distance, stroke)
}

var (
	relayPattern      = regexp.MustCompile(`^(\d+)\s*x\s*(\d+)\s*m?\s+(.+?)(?:\s+relays?)?$`)
	individualPattern = regexp.MustCompile(`^(\d+)\s*m?\s+(.+)$`)
)

// ParseEvent parses names such as "50m Freestyle", "200m IM",
// "4x50m Freestyle Relay", "4 x 100m Medley", "8x50m Freestyle" and
// "Squadrun".
func ParseEvent(name string) (EventSpec, error) {
	raw := strings.Join(strings.Fields(strings.ToLower(name)), " ")
	if raw == "" {
		return EventSpec{}, fmt.Errorf("%w: empty", ErrInvalidEvent)
	}

	if strings.HasPrefix(raw, "squad") {
		return EventSpec{
			Name:     crossCategoryName,
			Distance: DefaultLegDistance,
			Stroke:   Freestyle,
			Relay:    CrossCategoryRelay,
			Legs:     CrossCategoryLegs,
		}, nil
	}

	if m := relayPattern.FindStringSubmatch(raw); m != nil {
		legs, _ := strconv.Atoi(m[1])
		dist, _ := strconv.Atoi(m[2])
		if legs <= 0 || dist <= 0 {
			return EventSpec{}, fmt.Errorf("%w: %q", ErrInvalidEvent, name)
		}
		if m[3] == "medley" || m[3] == "im" {
			if legs != medleyRelayLegsCount {
				return EventSpec{}, fmt.Errorf("%w: medley relay needs %d legs: %q", ErrInvalidEvent, medleyRelayLegsCount, name)
			}
			return EventSpec{
				Name:     fmt.Sprintf("%dx%dm Medley", legs, dist),
				Distance: dist,
				Stroke:   IndividualMedley,
				Relay:    MedleyRelay,
				Legs:     legs,
			}, nil
		}
		stroke, err := ParseStroke(m[3])
		if err != nil || stroke == StrokeUnspecified || stroke == IndividualMedley {
			return EventSpec{}, fmt.Errorf("%w: %q", ErrInvalidEvent, name)
		}
		return EventSpec{
			Name:     fmt.Sprintf("%dx%dm %s", legs, dist, stroke),
			Distance: dist,
			Stroke:   stroke,
			Relay:    UniformRelay,
			Legs:     legs,
		}, nil
	}

	if m := individualPattern.FindStringSubmatch(raw); m != nil {
		dist, _ := strconv.Atoi(m[1])
		stroke, err := ParseStroke(m[2])
		if err != nil || stroke == StrokeUnspecified || dist <= 0 {
			return EventSpec{}, fmt.Errorf("%w: %q", ErrInvalidEvent, name)
		}
		return EventSpec{
			Name:     IndividualEventName(dist, stroke),
			Distance: dist,
			Stroke:   stroke,
		}, nil
	}

	return EventSpec{}, fmt.Errorf("%w: %q", ErrInvalidEvent, name)
}

// CanonicalEventName returns the canonical form of name, or name unchanged
// when it does not parse.
func CanonicalEventName(name string) string {
	spec, err := ParseEvent(name)
	if err != nil {
		return strings.TrimSpace(name)
	}
	return spec.Name
}

// EventSlot is the structured key of a demand unit. It is comparable and
// used directly as a map key.
type EventSlot struct {
	Event  string
	Age    AgeCategory
	Gender Gender
	Relay  bool
}

// Label is the display form, e.g. "11U Male 50m Freestyle".
func (s EventSlot) Label() string {
	return fmt.Sprintf("%s %s %s", s.Age.Label(), s.Gender, s.Event)
}

func (s EventSlot) String() string { return s.Label() }

// NewSlot builds a slot from an event name, canonicalizing the name and
// checking that age and gender fit the event shape.
func NewSlot(event string, age AgeCategory, gender Gender) (EventSlot, EventSpec, error) {
	spec, err := ParseEvent(event)
	if err != nil {
		return EventSlot{}, EventSpec{}, err
	}
	if !age.IsValid() {
		return EventSlot{}, EventSpec{}, fmt.Errorf("%w: %s: missing age category", ErrInvalidSlot, spec.Name)
	}
	if gender == GenderUnknown {
		return EventSlot{}, EventSpec{}, fmt.Errorf("%w: %s: missing gender", ErrInvalidSlot, spec.Name)
	}

	cross := spec.Relay == CrossCategoryRelay
	switch {
	case cross && !age.IsCrossCategory():
		age = CrossCategory()
	case !cross && age.IsCrossCategory():
		return EventSlot{}, EventSpec{}, fmt.Errorf("%w: %s: cross-category age on a single-bracket event", ErrInvalidSlot, spec.Name)
	}
	if cross {
		gender = Mixed
	} else if gender == Mixed {
		return EventSlot{}, EventSpec{}, fmt.Errorf("%w: %s: mixed gender is only supported for cross-category relays", ErrInvalidSlot, spec.Name)
	}

	return EventSlot{Event: spec.Name, Age: age, Gender: gender, Relay: spec.IsRelay()}, spec, nil
}
