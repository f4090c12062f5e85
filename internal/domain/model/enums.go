package model

import (
	"fmt"
	"strings"
)

// Gender is the closed set of competition genders.
type Gender uint8

// Genders.
const (
	GenderUnknown Gender = iota
	Male
	Female
	Mixed
)

var genderTokens = map[string]Gender{
	"m":      Male,
	"male":   Male,
	"boy":    Male,
	"boys":   Male,
	"men":    Male,
	"f":      Female,
	"female": Female,
	"girl":   Female,
	"girls":  Female,
	"women":  Female,
	"w":      Female,
	"x":      Mixed,
	"mix":    Mixed,
	"mixed":  Mixed,
}

// ParseGender is the single normalization point for gender tokens.
func ParseGender(s string) (Gender, error) {
	g, ok := genderTokens[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return GenderUnknown, fmt.Errorf("%w: %q", ErrInvalidGender, s)
	}
	return g, nil
}

func (g Gender) String() string {
	switch g {
	case Male:
		return "Male"
	case Female:
		return "Female"
	case Mixed:
		return "Mixed"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (g Gender) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Gender) UnmarshalText(b []byte) error {
	v, err := ParseGender(string(b))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// Course is the pool length a time was swum in.
type Course uint8

// Courses. AnyCourse matches either pool length in lookups.
const (
	AnyCourse Course = iota
	ShortCourse
	LongCourse
)

// ParseCourse accepts SC/LC and their long forms. An empty token is AnyCourse.
func ParseCourse(s string) (Course, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return AnyCourse, nil
	case "sc", "s", "scm", "short", "short course", "25m":
		return ShortCourse, nil
	case "lc", "l", "lcm", "long", "long course", "50m":
		return LongCourse, nil
	default:
		return AnyCourse, fmt.Errorf("%w: %q", ErrInvalidCourse, s)
	}
}

func (c Course) String() string {
	switch c {
	case ShortCourse:
		return "SC"
	case LongCourse:
		return "LC"
	default:
		return "Any"
	}
}

// Matches reports whether a record swum in other satisfies a lookup for c.
func (c Course) Matches(other Course) bool {
	return c == AnyCourse || other == AnyCourse || c == other
}

// MarshalText implements encoding.TextMarshaler.
func (c Course) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Course) UnmarshalText(b []byte) error {
	v, err := ParseCourse(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Stroke is a swimming stroke. StrokeUnspecified is used by relay pins that
// do not constrain the leg stroke.
type Stroke uint8

// Strokes.
const (
	StrokeUnspecified Stroke = iota
	Freestyle
	Backstroke
	Breaststroke
	Butterfly
	IndividualMedley
)

// MedleyOrder is the leg order of a medley relay.
var MedleyOrder = [4]Stroke{Backstroke, Breaststroke, Butterfly, Freestyle}

var strokeTokens = map[string]Stroke{
	"":                  StrokeUnspecified,
	"free":              Freestyle,
	"freestyle":         Freestyle,
	"fr":                Freestyle,
	"back":              Backstroke,
	"backstroke":        Backstroke,
	"bk":                Backstroke,
	"breast":            Breaststroke,
	"breaststroke":      Breaststroke,
	"br":                Breaststroke,
	"fly":               Butterfly,
	"butterfly":         Butterfly,
	"im":                IndividualMedley,
	"medley":            IndividualMedley,
	"individual medley": IndividualMedley,
}

// ParseStroke normalizes a stroke token. The empty token is StrokeUnspecified.
func ParseStroke(s string) (Stroke, error) {
	st, ok := strokeTokens[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return StrokeUnspecified, fmt.Errorf("%w: %q", ErrInvalidStroke, s)
	}
	return st, nil
}

func (s Stroke) String() string {
	switch s {
	case Freestyle:
		return "Freestyle"
	case Backstroke:
		return "Backstroke"
	case Breaststroke:
		return "Breaststroke"
	case Butterfly:
		return "Butterfly"
	case IndividualMedley:
		return "Individual Medley"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Stroke) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Stroke) UnmarshalText(b []byte) error {
	v, err := ParseStroke(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
