package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/model"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/qualify"
	"github.com/joshmont53/SwimTeamOptimizer/pkg/logger"
)

// Unlimited disables the per-swimmer individual event cap.
const Unlimited = -1

// Objective selects how competing complete assignments are ranked.
type Objective string

// Objectives. Both always maximize the number of filled slots first.
const (
	MinTotalTime  Objective = "min_total_time"
	MaxQualifying Objective = "max_qualifying"
)

// ParseObjective normalizes an objective token; empty means MinTotalTime.
func ParseObjective(s string) (Objective, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")) {
	case "", "min_total_time", "mintotaltime", "time":
		return MinTotalTime, nil
	case "max_qualifying", "maxqualifying", "qualifying":
		return MaxQualifying, nil
	default:
		return "", fmt.Errorf("%w: unknown objective %q", ErrInvalidConfig, s)
	}
}

// Config is the per-run configuration supplied by the caller.
type Config struct {
	// MaxIndividualEvents is the per-swimmer cap; 0 means relay-only and
	// Unlimited removes the cap.
	MaxIndividualEvents int
	CompetitionType     string
	// ReferenceDate is the age cut-off. It is required.
	ReferenceDate time.Time
	// Course restricts which times are used; AnyCourse uses both.
	Course                    model.Course
	RelaysCountTowardCapacity bool
	Objective                 Objective
}

// Bracket is one leg requirement of a cross-category relay.
type Bracket struct {
	Age    model.AgeCategory
	Gender model.Gender
}

// Label is the display form, e.g. "11U Male".
func (b Bracket) Label() string {
	return b.Age.Label() + " " + b.Gender.String()
}

// DefaultBrackets are the eight Squadrun legs: boys and girls from 11U,
// 13U, 15U and Open.
func DefaultBrackets() []Bracket {
	ages := []model.AgeCategory{model.UpTo(11), model.UpTo(13), model.UpTo(15), model.Open()}
	out := make([]Bracket, 0, len(ages)*2)
	for _, a := range ages {
		out = append(out, Bracket{Age: a, Gender: model.Male}, Bracket{Age: a, Gender: model.Female})
	}
	return out
}

type options struct {
	log            logger.Logger
	classifierOpts []qualify.Option
	brackets       []Bracket
}

// Option applies a configuration option to an optimization run.
type Option func(*options)

// WithLogger sets the logger that receives data-quality warnings.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithClassifierOptions forwards options to the qualifying classifier.
func WithClassifierOptions(opts ...qualify.Option) Option {
	return func(o *options) {
		o.classifierOpts = append(o.classifierOpts, opts...)
	}
}

// WithCrossCategoryBrackets overrides the Squadrun leg brackets.
func WithCrossCategoryBrackets(brackets []Bracket) Option {
	return func(o *options) {
		if len(brackets) > 0 {
			o.brackets = append([]Bracket(nil), brackets...)
		}
	}
}
