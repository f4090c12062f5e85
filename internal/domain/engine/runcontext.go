package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/eligibility"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/model"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/qualify"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/swimtime"
	"github.com/joshmont53/SwimTeamOptimizer/pkg/logger"
)

// Input is the immutable snapshot one run works on. Repeated entries in
// Demand are separate instances of the same slot (A/B relay teams, two
// swimmers per individual event).
type Input struct {
	Swimmers  []model.Swimmer
	Records   []model.PerformanceRecord
	Standards []model.QualifyingStandard
	Demand    []model.EventSlot
	Pins      model.Pins
	Config    Config
}

// entry is one filled (or empty) individual instance or relay leg.
type entry struct {
	swimmerID string
	time      swimtime.Time
	hasTime   bool
	pinned    bool
}

func (e entry) filled() bool { return e.swimmerID != "" }

type individualState struct {
	slot      model.EventSlot
	spec      model.EventSpec
	instances []entry
	members   map[string]bool
}

func (s *individualState) open() int {
	n := 0
	for _, in := range s.instances {
		if !in.filled() {
			n++
		}
	}
	return n
}

// leg describes what a relay position requires.
type leg struct {
	stroke model.Stroke
	event  string
	age    model.AgeCategory
	gender model.Gender
	// bracket is set for cross-category legs.
	bracket *Bracket
}

type relayState struct {
	slot    model.EventSlot
	spec    model.EventSpec
	legs    []leg
	teams   [][]entry
	members map[string]bool
}

// legKey identifies one relay position across the run.
type legKey struct {
	slot model.EventSlot
	team int
	leg  int
}

// RunContext is the per-run ledger: remaining capacity, filled instances
// and legs, and accumulated warnings. It is created by Optimize and never
// shared between runs.
type RunContext struct {
	ctx        context.Context
	cfg        Config
	log        logger.Logger
	roster     *eligibility.Roster
	classifier *qualify.Classifier

	capacity    map[string]int
	maxCapacity int

	individuals     map[model.EventSlot]*individualState
	individualOrder []model.EventSlot
	relays          map[model.EventSlot]*relayState
	relayOrder      []model.EventSlot

	warnings []model.Warning
}

func newRunContext(ctx context.Context, in Input, o *options) (*RunContext, error) {
	cfg := in.Config
	if cfg.MaxIndividualEvents < Unlimited {
		return nil, newError(ErrInvalidConfig, "negative capacity %d", cfg.MaxIndividualEvents)
	}
	if cfg.ReferenceDate.IsZero() {
		return nil, newError(ErrInvalidConfig, "reference date is required")
	}
	obj, err := ParseObjective(string(cfg.Objective))
	if err != nil {
		return nil, newError(ErrInvalidConfig, "unknown objective %q", cfg.Objective)
	}
	cfg.Objective = obj

	rc := &RunContext{
		ctx:         ctx,
		cfg:         cfg,
		log:         o.log,
		roster:      eligibility.NewRoster(in.Swimmers, in.Records, cfg.ReferenceDate),
		classifier:  qualify.NewClassifier(in.Standards, o.classifierOpts...),
		capacity:    make(map[string]int),
		individuals: make(map[model.EventSlot]*individualState),
		relays:      make(map[model.EventSlot]*relayState),
	}
	rc.warnings = append(rc.warnings, rc.roster.Warnings()...)

	totalLegs := 0
	for i, slot := range in.Demand {
		if err := rc.addDemand(slot, o.brackets); err != nil {
			e := newError(ErrInvalidConfig, "demand row %d: %v", i+1, err)
			e.Slot = slot.Label()
			return nil, e
		}
	}
	for _, rs := range rc.relays {
		totalLegs += len(rs.legs) * len(rs.teams)
	}

	rc.maxCapacity = cfg.MaxIndividualEvents
	if cfg.MaxIndividualEvents == Unlimited {
		// Enough to never bind: every instance and every leg.
		rc.maxCapacity = len(in.Demand) + totalLegs + 1
	}
	for _, id := range rc.roster.IDs() {
		rc.capacity[id] = rc.maxCapacity
	}

	return rc, nil
}

func (rc *RunContext) addDemand(slot model.EventSlot, brackets []Bracket) error {
	canonical, spec, err := model.NewSlot(slot.Event, slot.Age, slot.Gender)
	if err != nil {
		return err
	}
	if slot.Relay != canonical.Relay {
		return fmt.Errorf("%w: relay flag does not match event %q", model.ErrInvalidSlot, spec.Name)
	}

	if !canonical.Relay {
		st, ok := rc.individuals[canonical]
		if !ok {
			st = &individualState{slot: canonical, spec: spec, members: make(map[string]bool)}
			rc.individuals[canonical] = st
			rc.individualOrder = append(rc.individualOrder, canonical)
		}
		st.instances = append(st.instances, entry{})
		return nil
	}

	rs, ok := rc.relays[canonical]
	if !ok {
		rs = &relayState{slot: canonical, spec: spec, legs: relayLegs(canonical, spec, brackets), members: make(map[string]bool)}
		rc.relays[canonical] = rs
		rc.relayOrder = append(rc.relayOrder, canonical)
	}
	rs.teams = append(rs.teams, make([]entry, len(rs.legs)))
	return nil
}

func relayLegs(slot model.EventSlot, spec model.EventSpec, brackets []Bracket) []leg {
	switch spec.Relay {
	case model.MedleyRelay:
		legs := make([]leg, len(model.MedleyOrder))
		for i, st := range model.MedleyOrder {
			legs[i] = leg{stroke: st, event: spec.LegEvent(st), age: slot.Age, gender: slot.Gender}
		}
		return legs
	case model.CrossCategoryRelay:
		legs := make([]leg, len(brackets))
		for i := range brackets {
			b := brackets[i]
			legs[i] = leg{stroke: model.Freestyle, event: spec.LegEvent(model.Freestyle), age: b.Age, gender: b.Gender, bracket: &b}
		}
		return legs
	default:
		legs := make([]leg, spec.Legs)
		for i := range legs {
			legs[i] = leg{stroke: spec.Stroke, event: spec.LegEvent(spec.Stroke), age: slot.Age, gender: slot.Gender}
		}
		return legs
	}
}

// Remaining returns a swimmer's remaining individual capacity.
func (rc *RunContext) Remaining(id string) int { return rc.capacity[id] }

func (rc *RunContext) consume(id string) {
	rc.capacity[id]--
}

func (rc *RunContext) relayNeedsCapacity() bool {
	return rc.cfg.RelaysCountTowardCapacity
}

func (rc *RunContext) warn(code, swimmerID, slot, msg string) {
	rc.warnings = append(rc.warnings, model.Warning{Code: code, Message: msg, SwimmerID: swimmerID, Slot: slot})
}

// bestTime is the swimmer's best time for event in the configured course.
func (rc *RunContext) bestTime(id, event string) (swimtime.Time, bool) {
	rec, ok := rc.roster.BestTime(id, event, rc.cfg.Course)
	if !ok {
		return 0, false
	}
	return rec.Time, true
}

// checkDeadline converts context expiry into the run's error.
func (rc *RunContext) checkDeadline() error {
	return deadlineError(rc.ctx.Err())
}

func deadlineError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: ErrDeadlineExceeded, Msg: "run exceeded its wall-clock bound"}
	}
	return fmt.Errorf("optimization cancelled: %w", err)
}
