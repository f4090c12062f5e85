package engine

import (
	"fmt"

	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/model"
)

// resolvePins validates and locks every pre-assignment before the solvers
// run. Any violation fails the run: pins are operator intent and are never
// dropped silently.
func (rc *RunContext) resolvePins(pins model.Pins) error {
	for _, pin := range pins.Individual {
		if err := rc.resolveIndividualPin(pin); err != nil {
			return err
		}
	}

	seen := make(map[legKey]string)
	for _, pin := range pins.Relay {
		if err := rc.resolveRelayPin(pin, seen); err != nil {
			return err
		}
	}
	return nil
}

func (rc *RunContext) resolveIndividualPin(pin model.IndividualPin) error {
	fail := func(kind error, format string, args ...any) error {
		e := newError(kind, format, args...)
		e.SwimmerID = pin.SwimmerID
		e.Slot = pin.Slot.Label()
		return e
	}

	swimmer, ok := rc.roster.Swimmer(pin.SwimmerID)
	if !ok {
		return fail(ErrUnknownSwimmer, "pre-assigned swimmer is not on the roster")
	}
	slot, _, err := model.NewSlot(pin.Slot.Event, pin.Slot.Age, pin.Slot.Gender)
	if err != nil {
		return fail(ErrInvalidConfig, "%v", err)
	}
	if slot.Relay {
		return fail(ErrInvalidConfig, "relay event used in an individual pre-assignment")
	}
	st, ok := rc.individuals[slot]
	if !ok {
		return fail(ErrUnknownSlot, "slot is not in the event list")
	}
	if !rc.roster.IsEligible(pin.SwimmerID, slot.Age, slot.Gender) {
		return fail(ErrIneligible, "%s (age %d, %s) cannot swim %s", swimmer.DisplayName(), rc.roster.Age(pin.SwimmerID), swimmer.Gender, slot.Label())
	}
	if st.members[pin.SwimmerID] {
		rc.warn(model.WarnDuplicatePin, pin.SwimmerID, slot.Label(), "repeated pre-assignment accepted once")
		return nil
	}
	free := -1
	for i, in := range st.instances {
		if !in.filled() {
			free = i
			break
		}
	}
	if free < 0 {
		return fail(ErrConflict, "more pre-assignments than the %d entries available", len(st.instances))
	}
	if rc.Remaining(pin.SwimmerID) <= 0 {
		return fail(ErrCapacity, "%s already has %d individual events", swimmer.DisplayName(), rc.maxCapacity)
	}

	t, hasTime := rc.bestTime(pin.SwimmerID, slot.Event)
	if !hasTime {
		rc.warn(model.WarnPinWithoutTime, pin.SwimmerID, slot.Label(), fmt.Sprintf("%s has no recorded time for %s", swimmer.DisplayName(), slot.Event))
	}
	st.instances[free] = entry{swimmerID: pin.SwimmerID, time: t, hasTime: hasTime, pinned: true}
	st.members[pin.SwimmerID] = true
	rc.consume(pin.SwimmerID)
	return nil
}

func (rc *RunContext) resolveRelayPin(pin model.RelayPin, seen map[legKey]string) error {
	team := pin.Team
	if team == 0 {
		team = 1
	}
	fail := func(kind error, format string, args ...any) error {
		e := newError(kind, format, args...)
		e.SwimmerID = pin.SwimmerID
		e.Slot = pin.Slot.Label()
		e.Team = team
		e.Leg = pin.Leg
		return e
	}

	swimmer, ok := rc.roster.Swimmer(pin.SwimmerID)
	if !ok {
		return fail(ErrUnknownSwimmer, "pre-assigned swimmer is not on the roster")
	}
	slot, _, err := model.NewSlot(pin.Slot.Event, pin.Slot.Age, pin.Slot.Gender)
	if err != nil {
		return fail(ErrInvalidConfig, "%v", err)
	}
	rs, ok := rc.relays[slot]
	if !ok {
		return fail(ErrUnknownSlot, "relay is not in the event list")
	}
	if team < 1 || team > len(rs.teams) {
		return fail(ErrInvalidConfig, "team out of range 1..%d", len(rs.teams))
	}

	legNo := pin.Leg
	if legNo == 0 && pin.Stroke != model.StrokeUnspecified && rs.spec.Relay == model.MedleyRelay {
		for i, l := range rs.legs {
			if l.stroke == pin.Stroke {
				legNo = i + 1
			}
		}
	}
	if legNo < 1 || legNo > len(rs.legs) {
		return fail(ErrInvalidConfig, "leg %d out of range 1..%d", pin.Leg, len(rs.legs))
	}
	l := rs.legs[legNo-1]
	if pin.Stroke != model.StrokeUnspecified && pin.Stroke != l.stroke {
		return fail(ErrInvalidConfig, "leg %d is swum %s, not %s", legNo, l.stroke, pin.Stroke)
	}
	if !rc.roster.IsEligible(pin.SwimmerID, l.age, l.gender) {
		return fail(ErrIneligible, "%s (age %d, %s) cannot swim %s %s", swimmer.DisplayName(), rc.roster.Age(pin.SwimmerID), swimmer.Gender, l.age.Label(), l.gender)
	}

	key := legKey{slot: slot, team: team, leg: legNo}
	if prev, taken := seen[key]; taken {
		if prev == pin.SwimmerID {
			rc.warn(model.WarnDuplicatePin, pin.SwimmerID, slot.Label(), "repeated relay pre-assignment accepted once")
			return nil
		}
		return fail(ErrConflict, "leg already pre-assigned to swimmer %s", prev)
	}
	if rs.members[pin.SwimmerID] {
		return fail(ErrConflict, "%s is already pre-assigned to another leg of this relay", swimmer.DisplayName())
	}
	if rc.relayNeedsCapacity() {
		if rc.Remaining(pin.SwimmerID) <= 0 {
			return fail(ErrCapacity, "%s has no capacity left for a relay leg", swimmer.DisplayName())
		}
		rc.consume(pin.SwimmerID)
	}

	t, hasTime := rc.bestTime(pin.SwimmerID, l.event)
	if !hasTime {
		rc.warn(model.WarnPinWithoutTime, pin.SwimmerID, slot.Label(), fmt.Sprintf("%s has no recorded time for %s", swimmer.DisplayName(), l.event))
	}
	seen[key] = pin.SwimmerID
	rs.teams[team-1][legNo-1] = entry{swimmerID: pin.SwimmerID, time: t, hasTime: hasTime, pinned: true}
	rs.members[pin.SwimmerID] = true
	return nil
}
