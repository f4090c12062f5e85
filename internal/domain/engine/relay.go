package engine

import (
	"sort"

	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/matching"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/model"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/swimtime"
)

// composeRelays fills every open relay leg after the individual events are
// settled. Teams of one relay are filled in order (A, then B) and never
// share a swimmer. Relays that cannot be completed stay partial.
func (rc *RunContext) composeRelays() error {
	for _, key := range rc.relayOrder {
		if err := rc.checkDeadline(); err != nil {
			return err
		}
		rs := rc.relays[key]
		for team := range rs.teams {
			if rs.spec.Relay == model.UniformRelay {
				rc.fillUniform(rs, team)
				continue
			}
			if err := rc.fillByMatching(rs, team); err != nil {
				return err
			}
		}
	}
	return nil
}

// available reports whether id may take another relay leg.
func (rc *RunContext) available(rs *relayState, id string) bool {
	if rs.members[id] {
		return false
	}
	return !rc.relayNeedsCapacity() || rc.Remaining(id) > 0
}

func (rc *RunContext) place(rs *relayState, team, legIdx int, id string, t swimtime.Time) {
	rs.teams[team][legIdx] = entry{swimmerID: id, time: t, hasTime: true}
	rs.members[id] = true
	if rc.relayNeedsCapacity() {
		rc.consume(id)
	}
}

type relayCandidate struct {
	id   string
	time swimtime.Time
}

// fillUniform gives the open legs, lowest position first, to the fastest
// available swimmers. For legs that all swim the same event this is optimal.
func (rc *RunContext) fillUniform(rs *relayState, team int) {
	event := rs.legs[0].event
	var cands []relayCandidate
	for _, id := range rc.roster.IDs() {
		if !rc.available(rs, id) || !rc.roster.IsEligible(id, rs.slot.Age, rs.slot.Gender) {
			continue
		}
		if t, ok := rc.bestTime(id, event); ok {
			cands = append(cands, relayCandidate{id: id, time: t})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].time != cands[j].time {
			return cands[i].time < cands[j].time
		}
		return model.LessID(cands[i].id, cands[j].id)
	})

	next := 0
	for i := range rs.teams[team] {
		if rs.teams[team][i].filled() {
			continue
		}
		for next < len(cands) && !rc.available(rs, cands[next].id) {
			next++
		}
		if next >= len(cands) {
			return
		}
		c := cands[next]
		next++
		rc.place(rs, team, i, c.id, c.time)
	}
}

type legEdge struct {
	leg  int
	cand int
	time swimtime.Time
	edge int
}

// fillByMatching solves the open legs of one team as an assignment problem:
// source -> leg -> candidate -> sink, every capacity 1. The most legs are
// filled first, then the summed time is minimized.
func (rc *RunContext) fillByMatching(rs *relayState, team int) error {
	var openLegs []int
	for i := range rs.teams[team] {
		if !rs.teams[team][i].filled() {
			openLegs = append(openLegs, i)
		}
	}
	if len(openLegs) == 0 {
		return nil
	}

	var cands []string
	for _, id := range rc.roster.IDs() {
		if rc.available(rs, id) {
			cands = append(cands, id)
		}
	}

	var edges []legEdge
	var maxTime swimtime.Time
	used := make([]bool, len(cands))
	for li, legIdx := range openLegs {
		l := rs.legs[legIdx]
		for ci, id := range cands {
			if !rc.roster.IsEligible(id, l.age, l.gender) {
				continue
			}
			t, ok := rc.bestTime(id, l.event)
			if !ok {
				continue
			}
			edges = append(edges, legEdge{leg: li, cand: ci, time: t})
			used[ci] = true
			if t > maxTime {
				maxTime = t
			}
		}
	}
	if len(edges) == 0 {
		return nil
	}

	cost := relayCost(len(openLegs), int64(maxTime), int64(len(cands)-1))

	src := 0
	legNode := func(i int) int { return 1 + i }
	candNode := func(i int) int { return 1 + len(openLegs) + i }
	sink := 1 + len(openLegs) + len(cands)
	g := matching.NewGraph(sink + 1)

	for li := range openLegs {
		if _, err := g.AddEdge(src, legNode(li), 1, 0); err != nil {
			return err
		}
	}
	for k := range edges {
		e := &edges[k]
		id, err := g.AddEdge(legNode(e.leg), candNode(e.cand), 1, cost(int64(e.time), int64(e.cand)))
		if err != nil {
			return err
		}
		e.edge = id
	}
	for ci := range cands {
		if !used[ci] {
			continue
		}
		if _, err := g.AddEdge(candNode(ci), sink, 1, 0); err != nil {
			return err
		}
	}

	if _, _, err := g.MinCostMaxFlow(rc.ctx, src, sink); err != nil {
		return deadlineError(err)
	}
	for _, e := range edges {
		if g.Flow(e.edge) > 0 {
			rc.place(rs, team, openLegs[e.leg], cands[e.cand], e.time)
		}
	}
	return nil
}

// relayCost packs (time, candidate rank), dropping the rank when it does
// not fit and falling back to raw time when neither encoding does.
func relayCost(terms int, maxTime, maxRank int64) func(t, rank int64) int64 {
	lex, ok := matching.NewLex(terms, maxTime, maxRank)
	if !ok {
		lex, _ = matching.NewLex(terms, maxTime)
	}
	if lex.Levels() == 0 {
		return func(t, _ int64) int64 { return t }
	}
	return func(t, rank int64) int64 { return lex.Encode(t, rank) }
}
