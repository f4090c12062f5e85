package engine

import (
	"sort"

	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/matching"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/swimtime"
)

type candidateEdge struct {
	swimmer int // index into swimmers
	slot    int // index into open slots
	time    swimtime.Time
	notQT   int64
}

// assignIndividuals fills the remaining individual instances with a
// min-cost max-flow over source -> swimmer (remaining capacity) -> slot
// key (1 per swimmer) -> sink (open instances). Coverage is maximized
// first, then the packed cost is minimized.
func (rc *RunContext) assignIndividuals() error {
	var open []*individualState
	for _, key := range rc.individualOrder {
		if st := rc.individuals[key]; st.open() > 0 {
			open = append(open, st)
		}
	}
	if len(open) == 0 {
		return nil
	}

	ids := rc.roster.IDs()
	var swimmers []string
	for _, id := range ids {
		if rc.Remaining(id) > 0 {
			swimmers = append(swimmers, id)
		}
	}

	var edges []candidateEdge
	var maxTime swimtime.Time
	perSwimmer := make([]int, len(swimmers))
	totalOpen := 0
	for j, st := range open {
		totalOpen += st.open()
		for i, id := range swimmers {
			if st.members[id] || !rc.roster.IsEligible(id, st.slot.Age, st.slot.Gender) {
				continue
			}
			t, ok := rc.bestTime(id, st.slot.Event)
			if !ok {
				continue
			}
			var notQT int64 = 1
			if rc.classifier.ClassifySlot(st.slot, rc.cfg.Course, t).Qualifies() {
				notQT = 0
			}
			edges = append(edges, candidateEdge{swimmer: i, slot: j, time: t, notQT: notQT})
			perSwimmer[i]++
			if t > maxTime {
				maxTime = t
			}
		}
	}
	if len(edges) == 0 {
		return nil
	}

	maxSlack := 0
	for _, id := range swimmers {
		if r := rc.Remaining(id); r > maxSlack {
			maxSlack = r
		}
	}
	enc := rc.individualCost(totalOpen, int64(maxTime), int64(maxSlack), int64(len(swimmers)-1))

	src := 0
	swimmerNode := func(i int) int { return 1 + i }
	slotNode := func(j int) int { return 1 + len(swimmers) + j }
	sink := 1 + len(swimmers) + len(open)
	g := matching.NewGraph(sink + 1)

	for i, id := range swimmers {
		if perSwimmer[i] == 0 {
			continue
		}
		capacity := rc.Remaining(id)
		if capacity > perSwimmer[i] {
			capacity = perSwimmer[i]
		}
		if _, err := g.AddEdge(src, swimmerNode(i), capacity, 0); err != nil {
			return err
		}
	}
	edgeIDs := make([]int, len(edges))
	for k, e := range edges {
		slack := int64(maxSlack - rc.Remaining(swimmers[e.swimmer]))
		id, err := g.AddEdge(swimmerNode(e.swimmer), slotNode(e.slot), 1, enc(int64(e.time), e.notQT, slack, int64(e.swimmer)))
		if err != nil {
			return err
		}
		edgeIDs[k] = id
	}
	for j, st := range open {
		if _, err := g.AddEdge(slotNode(j), sink, st.open(), 0); err != nil {
			return err
		}
	}

	if _, _, err := g.MinCostMaxFlow(rc.ctx, src, sink); err != nil {
		return deadlineError(err)
	}

	chosen := make([][]candidateEdge, len(open))
	for k, e := range edges {
		if g.Flow(edgeIDs[k]) > 0 {
			chosen[e.slot] = append(chosen[e.slot], e)
		}
	}
	for j, st := range open {
		picks := chosen[j]
		sort.Slice(picks, func(a, b int) bool {
			if picks[a].time != picks[b].time {
				return picks[a].time < picks[b].time
			}
			return picks[a].swimmer < picks[b].swimmer
		})
		next := 0
		for i := range st.instances {
			if st.instances[i].filled() || next >= len(picks) {
				continue
			}
			p := picks[next]
			next++
			id := swimmers[p.swimmer]
			st.instances[i] = entry{swimmerID: id, time: p.time, hasTime: true}
			st.members[id] = true
			rc.consume(id)
		}
	}
	return nil
}

// individualCost packs (time, qualifying miss, slack penalty, id rank) in
// the order the objective ranks them. Lower tie-break levels are dropped
// when the problem is too large to pack them all.
func (rc *RunContext) individualCost(terms int, maxTime, maxSlack, maxID int64) func(t, notQT, slack, id int64) int64 {
	timeFirst := rc.cfg.Objective != MaxQualifying
	levels := func(t, notQT, slack, id int64) []int64 {
		if timeFirst {
			return []int64{t, notQT, slack, id}
		}
		return []int64{notQT, t, slack, id}
	}
	maxima := levels(maxTime, 1, maxSlack, maxID)

	for n := len(maxima); n >= 1; n-- {
		lex, ok := matching.NewLex(terms, maxima[:n]...)
		if !ok {
			continue
		}
		return func(t, notQT, slack, id int64) int64 {
			return lex.Encode(levels(t, notQT, slack, id)[:n]...)
		}
	}
	// Times alone always fit for realistic meets; keep raw time as a last resort.
	return func(t, _, _, _ int64) int64 { return t }
}
