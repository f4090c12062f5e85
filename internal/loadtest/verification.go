package loadtest

import (
	"context"
	"fmt"

	"github.com/joshmont53/SwimTeamOptimizer/internal/adapters/repository"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/engine"
	"github.com/joshmont53/SwimTeamOptimizer/pkg/logger"
)

// verifyResults checks every finished run and tallies run outcomes.
func verifyResults(ctx context.Context, config *Config, requests []Request, runs []repository.Run, stats *Stats) error {
	logger.GetOrNop().Info(ctx, "verifying results")

	for i := range runs {
		run := &runs[i]
		switch run.Status {
		case repository.StatusSucceeded:
			stats.RunsSucceeded++
		case repository.StatusFailed:
			stats.RunsFailed++
			if config.Verbose {
				logger.GetOrNop().Warn(ctx, "run failed", logger.String("runId", run.ID), logger.String("error", run.Error))
			}
			continue
		default:
			stats.RunsUnfinished++
			continue
		}
		if run.Result == nil {
			stats.Violations++
			continue
		}

		stats.FilledSlots += run.Result.Stats.FilledSlots
		stats.UnfilledSlots += run.Result.Stats.UnfilledSlots
		for _, v := range verifyResult(run.Result, requests[i].available, config.MaxEvents) {
			stats.Violations++
			if config.Verbose {
				logger.GetOrNop().Warn(ctx, "rule violation", logger.String("runId", run.ID), logger.String("violation", v))
			}
		}
	}

	if stats.Violations > 0 {
		return fmt.Errorf("%w: %d violations", ErrVerification, stats.Violations)
	}
	logger.GetOrNop().Info(ctx, "result verification completed")
	return nil
}

// verifyResult lists every broken assignment rule in res:
//   - a swimmer holds at most maxEvents individual slots
//   - a swimmer fills at most one instance of a slot
//   - a swimmer swims at most one leg across the teams of a relay
//   - only available roster swimmers are assigned
//   - slot counters agree with the rows
func verifyResult(res *engine.Result, available map[string]bool, maxEvents int) []string {
	var out []string
	check := func(id, where string) {
		if ok, known := available[id]; !known {
			out = append(out, fmt.Sprintf("%s: unknown swimmer %s", where, id))
		} else if !ok {
			out = append(out, fmt.Sprintf("%s: unavailable swimmer %s", where, id))
		}
	}

	perSwimmer := make(map[string]int)
	perSlot := make(map[string]bool)
	filled := 0
	for _, row := range res.Individual {
		if row.SwimmerID == nil {
			continue
		}
		filled++
		id := *row.SwimmerID
		slot := row.Event
		check(id, slot)
		perSwimmer[id]++

		key := slot + "|" + id
		if perSlot[key] {
			out = append(out, fmt.Sprintf("%s: swimmer %s fills two instances", slot, id))
		}
		perSlot[key] = true
	}
	for id, n := range perSwimmer {
		if maxEvents >= 0 && n > maxEvents {
			out = append(out, fmt.Sprintf("swimmer %s holds %d individual events, cap %d", id, n, maxEvents))
		}
	}
	if filled != res.Stats.FilledSlots || len(res.Individual)-filled != res.Stats.UnfilledSlots {
		out = append(out, fmt.Sprintf("slot counters %d/%d disagree with rows %d/%d",
			res.Stats.FilledSlots, res.Stats.UnfilledSlots, filled, len(res.Individual)-filled))
	}

	perRelay := make(map[string]bool)
	for _, row := range res.Relay {
		relay := row.Relay
		for _, leg := range row.Swimmers {
			check(leg.SwimmerID, relay)
			key := relay + "|" + leg.SwimmerID
			if perRelay[key] {
				out = append(out, fmt.Sprintf("%s: swimmer %s swims two legs", relay, leg.SwimmerID))
			}
			perRelay[key] = true
		}
	}
	return out
}
