// Package engine assigns swimmers to individual events and relay legs.
//
// A run resolves pre-assignments first, then fills individual events with a
// min-cost max-flow, then composes relays from what is left, and finally
// renders a Result. All state of a run lives in its RunContext, so
// concurrent calls to Optimize share nothing.
package engine

import (
	"context"

	"github.com/joshmont53/SwimTeamOptimizer/pkg/logger"
)

// Optimize runs one optimization over an isolated snapshot of the input.
// The context deadline bounds the run; exceeding it yields
// ErrDeadlineExceeded. Configuration problems are returned as *Error.
func Optimize(ctx context.Context, in Input, opts ...Option) (*Result, error) {
	o := &options{
		log:      logger.GetOrNop(),
		brackets: DefaultBrackets(),
	}
	for _, opt := range opts {
		opt(o)
	}

	rc, err := newRunContext(ctx, in, o)
	if err != nil {
		return nil, err
	}
	if err := rc.checkDeadline(); err != nil {
		return nil, err
	}
	if err := rc.resolvePins(in.Pins); err != nil {
		return nil, err
	}
	if err := rc.assignIndividuals(); err != nil {
		return nil, err
	}
	if err := rc.composeRelays(); err != nil {
		return nil, err
	}
	if err := rc.checkDeadline(); err != nil {
		return nil, err
	}

	res := rc.aggregate()
	rc.log.Debug(ctx, "optimization complete",
		logger.String("competition_type", rc.cfg.CompetitionType),
		logger.Int("filled", res.Stats.FilledSlots),
		logger.Int("unfilled", res.Stats.UnfilledSlots),
		logger.Int("relay_teams", res.Stats.RelayTeams),
		logger.Int("warnings", len(res.Warnings)),
	)
	return res, nil
}
