package service

import (
	"fmt"
	"strings"

	"github.com/joshmont53/SwimTeamOptimizer/internal/adapters/csvio"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/engine"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/model"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/preset"
)

// resolve layers the request over the competition preset and the process
// configuration and builds the engine input. Request values win, then the
// preset, then the configuration.
func (s *Service) resolve(req Request) (engine.Input, error) { //nolint:gocritic // hugeParam
	competition := strings.TrimSpace(req.Config.CompetitionType)
	if competition == "" {
		competition = s.cfg.CompetitionType
	}
	p, err := preset.Get(competition)
	if err != nil {
		return engine.Input{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	maxEvents := s.cfg.MaxIndividualEvents
	switch {
	case req.Config.MaxIndividualEvents != nil:
		maxEvents = *req.Config.MaxIndividualEvents
	case p.MaxIndividualEvents != nil:
		maxEvents = *p.MaxIndividualEvents
	}
	if maxEvents == csvio.NoLimit {
		maxEvents = engine.Unlimited
	}

	events := req.Events
	if len(events) == 0 {
		events = p.Events
	}
	if len(events) == 0 {
		return engine.Input{}, fmt.Errorf("%w: competition %q needs an event list", ErrInvalidRequest, p.CompetitionType)
	}

	ref := req.Config.ReferenceDate
	if ref.IsZero() {
		ref, err = s.cfg.DefaultReferenceDate(s.now())
		if err != nil {
			return engine.Input{}, fmt.Errorf("%w: reference date: %w", ErrInvalidRequest, err)
		}
	}

	course := req.Config.Course
	if course == model.AnyCourse {
		course, err = model.ParseCourse(s.cfg.Course)
		if err != nil {
			return engine.Input{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	}

	relaysCount := s.cfg.RelaysCountTowardCapacity
	if req.Config.RelaysCountTowardCapacity != nil {
		relaysCount = *req.Config.RelaysCountTowardCapacity
	}

	objectiveToken := req.Config.Objective
	if objectiveToken == "" {
		objectiveToken = s.cfg.Objective
	}
	objective, err := engine.ParseObjective(objectiveToken)
	if err != nil {
		return engine.Input{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	return engine.Input{
		Swimmers:  req.Roster.Swimmers,
		Records:   req.Roster.Records,
		Standards: req.Standards,
		Demand:    events,
		Pins:      req.Pins,
		Config: engine.Config{
			MaxIndividualEvents:       maxEvents,
			CompetitionType:           p.CompetitionType,
			ReferenceDate:             ref,
			Course:                    course,
			RelaysCountTowardCapacity: relaysCount,
			Objective:                 objective,
		},
	}, nil
}
