package engine

import (
	"context"
	"math"
	"time"

	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/model"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/qualify"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/swimtime"
	"github.com/joshmont53/SwimTeamOptimizer/pkg/logger"
)

// Result is the outcome of one optimization run. Nullable fields are
// always serialized so consumers see a stable shape.
type Result struct {
	CompetitionType string          `json:"competitionType"`
	ReferenceDate   string          `json:"referenceDate"`
	Course          string          `json:"course"`
	Objective       Objective       `json:"objective"`
	Individual      []IndividualRow `json:"individual"`
	Relay           []RelayRow      `json:"relay"`
	Stats           Stats           `json:"stats"`
	Warnings        []model.Warning `json:"warnings"`
}

// IndividualRow is one instance of an individual slot.
type IndividualRow struct {
	Event       string         `json:"event"`
	EventName   string         `json:"eventName"`
	AgeCategory string         `json:"ageCategory"`
	Gender      string         `json:"gender"`
	Instance    int            `json:"instance"`
	Swimmer     *string        `json:"swimmer"`
	SwimmerID   *string        `json:"swimmerId"`
	Time        *string        `json:"time"`
	TimeSeconds *float64       `json:"timeSeconds"`
	Index       *float64       `json:"index"`
	Status      qualify.Status `json:"status"`
	PreAssigned bool           `json:"preAssigned"`
}

// RelayLeg is one filled position of a relay team.
type RelayLeg struct {
	Leg         int      `json:"leg"`
	Swimmer     string   `json:"swimmer"`
	SwimmerID   string   `json:"swimmerId"`
	Stroke      string   `json:"stroke"`
	Bracket     *string  `json:"bracket"`
	Time        *string  `json:"time"`
	TimeSeconds *float64 `json:"timeSeconds"`
	PreAssigned bool     `json:"preAssigned"`
}

// RelayRow is one team of a relay slot. Swimmers lists filled legs only,
// in leg order.
type RelayRow struct {
	Relay        string     `json:"relay"`
	EventName    string     `json:"eventName"`
	AgeCategory  string     `json:"ageCategory"`
	Gender       string     `json:"gender"`
	Team         string     `json:"team"`
	Swimmers     []RelayLeg `json:"swimmers"`
	TotalTime    *string    `json:"totalTime"`
	TotalSeconds *float64   `json:"totalSeconds"`
	Complete     bool       `json:"complete"`
	FilledLegs   int        `json:"filledLegs"`
	Legs         int        `json:"legs"`
}

// Stats summarizes a result.
type Stats struct {
	QualifyingTimes  int      `json:"qualifyingTimes"`
	AverageIndex     *float64 `json:"averageIndex"`
	RelayTeams       int      `json:"relayTeams"`
	TotalEvents      int      `json:"totalEvents"`
	FilledSlots      int      `json:"filledSlots"`
	UnfilledSlots    int      `json:"unfilledSlots"`
	IncompleteRelays int      `json:"incompleteRelays"`
}

func timeFields(e entry) (*string, *float64) {
	if !e.hasTime {
		return nil, nil
	}
	s := e.time.String()
	sec := e.time.Seconds()
	return &s, &sec
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

// aggregate renders the ledger into the result document in demand order.
func (rc *RunContext) aggregate() *Result {
	res := &Result{
		CompetitionType: rc.cfg.CompetitionType,
		ReferenceDate:   rc.cfg.ReferenceDate.Format(time.DateOnly),
		Course:          rc.cfg.Course.String(),
		Objective:       rc.cfg.Objective,
		Individual:      []IndividualRow{},
		Relay:           []RelayRow{},
	}

	var indexSum float64
	var indexN int
	for _, key := range rc.individualOrder {
		st := rc.individuals[key]
		if _, ok := rc.classifier.Standard(key, rc.cfg.Course); !ok {
			rc.warn(model.WarnMissingStandard, "", key.Label(), "no qualifying standard; rows ranked by time only")
		}
		for i, in := range st.instances {
			row := IndividualRow{
				Event:       key.Label(),
				EventName:   key.Event,
				AgeCategory: key.Age.Label(),
				Gender:      key.Gender.String(),
				Instance:    i + 1,
				Status:      qualify.StatusUnfilled,
				PreAssigned: in.pinned,
			}
			if in.filled() {
				res.Stats.FilledSlots++
				id := in.swimmerID
				row.SwimmerID = &id
				if sw, ok := rc.roster.Swimmer(id); ok {
					name := sw.DisplayName()
					row.Swimmer = &name
				}
				row.Time, row.TimeSeconds = timeFields(in)
				row.Status = qualify.StatusNA
				if in.hasTime {
					c := rc.classifier.ClassifySlot(key, rc.cfg.Course, in.time)
					row.Status = c.Status
					row.Index = c.Index
				}
				if row.Status == qualify.StatusQT {
					res.Stats.QualifyingTimes++
				}
				if row.Index != nil {
					indexSum += *row.Index
					indexN++
				}
			} else {
				res.Stats.UnfilledSlots++
			}
			res.Individual = append(res.Individual, row)
		}
	}

	for _, key := range rc.relayOrder {
		rs := rc.relays[key]
		for t, team := range rs.teams {
			row := RelayRow{
				Relay:       key.Label(),
				EventName:   key.Event,
				AgeCategory: key.Age.Label(),
				Gender:      key.Gender.String(),
				Team:        teamName(t + 1),
				Swimmers:    []RelayLeg{},
				Legs:        len(rs.legs),
			}
			var total swimtime.Time
			timed := true
			for i, e := range team {
				if !e.filled() {
					continue
				}
				l := rs.legs[i]
				leg := RelayLeg{
					Leg:         i + 1,
					SwimmerID:   e.swimmerID,
					Stroke:      l.stroke.String(),
					PreAssigned: e.pinned,
				}
				if sw, ok := rc.roster.Swimmer(e.swimmerID); ok {
					leg.Swimmer = sw.DisplayName()
				}
				if l.bracket != nil {
					b := l.bracket.Label()
					leg.Bracket = &b
				}
				leg.Time, leg.TimeSeconds = timeFields(e)
				if e.hasTime {
					total += e.time
				} else {
					timed = false
				}
				row.Swimmers = append(row.Swimmers, leg)
			}
			row.FilledLegs = len(row.Swimmers)
			row.Complete = row.FilledLegs == row.Legs
			if row.FilledLegs > 0 && timed {
				s := total.String()
				sec := total.Seconds()
				row.TotalTime = &s
				row.TotalSeconds = &sec
			}
			if !row.Complete {
				res.Stats.IncompleteRelays++
			}
			res.Stats.RelayTeams++
			res.Relay = append(res.Relay, row)
		}
	}

	if indexN > 0 {
		avg := round3(indexSum / float64(indexN))
		res.Stats.AverageIndex = &avg
	}
	res.Stats.TotalEvents = res.Stats.FilledSlots + res.Stats.RelayTeams

	rc.logWarnings()
	res.Warnings = append([]model.Warning{}, rc.warnings...)
	return res
}

func (rc *RunContext) logWarnings() {
	for _, w := range rc.warnings {
		fields := []logger.Field{logger.String("code", w.Code)}
		if w.SwimmerID != "" {
			fields = append(fields, logger.String("swimmer_id", w.SwimmerID))
		}
		if w.Slot != "" {
			fields = append(fields, logger.String("slot", w.Slot))
		}
		rc.log.Warn(context.WithoutCancel(rc.ctx), w.Message, fields...)
	}
}
