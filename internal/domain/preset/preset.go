// Package preset holds the built-in competition formats.
package preset

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/model"
)

// Competition types.
const (
	ArenaLeague  = "arena_league"
	CountyRelays = "county_relays"
	Custom       = "custom"
)

// ErrUnknownCompetition is returned for competition types with no preset.
var ErrUnknownCompetition = errors.New("unknown competition type")

// Preset is a named competition format: its individual event cap and the
// event list entered by default. Custom has no events and no cap; callers
// supply both.
type Preset struct {
	CompetitionType string `json:"competitionType"`
	Name            string `json:"name"`
	// MaxIndividualEvents is nil when the caller chooses the cap.
	MaxIndividualEvents *int              `json:"maxIndividualEvents"`
	Events              []model.EventSlot `json:"-"`
}

type row struct {
	event  string
	age    model.AgeCategory
	gender model.Gender
}

func both(event string, age model.AgeCategory) []row {
	return []row{{event, age, model.Male}, {event, age, model.Female}}
}

func build(rows []row) []model.EventSlot {
	out := make([]model.EventSlot, 0, len(rows))
	for _, r := range rows {
		slot, _, err := model.NewSlot(r.event, r.age, r.gender)
		if err != nil {
			// Preset tables are static; a bad row is a programming error.
			panic(fmt.Sprintf("preset: %v", err))
		}
		out = append(out, slot)
	}
	return out
}

func arenaLeague() []model.EventSlot {
	var rows []row
	for _, stroke := range []string{"Freestyle", "Backstroke", "Breaststroke", "Butterfly"} {
		rows = append(rows, both("50m "+stroke, model.UpTo(11))...)
	}
	for _, age := range []model.AgeCategory{model.UpTo(13), model.UpTo(15), model.Open()} {
		for _, stroke := range []string{"Freestyle", "Backstroke", "Breaststroke", "Butterfly"} {
			rows = append(rows, both("100m "+stroke, age)...)
		}
	}
	rows = append(rows, both("200m Individual Medley", model.Open())...)
	for _, age := range []model.AgeCategory{model.UpTo(11), model.UpTo(13), model.UpTo(15), model.Open()} {
		rows = append(rows, both("4x50m Freestyle", age)...)
		rows = append(rows, both("4x50m Medley", age)...)
	}
	rows = append(rows, row{"Squadrun", model.CrossCategory(), model.Mixed})
	return build(rows)
}

func countyRelays() []model.EventSlot {
	var rows []row
	juniors := []model.AgeCategory{model.UpTo(12), model.UpTo(14), model.UpTo(16)}
	for _, age := range juniors {
		rows = append(rows, both("4 x 50m Freestyle", age)...)
	}
	rows = append(rows, both("4 x 100m Freestyle", model.Open())...)
	rows = append(rows, both("4 x 200m Freestyle", model.Open())...)
	for _, age := range juniors {
		rows = append(rows, both("4 x 50m Medley", age)...)
	}
	rows = append(rows, both("4 x 100m Medley", model.Open())...)
	return build(rows)
}

func intPtr(v int) *int { return &v }

// Get returns the preset for a competition type. Matching ignores case and
// accepts spaces or dashes for underscores.
func Get(competitionType string) (Preset, error) {
	switch normalize(competitionType) {
	case ArenaLeague:
		return Preset{CompetitionType: ArenaLeague, Name: "Arena League", MaxIndividualEvents: intPtr(2), Events: arenaLeague()}, nil
	case CountyRelays:
		return Preset{CompetitionType: CountyRelays, Name: "County Relays", MaxIndividualEvents: intPtr(0), Events: countyRelays()}, nil
	case Custom:
		return Preset{CompetitionType: Custom, Name: "Custom Competition", Events: []model.EventSlot{}}, nil
	default:
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownCompetition, competitionType)
	}
}

// Types lists the known competition types in sorted order.
func Types() []string {
	out := []string{ArenaLeague, CountyRelays, Custom}
	sort.Strings(out)
	return out
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}
