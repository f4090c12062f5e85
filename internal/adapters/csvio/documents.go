package csvio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/model"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/swimtime"
)

// flexString accepts a JSON string or number (ASA numbers arrive as both).
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("%w: expected string or number, got %s", ErrInvalidDocument, b)
	}
	*f = flexString(n.String())
	return nil
}

// genderSpec accepts any gender token plus "Both", which expands a demand
// row into a male and a female slot.
type genderSpec []model.Gender

func (g *genderSpec) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: gender %s", ErrInvalidDocument, b)
	}
	if strings.EqualFold(strings.TrimSpace(s), "both") {
		*g = genderSpec{model.Male, model.Female}
		return nil
	}
	v, err := model.ParseGender(s)
	if err != nil {
		return err
	}
	*g = genderSpec{v}
	return nil
}

type demandRow struct {
	Event       string            `json:"event"`
	AgeCategory model.AgeCategory `json:"ageCategory"`
	Gender      genderSpec        `json:"gender"`
	IsRelay     *bool             `json:"isRelay"`
}

// UnmarshalJSON accepts the object form or the legacy
// [event, ageCategory, gender(, isRelay)] array form.
func (d *demandRow) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var parts []json.RawMessage
		if err := json.Unmarshal(b, &parts); err != nil {
			return err
		}
		if len(parts) < 3 {
			return fmt.Errorf("%w: event row needs [event, ageCategory, gender]", ErrInvalidDocument)
		}
		if err := json.Unmarshal(parts[0], &d.Event); err != nil {
			return err
		}
		if err := json.Unmarshal(parts[1], &d.AgeCategory); err != nil {
			return err
		}
		if err := json.Unmarshal(parts[2], &d.Gender); err != nil {
			return err
		}
		if len(parts) > 3 {
			var relay bool
			if err := json.Unmarshal(parts[3], &relay); err != nil {
				return err
			}
			d.IsRelay = &relay
		}
		return nil
	}
	type plain demandRow
	return json.Unmarshal(b, (*plain)(d))
}

// DecodeDemand reads the event list. Each row becomes one slot instance per
// gender; repeated rows are repeated instances. When isRelay is absent it is
// taken from the event name.
func DecodeDemand(r io.Reader) ([]model.EventSlot, error) {
	var rows []demandRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: events: %v", ErrInvalidDocument, err)
	}

	out := make([]model.EventSlot, 0, len(rows))
	for i, row := range rows {
		if len(row.Gender) == 0 {
			return nil, fmt.Errorf("%w: events[%d]: missing gender", ErrInvalidDocument, i)
		}
		for _, g := range row.Gender {
			slot, _, err := model.NewSlot(row.Event, row.AgeCategory, g)
			if err != nil {
				return nil, fmt.Errorf("events[%d]: %w", i, err)
			}
			if row.IsRelay != nil {
				slot.Relay = *row.IsRelay
			}
			out = append(out, slot)
		}
	}
	return out, nil
}

type individualPinDoc struct {
	Event       string            `json:"event"`
	AgeCategory model.AgeCategory `json:"ageCategory"`
	Gender      model.Gender      `json:"gender"`
	SwimmerID   flexString        `json:"swimmerId"`
}

type relayPinDoc struct {
	RelayName   string            `json:"relayName"`
	Event       string            `json:"event"`
	AgeCategory model.AgeCategory `json:"ageCategory"`
	Gender      model.Gender      `json:"gender"`
	Position    int               `json:"position"`
	Stroke      model.Stroke      `json:"stroke"`
	Team        flexString        `json:"team"`
	SwimmerID   flexString        `json:"swimmerId"`
}

type pinsDoc struct {
	Individual []individualPinDoc `json:"individual"`
	Relay      []relayPinDoc      `json:"relay"`
}

// parseTeam maps "A"/"B"/"1"/"2" to a 1-based team; empty is team A.
func parseTeam(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1, nil
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n, nil
	}
	if len(s) == 1 {
		c := strings.ToUpper(s)[0]
		if c >= 'A' && c <= 'Z' {
			return int(c-'A') + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: team %q", ErrInvalidDocument, s)
}

// DecodePins reads the pre-assignment document. Slots are canonicalized
// but not checked against the event list; the engine does that.
func DecodePins(r io.Reader) (model.Pins, error) {
	var doc pinsDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return model.Pins{}, fmt.Errorf("%w: pre-assignments: %v", ErrInvalidDocument, err)
	}

	var pins model.Pins
	for i, p := range doc.Individual {
		slot, _, err := model.NewSlot(p.Event, p.AgeCategory, p.Gender)
		if err != nil {
			return model.Pins{}, fmt.Errorf("individual[%d]: %w", i, err)
		}
		pins.Individual = append(pins.Individual, model.IndividualPin{Slot: slot, SwimmerID: string(p.SwimmerID)})
	}
	for i, p := range doc.Relay {
		name := p.RelayName
		if name == "" {
			name = p.Event
		}
		gender := p.Gender
		if gender == model.GenderUnknown {
			// Squadrun pins may omit the gender.
			gender = model.Mixed
		}
		slot, _, err := model.NewSlot(name, p.AgeCategory, gender)
		if err != nil {
			return model.Pins{}, fmt.Errorf("relay[%d]: %w", i, err)
		}
		team, err := parseTeam(string(p.Team))
		if err != nil {
			return model.Pins{}, fmt.Errorf("relay[%d]: %w", i, err)
		}
		pins.Relay = append(pins.Relay, model.RelayPin{
			Slot:      slot,
			Team:      team,
			Leg:       p.Position,
			Stroke:    p.Stroke,
			SwimmerID: string(p.SwimmerID),
		})
	}
	return pins, nil
}

// RunConfig is the per-run configuration document. Absent fields are left
// for the caller to default.
type RunConfig struct {
	// MaxIndividualEvents is nil when absent and -1 when explicitly null.
	MaxIndividualEvents       *int
	CompetitionType           string
	ReferenceDate             time.Time
	Course                    model.Course
	RelaysCountTowardCapacity *bool
	Objective                 string
}

type runConfigDoc struct {
	MaxIndividualEvents       json.RawMessage `json:"maxIndividualEvents"`
	CompetitionType           string          `json:"competitionType"`
	ReferenceDate             string          `json:"referenceDate"`
	Course                    model.Course    `json:"course"`
	RelaysCountTowardCapacity *bool           `json:"relaysCountTowardCapacity"`
	Objective                 string          `json:"objective"`
}

// NoLimit is the MaxIndividualEvents value decoded from an explicit null.
const NoLimit = -1

// DecodeRunConfig reads the run configuration document.
func DecodeRunConfig(r io.Reader) (RunConfig, error) {
	var doc runConfigDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return RunConfig{}, fmt.Errorf("%w: config: %v", ErrInvalidDocument, err)
	}

	cfg := RunConfig{
		CompetitionType:           strings.TrimSpace(doc.CompetitionType),
		Course:                    doc.Course,
		RelaysCountTowardCapacity: doc.RelaysCountTowardCapacity,
		Objective:                 strings.TrimSpace(doc.Objective),
	}

	if raw := bytes.TrimSpace(doc.MaxIndividualEvents); len(raw) > 0 {
		limit := NoLimit
		if !bytes.Equal(raw, []byte("null")) {
			if err := json.Unmarshal(raw, &limit); err != nil || limit < 0 {
				return RunConfig{}, fmt.Errorf("%w: maxIndividualEvents must be a non-negative integer or null", ErrInvalidDocument)
			}
		}
		cfg.MaxIndividualEvents = &limit
	}

	if doc.ReferenceDate != "" {
		ref, err := swimtime.ParseDate(doc.ReferenceDate)
		if err != nil {
			return RunConfig{}, fmt.Errorf("%w: referenceDate: %v", ErrInvalidDocument, err)
		}
		cfg.ReferenceDate = ref
	}
	return cfg, nil
}
