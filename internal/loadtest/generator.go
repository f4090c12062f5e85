package loadtest

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/preset"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/swimtime"
	"github.com/joshmont53/SwimTeamOptimizer/pkg/logger"
)

// Roster generation ranges.
const (
	oldestBirthYear   = 2008
	birthYearSpan     = 9
	unavailablePct    = 10
	missingTimePct    = 15
	referenceDate     = "2025-12-31"
	baseSecondsPer50m = 28.0
	spreadPer50m      = 16.0
)

var firstNames = []string{"Amy", "Ben", "Cara", "Dan", "Ella", "Finn", "Grace", "Harry", "Isla", "Jack", "Kate", "Leo", "Mia", "Noah", "Orla", "Sam"}
var lastNames = []string{"Brook", "Clarke", "Dale", "Evans", "Fisher", "Hale", "Marsh", "Pike", "Reed", "Shaw", "Tait", "Wells"}

// events lists the timed events; factor scales the per-50m pace.
var events = []struct {
	name    string
	lengths float64
	factor  float64
}{
	{"50m Freestyle", 1, 1.0},
	{"50m Backstroke", 1, 1.12},
	{"50m Breaststroke", 1, 1.25},
	{"50m Butterfly", 1, 1.08},
	{"100m Freestyle", 2, 1.05},
	{"100m Backstroke", 2, 1.17},
	{"100m Breaststroke", 2, 1.3},
	{"100m Butterfly", 2, 1.13},
	{"200m Individual Medley", 4, 1.2},
}

var rosterHeader = []string{"First_Name", "Last_Name", "ASA_No", "Date_of_Birth", "Meet", "Date", "Event", "SC_Time", "Course", "Gender", "isAvailable"}

// generateRequests builds config.NumRequests Arena League requests from a
// seeded source, so a seed always yields the same rosters.
func generateRequests(ctx context.Context, config *Config, stats *Stats) ([]Request, error) {
	logger.GetOrNop().Info(ctx, "generating club rosters",
		logger.Int("requests", config.NumRequests),
		logger.Int("swimmersPerClub", config.SwimmersPerClub))

	rng := rand.New(rand.NewPCG(config.Seed, config.Seed^0x9e3779b97f4a7c15)) //nolint:gosec // synthetic data
	out := make([]Request, config.NumRequests)
	for i := range out {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		req, err := generateRequest(rng, i, config)
		if err != nil {
			return nil, fmt.Errorf("failed to generate request %d: %w", i, err)
		}
		out[i] = req
	}

	stats.RequestsGenerated = len(out)
	logger.GetOrNop().Info(ctx, "generated requests successfully", logger.Int("count", len(out)))
	return out, nil
}

func generateRequest(rng *rand.Rand, club int, config *Config) (Request, error) {
	req := Request{
		RequestID: uuid.NewString(),
		Config: map[string]any{
			"competitionType":     preset.ArenaLeague,
			"referenceDate":       referenceDate,
			"maxIndividualEvents": config.MaxEvents,
		},
		available: make(map[string]bool, config.SwimmersPerClub),
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(rosterHeader); err != nil {
		return req, err
	}

	for s := 0; s < config.SwimmersPerClub; s++ {
		id := strconv.Itoa(100_000 + club*1_000 + s)
		first := firstNames[rng.IntN(len(firstNames))]
		last := lastNames[rng.IntN(len(lastNames))]
		gender := "M"
		if rng.IntN(2) == 0 {
			gender = "F"
		}
		year := oldestBirthYear + rng.IntN(birthYearSpan)
		dob := fmt.Sprintf("%02d/%02d/%d", 1+rng.IntN(28), 1+rng.IntN(12), year)
		available := rng.IntN(100) >= unavailablePct
		req.available[id] = available

		// Younger swimmers are slower.
		pace := baseSecondsPer50m + spreadPer50m*(float64(year-oldestBirthYear)/birthYearSpan) + rng.Float64()*4

		wrote := false
		for _, ev := range events {
			if wrote && rng.IntN(100) < missingTimePct {
				continue
			}
			t := swimtime.FromSeconds(pace * ev.lengths * ev.factor)
			row := []string{first, last, id, dob, "Club Champs", "15/03/2025", ev.name, t.String(), "SC", gender, strconv.FormatBool(available)}
			if err := w.Write(row); err != nil {
				return req, err
			}
			wrote = true
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return req, err
	}
	req.Roster = buf.String()
	return req, nil
}
