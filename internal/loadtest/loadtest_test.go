package loadtest

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joshmont53/SwimTeamOptimizer/internal/adapters/csvio"
	"github.com/joshmont53/SwimTeamOptimizer/internal/adapters/http/api"
	service "github.com/joshmont53/SwimTeamOptimizer/internal/app"
	"github.com/joshmont53/SwimTeamOptimizer/internal/config"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/engine"
	"github.com/joshmont53/SwimTeamOptimizer/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:         baseURL,
		NumRequests:     6,
		SwimmersPerClub: 24,
		DuplicateEvery:  3,
		MaxEvents:       2,
		Workers:         3,
		Seed:            7,
		Timeout:         5 * time.Second,
		PollInterval:    20 * time.Millisecond,
		WaitTimeout:     20 * time.Second,
	}
}

func newService(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.New()
	cfg.WorkerCount = 2
	svc := service.New(service.WithConfig(cfg), service.WithLogger(logger.Nop()))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		svc.Stop()
	})
	return srv
}

func TestGenerateRequests(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		cfg := testConfig("")
		a, err := generateRequests(context.Background(), cfg, &Stats{})
		So(err, ShouldBeNil)
		b, err := generateRequests(context.Background(), cfg, &Stats{})
		So(err, ShouldBeNil)

		Convey("Then rosters repeat for the same seed", func() {
			So(len(a), ShouldEqual, cfg.NumRequests)
			for i := range a {
				So(a[i].Roster, ShouldEqual, b[i].Roster)
				So(a[i].RequestID, ShouldNotEqual, b[i].RequestID)
			}
		})

		Convey("Then every roster parses with one entry per swimmer", func() {
			roster, err := csvio.ReadRoster(strings.NewReader(a[0].Roster))
			So(err, ShouldBeNil)
			So(len(roster.Swimmers), ShouldEqual, cfg.SwimmersPerClub)
			So(len(a[0].available), ShouldEqual, cfg.SwimmersPerClub)
			for _, sw := range roster.Swimmers {
				So(sw.Available, ShouldEqual, a[0].available[sw.ID])
				So(sw.BirthDate.IsZero(), ShouldBeFalse)
			}
		})

		Convey("Then the header matches the roster export", func() {
			header, err := csv.NewReader(strings.NewReader(a[0].Roster)).Read()
			So(err, ShouldBeNil)
			So(header, ShouldResemble, rosterHeader)
		})
	})
}

func TestVerifyResult(t *testing.T) {
	id := func(s string) *string { return &s }
	available := map[string]bool{"1": true, "2": true, "3": false}

	Convey("Given a result that keeps every rule", t, func() {
		res := &engine.Result{
			Individual: []engine.IndividualRow{
				{Event: "11U Male 50m Freestyle", SwimmerID: id("1")},
				{Event: "11U Male 50m Freestyle", SwimmerID: id("2")},
				{Event: "11U Male 50m Backstroke"},
			},
			Relay: []engine.RelayRow{
				{Relay: "11U Male 4x50m Freestyle", Team: "A", Swimmers: []engine.RelayLeg{{SwimmerID: "1"}}},
				{Relay: "11U Male 4x50m Freestyle", Team: "B", Swimmers: []engine.RelayLeg{{SwimmerID: "2"}}},
			},
			Stats: engine.Stats{FilledSlots: 2, UnfilledSlots: 1},
		}

		Convey("Then nothing is reported", func() {
			So(verifyResult(res, available, 1), ShouldBeEmpty)
		})
	})

	Convey("Given a result that breaks the rules", t, func() {
		res := &engine.Result{
			Individual: []engine.IndividualRow{
				{Event: "11U Male 50m Freestyle", SwimmerID: id("1")},
				{Event: "11U Male 50m Freestyle", SwimmerID: id("1")},
				{Event: "11U Male 50m Backstroke", SwimmerID: id("3")},
			},
			Relay: []engine.RelayRow{
				{Relay: "11U Male 4x50m Freestyle", Team: "A", Swimmers: []engine.RelayLeg{{SwimmerID: "2"}}},
				{Relay: "11U Male 4x50m Freestyle", Team: "B", Swimmers: []engine.RelayLeg{{SwimmerID: "2"}, {SwimmerID: "9"}}},
			},
			Stats: engine.Stats{FilledSlots: 2},
		}
		got := strings.Join(verifyResult(res, available, 1), "\n")

		Convey("Then each broken rule is reported", func() {
			So(got, ShouldContainSubstring, "fills two instances")
			So(got, ShouldContainSubstring, "holds 2 individual events, cap 1")
			So(got, ShouldContainSubstring, "unavailable swimmer 3")
			So(got, ShouldContainSubstring, "swims two legs")
			So(got, ShouldContainSubstring, "unknown swimmer 9")
			So(got, ShouldContainSubstring, "slot counters")
		})
	})
}

func TestRun(t *testing.T) {
	srv := newService(t)

	Convey("Given a running optimizer service", t, func() {
		cfg := testConfig(srv.URL)
		cfg.OutputFile = filepath.Join(t.TempDir(), "out", "requests.json")

		stats, err := Run(context.Background(), cfg)

		Convey("Then every run succeeds without violations", func() {
			So(err, ShouldBeNil)
			So(stats.RequestsGenerated, ShouldEqual, 6)
			So(stats.RequestsAccepted, ShouldEqual, 6)
			So(stats.RequestsDuplicate, ShouldEqual, 2)
			So(stats.RequestsSubmitted, ShouldEqual, 8)
			So(stats.RunsSucceeded, ShouldEqual, 6)
			So(stats.Violations, ShouldEqual, 0)
			So(stats.FilledSlots, ShouldBeGreaterThan, 0)
		})

		Convey("Then the requests are saved", func() {
			b, err := os.ReadFile(cfg.OutputFile)
			So(err, ShouldBeNil)
			So(string(b), ShouldContainSubstring, `"competitionType": "arena_league"`)
		})
	})

	Convey("Given an unreachable service", t, func() {
		cfg := testConfig("http://127.0.0.1:1")
		cfg.Timeout = time.Second
		_, err := Run(context.Background(), cfg)

		Convey("Then the health check fails", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "health check")
		})
	})
}
