package config_test

import (
	"runtime"
	"testing"
	"time"

	"github.com/joshmont53/SwimTeamOptimizer/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.MaxIndividualEvents, convey.ShouldEqual, 2)
			convey.So(cfg.CompetitionType, convey.ShouldEqual, "arena_league")
			convey.So(cfg.StoreBackend, convey.ShouldEqual, config.StoreMemory)
			convey.So(cfg.RunTimeout(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.ResultTTL(), convey.ShouldEqual, 24*time.Hour)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When no reference date or year is configured", func() {
			now := time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)
			ref, err := cfg.DefaultReferenceDate(now)

			convey.Convey("Then the cut-off is 31 December of the current year", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(ref, convey.ShouldEqual, time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC))
			})
		})

		convey.Convey("When a competition year is configured", func() {
			cfg.CompetitionYear = 2025
			ref, _ := cfg.DefaultReferenceDate(time.Now())

			convey.Convey("Then that season's cut-off is used", func() {
				convey.So(ref.Year(), convey.ShouldEqual, 2025)
			})
		})

		convey.Convey("When an explicit reference date is configured", func() {
			cfg.CompetitionYear = 2025
			cfg.ReferenceDate = "31/08/2025"
			ref, err := cfg.DefaultReferenceDate(time.Now())

			convey.Convey("Then it wins over the year", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(ref.Month(), convey.ShouldEqual, time.August)
			})
		})
	})
}
