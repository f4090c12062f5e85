package preset_test

import (
	"errors"
	"testing"

	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/model"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/preset"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGet(t *testing.T) {
	Convey("Given the built-in presets", t, func() {
		Convey("When loading Arena League", func() {
			p, err := preset.Get("Arena League")
			So(err, ShouldBeNil)

			Convey("Then it caps swimmers at two events and lists every slot", func() {
				So(*p.MaxIndividualEvents, ShouldEqual, 2)
				So(len(p.Events), ShouldEqual, 8+24+2+16+1)
				last := p.Events[len(p.Events)-1]
				So(last.Event, ShouldEqual, "Squadrun")
				So(last.Age.IsCrossCategory(), ShouldBeTrue)
				So(last.Gender, ShouldEqual, model.Mixed)
			})
		})

		Convey("When loading County Relays", func() {
			p, err := preset.Get("county-relays")
			So(err, ShouldBeNil)

			Convey("Then it is relay-only with canonical names", func() {
				So(*p.MaxIndividualEvents, ShouldEqual, 0)
				So(len(p.Events), ShouldEqual, 18)
				for _, e := range p.Events {
					So(e.Relay, ShouldBeTrue)
				}
				So(p.Events[0].Event, ShouldEqual, "4x50m Freestyle")
				So(p.Events[0].Label(), ShouldEqual, "12U Male 4x50m Freestyle")
			})
		})

		Convey("When loading Custom", func() {
			p, err := preset.Get(preset.Custom)
			So(err, ShouldBeNil)

			Convey("Then the caller supplies the cap and events", func() {
				So(p.MaxIndividualEvents, ShouldBeNil)
				So(p.Events, ShouldBeEmpty)
			})
		})

		Convey("When the type is unknown", func() {
			_, err := preset.Get("gala")

			Convey("Then ErrUnknownCompetition is returned", func() {
				So(errors.Is(err, preset.ErrUnknownCompetition), ShouldBeTrue)
			})
		})

		Convey("Then the types are listed in order", func() {
			So(preset.Types(), ShouldResemble, []string{"arena_league", "county_relays", "custom"})
		})
	})
}
