package csvio_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/joshmont53/SwimTeamOptimizer/internal/adapters/csvio"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/model"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/swimtime"
	. "github.com/smartystreets/goconvey/convey"
)

const rosterCSV = `First_Name,Last_Name,ASA_No,Date_of_Birth,Meet,Date,Event,SC_Time,Course,Gender,AgeTime,County_QT,Count_CT,County_Qualify,time_in_seconds,isAvailable
Amy,Fish,1001,31/12/2012,Winter Open,12/01/2025,50m Freestyle,35.80,SC,F,12,34.00,36.00,CT,35.8,true
Amy,Fish,1001,31/12/2012,Winter Open,12/01/2025,100 Backstroke,1:20.5,SC,F,12,1:18.00,1:22.00,CT,,true
Ben,Shark,1002,null,Gala,03/02/2025,50m Butterfly,32.10,LC,Male,13,,,,,false
Cal,Ray,1003,2014-05-06,Gala,03/02/2025,50m Freestyle,garbage,SC,M,11,,,,,
`

func TestReadRoster(t *testing.T) {
	Convey("Given a club export", t, func() {
		roster, err := csvio.ReadRoster(strings.NewReader(rosterCSV))
		So(err, ShouldBeNil)

		Convey("Then swimmers are deduplicated in first-seen order", func() {
			So(len(roster.Swimmers), ShouldEqual, 3)
			So(roster.Swimmers[0].ID, ShouldEqual, "1001")
			So(roster.Swimmers[0].DisplayName(), ShouldEqual, "Amy Fish")
			So(roster.Swimmers[0].Gender, ShouldEqual, model.Female)
		})

		Convey("Then birth dates are read day-first and bad ones kept raw", func() {
			So(roster.Swimmers[0].BirthDate, ShouldEqual, time.Date(2012, 12, 31, 0, 0, 0, 0, time.UTC))
			So(roster.Swimmers[1].BirthDate.IsZero(), ShouldBeTrue)
			So(roster.Swimmers[1].BirthDateRaw, ShouldEqual, "null")
		})

		Convey("Then availability defaults to true", func() {
			So(roster.Swimmers[0].Available, ShouldBeTrue)
			So(roster.Swimmers[1].Available, ShouldBeFalse)
			So(roster.Swimmers[2].Available, ShouldBeTrue)
		})

		Convey("Then records carry canonical events and parsed times", func() {
			So(len(roster.Records), ShouldEqual, 4)
			So(roster.Records[0].Time, ShouldEqual, swimtime.Time(3580))
			So(roster.Records[1].Event, ShouldEqual, "100m Backstroke")
			So(roster.Records[1].Time, ShouldEqual, swimtime.Time(8050))
			So(roster.Records[2].Course, ShouldEqual, model.LongCourse)
			So(roster.Records[3].Time, ShouldEqual, swimtime.Time(0))
			So(roster.Records[3].Order, ShouldEqual, 3)
		})
	})

	Convey("Given an export without the ASA column", t, func() {
		_, err := csvio.ReadRoster(strings.NewReader("First_Name,Last_Name,Date_of_Birth,Event,Gender,Time\n"))

		Convey("Then the missing column is reported", func() {
			So(errors.Is(err, csvio.ErrMissingColumn), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "ASA_No")
		})
	})

	Convey("Given a row with an unknown gender", t, func() {
		in := "First_Name,Last_Name,ASA_No,Date_of_Birth,Event,Gender,Time\nA,B,1,2012-01-01,50m Freestyle,Q,30.00\n"
		_, err := csvio.ReadRoster(strings.NewReader(in))

		Convey("Then the row is rejected with its line number", func() {
			So(errors.Is(err, model.ErrInvalidGender), ShouldBeTrue)
			var rowErr *csvio.RowError
			So(errors.As(err, &rowErr), ShouldBeTrue)
			So(rowErr.Line, ShouldEqual, 2)
		})
	})
}

func TestReadStandards(t *testing.T) {
	Convey("Given a standards table", t, func() {
		in := "Event,Time,Age Category,Course,Time Type,Gender\n" +
			"50m Freestyle,34.00,11,SC,QT,Female\n" +
			"50 Freestyle,36.00,11,SC,CT,Female\n" +
			"100m Backstroke,1:10.00,17,LC,QT,M\n"
		stds, err := csvio.ReadStandards(strings.NewReader(in))
		So(err, ShouldBeNil)

		Convey("Then every row is returned with typed fields", func() {
			So(len(stds), ShouldEqual, 3)
			So(stds[0].Age, ShouldEqual, model.UpTo(11))
			So(stds[1].Event, ShouldEqual, "50m Freestyle")
			So(stds[1].TimeType, ShouldEqual, "CT")
			So(stds[2].Time, ShouldEqual, swimtime.Time(7000))
			So(stds[2].Course, ShouldEqual, model.LongCourse)
		})
	})
}

func TestDecodeDemand(t *testing.T) {
	Convey("Given a mix of object and legacy rows", t, func() {
		in := `[
			{"event": "50m Freestyle", "ageCategory": 11, "gender": "Both"},
			["4 x 50m Medley", "Open", "F"],
			{"event": "Squadrun", "ageCategory": 998, "gender": "Mixed", "isRelay": true},
			["50m Freestyle", 11, "Male"]
		]`
		slots, err := csvio.DecodeDemand(strings.NewReader(in))
		So(err, ShouldBeNil)

		Convey("Then Both expands and relays are inferred", func() {
			So(len(slots), ShouldEqual, 5)
			So(slots[0].Gender, ShouldEqual, model.Male)
			So(slots[1].Gender, ShouldEqual, model.Female)
			So(slots[2].Event, ShouldEqual, "4x50m Medley")
			So(slots[2].Relay, ShouldBeTrue)
			So(slots[2].Age.IsOpen(), ShouldBeTrue)
			So(slots[3].Age.IsCrossCategory(), ShouldBeTrue)
			So(slots[4], ShouldResemble, slots[0])
		})
	})

	Convey("Given a row with an unknown age", t, func() {
		_, err := csvio.DecodeDemand(strings.NewReader(`[["50m Freestyle", 0, "M"]]`))

		Convey("Then decoding fails", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

func TestDecodePins(t *testing.T) {
	Convey("Given individual and relay pre-assignments", t, func() {
		in := `{
			"individual": [{"event": "50m Freestyle", "ageCategory": 11, "gender": "M", "swimmerId": 1001}],
			"relay": [
				{"relayName": "4x50m Medley", "ageCategory": "Open", "gender": "Female", "position": 2, "stroke": "Breaststroke", "team": "B", "swimmerId": "1002"},
				{"relayName": "Squadrun", "ageCategory": 998, "position": 8, "swimmerId": "1003"}
			]
		}`
		pins, err := csvio.DecodePins(strings.NewReader(in))
		So(err, ShouldBeNil)

		Convey("Then ids, teams and legs are normalized", func() {
			So(pins.Individual[0].SwimmerID, ShouldEqual, "1001")
			So(pins.Individual[0].Slot.Label(), ShouldEqual, "11U Male 50m Freestyle")
			So(pins.Relay[0].Team, ShouldEqual, 2)
			So(pins.Relay[0].Leg, ShouldEqual, 2)
			So(pins.Relay[0].Stroke, ShouldEqual, model.Breaststroke)
			So(pins.Relay[1].Team, ShouldEqual, 1)
			So(pins.Relay[1].Slot.Gender, ShouldEqual, model.Mixed)
		})
	})
}

func TestDecodeRunConfig(t *testing.T) {
	Convey("Given a configuration with a null cap", t, func() {
		cfg, err := csvio.DecodeRunConfig(strings.NewReader(`{"maxIndividualEvents": null, "competitionType": "custom", "referenceDate": "2025-12-31", "course": "SC", "objective": "max_qualifying"}`))
		So(err, ShouldBeNil)

		Convey("Then the cap is explicitly unlimited", func() {
			So(*cfg.MaxIndividualEvents, ShouldEqual, csvio.NoLimit)
			So(cfg.ReferenceDate, ShouldEqual, swimtime.SeasonCutoff(2025))
			So(cfg.Course, ShouldEqual, model.ShortCourse)
			So(cfg.Objective, ShouldEqual, "max_qualifying")
			So(cfg.RelaysCountTowardCapacity, ShouldBeNil)
		})
	})

	Convey("Given a configuration without a cap", t, func() {
		cfg, err := csvio.DecodeRunConfig(strings.NewReader(`{"competitionType": "arena_league", "relaysCountTowardCapacity": true}`))
		So(err, ShouldBeNil)

		Convey("Then the cap is left for the caller", func() {
			So(cfg.MaxIndividualEvents, ShouldBeNil)
			So(*cfg.RelaysCountTowardCapacity, ShouldBeTrue)
		})
	})

	Convey("Given a negative cap", t, func() {
		_, err := csvio.DecodeRunConfig(strings.NewReader(`{"maxIndividualEvents": -3}`))

		Convey("Then the document is rejected", func() {
			So(errors.Is(err, csvio.ErrInvalidDocument), ShouldBeTrue)
		})
	})
}
