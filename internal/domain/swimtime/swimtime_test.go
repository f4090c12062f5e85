package swimtime_test

import (
	"errors"
	"testing"
	"time"

	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/swimtime"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Given time strings", t, func() {
		Convey("When they use each supported layout", func() {
			cases := map[string]swimtime.Time{
				"1:02:03.45": 372345,
				"1:05.32":    6532,
				"35.8":       3580,
				"35.08":      3508,
				"35":         3500,
				"0:29.99":    2999,
				"29.995":     3000,
			}

			Convey("Then they convert to hundredths", func() {
				for in, want := range cases {
					got, err := swimtime.Parse(in)
					So(err, ShouldBeNil)
					So(got, ShouldEqual, want)
				}
			})
		})

		Convey("When they are malformed", func() {
			Convey("Then ErrInvalidTime is returned", func() {
				for _, in := range []string{"", "abc", "1:2:3:4", "1:xx.00", "-3.00", "12.3a"} {
					_, err := swimtime.Parse(in)
					So(errors.Is(err, swimtime.ErrInvalidTime), ShouldBeTrue)
				}
			})
		})
	})
}

func TestString(t *testing.T) {
	Convey("Given times in hundredths", t, func() {
		Convey("Then String formats mm:ss.cc", func() {
			So(swimtime.Time(6532).String(), ShouldEqual, "01:05.32")
			So(swimtime.Time(3580).String(), ShouldEqual, "00:35.80")
			So(swimtime.Time(372345).String(), ShouldEqual, "62:03.45")
		})

		Convey("Then seconds round-trip through FromSeconds", func() {
			So(swimtime.FromSeconds(35.8), ShouldEqual, swimtime.Time(3580))
			So(swimtime.Time(3580).Seconds(), ShouldAlmostEqual, 35.8)
		})
	})
}

func TestComputeAge(t *testing.T) {
	Convey("Given the 2025 season cut-off", t, func() {
		ref := swimtime.SeasonCutoff(2025)

		Convey("When the birthday falls on the cut-off", func() {
			dob, err := swimtime.ParseDate("2012-12-31")
			So(err, ShouldBeNil)

			Convey("Then the full year counts", func() {
				So(swimtime.ComputeAge(dob, ref), ShouldEqual, 13)
			})
		})

		Convey("When the birthday is the day after", func() {
			dob, err := swimtime.ParseDate("2013-01-01")
			So(err, ShouldBeNil)

			Convey("Then the swimmer is a year younger", func() {
				So(swimtime.ComputeAge(dob, ref), ShouldEqual, 12)
			})
		})

		Convey("When a UK day-first date is given", func() {
			dob, err := swimtime.ParseDate("03/04/2014")
			So(err, ShouldBeNil)

			Convey("Then it is read as 3 April", func() {
				So(dob.Month(), ShouldEqual, time.April)
				So(dob.Day(), ShouldEqual, 3)
			})
		})

		Convey("When the date is unusable", func() {
			_, err := swimtime.ParseDate("not a date")
			_, errEmpty := swimtime.ParseDate("")

			Convey("Then ErrInvalidDate is returned and the zero date ages to 0", func() {
				So(errors.Is(err, swimtime.ErrInvalidDate), ShouldBeTrue)
				So(errors.Is(errEmpty, swimtime.ErrInvalidDate), ShouldBeTrue)
				So(swimtime.ComputeAge(time.Time{}, ref), ShouldEqual, 0)
			})
		})

		Convey("When ages are computed straight from strings", func() {
			age, err := swimtime.AgeFromString("2012-12-31", ref)
			bad, badErr := swimtime.AgeFromString("null", ref)

			Convey("Then valid dates age normally and bad ones yield 0", func() {
				So(err, ShouldBeNil)
				So(age, ShouldEqual, 13)
				So(bad, ShouldEqual, 0)
				So(errors.Is(badErr, swimtime.ErrInvalidDate), ShouldBeTrue)
			})
		})
	})
}
