package model_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	model "github.com/joshmont53/SwimTeamOptimizer/internal/domain/model"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/swimtime"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseEvent(t *testing.T) {
	convey.Convey("Given event names in the forms clubs use", t, func() {
		convey.Convey("When parsing an individual event", func() {
			spec, err := model.ParseEvent("  50m   freestyle ")

			convey.Convey("Then it is canonicalized", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(spec.Name, convey.ShouldEqual, "50m Freestyle")
				convey.So(spec.Distance, convey.ShouldEqual, 50)
				convey.So(spec.Stroke, convey.ShouldEqual, model.Freestyle)
				convey.So(spec.IsRelay(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When parsing an individual medley", func() {
			spec, err := model.ParseEvent("200m IM")

			convey.Convey("Then the stroke is individual medley", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(spec.Name, convey.ShouldEqual, "200m Individual Medley")
			})
		})

		convey.Convey("When parsing relay spellings", func() {
			a, errA := model.ParseEvent("4x50m Freestyle Relay")
			b, errB := model.ParseEvent("4 x 50m Freestyle")
			m, errM := model.ParseEvent("4 x 100m Medley")
			e, errE := model.ParseEvent("8x50m Freestyle")

			convey.Convey("Then legs, distance and kind are extracted", func() {
				convey.So(errA, convey.ShouldBeNil)
				convey.So(errB, convey.ShouldBeNil)
				convey.So(errM, convey.ShouldBeNil)
				convey.So(errE, convey.ShouldBeNil)
				convey.So(a.Name, convey.ShouldEqual, b.Name)
				convey.So(a.Relay, convey.ShouldEqual, model.UniformRelay)
				convey.So(a.Legs, convey.ShouldEqual, 4)
				convey.So(m.Relay, convey.ShouldEqual, model.MedleyRelay)
				convey.So(m.Distance, convey.ShouldEqual, 100)
				convey.So(m.LegEvent(model.Backstroke), convey.ShouldEqual, "100m Backstroke")
				convey.So(e.Legs, convey.ShouldEqual, 8)
			})
		})

		convey.Convey("When parsing Squadrun", func() {
			spec, err := model.ParseEvent("Squadrun")

			convey.Convey("Then it is an eight-leg cross-category relay", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(spec.Relay, convey.ShouldEqual, model.CrossCategoryRelay)
				convey.So(spec.Legs, convey.ShouldEqual, model.CrossCategoryLegs)
			})
		})

		convey.Convey("When parsing garbage", func() {
			_, err1 := model.ParseEvent("")
			_, err2 := model.ParseEvent("50m Doggy Paddle")
			_, err3 := model.ParseEvent("3x50m Medley")

			convey.Convey("Then ErrInvalidEvent is returned", func() {
				convey.So(errors.Is(err1, model.ErrInvalidEvent), convey.ShouldBeTrue)
				convey.So(errors.Is(err2, model.ErrInvalidEvent), convey.ShouldBeTrue)
				convey.So(errors.Is(err3, model.ErrInvalidEvent), convey.ShouldBeTrue)
			})
		})
	})
}

func TestEnums(t *testing.T) {
	convey.Convey("Given the closed enumerations", t, func() {
		convey.Convey("When normalizing gender tokens", func() {
			convey.Convey("Then every spelling maps to one value", func() {
				for _, tok := range []string{"M", "m", "Male", "boys"} {
					g, err := model.ParseGender(tok)
					convey.So(err, convey.ShouldBeNil)
					convey.So(g, convey.ShouldEqual, model.Male)
				}
				for _, tok := range []string{"F", "Female", "girls"} {
					g, err := model.ParseGender(tok)
					convey.So(err, convey.ShouldBeNil)
					convey.So(g, convey.ShouldEqual, model.Female)
				}
				g, err := model.ParseGender("X")
				convey.So(err, convey.ShouldBeNil)
				convey.So(g, convey.ShouldEqual, model.Mixed)
			})

			convey.Convey("And an unknown token is an error", func() {
				_, err := model.ParseGender("Q")
				convey.So(errors.Is(err, model.ErrInvalidGender), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When parsing age categories", func() {
			convey.Convey("Then legacy codes and labels agree", func() {
				for _, tok := range []string{"11", "11U", "11 & Under", "11 and under"} {
					a, err := model.ParseAgeCategory(tok)
					convey.So(err, convey.ShouldBeNil)
					convey.So(a, convey.ShouldResemble, model.UpTo(11))
				}
				open, err := model.ParseAgeCategory("99")
				convey.So(err, convey.ShouldBeNil)
				convey.So(open.IsOpen(), convey.ShouldBeTrue)
				convey.So(open.Admits(40), convey.ShouldBeTrue)

				cross, err := model.AgeCategoryFromCode(998)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cross.IsCrossCategory(), convey.ShouldBeTrue)
			})

			convey.Convey("And labels match the result document", func() {
				convey.So(model.UpTo(11).Label(), convey.ShouldEqual, "11U")
				convey.So(model.Open().Label(), convey.ShouldEqual, "Open")
				convey.So(model.UpTo(13).String(), convey.ShouldEqual, "13 & Under")
			})

			convey.Convey("And out-of-range codes are rejected", func() {
				_, err := model.AgeCategoryFromCode(0)
				convey.So(errors.Is(err, model.ErrInvalidAge), convey.ShouldBeTrue)
				_, err = model.ParseAgeCategory("eleven")
				convey.So(errors.Is(err, model.ErrInvalidAge), convey.ShouldBeTrue)
			})

			convey.Convey("And JSON accepts numbers and strings", func() {
				var v struct {
					A model.AgeCategory `json:"a"`
					B model.AgeCategory `json:"b"`
				}
				err := json.Unmarshal([]byte(`{"a": 13, "b": "Open"}`), &v)
				convey.So(err, convey.ShouldBeNil)
				convey.So(v.A, convey.ShouldResemble, model.UpTo(13))
				convey.So(v.B.IsOpen(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When parsing courses and strokes", func() {
			sc, err := model.ParseCourse("SC")
			convey.So(err, convey.ShouldBeNil)
			lc, err := model.ParseCourse("long")
			convey.So(err, convey.ShouldBeNil)
			fly, err := model.ParseStroke("Fly")
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then they normalize", func() {
				convey.So(sc, convey.ShouldEqual, model.ShortCourse)
				convey.So(lc, convey.ShouldEqual, model.LongCourse)
				convey.So(model.AnyCourse.Matches(lc), convey.ShouldBeTrue)
				convey.So(sc.Matches(lc), convey.ShouldBeFalse)
				convey.So(fly, convey.ShouldEqual, model.Butterfly)
			})
		})
	})
}

func TestEventSlot(t *testing.T) {
	convey.Convey("Given slot construction", t, func() {
		convey.Convey("When building an individual slot", func() {
			slot, spec, err := model.NewSlot("50m freestyle", model.UpTo(11), model.Male)

			convey.Convey("Then the key is canonical and labelled", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(spec.Relay, convey.ShouldEqual, model.NotRelay)
				convey.So(slot.Label(), convey.ShouldEqual, "11U Male 50m Freestyle")
				other, _, _ := model.NewSlot("50m Freestyle", model.UpTo(11), model.Male)
				convey.So(slot, convey.ShouldEqual, other)
			})
		})

		convey.Convey("When slots are used as map keys", func() {
			a, _, _ := model.NewSlot("4x50m Freestyle Relay", model.UpTo(11), model.Male)
			b, _, _ := model.NewSlot("4 x 50m Freestyle", model.UpTo(11), model.Male)
			m := map[model.EventSlot]int{a: 1}
			m[b]++

			convey.Convey("Then equivalent spellings collide", func() {
				convey.So(len(m), convey.ShouldEqual, 1)
				convey.So(m[a], convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When building a Squadrun slot with a numeric code", func() {
			slot, _, err := model.NewSlot("Squadrun", model.Open(), model.Male)

			convey.Convey("Then age and gender are forced to cross-category", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(slot.Age.IsCrossCategory(), convey.ShouldBeTrue)
				convey.So(slot.Gender, convey.ShouldEqual, model.Mixed)
			})
		})

		convey.Convey("When the shape and category disagree", func() {
			_, _, err1 := model.NewSlot("50m Freestyle", model.CrossCategory(), model.Male)
			_, _, err2 := model.NewSlot("50m Freestyle", model.UpTo(11), model.Mixed)

			convey.Convey("Then ErrInvalidSlot is returned", func() {
				convey.So(errors.Is(err1, model.ErrInvalidSlot), convey.ShouldBeTrue)
				convey.So(errors.Is(err2, model.ErrInvalidSlot), convey.ShouldBeTrue)
			})
		})
	})
}

func TestPerformanceRecordBetter(t *testing.T) {
	convey.Convey("Given two records", t, func() {
		older := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		newer := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		a := model.PerformanceRecord{Time: swimtime.MustParse("32.10"), MeetDate: older, Order: 0}
		b := model.PerformanceRecord{Time: swimtime.MustParse("32.10"), MeetDate: newer, Order: 1}
		c := model.PerformanceRecord{Time: swimtime.MustParse("31.99"), MeetDate: older, Order: 2}

		convey.Convey("Then lower time wins first", func() {
			convey.So(c.Better(a), convey.ShouldBeTrue)
			convey.So(a.Better(c), convey.ShouldBeFalse)
		})

		convey.Convey("Then equal times prefer the more recent meet", func() {
			convey.So(b.Better(a), convey.ShouldBeTrue)
		})

		convey.Convey("Then identical dates fall back to input order", func() {
			d := a
			d.Order = 5
			convey.So(a.Better(d), convey.ShouldBeTrue)
		})
	})
}

func TestLessID(t *testing.T) {
	convey.Convey("Given ASA numbers and other identifiers", t, func() {
		convey.Convey("Numbers compare by value", func() {
			convey.So(model.LessID("9", "10"), convey.ShouldBeTrue)
			convey.So(model.LessID("10", "9"), convey.ShouldBeFalse)
		})
		convey.Convey("Numbers sort before names, which compare as strings", func() {
			convey.So(model.LessID("999", "a"), convey.ShouldBeTrue)
			convey.So(model.LessID("a", "999"), convey.ShouldBeFalse)
			convey.So(model.LessID("a", "b"), convey.ShouldBeTrue)
		})
		convey.Convey("Equal values with different spelling stay ordered", func() {
			convey.So(model.LessID("007", "7"), convey.ShouldBeTrue)
			convey.So(model.LessID("7", "7"), convey.ShouldBeFalse)
		})
	})
}
