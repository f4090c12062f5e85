package csvio

import (
	"errors"
	"io"

	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/model"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/swimtime"
)

const (
	colStdEvent    = "Event"
	colStdTime     = "Time"
	colStdAge      = "Age Category"
	colStdCourse   = "Course"
	colStdTimeType = "Time Type"
	colStdGender   = "Gender"
	standardsFile  = "standards"
)

// ReadStandards parses the county standards table. Every time type is
// returned; the classifier keeps the ones it is configured for.
func ReadStandards(r io.Reader) ([]model.QualifyingStandard, error) {
	t, err := newTable(standardsFile, r, colStdEvent, colStdTime, colStdAge, colStdGender)
	if err != nil {
		return nil, err
	}

	var out []model.QualifyingStandard
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		tm, err := swimtime.Parse(t.get(rec, colStdTime))
		if err != nil {
			return nil, t.rowError(err)
		}
		age, err := model.ParseAgeCategory(t.get(rec, colStdAge))
		if err != nil {
			return nil, t.rowError(err)
		}
		gender, err := model.ParseGender(t.get(rec, colStdGender))
		if err != nil {
			return nil, t.rowError(err)
		}
		course, err := model.ParseCourse(t.get(rec, colStdCourse))
		if err != nil {
			return nil, t.rowError(err)
		}
		out = append(out, model.QualifyingStandard{
			Event:    model.CanonicalEventName(t.get(rec, colStdEvent)),
			Age:      age,
			Gender:   gender,
			Course:   course,
			TimeType: t.get(rec, colStdTimeType),
			Time:     tm,
		})
	}
	return out, nil
}
