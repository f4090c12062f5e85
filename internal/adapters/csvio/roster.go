package csvio

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/model"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/swimtime"
)

// Roster columns. The export has one row per personal best; swimmer
// details repeat on every row.
const (
	colFirstName   = "First_Name"
	colLastName    = "Last_Name"
	colASA         = "ASA_No"
	colDOB         = "Date_of_Birth"
	colMeet        = "Meet"
	colDate        = "Date"
	colEvent       = "Event"
	colSCTime      = "SC_Time"
	colTime        = "Time"
	colCourse      = "Course"
	colGender      = "Gender"
	colQualify     = "County_Qualify"
	colSeconds     = "time_in_seconds"
	colAvailable   = "isAvailable"
	rosterFileName = "roster"
)

// Roster is the parsed roster export.
type Roster struct {
	Swimmers []model.Swimmer
	Records  []model.PerformanceRecord
}

// ReadRoster parses the roster and times export. Swimmers are deduplicated
// by ASA number in first-seen order; a swimmer marked unavailable on any
// row is unavailable. Unparsable birth dates and times are kept as zero
// values so the engine reports them as warnings. A bad gender token is an
// error.
func ReadRoster(r io.Reader) (*Roster, error) {
	t, err := newTable(rosterFileName, r, colFirstName, colLastName, colASA, colDOB, colEvent, colGender)
	if err != nil {
		return nil, err
	}
	timeCol, hasTimeCol := t.first(colSCTime, colTime)
	if !hasTimeCol && !t.has(colSeconds) {
		return nil, &RowError{File: rosterFileName, Line: 1, Err: fmt.Errorf("%w: %s, %s or %s", ErrMissingColumn, colSCTime, colTime, colSeconds)}
	}

	out := &Roster{}
	index := make(map[string]int)
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		id := t.get(rec, colASA)
		if id == "" {
			return nil, t.rowError(fmt.Errorf("%w: empty %s", ErrInvalidRow, colASA))
		}
		available := parseAvailable(t.get(rec, colAvailable))

		if i, seen := index[id]; seen {
			if !available {
				out.Swimmers[i].Available = false
			}
		} else {
			gender, err := model.ParseGender(t.get(rec, colGender))
			if err != nil {
				return nil, t.rowError(err)
			}
			rawDOB := t.get(rec, colDOB)
			dob, _ := swimtime.ParseDate(rawDOB)
			index[id] = len(out.Swimmers)
			out.Swimmers = append(out.Swimmers, model.Swimmer{
				ID:           id,
				FirstName:    t.get(rec, colFirstName),
				LastName:     t.get(rec, colLastName),
				BirthDate:    dob,
				BirthDateRaw: rawDOB,
				Gender:       gender,
				Available:    available,
			})
		}

		event := t.get(rec, colEvent)
		if event == "" {
			continue
		}
		course, err := model.ParseCourse(t.get(rec, colCourse))
		if err != nil {
			return nil, t.rowError(err)
		}
		meetDate, _ := swimtime.ParseDate(t.get(rec, colDate))
		out.Records = append(out.Records, model.PerformanceRecord{
			SwimmerID:   id,
			Event:       model.CanonicalEventName(event),
			Course:      course,
			Time:        rowTime(t, rec, timeCol),
			Meet:        t.get(rec, colMeet),
			MeetDate:    meetDate,
			QualifyFlag: t.get(rec, colQualify),
			Order:       len(out.Records),
		})
	}
	return out, nil
}

// rowTime prefers the numeric seconds column and falls back to the
// formatted time. Zero means no usable time.
func rowTime(t *table, rec []string, timeCol string) swimtime.Time {
	if s := t.get(rec, colSeconds); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil && v > 0 {
			return swimtime.FromSeconds(v)
		}
	}
	if timeCol == "" {
		return 0
	}
	v, err := swimtime.Parse(t.get(rec, timeCol))
	if err != nil {
		return 0
	}
	return v
}

// parseAvailable treats a missing or empty flag as available.
func parseAvailable(s string) bool {
	switch strings.ToLower(s) {
	case "", "true", "t", "yes", "y", "1":
		return true
	default:
		return false
	}
}
