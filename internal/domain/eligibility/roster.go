// Package eligibility answers who may swim a slot and how fast they are.
package eligibility

import (
	"fmt"
	"sort"
	"time"

	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/model"
	"github.com/joshmont53/SwimTeamOptimizer/internal/domain/swimtime"
)

type bestKey struct {
	swimmerID string
	event     string
	course    model.Course
}

// Roster is an immutable, indexed snapshot of swimmers and their best times
// for one run. Ages are fixed against the reference date at construction.
type Roster struct {
	ref      time.Time
	swimmers map[string]model.Swimmer
	ages     map[string]int
	ids      []string
	best     map[bestKey]model.PerformanceRecord
	warnings []model.Warning
}

// NewRoster indexes swimmers and their records. Problems that do not stop
// a run (unparsable birth dates, duplicate ids, orphan or zero-time
// records) are collected as warnings.
func NewRoster(swimmers []model.Swimmer, records []model.PerformanceRecord, ref time.Time) *Roster {
	r := &Roster{
		ref:      ref,
		swimmers: make(map[string]model.Swimmer, len(swimmers)),
		ages:     make(map[string]int, len(swimmers)),
		best:     make(map[bestKey]model.PerformanceRecord),
	}

	for _, s := range swimmers {
		if _, dup := r.swimmers[s.ID]; dup {
			r.warn(model.WarnDuplicateID, s.ID, "", "duplicate swimmer id; keeping the first entry")
			continue
		}
		r.swimmers[s.ID] = s
		r.ids = append(r.ids, s.ID)
		if s.BirthDate.IsZero() {
			r.warn(model.WarnBirthDate, s.ID, "", fmt.Sprintf("cannot parse date of birth %q for %s; age defaults to 0", s.BirthDateRaw, s.DisplayName()))
			r.ages[s.ID] = 0
			continue
		}
		r.ages[s.ID] = swimtime.ComputeAge(s.BirthDate, ref)
	}
	sort.Slice(r.ids, func(i, j int) bool { return model.LessID(r.ids[i], r.ids[j]) })

	for _, rec := range records {
		if _, ok := r.swimmers[rec.SwimmerID]; !ok {
			r.warn(model.WarnUnknownSwimmer, rec.SwimmerID, "", fmt.Sprintf("record for %s ignored: swimmer not on roster", rec.Event))
			continue
		}
		if rec.Time <= 0 {
			r.warn(model.WarnInvalidRecord, rec.SwimmerID, "", fmt.Sprintf("record for %s ignored: no time", rec.Event))
			continue
		}
		k := bestKey{swimmerID: rec.SwimmerID, event: model.CanonicalEventName(rec.Event), course: rec.Course}
		if cur, ok := r.best[k]; !ok || rec.Better(cur) {
			r.best[k] = rec
		}
	}

	return r
}

func (r *Roster) warn(code, swimmerID, slot, msg string) {
	r.warnings = append(r.warnings, model.Warning{Code: code, Message: msg, SwimmerID: swimmerID, Slot: slot})
}

// Warnings returns the data-quality warnings raised while indexing.
func (r *Roster) Warnings() []model.Warning {
	out := make([]model.Warning, len(r.warnings))
	copy(out, r.warnings)
	return out
}

// ReferenceDate returns the date ages were computed against.
func (r *Roster) ReferenceDate() time.Time { return r.ref }

// Len returns the number of distinct swimmers.
func (r *Roster) Len() int { return len(r.ids) }

// Swimmer looks a swimmer up by external id.
func (r *Roster) Swimmer(id string) (model.Swimmer, bool) {
	s, ok := r.swimmers[id]
	return s, ok
}

// Age returns the competition age of a swimmer.
func (r *Roster) Age(id string) int { return r.ages[id] }

// IDs returns all swimmer ids in model.LessID order.
func (r *Roster) IDs() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// IsEligible reports whether the swimmer may swim for the bracket: available,
// same gender, and admitted by the age category.
func (r *Roster) IsEligible(id string, age model.AgeCategory, gender model.Gender) bool {
	s, ok := r.swimmers[id]
	if !ok || !s.Available || s.Gender != gender {
		return false
	}
	return age.Admits(r.ages[id])
}

// Eligible returns the eligible swimmers for a single bracket, ordered by id.
func (r *Roster) Eligible(age model.AgeCategory, gender model.Gender) []model.Swimmer {
	var out []model.Swimmer
	for _, id := range r.ids {
		if r.IsEligible(id, age, gender) {
			out = append(out, r.swimmers[id])
		}
	}
	return out
}

// EligibleForSlot is Eligible for the slot's own bracket. Cross-category
// slots have no single bracket; use Eligible per bracket instead.
func (r *Roster) EligibleForSlot(slot model.EventSlot) []model.Swimmer {
	if slot.Age.IsCrossCategory() {
		return nil
	}
	return r.Eligible(slot.Age, slot.Gender)
}

// BestTime returns the swimmer's best record for event in course. Records
// without a course match any lookup; AnyCourse considers both pool lengths.
func (r *Roster) BestTime(id, event string, course model.Course) (model.PerformanceRecord, bool) {
	event = model.CanonicalEventName(event)
	courses := []model.Course{course, model.AnyCourse}
	if course == model.AnyCourse {
		courses = []model.Course{model.ShortCourse, model.LongCourse, model.AnyCourse}
	}

	var best model.PerformanceRecord
	found := false
	for _, c := range courses {
		rec, ok := r.best[bestKey{swimmerID: id, event: event, course: c}]
		if ok && (!found || rec.Better(best)) {
			best, found = rec, true
		}
	}
	return best, found
}
