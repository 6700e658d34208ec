package mentorship

import (
	"fmt"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
)

// Key segment for records with no schedule yet; distinct from any real
// timestamp so unscheduled records never collapse into scheduled groups.
const unscheduledKey = "unscheduled"

// minute precision, UTC
const scheduleKeyLayout = "2006-01-02T15:04Z"

// NormalizeTopic trims and case-folds a topic so that cosmetic differences do
// not split a session in two. The normalized form is part of the group key
// contract.
func NormalizeTopic(topic string) string {
	return strings.ToLower(strings.TrimSpace(topic))
}

// scheduleKey truncates a schedule to minute resolution. Records inserted a
// few seconds apart in the same batch land in the same minute and therefore
// the same session; this is a deliberate tolerance, not a precise equality
// check.
func scheduleKey(at null.Time) string {
	if !at.Valid {
		return unscheduledKey
	}
	return at.Time.UTC().Truncate(time.Minute).Format(scheduleKeyLayout)
}

// GroupKey derives the composite key tying a Record to its session.
func (r Record) GroupKey() string {
	return fmt.Sprintf("%s|%d|%s|%s", r.MonitorID, r.DisciplineID, scheduleKey(r.ScheduledAt), NormalizeTopic(r.Topic))
}

// SameGroup reports whether two records belong to the same derived session.
func SameGroup(a, b Record) bool {
	return a.GroupKey() == b.GroupKey()
}

// GroupRecords folds a flat list of records into derived sessions. It is a
// pure function: no I/O, deterministic for identical input. Groups come out
// in first-seen order of their keys; callers wanting a particular order must
// order the input records. The representative id is the smallest member id
// regardless of input order. Students are deduplicated by id (first
// occurrence wins) so duplicate rows cannot crash callers; scalar fields are
// copied from the first member seen.
func GroupRecords(records []Record) []SessionGroup {
	groups := make([]SessionGroup, 0)
	idx := make(map[string]int, len(records)) // group key -> index in groups

	for _, rec := range records {
		key := rec.GroupKey()
		i, ok := idx[key]
		if !ok {
			groups = append(groups, SessionGroup{
				RepresentativeID: rec.ID,
				GroupKey:         key,
				DisciplineID:     rec.DisciplineID,
				DisciplineName:   rec.DisciplineName,
				MonitorID:        rec.MonitorID,
				MonitorName:      rec.MonitorName,
				Topic:            rec.Topic,
				ScheduledAt:      rec.ScheduledAt,
				Status:           rec.Status,
			})
			i = len(groups) - 1
			idx[key] = i
		}

		g := &groups[i]
		if rec.ID < g.RepresentativeID {
			g.RepresentativeID = rec.ID
		}
		g.MemberIDs = append(g.MemberIDs, rec.ID)
		g.addStudent(rec.StudentID, rec.StudentName)
	}
	return groups
}

// addStudent appends a student unless one with the same id is already a
// member.
func (g *SessionGroup) addStudent(id, name string) {
	for _, st := range g.Students {
		if st.ID == id {
			return
		}
	}
	g.Students = append(g.Students, Student{ID: id, Name: name})
}
