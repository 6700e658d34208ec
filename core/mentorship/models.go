package mentorship

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/monitoria/core"
)

// Session statuses
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusDone      = "done"
)

var AllStatuses = []string{StatusPending, StatusConfirmed, StatusCancelled, StatusDone}

// Record is one persisted row representing one student's participation in one
// tutoring session. There is no session table: sessions are derived by
// grouping records on (monitor, discipline, topic, minute-truncated schedule).
type Record struct {
	ID             int       `json:"id" db:"id"`
	DisciplineID   int       `json:"discipline_id" db:"discipline_id"`
	DisciplineName string    `json:"discipline_name" db:"discipline_name"`
	MonitorID      string    `json:"monitor_id" db:"monitor_id"`
	MonitorName    string    `json:"monitor_name" db:"monitor_name"`
	StudentID      string    `json:"student_id" db:"student_id"`
	StudentName    string    `json:"student_name" db:"student_name"`
	Topic          string    `json:"topic" db:"topic"`
	ScheduledAt    null.Time `json:"scheduled_at" db:"scheduled_at"`
	Status         string    `json:"status" db:"status"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"` // UTC
}

type Student struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SessionGroup is the logical, possibly multi-student, tutoring session
// derived from one or more Records sharing a group key. It is never persisted
// directly; it is re-derived from storage on every read.
type SessionGroup struct {
	RepresentativeID int       `json:"id"` // smallest member Record.ID; external handle for the group
	GroupKey         string    `json:"-"`
	MemberIDs        []int     `json:"member_ids"`
	Students         []Student `json:"students"`
	DisciplineID     int       `json:"discipline_id"`
	DisciplineName   string    `json:"discipline_name"`
	MonitorID        string    `json:"monitor_id"`
	MonitorName      string    `json:"monitor_name"`
	Topic            string    `json:"topic"`
	ScheduledAt      null.Time `json:"scheduled_at"`
	Status           string    `json:"status"`
}

// NewSession contains information needed to schedule a new session.
type NewSession struct {
	DisciplineID int       `json:"discipline_id" validate:"required"`
	MonitorID    string    `json:"monitor_id" validate:"required"`
	StudentIDs   []string  `json:"student_ids" validate:"required,min=1,dive,required"`
	Topic        string    `json:"topic" validate:"required"`
	ScheduledAt  time.Time `json:"scheduled_at" validate:"required"`
	Status       string    `json:"status" validate:"omitempty,oneof=pending confirmed cancelled done"`
}

func (ns *NewSession) Validate() error {
	ns.Topic = core.CleanString(ns.Topic)
	return core.Validate.Struct(ns)
}

// UpdateSession defines what may be changed on an existing session. The
// monitor and discipline are deliberately not updatable: changing them means
// deleting and recreating the session.
type UpdateSession struct {
	StudentIDs  []string  `json:"student_ids" validate:"required,min=1,dive,required"`
	Topic       string    `json:"topic" validate:"required"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Status      string    `json:"status" validate:"required,oneof=pending confirmed cancelled done"`
}

func (us *UpdateSession) Validate() error {
	us.Topic = core.CleanString(us.Topic)
	return core.Validate.Struct(us)
}

type QueryFilter struct {
	MonitorID string `query:"monitor_id"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.MonitorID == ""
}

func (qf *QueryFilter) Clean() {
	qf.MonitorID = core.CleanString(qf.MonitorID)
}

func nullTime(t time.Time) null.Time {
	if t.IsZero() {
		return null.Time{}
	}
	return null.TimeFrom(t)
}

// Dashboard aggregates.
type (
	DisciplineCount struct {
		DisciplineID   int    `json:"discipline_id" db:"discipline_id"`
		DisciplineName string `json:"discipline_name" db:"discipline_name"`
		Count          int    `json:"count" db:"count"`
	}

	Stats struct {
		Total        int             `json:"total"`
		ByStatus     map[string]int  `json:"by_status"`
		ByDiscipline []DisciplineCount `json:"by_discipline"`
	}
)
