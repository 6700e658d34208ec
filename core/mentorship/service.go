package mentorship

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/monitoria/core"
	"github.com/trezcool/monitoria/core/discipline"
	"github.com/trezcool/monitoria/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("session not found")
)

type (
	Repository interface {
		GetRecord(ctx context.Context, id int) (Record, error)
		// QueryAllRecords returns records ordered by schedule descending
		// (unscheduled last), then monitor, discipline and id ascending.
		QueryAllRecords(ctx context.Context) ([]Record, error)
		FilterRecords(ctx context.Context, filter QueryFilter) ([]Record, error)
		// QueryGroupScope returns all records matching the monitor, discipline
		// and normalized topic. This is a broader filter than group
		// membership: the minute-truncation equality check is applied in
		// application code.
		QueryGroupScope(ctx context.Context, monitorID string, disciplineID int, topic string) ([]Record, error)
		CreateRecord(ctx context.Context, rec Record) (Record, error)
		UpdateRecord(ctx context.Context, rec Record) (Record, error)
		DeleteRecordsByID(ctx context.Context, ids ...int) error
		CountByStatus(ctx context.Context) (map[string]int, error)
		CountByDiscipline(ctx context.Context) ([]DisciplineCount, error)
		// Atomic runs fn against a transaction-bound Repository. Any error
		// from fn rolls the whole transaction back; nothing is visible to
		// other callers until commit.
		Atomic(ctx context.Context, fn func(Repository) error) error
	}

	Service interface {
		Query(ctx context.Context, filter *QueryFilter) ([]SessionGroup, error)
		Get(ctx context.Context, representativeID int) (SessionGroup, error)
		Create(ctx context.Context, ns NewSession) (SessionGroup, error)
		Update(ctx context.Context, representativeID int, us UpdateSession) (SessionGroup, error)
		Delete(ctx context.Context, representativeID int) error
		Stats(ctx context.Context) (Stats, error)
	}

	service struct {
		repo    Repository
		usrSvc  user.Service
		discSvc discipline.Service
		logger  core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrSvc user.Service, discSvc discipline.Service, logger core.Logger) Service {
	return &service{
		repo:    repo,
		usrSvc:  usrSvc,
		discSvc: discSvc,
		logger:  logger,
	}
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter) ([]SessionGroup, error) {
	var recs []Record
	var err error
	if filter == nil || filter.IsEmpty() {
		recs, err = svc.repo.QueryAllRecords(ctx)
	} else {
		recs, err = svc.repo.FilterRecords(ctx, *filter)
	}
	if err != nil {
		return nil, err
	}
	return GroupRecords(recs), nil
}

func (svc *service) Get(ctx context.Context, representativeID int) (SessionGroup, error) {
	members, err := svc.groupMembers(ctx, svc.repo, representativeID)
	if err != nil {
		return SessionGroup{}, err
	}
	return GroupRecords(members)[0], nil
}

func (svc *service) Create(ctx context.Context, ns NewSession) (SessionGroup, error) {
	if err := ns.Validate(); err != nil {
		return SessionGroup{}, err
	}

	disc, err := svc.discSvc.GetByID(ctx, ns.DisciplineID)
	if err != nil {
		if errors.Cause(err) == discipline.ErrNotFound {
			return SessionGroup{}, core.NewValidationError(err, core.FieldError{Field: "discipline_id", Error: "unknown discipline"})
		}
		return SessionGroup{}, errors.Wrap(err, "finding discipline")
	}

	monitor, err := svc.getMonitor(ctx, ns.MonitorID)
	if err != nil {
		return SessionGroup{}, err
	}
	students, err := svc.getStudents(ctx, ns.StudentIDs)
	if err != nil {
		return SessionGroup{}, err
	}

	status := ns.Status
	if status == "" {
		status = StatusConfirmed
	}
	now := time.Now().UTC()

	created := make([]Record, 0, len(students))
	err = svc.repo.Atomic(ctx, func(repo Repository) error {
		for _, st := range students {
			rec, err := repo.CreateRecord(ctx, Record{
				DisciplineID:   disc.ID,
				DisciplineName: disc.Name,
				MonitorID:      monitor.ID,
				MonitorName:    monitor.Name,
				StudentID:      st.ID,
				StudentName:    st.Name,
				Topic:          ns.Topic,
				ScheduledAt:    nullTime(ns.ScheduledAt.UTC()),
				Status:         status,
				CreatedAt:      now,
				UpdatedAt:      now,
			})
			if err != nil {
				return err
			}
			created = append(created, rec)
		}
		return nil
	})
	if err != nil {
		return SessionGroup{}, err
	}
	return GroupRecords(created)[0], nil
}

func (svc *service) Update(ctx context.Context, representativeID int, us UpdateSession) (SessionGroup, error) {
	if err := us.Validate(); err != nil {
		return SessionGroup{}, err
	}

	desired := dedupe(us.StudentIDs)
	now := time.Now().UTC()
	scheduledAt := nullTime(us.ScheduledAt.UTC())

	var members []Record
	err := svc.repo.Atomic(ctx, func(repo Repository) error {
		orig, err := svc.groupMembers(ctx, repo, representativeID)
		if err != nil {
			return err
		}
		// monitor & discipline are carried over from the existing group; they
		// cannot be changed by an update.
		first := orig[0]

		origByStudent := make(map[string]Record, len(orig))
		for _, rec := range orig {
			origByStudent[rec.StudentID] = rec
		}
		keep := make(map[string]bool, len(desired))
		for _, sid := range desired {
			keep[sid] = true
		}

		// drop members no longer on the roster
		var delIDs []int
		for _, rec := range orig {
			if !keep[rec.StudentID] {
				delIDs = append(delIDs, rec.ID)
			}
		}
		if len(delIDs) > 0 {
			if err := repo.DeleteRecordsByID(ctx, delIDs...); err != nil {
				return err
			}
		}

		members = members[:0]
		for _, sid := range desired {
			if rec, ok := origByStudent[sid]; ok {
				// update in place, preserving the row id so per-student
				// history keyed on it survives the edit
				rec.Topic = us.Topic
				rec.ScheduledAt = scheduledAt
				rec.Status = us.Status
				rec.UpdatedAt = now
				rec, err := repo.UpdateRecord(ctx, rec)
				if err != nil {
					return err
				}
				members = append(members, rec)
				continue
			}

			st, err := svc.getStudent(ctx, sid)
			if err != nil {
				return err
			}
			rec, err := repo.CreateRecord(ctx, Record{
				DisciplineID:   first.DisciplineID,
				DisciplineName: first.DisciplineName,
				MonitorID:      first.MonitorID,
				MonitorName:    first.MonitorName,
				StudentID:      st.ID,
				StudentName:    st.Name,
				Topic:          us.Topic,
				ScheduledAt:    scheduledAt,
				Status:         us.Status,
				CreatedAt:      now,
				UpdatedAt:      now,
			})
			if err != nil {
				return err
			}
			members = append(members, rec)
		}
		return nil
	})
	if err != nil {
		return SessionGroup{}, err
	}

	sortMembers(members)
	return GroupRecords(members)[0], nil
}

func (svc *service) Delete(ctx context.Context, representativeID int) error {
	members, err := svc.groupMembers(ctx, svc.repo, representativeID)
	if err != nil {
		return err
	}
	ids := make([]int, 0, len(members))
	for _, rec := range members {
		ids = append(ids, rec.ID)
	}
	return svc.repo.Atomic(ctx, func(repo Repository) error {
		return repo.DeleteRecordsByID(ctx, ids...)
	})
}

func (svc *service) Stats(ctx context.Context) (Stats, error) {
	byStatus, err := svc.repo.CountByStatus(ctx)
	if err != nil {
		return Stats{}, err
	}
	byDiscipline, err := svc.repo.CountByDiscipline(ctx)
	if err != nil {
		return Stats{}, err
	}
	var total int
	for _, n := range byStatus {
		total += n
	}
	return Stats{Total: total, ByStatus: byStatus, ByDiscipline: byDiscipline}, nil
}

// groupMembers reconstructs the full member list of the session that
// representativeID belongs to. It fetches the representative record, queries
// the broader (monitor, discipline, topic) scope and finalizes membership
// with the minute-truncation equality check in application code. Members come
// back ordered by student id for predictable diffing.
func (svc *service) groupMembers(ctx context.Context, repo Repository, representativeID int) ([]Record, error) {
	rep, err := repo.GetRecord(ctx, representativeID)
	if err != nil {
		return nil, err
	}

	scope, err := repo.QueryGroupScope(ctx, rep.MonitorID, rep.DisciplineID, rep.Topic)
	if err != nil {
		return nil, err
	}

	members := make([]Record, 0, len(scope))
	for _, rec := range scope {
		if SameGroup(rep, rec) {
			members = append(members, rec)
		}
	}
	if len(members) == 0 {
		// the representative must at least match itself
		svc.logger.Error(
			fmt.Sprintf("mentorship: record %d matches no group members; storage is inconsistent", representativeID),
			errors.Errorf("empty group for record %d", representativeID),
		)
		return nil, ErrNotFound
	}

	sortMembers(members)
	return members, nil
}

func (svc *service) getMonitor(ctx context.Context, id string) (user.User, error) {
	usr, err := svc.usrSvc.GetByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, core.NewValidationError(err, core.FieldError{Field: "monitor_id", Error: "unknown monitor"})
		}
		return user.User{}, errors.Wrap(err, "finding monitor")
	}
	if !usr.IsMonitor() {
		return user.User{}, core.NewValidationError(nil, core.FieldError{Field: "monitor_id", Error: "user is not a monitor"})
	}
	return usr, nil
}

func (svc *service) getStudent(ctx context.Context, id string) (user.User, error) {
	usr, err := svc.usrSvc.GetByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, core.NewValidationError(err, core.FieldError{Field: "student_ids", Error: "unknown student: " + id})
		}
		return user.User{}, errors.Wrap(err, "finding student")
	}
	return usr, nil
}

func (svc *service) getStudents(ctx context.Context, ids []string) ([]user.User, error) {
	ids = dedupe(ids)
	students := make([]user.User, 0, len(ids))
	for _, id := range ids {
		usr, err := svc.getStudent(ctx, id)
		if err != nil {
			return nil, err
		}
		students = append(students, usr)
	}
	return students, nil
}

func sortMembers(recs []Record) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].StudentID != recs[j].StudentID {
			return recs[i].StudentID < recs[j].StudentID
		}
		return recs[i].ID < recs[j].ID
	})
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
