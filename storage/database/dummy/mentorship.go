package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/monitoria/core/mentorship"
)

// MentorshipRepository is the in-memory mentorship store. The hook fields let
// tests inject failures mid-transaction to exercise rollback behavior.
type MentorshipRepository struct {
	db *mentorshipTable

	CreateRecordHook func(rec mentorship.Record) error
	UpdateRecordHook func(rec mentorship.Record) error
	DeleteRecordHook func(ids ...int) error
}

var _ mentorship.Repository = (*MentorshipRepository)(nil) // interface compliance check

func NewMentorshipRepository(db *DB) *MentorshipRepository {
	return &MentorshipRepository{db: db.mentorship}
}

func (repo *MentorshipRepository) query() []mentorship.Record {
	recs := make([]mentorship.Record, 0, len(repo.db.table))
	for _, rec := range repo.db.table {
		recs = append(recs, *rec)
	}
	// scheduled sessions newest first, unscheduled last
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.ScheduledAt.Valid != b.ScheduledAt.Valid {
			return a.ScheduledAt.Valid
		}
		if a.ScheduledAt.Valid && !a.ScheduledAt.Time.Equal(b.ScheduledAt.Time) {
			return a.ScheduledAt.Time.After(b.ScheduledAt.Time)
		}
		if a.MonitorID != b.MonitorID {
			return a.MonitorID < b.MonitorID
		}
		if a.DisciplineID != b.DisciplineID {
			return a.DisciplineID < b.DisciplineID
		}
		return a.ID < b.ID
	})
	return recs
}

func (repo *MentorshipRepository) GetRecord(ctx context.Context, id int) (mentorship.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.table[id]; ok {
		return *rec, nil
	}
	return mentorship.Record{}, mentorship.ErrNotFound
}

func (repo *MentorshipRepository) QueryAllRecords(ctx context.Context) ([]mentorship.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *MentorshipRepository) FilterRecords(ctx context.Context, filter mentorship.QueryFilter) ([]mentorship.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	recs := make([]mentorship.Record, 0)
	for _, rec := range repo.query() {
		if rec.MonitorID == filter.MonitorID {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (repo *MentorshipRepository) QueryGroupScope(ctx context.Context, monitorID string, disciplineID int, topic string) ([]mentorship.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	topic = mentorship.NormalizeTopic(topic)
	recs := make([]mentorship.Record, 0)
	for _, rec := range repo.query() {
		if rec.MonitorID == monitorID && rec.DisciplineID == disciplineID && mentorship.NormalizeTopic(rec.Topic) == topic {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	return recs, nil
}

func (repo *MentorshipRepository) CreateRecord(ctx context.Context, rec mentorship.Record) (mentorship.Record, error) {
	if repo.CreateRecordHook != nil {
		if err := repo.CreateRecordHook(rec); err != nil {
			return mentorship.Record{}, err
		}
	}

	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pkCount++
	rec.ID = repo.db.pkCount
	repo.db.table[rec.ID] = &rec
	return rec, nil
}

func (repo *MentorshipRepository) UpdateRecord(ctx context.Context, rec mentorship.Record) (mentorship.Record, error) {
	if repo.UpdateRecordHook != nil {
		if err := repo.UpdateRecordHook(rec); err != nil {
			return mentorship.Record{}, err
		}
	}

	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[rec.ID]
	if !ok {
		return mentorship.Record{}, mentorship.ErrNotFound
	}
	orig.Topic = rec.Topic
	orig.ScheduledAt = rec.ScheduledAt
	orig.Status = rec.Status
	orig.UpdatedAt = rec.UpdatedAt
	return *orig, nil
}

func (repo *MentorshipRepository) DeleteRecordsByID(ctx context.Context, ids ...int) error {
	if repo.DeleteRecordHook != nil {
		if err := repo.DeleteRecordHook(ids...); err != nil {
			return err
		}
	}

	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func (repo *MentorshipRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	counts := make(map[string]int)
	for _, rec := range repo.db.table {
		counts[rec.Status]++
	}
	return counts, nil
}

func (repo *MentorshipRepository) CountByDiscipline(ctx context.Context) ([]mentorship.DisciplineCount, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	byID := make(map[int]*mentorship.DisciplineCount)
	for _, rec := range repo.db.table {
		if cnt, ok := byID[rec.DisciplineID]; ok {
			cnt.Count++
			continue
		}
		byID[rec.DisciplineID] = &mentorship.DisciplineCount{
			DisciplineID:   rec.DisciplineID,
			DisciplineName: rec.DisciplineName,
			Count:          1,
		}
	}

	counts := make([]mentorship.DisciplineCount, 0, len(byID))
	for _, cnt := range byID {
		counts = append(counts, *cnt)
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].DisciplineName < counts[j].DisciplineName
	})
	return counts, nil
}

// Atomic snapshots the table, runs fn against the same repository and restores
// the snapshot if fn fails. Isolation from concurrent writers is not provided;
// this exists so failure paths observe all-or-nothing semantics in tests.
func (repo *MentorshipRepository) Atomic(ctx context.Context, fn func(mentorship.Repository) error) error {
	repo.db.Lock()
	snapshot := make(map[int]*mentorship.Record, len(repo.db.table))
	for id, rec := range repo.db.table {
		cp := *rec
		snapshot[id] = &cp
	}
	pkCount := repo.db.pkCount
	repo.db.Unlock()

	if err := fn(repo); err != nil {
		repo.db.Lock()
		repo.db.table = snapshot
		repo.db.pkCount = pkCount
		repo.db.Unlock()
		return err
	}
	return nil
}
