package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/monitoria/core"
	"github.com/trezcool/monitoria/core/mentorship"
)

type mentorshipRepository struct {
	db *sqlx.DB
	q  sqlx.ExtContext // db, or tx when transaction-bound
}

var _ mentorship.Repository = (*mentorshipRepository)(nil)

func NewMentorshipRepository(db *sqlx.DB) mentorship.Repository {
	return &mentorshipRepository{db: db, q: db}
}

const selectRecord = `SELECT id, discipline_id, discipline_name, monitor_id, monitor_name, student_id, student_name,
	topic, scheduled_at, status, created_at, updated_at FROM mentorship_record`

// recordOrder keeps listings stable: scheduled sessions newest first,
// unscheduled ones last, members of a group adjacent.
const recordOrder = ` ORDER BY scheduled_at DESC NULLS LAST, monitor_id, discipline_id, id`

func (repo *mentorshipRepository) GetRecord(ctx context.Context, id int) (mentorship.Record, error) {
	var rec mentorship.Record
	if err := sqlx.GetContext(ctx, repo.q, &rec, selectRecord+` WHERE id = $1`, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return mentorship.Record{}, mentorship.ErrNotFound
		}
		return mentorship.Record{}, core.NewStorageError("getting mentorship record", err)
	}
	return rec, nil
}

func (repo *mentorshipRepository) QueryAllRecords(ctx context.Context) ([]mentorship.Record, error) {
	return repo.queryRecords(ctx, selectRecord+recordOrder)
}

func (repo *mentorshipRepository) FilterRecords(ctx context.Context, filter mentorship.QueryFilter) ([]mentorship.Record, error) {
	return repo.queryRecords(ctx, selectRecord+` WHERE monitor_id = $1`+recordOrder, filter.MonitorID)
}

func (repo *mentorshipRepository) QueryGroupScope(ctx context.Context, monitorID string, disciplineID int, topic string) ([]mentorship.Record, error) {
	query := selectRecord + ` WHERE monitor_id = $1 AND discipline_id = $2 AND lower(btrim(topic)) = lower(btrim($3)) ORDER BY id`
	return repo.queryRecords(ctx, query, monitorID, disciplineID, topic)
}

func (repo *mentorshipRepository) CreateRecord(ctx context.Context, rec mentorship.Record) (mentorship.Record, error) {
	query := `INSERT INTO mentorship_record
		(discipline_id, discipline_name, monitor_id, monitor_name, student_id, student_name, topic, scheduled_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	err := sqlx.GetContext(ctx, repo.q, &rec.ID, query,
		rec.DisciplineID, rec.DisciplineName, rec.MonitorID, rec.MonitorName, rec.StudentID, rec.StudentName,
		rec.Topic, rec.ScheduledAt, rec.Status, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return mentorship.Record{}, core.NewStorageError("creating mentorship record", err)
	}
	return rec, nil
}

func (repo *mentorshipRepository) UpdateRecord(ctx context.Context, rec mentorship.Record) (mentorship.Record, error) {
	query := `UPDATE mentorship_record
		SET topic = $2, scheduled_at = $3, status = $4, updated_at = $5
		WHERE id = $1`
	res, err := repo.q.ExecContext(ctx, query, rec.ID, rec.Topic, rec.ScheduledAt, rec.Status, rec.UpdatedAt)
	if err != nil {
		return mentorship.Record{}, core.NewStorageError("updating mentorship record", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return mentorship.Record{}, mentorship.ErrNotFound
	}
	return rec, nil
}

func (repo *mentorshipRepository) DeleteRecordsByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.q.ExecContext(ctx, `DELETE FROM mentorship_record WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return core.NewStorageError("deleting mentorship records", err)
	}
	return nil
}

func (repo *mentorshipRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := repo.q.QueryxContext(ctx, `SELECT status, count(*) FROM mentorship_record GROUP BY status`)
	if err != nil {
		return nil, core.NewStorageError("counting records by status", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, core.NewStorageError("counting records by status", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("counting records by status", err)
	}
	return counts, nil
}

func (repo *mentorshipRepository) CountByDiscipline(ctx context.Context) ([]mentorship.DisciplineCount, error) {
	query := `SELECT discipline_id, discipline_name, count(*) AS count
		FROM mentorship_record
		GROUP BY discipline_id, discipline_name
		ORDER BY count DESC, discipline_name`
	var counts []mentorship.DisciplineCount
	if err := sqlx.SelectContext(ctx, repo.q, &counts, query); err != nil {
		return nil, core.NewStorageError("counting records by discipline", err)
	}
	return counts, nil
}

func (repo *mentorshipRepository) Atomic(ctx context.Context, fn func(mentorship.Repository) error) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.NewStorageError("beginning transaction", err)
	}
	if err := fn(&mentorshipRepository{db: repo.db, q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return core.NewStorageError("committing transaction", err)
	}
	return nil
}

func (repo *mentorshipRepository) queryRecords(ctx context.Context, query string, args ...interface{}) ([]mentorship.Record, error) {
	var recs []mentorship.Record
	if err := sqlx.SelectContext(ctx, repo.q, &recs, query, args...); err != nil {
		return nil, core.NewStorageError("querying mentorship records", err)
	}
	return recs, nil
}
