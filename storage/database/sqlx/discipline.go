package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/monitoria/core"
	"github.com/trezcool/monitoria/core/discipline"
)

type disciplineRepository struct {
	db *sqlx.DB
	q  sqlx.ExtContext
}

var _ discipline.Repository = (*disciplineRepository)(nil)

func NewDisciplineRepository(db *sqlx.DB) discipline.Repository {
	return &disciplineRepository{db: db, q: db}
}

const selectDiscipline = `SELECT id, code, name, created_at, updated_at FROM discipline`

func (repo *disciplineRepository) CheckCodeUniqueness(ctx context.Context, code string) error {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM discipline WHERE code = $1)`
	if err := sqlx.GetContext(ctx, repo.q, &exists, query, code); err != nil {
		return core.NewStorageError("checking discipline code uniqueness", err)
	}
	if exists {
		return discipline.ErrCodeExists
	}
	return nil
}

func (repo *disciplineRepository) CreateDiscipline(ctx context.Context, disc discipline.Discipline) (discipline.Discipline, error) {
	query := `INSERT INTO discipline (code, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := sqlx.GetContext(ctx, repo.q, &disc.ID, query, disc.Code, disc.Name, disc.CreatedAt, disc.UpdatedAt)
	if err != nil {
		return discipline.Discipline{}, core.NewStorageError("creating discipline", err)
	}
	return disc, nil
}

func (repo *disciplineRepository) QueryAllDisciplines(ctx context.Context) ([]discipline.Discipline, error) {
	var discs []discipline.Discipline
	if err := sqlx.SelectContext(ctx, repo.q, &discs, selectDiscipline+` ORDER BY name`); err != nil {
		return nil, core.NewStorageError("querying disciplines", err)
	}
	return discs, nil
}

func (repo *disciplineRepository) GetDisciplineByID(ctx context.Context, id int) (discipline.Discipline, error) {
	var disc discipline.Discipline
	if err := sqlx.GetContext(ctx, repo.q, &disc, selectDiscipline+` WHERE id = $1`, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return discipline.Discipline{}, discipline.ErrNotFound
		}
		return discipline.Discipline{}, core.NewStorageError("getting discipline", err)
	}
	return disc, nil
}

func (repo *disciplineRepository) UpdateDiscipline(ctx context.Context, disc discipline.Discipline) (discipline.Discipline, error) {
	set := []string{"updated_at = $2"}
	args := []interface{}{disc.ID, disc.UpdatedAt}
	add := func(column string, v interface{}) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if disc.Code != "" {
		add("code", disc.Code)
	}
	if disc.Name != "" {
		add("name", disc.Name)
	}

	query := fmt.Sprintf(`UPDATE discipline SET %s WHERE id = $1`, strings.Join(set, ", "))
	res, err := repo.q.ExecContext(ctx, query, args...)
	if err != nil {
		return discipline.Discipline{}, core.NewStorageError("updating discipline", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return discipline.Discipline{}, discipline.ErrNotFound
	}
	return repo.GetDisciplineByID(ctx, disc.ID)
}

func (repo *disciplineRepository) DeleteDisciplinesByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.q.ExecContext(ctx, `DELETE FROM discipline WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return core.NewStorageError("deleting disciplines", err)
	}
	return nil
}
