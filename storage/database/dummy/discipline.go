package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/monitoria/core/discipline"
)

type disciplineRepository struct {
	db *disciplineTable
}

var _ discipline.Repository = (*disciplineRepository)(nil) // interface compliance check

func NewDisciplineRepository(db *DB) discipline.Repository {
	return &disciplineRepository{db: db.discipline}
}

func (repo *disciplineRepository) CheckCodeUniqueness(ctx context.Context, code string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, disc := range repo.db.table {
		if disc.Code == code {
			return discipline.ErrCodeExists
		}
	}
	return nil
}

func (repo *disciplineRepository) CreateDiscipline(ctx context.Context, disc discipline.Discipline) (discipline.Discipline, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pkCount++
	disc.ID = repo.db.pkCount
	repo.db.table[disc.ID] = &disc
	return disc, nil
}

func (repo *disciplineRepository) QueryAllDisciplines(ctx context.Context) ([]discipline.Discipline, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	discs := make([]discipline.Discipline, 0, len(repo.db.table))
	for _, disc := range repo.db.table {
		discs = append(discs, *disc)
	}
	sort.Slice(discs, func(i, j int) bool { return discs[i].Name < discs[j].Name })
	return discs, nil
}

func (repo *disciplineRepository) GetDisciplineByID(ctx context.Context, id int) (discipline.Discipline, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if disc, ok := repo.db.table[id]; ok {
		return *disc, nil
	}
	return discipline.Discipline{}, discipline.ErrNotFound
}

func (repo *disciplineRepository) UpdateDiscipline(ctx context.Context, disc discipline.Discipline) (discipline.Discipline, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[disc.ID]
	if !ok {
		return discipline.Discipline{}, discipline.ErrNotFound
	}
	if disc.Code != "" {
		orig.Code = disc.Code
	}
	if disc.Name != "" {
		orig.Name = disc.Name
	}
	orig.UpdatedAt = disc.UpdatedAt
	return *orig, nil
}

func (repo *disciplineRepository) DeleteDisciplinesByID(ctx context.Context, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
