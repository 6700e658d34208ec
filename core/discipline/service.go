package discipline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/monitoria/core"
)

var (
	// errors
	ErrNotFound   = errors.New("discipline not found")
	ErrCodeExists = errors.New("a discipline with this code already exists")
)

type (
	Repository interface {
		CheckCodeUniqueness(ctx context.Context, code string) error
		CreateDiscipline(ctx context.Context, disc Discipline) (Discipline, error)
		QueryAllDisciplines(ctx context.Context) ([]Discipline, error)
		GetDisciplineByID(ctx context.Context, id int) (Discipline, error)
		UpdateDiscipline(ctx context.Context, disc Discipline) (Discipline, error)
		DeleteDisciplinesByID(ctx context.Context, ids ...int) error
	}

	Service interface {
		CheckCodeUniqueness(ctx context.Context, code string) error
		Create(ctx context.Context, nd NewDiscipline) (Discipline, error)
		QueryAll(ctx context.Context) ([]Discipline, error)
		GetByID(ctx context.Context, id int) (Discipline, error)
		Update(ctx context.Context, id int, ud UpdateDiscipline) (Discipline, error)
		Delete(ctx context.Context, ids ...int) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckCodeUniqueness(ctx context.Context, code string) error {
	if err := svc.repo.CheckCodeUniqueness(ctx, code); err != nil {
		if errors.Cause(err) == ErrCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nd NewDiscipline) (Discipline, error) {
	now := time.Now().UTC()
	return svc.repo.CreateDiscipline(ctx, Discipline{
		Code:      nd.Code,
		Name:      nd.Name,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) QueryAll(ctx context.Context) ([]Discipline, error) {
	return svc.repo.QueryAllDisciplines(ctx)
}

func (svc *service) GetByID(ctx context.Context, id int) (Discipline, error) {
	return svc.repo.GetDisciplineByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id int, ud UpdateDiscipline) (Discipline, error) {
	return svc.repo.UpdateDiscipline(ctx, Discipline{
		ID:        id,
		Code:      ud.Code,
		Name:      ud.Name,
		UpdatedAt: time.Now().UTC(),
	})
}

func (svc *service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteDisciplinesByID(ctx, ids...)
}
