package discipline

import (
	"context"
	"time"

	"github.com/trezcool/monitoria/core"
)

// Discipline is a subject that tutoring sessions are held in.
type Discipline struct {
	ID        int       `json:"id" db:"id"`
	Code      string    `json:"code" db:"code"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// NewDiscipline contains information needed to create a new Discipline.
type NewDiscipline struct {
	Code string `json:"code" validate:"required,max=16"`
	Name string `json:"name" validate:"required"`
}

func (nd *NewDiscipline) Validate(ctx context.Context, svc Service) error {
	nd.Code = core.CleanString(nd.Code, true /* lower */)
	nd.Name = core.CleanString(nd.Name)
	if err := core.Validate.Struct(nd); err != nil {
		return err
	}
	return svc.CheckCodeUniqueness(ctx, nd.Code)
}

// UpdateDiscipline defines what may be changed on an existing Discipline.
type UpdateDiscipline struct {
	Code string `json:"code" validate:"omitempty,max=16"`
	Name string `json:"name"`
}

func (ud *UpdateDiscipline) Validate(ctx context.Context, orig Discipline, svc Service) error {
	code := core.CleanString(ud.Code, true /* lower */)
	if code != "" {
		ud.Code = code
	} else {
		ud.Code = orig.Code
	}

	name := core.CleanString(ud.Name)
	if name != "" {
		ud.Name = name
	} else {
		ud.Name = orig.Name
	}

	if err := core.Validate.Struct(ud); err != nil {
		return err
	}
	if ud.Code != orig.Code {
		return svc.CheckCodeUniqueness(ctx, ud.Code)
	}
	return nil
}
