package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/monitoria/core/discipline"
)

type disciplineApi struct {
	svc discipline.Service
}

func registerDisciplineAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc discipline.Service) {
	api := disciplineApi{svc: svc}

	dg := g.Group("/disciplines", jwt)
	dg.GET("", api.query)
	dg.POST("", api.create, adminMiddleware())

	ig := dg.Group("/:id")
	ig.GET("", api.retrieve)
	ig.PUT("", api.update, adminMiddleware())
	ig.DELETE("", api.destroy, adminMiddleware())
}

// Handlers

func (api *disciplineApi) query(ctx echo.Context) error {
	discs, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying disciplines")
	}
	if discs == nil {
		discs = []discipline.Discipline{}
	}
	return ctx.JSON(http.StatusOK, discs)
}

func (api *disciplineApi) create(ctx echo.Context) error {
	var data discipline.NewDiscipline
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDiscipline")
	}
	if err := data.Validate(ctx.Request().Context(), api.svc); err != nil {
		return err
	}

	disc, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating discipline")
	}
	return ctx.JSON(http.StatusCreated, disc)
}

func (api *disciplineApi) retrieve(ctx echo.Context) error {
	id, err := disciplineID(ctx)
	if err != nil {
		return err
	}
	disc, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting discipline")
	}
	return ctx.JSON(http.StatusOK, disc)
}

func (api *disciplineApi) update(ctx echo.Context) error {
	id, err := disciplineID(ctx)
	if err != nil {
		return err
	}

	disc, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting discipline")
	}

	var data discipline.UpdateDiscipline
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDiscipline")
	}
	if err := data.Validate(ctx.Request().Context(), disc, api.svc); err != nil {
		return err
	}

	disc, err = api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating discipline")
	}
	return ctx.JSON(http.StatusOK, disc)
}

func (api *disciplineApi) destroy(ctx echo.Context) error {
	id, err := disciplineID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting discipline")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func disciplineID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}
