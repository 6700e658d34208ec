package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/monitoria/core/mentorship"
	"github.com/trezcool/monitoria/core/user"
)

type sessionApi struct {
	svc    mentorship.Service
	usrSvc user.Service
}

func registerSessionAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc mentorship.Service, usrSvc user.Service) {
	api := sessionApi{svc: svc, usrSvc: usrSvc}

	sg := g.Group("/sessions", jwt)
	sg.GET("", api.query)
	sg.GET("/stats", api.stats)
	sg.POST("", api.create, monitorOrAdminMiddleware())

	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, monitorOrAdminMiddleware())
	dg.DELETE("", api.destroy, monitorOrAdminMiddleware())
}

// Handlers

func (api *sessionApi) query(ctx echo.Context) error {
	filter := new(mentorship.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []mentorship.SessionGroup{})
	}
	filter.Clean()

	groups, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	if groups == nil {
		groups = []mentorship.SessionGroup{}
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *sessionApi) retrieve(ctx echo.Context) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}
	group, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}
	return ctx.JSON(http.StatusOK, group)
}

func (api *sessionApi) create(ctx echo.Context) error {
	var data mentorship.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}

	// a monitor can only schedule their own sessions
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !ctxUsr.IsAdmin() && data.MonitorID != ctxUsr.ID {
		return errHttpForbidden
	}

	group, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating session")
	}
	return ctx.JSON(http.StatusCreated, group)
}

func (api *sessionApi) update(ctx echo.Context) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	var data mentorship.UpdateSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSession")
	}

	if err := api.checkOwnership(ctx, id); err != nil {
		return err
	}

	group, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating session")
	}
	return ctx.JSON(http.StatusOK, group)
}

func (api *sessionApi) destroy(ctx echo.Context) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	if err := api.checkOwnership(ctx, id); err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *sessionApi) stats(ctx echo.Context) error {
	stats, err := api.svc.Stats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting session stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

// checkOwnership lets admins edit any session; monitors only their own.
func (api *sessionApi) checkOwnership(ctx echo.Context, id int) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if ctxUsr.IsAdmin() {
		return nil
	}
	group, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}
	if group.MonitorID != ctxUsr.ID {
		return errHttpForbidden
	}
	return nil
}

func sessionID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}
