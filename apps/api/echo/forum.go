package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/monitoria/core/forum"
	"github.com/trezcool/monitoria/core/user"
)

type forumApi struct {
	svc    forum.Service
	usrSvc user.Service
}

func registerForumAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc forum.Service, usrSvc user.Service) {
	api := forumApi{svc: svc, usrSvc: usrSvc}

	fg := g.Group("/forum/threads", jwt)
	fg.GET("", api.query)
	fg.POST("", api.create)

	tg := fg.Group("/:id")
	tg.GET("", api.retrieve)
	tg.POST("/replies", api.reply)
}

// Handlers

func (api *forumApi) query(ctx echo.Context) error {
	threads, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying threads")
	}
	if threads == nil {
		threads = []forum.Thread{}
	}
	return ctx.JSON(http.StatusOK, threads)
}

func (api *forumApi) create(ctx echo.Context) error {
	var data forum.NewThread
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewThread")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	th, err := api.svc.CreateThread(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "creating thread")
	}
	return ctx.JSON(http.StatusCreated, th)
}

func (api *forumApi) retrieve(ctx echo.Context) error {
	id, err := threadID(ctx)
	if err != nil {
		return err
	}
	th, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting thread")
	}
	return ctx.JSON(http.StatusOK, th)
}

func (api *forumApi) reply(ctx echo.Context) error {
	id, err := threadID(ctx)
	if err != nil {
		return err
	}

	var data forum.NewReply
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReply")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	rep, err := api.svc.Reply(ctx.Request().Context(), id, ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "creating reply")
	}
	return ctx.JSON(http.StatusCreated, rep)
}

func threadID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}
