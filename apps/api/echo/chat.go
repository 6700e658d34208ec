package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/monitoria/core/chat"
	"github.com/trezcool/monitoria/core/user"
)

type chatApi struct {
	svc    chat.Service
	usrSvc user.Service
}

func registerChatAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc chat.Service, usrSvc user.Service) {
	api := chatApi{svc: svc, usrSvc: usrSvc}

	cg := g.Group("/chat/:userID", jwt)
	cg.GET("", api.conversation)
	cg.POST("", api.send)
}

// Handlers

func (api *chatApi) conversation(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	msgs, err := api.svc.Conversation(ctx.Request().Context(), ctxUsr.ID, ctx.Param("userID"))
	if err != nil {
		return errors.Wrap(err, "querying conversation")
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *chatApi) send(ctx echo.Context) error {
	var data chat.NewMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	msg, err := api.svc.Send(ctx.Request().Context(), ctxUsr, ctx.Param("userID"), data)
	if err != nil {
		return errors.Wrap(err, "sending message")
	}
	return ctx.JSON(http.StatusCreated, msg)
}
