package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/monitoria/core"
	"github.com/trezcool/monitoria/core/chat"
	"github.com/trezcool/monitoria/core/discipline"
	"github.com/trezcool/monitoria/core/forum"
	"github.com/trezcool/monitoria/core/mentorship"
	"github.com/trezcool/monitoria/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		UserSvc       user.Service
		MentorshipSvc mentorship.Service
		DisciplineSvc discipline.Service
		ForumSvc      forum.Service
		ChatSvc       chat.Service

		Logger core.Logger

		// Shutdown gracefully stops the app when an unrecoverable error is caught.
		Shutdown func()
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Shutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts.UserSvc)
	registerSessionAPI(v1, jwt, s.opts.MentorshipSvc, s.opts.UserSvc)
	registerDisciplineAPI(v1, jwt, s.opts.DisciplineSvc)
	registerForumAPI(v1, jwt, s.opts.ForumSvc, s.opts.UserSvc)
	registerChatAPI(v1, jwt, s.opts.ChatSvc, s.opts.UserSvc)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Monitoria API!")
}
