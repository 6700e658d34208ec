package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/monitoria/apps/api/echo"
	"github.com/trezcool/monitoria/core"
	"github.com/trezcool/monitoria/core/chat"
	"github.com/trezcool/monitoria/core/discipline"
	"github.com/trezcool/monitoria/core/forum"
	"github.com/trezcool/monitoria/core/mentorship"
	"github.com/trezcool/monitoria/core/user"
	emailsvc "github.com/trezcool/monitoria/services/email"
	logsvc "github.com/trezcool/monitoria/services/logger"
	"github.com/trezcool/monitoria/storage/database"
	sqlxrepos "github.com/trezcool/monitoria/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		core.Conf,
	)
	logger.Enable(!core.Conf.Debug)

	db, err := setUpDB()
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("failed to close DB", err)
		}
	}()

	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc)
	discSvc := discipline.NewService(sqlxrepos.NewDisciplineRepository(db))
	mentSvc := mentorship.NewService(sqlxrepos.NewMentorshipRepository(db), usrSvc, discSvc, logger)
	forumSvc := forum.NewService(sqlxrepos.NewForumRepository(db))
	chatSvc := chat.NewService(sqlxrepos.NewChatRepository(db), usrSvc)

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Address:       core.Conf.Server.Addr,
		UserSvc:       usrSvc,
		MentorshipSvc: mentSvc,
		DisciplineSvc: discSvc,
		ForumSvc:      forumSvc,
		ChatSvc:       chatSvc,
		Logger:        logger,
		Shutdown:      func() { shutdown <- syscall.SIGTERM },
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), core.Conf.Server.ShutdownTimeout)
	defer cancel()

	if err = server.Stop(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

func setUpDB() (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(core.Conf); err != nil {
		return nil, err
	}

	db, err := database.Open(core.Conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}
