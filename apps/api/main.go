package main

import (
	"log"
	"os"

	echoapi "github.com/mroldanv/presente/apps/api/echo"
	"github.com/mroldanv/presente/core"
	"github.com/mroldanv/presente/core/account"
	"github.com/mroldanv/presente/core/course"
	"github.com/mroldanv/presente/core/session"
	"github.com/mroldanv/presente/core/student"
	logsvc "github.com/mroldanv/presente/services/logger"
	"github.com/mroldanv/presente/storage/jsondb"
)

func main() {
	// set up logger
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		core.Conf,
	)
	logger.Enable(!core.Conf.Debug)

	// set up store
	db, err := jsondb.Open(core.Conf)
	if err != nil {
		logger.Fatal("opening store", err)
	}

	// set up services
	courseRepo := jsondb.NewCourseRepository(db)
	studentRepo := jsondb.NewStudentRepository(db)
	acctSvc := account.NewService(jsondb.NewAccountRepository(db))
	studentSvc := student.NewService(studentRepo)
	courseSvc := course.NewService(courseRepo)
	sessionSvc := session.NewService(jsondb.NewSessionRepository(db), courseRepo, studentRepo)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Address:    core.Conf.Server.Addr,
			Logger:     logger,
			AccountSvc: acctSvc,
			StudentSvc: studentSvc,
			CourseSvc:  courseSvc,
			SessionSvc: sessionSvc,
		},
	)
	app.Start()
}
