package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/mroldanv/presente/core"
	"github.com/mroldanv/presente/core/account"
	"github.com/mroldanv/presente/core/course"
	"github.com/mroldanv/presente/core/session"
	"github.com/mroldanv/presente/core/student"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool
		Logger         core.Logger
		AccountSvc     *account.Service
		StudentSvc     *student.Service
		CourseSvc      *course.Service
		SessionSvc     *session.Service
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan os.Signal, 1),
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

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerAccountAPI(v1, jwt, s.opts.AccountSvc)
	registerStudentAPI(v1, jwt, s.opts.StudentSvc)
	registerCourseAPI(v1, jwt, s.opts.CourseSvc, s.opts.SessionSvc)
	registerSessionAPI(v1, jwt, s.opts.SessionSvc)
}

// Start runs the server until a fatal error or a shutdown signal, then drains
// in-flight requests before returning.
func (s *server) Start() {
	errs := make(chan error, 1)
	go func() {
		errs <- s.app.Start(s.opts.Address)
	}()

	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errs:
		s.app.Logger.Fatal(err)
	case sig := <-s.shutdown:
		s.app.Logger.Infof("%v: shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.app.Shutdown(ctx); err != nil {
			s.app.Logger.Fatal(err)
		}
	}
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Presente API!")
}
