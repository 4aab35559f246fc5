package echoapi

import (
	"context"
	"net/http"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/archive"
	"github.com/supinter/ums/core/catalog"
	"github.com/supinter/ums/core/dashboard"
	"github.com/supinter/ums/core/finance"
	"github.com/supinter/ums/core/grade"
	"github.com/supinter/ums/core/staff"
	"github.com/supinter/ums/core/student"
	"github.com/supinter/ums/core/user"
	"github.com/supinter/ums/services/metrics"
	"github.com/supinter/ums/services/ratelimit"
)

const apiMessage = "SUP'INTER University Management System API"

type (
	Options struct {
		Address        string
		DisableReqLogs bool
		Shutdown       chan<- struct{}
	}

	// Deps holds the services the API is served from.
	Deps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
		Limiter    ratelimit.Limiter
		Metrics    *metrics.Metrics
		MailSvc    core.EmailService

		UserSvc      user.Service
		CatalogSvc   *catalog.Service
		StudentSvc   *student.Service
		StaffSvc     *staff.Service
		GradeSvc     *grade.Service
		FinanceSvc   *finance.Service
		ArchiveSvc   *archive.Service
		DashboardSvc *dashboard.Service
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		deps *Deps
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options, deps *Deps) Server {
	vala.BeginValidation().Validate(
		vala.IsNotNil(opts, "opts"),
		vala.IsNotNil(deps, "deps"),
		vala.IsNotNil(deps.Conf, "deps.Conf"),
		vala.IsNotNil(deps.Logger, "deps.Logger"),
		vala.IsNotNil(deps.Validate, "deps.Validate"),
		vala.IsNotNil(deps.Translator, "deps.Translator"),
		vala.IsNotNil(deps.MailSvc, "deps.MailSvc"),
		vala.IsNotNil(deps.UserSvc, "deps.UserSvc"),
		vala.IsNotNil(deps.CatalogSvc, "deps.CatalogSvc"),
		vala.IsNotNil(deps.StudentSvc, "deps.StudentSvc"),
		vala.IsNotNil(deps.StaffSvc, "deps.StaffSvc"),
		vala.IsNotNil(deps.GradeSvc, "deps.GradeSvc"),
		vala.IsNotNil(deps.FinanceSvc, "deps.FinanceSvc"),
		vala.IsNotNil(deps.ArchiveSvc, "deps.ArchiveSvc"),
		vala.IsNotNil(deps.DashboardSvc, "deps.DashboardSvc"),
	).CheckAndPanic()

	s := &server{
		opts: opts,
		deps: deps,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestID())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	if s.deps.Metrics != nil {
		s.app.Use(metricsMiddleware(s.deps.Metrics))
		s.app.GET("/metrics", echo.WrapHandler(s.deps.Metrics.Handler()))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: conf.Server.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	var shutdown func()
	if s.opts.Shutdown != nil {
		shutdown = func() { s.opts.Shutdown <- struct{}{} }
	}
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, shutdown)
	s.app.Debug = conf.Debug

	// public endpoints are registered on `api`, the others on `authed`.
	// `authed` catches every unmatched /api path: register public routes after it.
	api := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(jwtConfig(conf))
	authed := api.Group("", jwt, activeUserMiddleware(s.deps.UserSvc))

	api.GET("", home)
	api.GET("/health", health)

	registerUserAPI(api, authed, s.deps)
	registerCatalogAPI(api, authed, s.deps)
	registerStudentAPI(authed, s.deps)
	registerStaffAPI(authed, s.deps)
	registerGradeAPI(authed, s.deps)
	registerFinanceAPI(authed, s.deps)
	registerArchiveAPI(authed, s.deps)
	registerDashboardAPI(authed, s.deps)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, MessageResponse{Message: apiMessage})
}

func health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"status":    "healthy",
		"timestamp": core.NowFunc().UTC().Format(time.RFC3339),
	})
}
