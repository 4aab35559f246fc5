package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/supinter/ums/apps/api/echo"
	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/archive"
	"github.com/supinter/ums/core/catalog"
	"github.com/supinter/ums/core/dashboard"
	"github.com/supinter/ums/core/finance"
	"github.com/supinter/ums/core/grade"
	"github.com/supinter/ums/core/staff"
	"github.com/supinter/ums/core/student"
	"github.com/supinter/ums/core/user"
	emailsvc "github.com/supinter/ums/services/email"
	logsvc "github.com/supinter/ums/services/logger"
	"github.com/supinter/ums/services/metrics"
	"github.com/supinter/ums/services/ratelimit"
	"github.com/supinter/ums/storage/database"
	inmemdb "github.com/supinter/ums/storage/database/inmem"
	sqlxdb "github.com/supinter/ums/storage/database/sqlx"
)

type repositories struct {
	users     user.Repository
	catalog   catalog.Repository
	students  student.Repository
	staff     staff.Repository
	grades    grade.Repository
	finance   finance.Repository
	archives  archive.Repository
	closeFunc func() error
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger, err := logsvc.NewLogger(conf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setting up logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	repos, err := setUpRepositories(conf)
	if err != nil {
		logger.Fatal("setting up database", err)
	}
	defer func() {
		if err = repos.closeFunc(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	catalogSvc := catalog.NewService(repos.catalog)
	studentSvc := student.NewService(repos.students, catalogSvc)
	staffSvc := staff.NewService(repos.staff, catalogSvc)
	financeSvc := finance.NewService(repos.finance, studentSvc, catalogSvc)

	limiter, err := ratelimit.New(conf, time.Minute)
	if err != nil {
		logger.Fatal("setting up rate limiter", err)
	}

	// =========================================================================
	// Initialize App

	logger.Info("Application initializing", map[string]interface{}{"config": conf.String()})
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	grade.InitValidators(validate, translator)
	finance.InitValidators(validate, translator)
	archive.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error("debug server closed", err)
		}
	}()

	// =========================================================================
	// Start API Service

	shutdown := make(chan struct{}, 1)
	server := echoapi.NewServer(
		&echoapi.Options{
			Address:  conf.Server.Address(),
			Shutdown: shutdown,
		},
		&echoapi.Deps{
			Conf:         conf,
			Logger:       logger,
			Validate:     validate,
			Translator:   translator,
			Limiter:      limiter,
			Metrics:      metrics.New("ums"),
			MailSvc:      mailSvc,
			UserSvc:      user.NewService(repos.users, mailSvc, conf),
			CatalogSvc:   catalogSvc,
			StudentSvc:   studentSvc,
			StaffSvc:     staffSvc,
			GradeSvc:     grade.NewService(repos.grades, studentSvc, catalogSvc),
			FinanceSvc:   financeSvc,
			ArchiveSvc:   archive.NewService(repos.archives, studentSvc, staffSvc, catalogSvc),
			DashboardSvc: dashboard.NewService(studentSvc, staffSvc, catalogSvc, financeSvc),
		},
	)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API listening", map[string]interface{}{"address": conf.Server.Address()})
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	select {
	case err = <-serverErrors:
		if err != http.ErrServerClosed {
			logger.Error("server error", err)
		}

	case <-shutdown:
		logger.Warn("integrity issue: start shutdown...")
		stop(server, conf, logger)

	case sig := <-signals:
		logger.Info(fmt.Sprintf("%v: start shutdown...", sig))
		stop(server, conf, logger)
	}
}

// stop gives outstanding requests a deadline for completion.
func stop(server echoapi.Server, conf *core.Config, logger core.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.Error("could not stop server gracefully", err)
	}
}

func setUpRepositories(conf *core.Config) (*repositories, error) {
	if conf.Database.InMemory() {
		db := inmemdb.Open()
		return &repositories{
			users:     inmemdb.NewUserRepository(db),
			catalog:   inmemdb.NewCatalogRepository(db),
			students:  inmemdb.NewStudentRepository(db),
			staff:     inmemdb.NewStaffRepository(db),
			grades:    inmemdb.NewGradeRepository(db),
			finance:   inmemdb.NewFinanceRepository(db),
			archives:  inmemdb.NewArchiveRepository(db),
			closeFunc: func() error { return nil },
		}, nil
	}

	db, err := setUpDB(conf)
	if err != nil {
		return nil, err
	}
	return &repositories{
		users:     sqlxdb.NewUserRepository(db),
		catalog:   sqlxdb.NewCatalogRepository(db),
		students:  sqlxdb.NewStudentRepository(db),
		staff:     sqlxdb.NewStaffRepository(db),
		grades:    sqlxdb.NewGradeRepository(db),
		finance:   sqlxdb.NewFinanceRepository(db),
		archives:  sqlxdb.NewArchiveRepository(db),
		closeFunc: db.Close,
	}, nil
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if conf.Database.AdminUser != "" {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if conf.Database.AutoMigrate {
		if err = database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
