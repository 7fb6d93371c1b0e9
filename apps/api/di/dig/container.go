package dig_container

import (
	"fmt"
	"io"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/lmsadmin/apps/api/echo"
	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/school"
	emailsvc "github.com/trezcool/lmsadmin/services/email"
	logsvc "github.com/trezcool/lmsadmin/services/logger"
	schedulersvc "github.com/trezcool/lmsadmin/services/scheduler"
	"github.com/trezcool/lmsadmin/storage/database"
	inmemdb "github.com/trezcool/lmsadmin/storage/database/inmem"
	"github.com/trezcool/lmsadmin/storage/database/pgstore"
	"github.com/trezcool/lmsadmin/storage/files"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Storage is the persistence gateway of the app with what releases it.
type Storage struct {
	Stores school.Stores
	io.Closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newStorage(conf *core.Config, loggerParam DBLoggerParam) Storage {
	if conf.Database.InMemory {
		loggerParam.Logger.Warn("using in-memory storage, data is lost on exit")
		return Storage{Stores: inmemdb.NewStores(), Closer: nopCloser{}}
	}

	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db.DB); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return Storage{Stores: pgstore.NewStores(db), Closer: db}
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newValidator(validate *validator.Validate, translator ut.Translator) *core.Validator {
	return core.NewValidator(validate, translator)
}

func newServices(
	storage Storage,
	validate *core.Validator,
	mailSvc core.EmailService,
	conf *core.Config,
	logger core.Logger,
) *school.Services {
	return school.NewServices(storage.Stores, validate, mailSvc, conf, logger)
}

func newFiles(conf *core.Config, logger core.Logger) files.Store {
	store, err := files.New(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up file storage: %v", err), err)
	}
	return store
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// newScheduler registers the maintenance jobs; it is started by main.
func newScheduler(conf *core.Config, logger core.Logger, svcs *school.Services) (*schedulersvc.Scheduler, error) {
	s := schedulersvc.New(logger)
	if err := s.Add("purge expired announcements", conf.AnnouncementPurgeSpec, svcs.Announcements.Purge); err != nil {
		return nil, err
	}
	return s, nil
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	svcs *school.Services,
	validate *core.Validator,
	store files.Store,
	reg *prometheus.Registry,
) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:      conf,
		Logger:    logger,
		Services:  svcs,
		Validator: validate,
		Files:     store,
		Uploader:  files.NewUploader(store, conf),
		Registry:  reg,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStorage))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newServices))
	must(c.Provide(newFiles))
	must(c.Provide(newRegistry))
	must(c.Provide(newScheduler))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
