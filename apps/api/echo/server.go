// Package echoapi serves the pages and the entity endpoints of the application.
package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/school"
	"github.com/trezcool/lmsadmin/storage/files"
)

type (
	ServerDeps struct {
		Conf      *core.Config
		Logger    core.Logger
		Services  *school.Services
		Validator *core.Validator
		Files     files.Store
		Uploader  *files.Uploader
		// Registry collects the server metrics; a new one is created when nil.
		Registry *prometheus.Registry
	}

	Server struct {
		conf      *core.Config
		logger    core.Logger
		svcs      *school.Services
		validator *core.Validator
		uploader  *files.Uploader
		metrics   *metrics
		app       *echo.Echo
		errs      chan error
		shutdown  chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	s := &Server{
		conf:      deps.Conf,
		logger:    deps.Logger,
		svcs:      deps.Services,
		validator: deps.Validator,
		uploader:  deps.Uploader,
		metrics:   newMetrics(reg),
		app:       echo.New(),
		errs:      make(chan error, 1),
		shutdown:  make(chan os.Signal, 1),
	}
	s.setup(deps.Files, reg)
	return s
}

func (s *Server) setup(store files.Store, reg *prometheus.Registry) {
	s.app.HideBanner = true
	s.app.Debug = s.conf.Debug
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.logger, s.validator, s.metrics, s.SignalShutdown)
	s.app.Renderer = newRenderer(s.conf.AppName)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(s.metrics.middleware)
	s.app.Use(s.session)

	s.app.GET("/metrics", metricsHandler(reg))
	if local, ok := store.(*files.Local); ok {
		s.app.Static("/uploads", local.Dir())
	}

	registerAuthAPI(s.app.Group("/auth"), s)
	registerEntityAPI(s.app.Group("/api"), s)
	registerPages(s.app, s)
}

// Start blocks until the server stops. Failures other than a shutdown are sent on Errors().
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)

	srv := &http.Server{
		Addr:         s.conf.Server.Address,
		ReadTimeout:  s.conf.Server.ReadTimeout,
		WriteTimeout: s.conf.Server.WriteTimeout,
	}
	if err := s.app.StartServer(srv); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errs }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

// SignalShutdown asks the owner of the server to shut it down.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}
