package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apihttp "github.com/GriffinCanCode/AgentOS/vfsd/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/vfsd/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/vfsd/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/vfsd/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/vfsd/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/vfsd/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/vfsd/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/vfsd/internal/shell"
	"github.com/GriffinCanCode/AgentOS/vfsd/internal/vfs"
	"github.com/GriffinCanCode/AgentOS/vfsd/internal/ws"
)

// Core is the in-process filesystem, shell and session manager shared by the
// HTTP server and the local REPL.
type Core struct {
	Store     *vfs.Store
	Clipboard *vfs.Clipboard
	Shell     *shell.Shell
	Sessions  *session.Manager
}

// NewCore seeds a store from cfg and builds the shell on top of it.
// metrics and tracer may be nil.
func NewCore(cfg *config.Config, logger *logging.Logger, metrics *monitoring.Metrics, tracer *tracing.Tracer) (*Core, error) {
	seed := vfs.DefaultSeed(cfg.FS.User)
	if cfg.FS.SeedPath != "" {
		loaded, err := vfs.LoadSeedFile(cfg.FS.SeedPath)
		if err != nil {
			return nil, err
		}
		seed = loaded
		logger.Info("Loaded filesystem seed", zap.String("path", cfg.FS.SeedPath), zap.Int("roots", len(seed)))
	}

	storeOpts := []vfs.Option{vfs.WithLogger(logger.Component("vfs"))}
	shellOpts := []shell.Option{
		shell.WithLogger(logger.Component("shell")),
		shell.WithUser(cfg.FS.User),
		shell.WithHostname(cfg.FS.Hostname),
		shell.WithCalcTimeout(cfg.Shell.CalcTimeout),
	}
	sessionOpts := []session.Option{
		session.WithLogger(logger.Component("session")),
		session.WithLimits(cfg.Shell.MaxSessions, cfg.Shell.MaxHistory),
		session.WithTracer(tracer),
	}
	if metrics != nil {
		storeOpts = append(storeOpts, vfs.WithRecorder(metrics))
		shellOpts = append(shellOpts, shell.WithRecorder(metrics))
		sessionOpts = append(sessionOpts, session.WithGauge(metrics))
	}

	store := vfs.NewStore(seed, storeOpts...)
	clipboard := vfs.NewClipboard(store)
	sh := shell.New(store, clipboard, shellOpts...)

	return &Core{
		Store:     store,
		Clipboard: clipboard,
		Shell:     sh,
		Sessions:  session.NewManager(sh, sessionOpts...),
	}, nil
}

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	core    *Core
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	logger.Info("Initializing vfsd",
		zap.String("addr", cfg.Server.Address()),
		zap.String("user", cfg.FS.User),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("vfsd", logger.Component("tracing"))

	core, err := NewCore(cfg, logger, metrics, tracer)
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to build filesystem: %w", err)
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Component("http")))
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
			zap.Bool("global", cfg.RateLimit.Global),
		)
		limit := middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			IdleTimeout:       middleware.DefaultRateLimitConfig().IdleTimeout,
		}
		if cfg.RateLimit.Global {
			router.Use(middleware.GlobalRateLimit(limit))
		} else {
			router.Use(middleware.RateLimit(limit))
		}
	}

	handlers := apihttp.NewHandlers(core.Shell, core.Sessions, metrics)
	handlers.Register(router)

	wsHandler := ws.NewHandler(core.Store, core.Sessions, logger.Component("ws"), metrics)
	router.GET("/stream", wsHandler.HandleConnection)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully",
		zap.Int("commands", len(core.Shell.Registry().List(nil))),
	)

	return &Server{
		router:  router,
		core:    core,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
		tracer:  tracer,
	}, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Core returns the filesystem and shell the server exposes
func (s *Server) Core() *Core {
	return s.core
}

// Run serves HTTP until ctx is cancelled, then shuts down within the
// configured timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Server.Address(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// Close drains pending spans and flushes the logger. Call it after Run returns.
func (s *Server) Close() error {
	s.tracer.Close()
	_ = s.logger.Sync()
	return nil
}
