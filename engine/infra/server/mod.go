package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"

	"github.com/rosterhq/roster/engine/infra/monitoring"
	infrapostgres "github.com/rosterhq/roster/engine/infra/postgres"
	"github.com/rosterhq/roster/engine/infra/server/middleware/ratelimit"
	"github.com/rosterhq/roster/engine/infra/server/router"
	userpostgres "github.com/rosterhq/roster/engine/user/infra/postgres"
	"github.com/rosterhq/roster/engine/user/uc"
	"github.com/rosterhq/roster/pkg/config"
	"github.com/rosterhq/roster/pkg/logger"
)

// Server is the composition root: it owns the dependency graph (pool →
// adapter → use-case factory), the gin engine, and the HTTP server
// lifecycle including graceful shutdown.
type Server struct {
	cfg          *config.Config
	router       *gin.Engine
	monitoring   *monitoring.Service
	httpServer   *http.Server
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownChan chan struct{}
	shutdownOnce sync.Once
}

// dependencies bundles everything the route registrations need.
type dependencies struct {
	store     *infrapostgres.Store
	factory   *uc.Factory
	startedAt time.Time
}

// healthSource returns the database handle the health probe should check.
func (d *dependencies) healthSource() healthChecker {
	if d.store == nil {
		return nil
	}
	return d.store
}

// NewServer creates a server from the configuration attached to the context.
func NewServer(ctx context.Context) (*Server, error) {
	serverCtx, cancel := context.WithCancel(ctx)
	cfg := config.FromContext(serverCtx)
	if cfg == nil {
		cancel()
		return nil, fmt.Errorf("configuration missing from context; attach a manager with config.ContextWithManager")
	}
	return &Server{
		cfg:          cfg,
		ctx:          serverCtx,
		cancel:       cancel,
		shutdownChan: make(chan struct{}, 1),
	}, nil
}

// Run wires the dependencies, builds the router, and serves until a
// shutdown signal arrives. Cleanup functions run LIFO on exit.
func (s *Server) Run() error {
	deps, cleanupFuncs, err := s.setupDependencies()
	defer s.cleanup(cleanupFuncs)
	if err != nil {
		return err
	}

	if err := s.buildRouter(deps); err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	return s.startAndRunServer()
}

// Shutdown requests a graceful stop from outside the signal path.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdownChan)
	})
}

func (s *Server) setupDependencies() (*dependencies, []func(), error) {
	var cleanupFuncs []func()

	cleanupFuncs = append(cleanupFuncs, s.setupMonitoring())

	store, storeCleanup, err := s.setupStore()
	if err != nil {
		return nil, cleanupFuncs, err
	}
	cleanupFuncs = append(cleanupFuncs, storeCleanup)

	repo := userpostgres.NewRepository(store.Pool())
	factory := uc.NewFactory(repo)

	return &dependencies{
		store:     store,
		factory:   factory,
		startedAt: time.Now(),
	}, cleanupFuncs, nil
}

// setupStore validates the database configuration, optionally applies
// pending migrations, and opens the connection pool.
func (s *Server) setupStore() (*infrapostgres.Store, func(), error) {
	log := logger.FromContext(s.ctx)
	dbCfg := s.cfg.Database
	if err := dbCfg.Validate(); err != nil {
		return nil, func() {}, fmt.Errorf("invalid database configuration: %w", err)
	}
	storeCfg := &infrapostgres.Config{
		ConnString: dbCfg.ConnString,
		Host:       dbCfg.Host,
		Port:       dbCfg.Port,
		User:       dbCfg.User,
		Password:   dbCfg.Password.Value(),
		DBName:     dbCfg.DBName,
		SSLMode:    dbCfg.SSLMode,
	}

	if dbCfg.AutoMigrate {
		migrationCtx := s.ctx
		if dbCfg.MigrationTimeout > 0 {
			var cancel context.CancelFunc
			migrationCtx, cancel = context.WithTimeout(s.ctx, dbCfg.MigrationTimeout)
			defer cancel()
		}
		migrationStart := time.Now()
		if err := infrapostgres.ApplyMigrationsWithLock(migrationCtx, storeCfg.DSN()); err != nil {
			return nil, func() {}, fmt.Errorf("failed to apply migrations: %w", err)
		}
		log.Info("Database migrations applied", "duration", time.Since(migrationStart))
	}

	store, err := infrapostgres.NewStore(s.ctx, storeCfg)
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to setup store: %w", err)
	}
	cleanup := func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), s.cfg.Server.Timeouts.DBShutdown)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Error("Failed to close store", "error", err)
		}
	}
	return store, cleanup, nil
}

// setupMonitoring initializes the metrics service. A failed or timed-out
// initialization degrades to a noop meter instead of blocking startup.
func (s *Server) setupMonitoring() func() {
	log := logger.FromContext(s.ctx)
	timeouts := s.cfg.Server.Timeouts
	monitoringCfg := &monitoring.Config{
		Enabled: s.cfg.Monitoring.Enabled,
		Path:    s.cfg.Monitoring.Path,
	}
	monitoringCtx, cancel := context.WithTimeout(s.ctx, timeouts.MonitoringInit)
	defer cancel()
	monitoringStart := time.Now()
	service, err := monitoring.NewMonitoringService(monitoringCtx, monitoringCfg)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn("Monitoring initialization timed out, continuing without monitoring",
				"duration", time.Since(monitoringStart))
		} else {
			log.Error("Failed to initialize monitoring service", "error", err)
		}
		s.monitoring = nil
		return func() {}
	}
	s.monitoring = service
	if !service.IsInitialized() {
		log.Info("Monitoring is disabled in the configuration")
		return func() {}
	}
	service.SetAsGlobal()
	log.Info("Monitoring service initialized",
		"path", monitoringCfg.Path,
		"duration", time.Since(monitoringStart))
	return func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(
			context.WithoutCancel(s.ctx), timeouts.MonitoringShutdown)
		defer shutdownCancel()
		if err := service.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shutdown monitoring service", "error", err)
		}
	}
}

func (s *Server) buildRouter(deps *dependencies) error {
	log := logger.FromContext(s.ctx)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	if s.cfg.Server.CORSEnabled {
		r.Use(CORSMiddleware(s.cfg.Server.CORS))
	}
	if err := s.applyRateLimit(r); err != nil {
		return err
	}
	if s.monitoring != nil && s.monitoring.IsInitialized() {
		r.Use(s.monitoring.GinMiddleware(s.ctx))
		r.GET(s.cfg.Monitoring.Path, gin.WrapH(s.monitoring.ExporterHandler()))
	}
	r.Use(router.ErrorHandler())
	RegisterRoutes(r, deps)
	s.router = r
	return nil
}

// applyRateLimit installs the limiter middleware. A zero global limit
// disables rate limiting entirely.
func (s *Server) applyRateLimit(r *gin.Engine) error {
	rlCfg := s.cfg.RateLimit
	if rlCfg.GlobalRate.Limit <= 0 {
		return nil
	}
	cfg := ratelimit.DefaultConfig()
	cfg.GlobalRate = ratelimit.RateConfig{
		Limit:  rlCfg.GlobalRate.Limit,
		Period: rlCfg.GlobalRate.Period,
	}
	cfg.RedisAddr = rlCfg.RedisAddr
	cfg.RedisPassword = rlCfg.RedisPassword.Value()
	cfg.RedisDB = rlCfg.RedisDB
	if rlCfg.Prefix != "" {
		cfg.Prefix = rlCfg.Prefix
	}
	if rlCfg.MaxRetry > 0 {
		cfg.MaxRetry = rlCfg.MaxRetry
	}
	var meter metric.Meter
	if s.monitoring != nil && s.monitoring.IsInitialized() {
		meter = s.monitoring.Meter()
	}
	manager, err := ratelimit.NewManagerWithMetrics(s.ctx, cfg, cfg.NewRedisClient(), meter)
	if err != nil {
		return fmt.Errorf("failed to create rate limit manager: %w", err)
	}
	r.Use(manager.Middleware())
	return nil
}

func (s *Server) startAndRunServer() error {
	srv := s.createHTTPServer()
	s.httpServer = srv

	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
			return
		}
		serverErrChan <- nil
	}()

	return s.handleGracefulShutdown(srv, serverErrChan)
}

func (s *Server) createHTTPServer() *http.Server {
	timeouts := s.cfg.Server.Timeouts
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	logger.FromContext(s.ctx).Info("Starting HTTP server",
		"address", fmt.Sprintf("http://%s", addr),
	)
	return &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  timeouts.HTTPRead,
		WriteTimeout: timeouts.HTTPWrite,
		IdleTimeout:  timeouts.HTTPIdle,
	}
}

func (s *Server) handleGracefulShutdown(srv *http.Server, serverErrChan chan error) error {
	log := logger.FromContext(s.ctx)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErrChan:
		s.cancel()
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Debug("Received shutdown signal, initiating graceful shutdown", "signal", sig.String())
	case <-s.shutdownChan:
		log.Debug("Shutdown requested, initiating graceful shutdown")
	case <-s.ctx.Done():
		log.Debug("Context canceled, initiating graceful shutdown")
	}

	s.cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(), s.cfg.Server.Timeouts.ServerShutdown)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	<-serverErrChan

	log.Info("Server shutdown completed successfully")
	return nil
}

func (s *Server) cleanup(cleanupFuncs []func()) {
	for i := len(cleanupFuncs) - 1; i >= 0; i-- {
		if cleanupFuncs[i] != nil {
			cleanupFuncs[i]()
		}
	}
}
