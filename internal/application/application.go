package application

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/knapsack-solver/internal/api"
	"github.com/eugenenazirov/knapsack-solver/internal/config"
	"github.com/eugenenazirov/knapsack-solver/internal/instance"
	"github.com/eugenenazirov/knapsack-solver/internal/knapsack"
	"github.com/eugenenazirov/knapsack-solver/internal/metrics"
	"github.com/eugenenazirov/knapsack-solver/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage storage.Storage
	solver  knapsack.Solver
	metrics *metrics.Collector
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store := storage.NewMemoryStorage()
	if err := preloadInstances(store, cfg.InstanceFiles, logger); err != nil {
		return nil, fmt.Errorf("failed to preload instances: %w", err)
	}

	solver := knapsack.New(knapsack.WithWorkers(cfg.SolverWorkers))
	collector := metrics.New()
	handler := api.NewHandler(solver, store,
		api.WithMetrics(collector),
		api.WithLogger(logger),
		api.WithSolveTimeout(cfg.SolveTimeout),
		api.WithMaxItems(cfg.MaxItems),
	)
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return &App{
		storage: store,
		solver:  solver,
		metrics: collector,
		handler: handler,
		router:  apiRouter,
		logger:  logger,
		server:  NewServer(cfg, BuildRootHandler(apiRouter, collector.Handler())),
	}, nil
}

// BuildRootHandler mounts the API under /api/ and the metrics endpoint under /metrics.
func BuildRootHandler(apiHandler, metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("GET /metrics", metricsHandler)
	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// preloadInstances parses each file and stores it under its base name.
func preloadInstances(store storage.Storage, paths []string, logger *zap.Logger) error {
	for _, path := range paths {
		problem, err := instance.ParseFile(path)
		if err != nil {
			return err
		}
		if _, err := knapsack.BuildCatalog(problem.Items); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		name := filepath.Base(path)
		if err := store.PutInstance(name, problem); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		logger.Info("instance loaded",
			zap.String("name", name),
			zap.Int("items", len(problem.Items)),
			zap.Int("capacity", problem.Capacity),
		)
	}
	return nil
}
