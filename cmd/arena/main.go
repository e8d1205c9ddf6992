// cmd/arena/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/opd-ai/go-arena/pkg/config"
	"github.com/opd-ai/go-arena/pkg/engine"
	"github.com/opd-ai/go-arena/pkg/health"
	"github.com/opd-ai/go-arena/pkg/logging"
	"github.com/opd-ai/go-arena/pkg/render"
)

func main() {
	configPath := flag.String("config", "scene.yaml", "Path to scene file (.json, .yaml or .yml)")
	createDefault := flag.Bool("default", false, "Write the default debug scene to -config and exit")
	ticks := flag.Int("ticks", 0, "Run this many ticks as fast as possible and exit (0 runs in real time)")
	watch := flag.Bool("watch", false, "Reload the scene when the file changes")
	terminal := flag.Bool("terminal", false, "Draw the collider overlay in the terminal")
	logPath := flag.String("log", "arena.log", "Log file used while -terminal owns the screen")
	healthAddr := flag.String("health", "", "Serve /health and /ready on this address, e.g. :8080")
	flag.Parse()

	logger, closeLog, err := newLogger(*terminal, *logPath)
	if err != nil {
		logging.NewLogger().Error(context.Background(), "Failed to open log file", err, "log_path", *logPath)
		os.Exit(1)
	}
	defer closeLog()

	ctx := logging.WithRunID(context.Background(), "")

	// Create default configuration file if requested
	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err, "config_path", *configPath)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file", "config_path", *configPath)
		return
	}

	sceneConfig, found, err := config.LoadScene(*configPath)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err, "config_path", *configPath)
		os.Exit(1)
	}
	if !found {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", *configPath,
		)
	}

	game, err := engine.NewGame(sceneConfig, engine.WithLogger(logger), engine.WithContext(ctx))
	if err != nil {
		logger.Error(ctx, "Failed to create game", err, "scene", sceneConfig.Name)
		os.Exit(1)
	}

	if *ticks > 0 {
		runBatch(ctx, game, logger, *ticks)
		return
	}

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *watch {
		stopWatch, err := watchScene(runCtx, game, logger, *configPath)
		if err != nil {
			logger.Error(ctx, "Failed to watch configuration", err, "config_path", *configPath)
			os.Exit(1)
		}
		defer stopWatch()
	}

	if *healthAddr != "" {
		shutdown := serveHealth(ctx, game, logger, *healthAddr)
		defer shutdown()
	}

	if *terminal {
		err = runTerminal(runCtx, game, logger)
	} else {
		null := render.NewNullRenderer(logger)
		err = game.Run(runCtx, func() { render.Frame(null, game.GetGameState()) })
	}
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, engine.ErrNotRunning) {
		logger.Error(ctx, "Simulation failed", err)
		os.Exit(1)
	}

	game.Stop()
	logger.Info(ctx, "Shutting down")
}

// newLogger logs to stdout, or to logPath when the terminal is taken.
func newLogger(terminal bool, logPath string) (*logging.Logger, func(), error) {
	if !terminal {
		return logging.NewLogger(), func() {}, nil
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	level := logging.ParseLevel(os.Getenv(logging.LevelEnvVar))
	return logging.NewLoggerWithWriter(f, level), func() { _ = f.Close() }, nil
}

// runBatch steps the game n times without waiting and logs the outcome.
func runBatch(ctx context.Context, game *engine.Game, logger *logging.Logger, n int) {
	start := time.Now()
	game.Start()
	game.RunTicks(n)
	game.Stop()

	state := game.GetGameState()
	logger.Info(logging.WithTick(ctx, state.Tick), "Simulation finished",
		"scene", state.Scene,
		"elapsed", time.Since(start).String(),
		"entities", len(state.Entities),
		"pairs", len(state.Pairs),
		"candidates", state.Stats.Candidates,
		"narrow_tests", state.Stats.NarrowTests,
	)
	for _, e := range state.Entities {
		logger.Info(ctx, "Entity",
			"entity_id", e.ID,
			"entity_name", e.Name,
			"x", e.Position.X,
			"y", e.Position.Y,
			"health", e.Health,
			"colliding", e.Colliding,
		)
	}
}

// watchScene queues a reload whenever the scene file changes.
func watchScene(ctx context.Context, game *engine.Game, logger *logging.Logger, path string) (func(), error) {
	watcher, err := config.NewWatcher(config.ReloadDebounce(), path)
	if err != nil {
		return nil, err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case changed, ok := <-watcher.Events:
				if !ok {
					return
				}
				cfg, _, err := config.LoadScene(changed)
				if err != nil {
					logger.Error(ctx, "Ignoring invalid scene file", err, "config_path", changed)
					continue
				}
				logger.Info(ctx, "Scene file changed", "config_path", changed)
				game.RequestReload(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error(ctx, "Scene watcher error", err)
			}
		}
	}()

	logger.Info(ctx, "Watching scene file", "config_path", path)
	return func() { _ = watcher.Close() }, nil
}

// serveHealth starts the probe server and returns its shutdown function.
func serveHealth(ctx context.Context, game *engine.Game, logger *logging.Logger, addr string) func() {
	checker := health.NewHealthChecker()
	checker.AddCheck(health.NewGameEngineHealthCheck(game.IsRunning))
	checker.AddCheck(health.NewTickProgressHealthCheck(5*time.Second, func() uint64 {
		return game.GetGameState().Tick
	}))
	// Limit: 500MB
	checker.AddCheck(health.NewMemoryHealthCheck(500, func() int64 {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		return int64(m.Alloc / 1024 / 1024)
	}))

	server := &http.Server{
		Addr:         addr,
		Handler:      checker.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info(ctx, "Starting health check server", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "Health check server failed", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "Health check server shutdown failed", err)
		}
	}
}
