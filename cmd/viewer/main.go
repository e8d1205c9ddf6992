// cmd/viewer/main.go
package main

import (
	"context"
	"flag"
	"os"

	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-arena/pkg/config"
	"github.com/opd-ai/go-arena/pkg/engine"
	"github.com/opd-ai/go-arena/pkg/logging"
	engorender "github.com/opd-ai/go-arena/pkg/render/engo"
)

func main() {
	configPath := flag.String("config", "scene.yaml", "Path to scene file (.json, .yaml or .yml)")
	watch := flag.Bool("watch", false, "Reload the scene when the file changes")
	fullscreen := flag.Bool("fullscreen", false, "Run in fullscreen mode")
	width := flag.Int("width", 1024, "Window width")
	height := flag.Int("height", 768, "Window height")
	flag.Parse()

	logger := logging.NewLogger()
	ctx := logging.WithRunID(context.Background(), "")

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

	if *watch {
		watcher, err := config.NewWatcher(config.ReloadDebounce(), *configPath)
		if err != nil {
			logger.Error(ctx, "Failed to watch configuration", err, "config_path", *configPath)
			os.Exit(1)
		}
		defer watcher.Close()
		go reloadOnChange(ctx, game, logger, watcher)
	}

	opts := engo.RunOptions{
		Title:      "go-arena collider viewer",
		Width:      *width,
		Height:     *height,
		Fullscreen: *fullscreen,
		VSync:      true,
	}

	engo.Run(opts, engorender.NewArenaScene(game))
}

// reloadOnChange queues a reload for every scene file change until the
// watcher closes.
func reloadOnChange(ctx context.Context, game *engine.Game, logger *logging.Logger, watcher *config.Watcher) {
	for {
		select {
		case changed, ok := <-watcher.Events:
			if !ok {
				return
			}
			cfg, _, err := config.LoadScene(changed)
			if err != nil {
				logger.Error(ctx, "Ignoring invalid scene file", err, "config_path", changed)
				continue
			}
			game.RequestReload(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Error(ctx, "Scene watcher error", err)
		}
	}
}
