// cmd/arena/terminal.go
package main

import (
	"context"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-arena/pkg/engine"
	"github.com/opd-ai/go-arena/pkg/event"
	"github.com/opd-ai/go-arena/pkg/logging"
	"github.com/opd-ai/go-arena/pkg/render"
)

// runTerminal draws the overlay with tcell until ctx is done or the user
// quits. The mouse drives the cursor entity; 'o' toggles outlines.
func runTerminal(ctx context.Context, game *engine.Game, logger *logging.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return logging.WrapError(err, "create screen")
	}
	if err := screen.Init(); err != nil {
		return logging.WrapError(err, "init screen")
	}
	defer screen.Fini()
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// mu guards the renderer between the tick loop and the event loop.
	var mu sync.Mutex
	renderer := render.NewTerminalRenderer(screen, 1)
	state := game.GetGameState()
	renderer.FitWorld(state.WorldSize)
	renderer.SetOverlay(state.DebugOverlay)

	sub := game.EventBus.Subscribe(event.SceneLoaded, func(event.Event) {
		mu.Lock()
		defer mu.Unlock()
		renderer.FitWorld(game.GetGameState().WorldSize)
	})
	defer sub.Cancel()

	go pollEvents(ctx, screen, func(ev tcell.Event) {
		mu.Lock()
		defer mu.Unlock()
		handleTerminalEvent(ev, screen, renderer, game, cancel)
	})

	logger.Info(ctx, "Terminal overlay started")
	return game.Run(ctx, func() {
		mu.Lock()
		defer mu.Unlock()
		render.Frame(renderer, game.GetGameState())
	})
}

func pollEvents(ctx context.Context, screen tcell.Screen, handle func(tcell.Event)) {
	for ctx.Err() == nil {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		handle(ev)
	}
}

func handleTerminalEvent(ev tcell.Event, screen tcell.Screen, renderer *render.TerminalRenderer, game *engine.Game, quit func()) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC, ev.Rune() == 'q':
			quit()
		case ev.Rune() == 'o':
			renderer.ToggleOverlay()
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		game.SetCursor(renderer.ScreenToWorld(x, y))
	case *tcell.EventResize:
		screen.Sync()
		renderer.FitWorld(game.GetGameState().WorldSize)
	}
}
