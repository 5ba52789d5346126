package main

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"wordtreasure/internal/api"
	"wordtreasure/internal/config"
	"wordtreasure/internal/metrics"
)

// App wires the gateway together: config, backend client, auth holder,
// metrics, the per-IP limiter map, and the single active game view-model.
type App struct {
	Config       *config.Config
	API          *api.Client
	Auth         *AuthState
	Metrics      *metrics.Metrics
	StartTime    time.Time
	IsProduction bool

	LimiterMap   map[string]*rate.Limiter
	LimiterMutex sync.Mutex

	gameMu        sync.Mutex
	game          *GameViewModel
	pendingResult *GameResult
}

func newApp(cfg *config.Config, client *api.Client, auth *AuthState, m *metrics.Metrics, production bool) *App {
	return &App{
		Config:       cfg,
		API:          client,
		Auth:         auth,
		Metrics:      m,
		StartTime:    time.Now(),
		IsProduction: production,
		LimiterMap:   make(map[string]*rate.Limiter),
	}
}

// enterGame returns the active view-model, creating and initializing one if
// the game page is being entered fresh. Init errors are fatal to page entry
// and leave no view-model behind.
func (app *App) enterGame(ctx context.Context) (*GameViewModel, error) {
	app.gameMu.Lock()
	if app.game != nil {
		vm := app.game
		app.gameMu.Unlock()
		return vm, nil
	}
	app.gameMu.Unlock()

	vm := NewGameViewModel(
		app.API,
		app.Metrics,
		app.Config.PollInterval,
		app.Config.PollLimit,
		app.Config.TransitionDelay,
		app.storeResult,
	)
	if err := vm.Init(ctx); err != nil {
		vm.Close()
		return nil, err
	}

	app.gameMu.Lock()
	if app.game != nil {
		// Lost the race to a concurrent page entry; keep the winner.
		winner := app.game
		app.gameMu.Unlock()
		vm.Close()
		return winner, nil
	}
	app.game = vm
	app.pendingResult = nil
	app.gameMu.Unlock()
	return vm, nil
}

// currentGame returns the active view-model without creating one.
func (app *App) currentGame() *GameViewModel {
	app.gameMu.Lock()
	defer app.gameMu.Unlock()
	return app.game
}

// closeGame tears down the active view-model; navigating to any non-game
// page discards the timeline and snapshot, as the game page owns both.
func (app *App) closeGame() {
	app.gameMu.Lock()
	vm := app.game
	app.game = nil
	app.gameMu.Unlock()
	if vm != nil {
		vm.Close()
	}
}

func (app *App) storeResult(result GameResult) {
	app.gameMu.Lock()
	app.pendingResult = &result
	app.gameMu.Unlock()
	logInfo("Game won in %d attempt(s), rank %d, %d token(s) earned", result.AttemptCount, result.Rank, result.TokensEarned)
}

// takeResult returns the carried success payload, if any. It survives until
// the next game starts so the result page can be reloaded.
func (app *App) takeResult() *GameResult {
	app.gameMu.Lock()
	defer app.gameMu.Unlock()
	return app.pendingResult
}
