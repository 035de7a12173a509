package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/setgame/cmd/setgame/shared"
	"github.com/lox/setgame/internal/display"
	"github.com/lox/setgame/internal/fileutil"
	"github.com/lox/setgame/internal/game"
	"github.com/lox/setgame/internal/statistics"
)

// SimulateCmd plays headless games between bots.
type SimulateCmd struct {
	Games     int     `short:"n" help:"Number of games to play" default:"10"`
	Bots      int     `help:"Number of bots per game; 0 keeps the config's seats" default:"4"`
	Parallel  int     `short:"p" help:"Games to run at once" default:"1"`
	TimeScale float64 `help:"Multiplier applied to every timing" default:"0.01"`
	Dots      bool    `help:"Print a colored dot per set found"`
	Summary   string  `help:"Write every result as JSON to this file" type:"path"`
}

// simulationSummary is the JSON written by --summary.
type simulationSummary struct {
	Games   int           `json:"games"`
	Seed    int64         `json:"seed"`
	Results []game.Result `json:"results"`
}

// scaled shrinks or stretches every duration in cfg. Durations never drop to
// zero since the dealer rejects that.
func scaled(cfg game.Config, factor float64) game.Config {
	if factor == 1 || factor <= 0 {
		return cfg
	}
	scale := func(d time.Duration) time.Duration {
		return max(time.Duration(math.Round(float64(d)*factor)), time.Microsecond)
	}
	cfg.RoundDuration = scale(cfg.RoundDuration)
	cfg.WarningThreshold = scale(cfg.WarningThreshold)
	cfg.PointFreeze = scale(cfg.PointFreeze)
	cfg.PenaltyFreeze = max(scale(cfg.PenaltyFreeze), cfg.PointFreeze+time.Microsecond)
	cfg.Tick = scale(cfg.Tick)
	cfg.WarningTick = scale(cfg.WarningTick)
	cfg.FreezeTick = scale(cfg.FreezeTick)
	cfg.BotInterval = scale(cfg.BotInterval)
	return cfg
}

func (c *SimulateCmd) config(g *Globals) (game.Config, error) {
	cfg, err := g.gameConfig()
	if err != nil {
		return game.Config{}, err
	}
	if c.Bots > 0 {
		cfg.Players = make([]game.PlayerConfig, c.Bots)
		for i := range cfg.Players {
			cfg.Players[i].Name = fmt.Sprintf("bot-%d", i+1)
		}
	} else {
		cfg.Players = append([]game.PlayerConfig(nil), cfg.Players...)
		for i := range cfg.Players {
			cfg.Players[i].Human = false
		}
	}
	cfg = scaled(cfg, c.TimeScale)
	return cfg, cfg.Validate()
}

func (c *SimulateCmd) Run(g *Globals) error {
	if c.Games < 1 {
		return fmt.Errorf("games must be at least 1")
	}
	cfg, err := c.config(g)
	if err != nil {
		return err
	}

	out := os.Stderr
	if g.LogFile != "" {
		f, err := shared.OpenLogFile(g.LogFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	logger := shared.SetupLogger(out, g.Debug)

	ctx, stop := shared.SetupSignalHandler(logger)
	defer stop()

	names := make([]string, len(cfg.Players))
	for i, p := range cfg.Players {
		names[i] = p.Name
	}

	var dots *display.DotsDisplay
	if c.Dots {
		dots = display.NewDotsDisplay(os.Stdout, g.profile())
	}

	logger.Info("Starting simulation", "games", c.Games, "players", len(cfg.Players),
		"parallel", c.Parallel, "seed", cfg.Seed)
	start := time.Now()

	var (
		mu      sync.Mutex
		stats   statistics.Statistics
		results = make([]game.Result, c.Games)
	)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(c.Parallel, 1))
	for i := range c.Games {
		eg.Go(func() error {
			result, err := c.playOne(ctx, cfg, i, logger, names, dots)
			if err != nil {
				return fmt.Errorf("game %d: %w", i+1, err)
			}
			mu.Lock()
			defer mu.Unlock()
			results[i] = result
			stats.Add(result)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	if err := stats.Validate(); err != nil {
		return fmt.Errorf("inconsistent results: %w", err)
	}
	logger.Info("Simulation complete", "games", stats.Games, "elapsed", time.Since(start).Round(time.Millisecond))

	fmt.Print(renderStatistics(&stats))
	if c.Summary != "" {
		summary := simulationSummary{Games: stats.Games, Seed: cfg.Seed, Results: results}
		if err := fileutil.WriteJSONAtomic(c.Summary, summary, 0o644); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
		logger.Info("Summary written", "file", c.Summary)
	}
	return nil
}

// playOne runs a single game. A fixed base seed gives every game its own
// reproducible seed.
func (c *SimulateCmd) playOne(ctx context.Context, cfg game.Config, i int, logger *log.Logger,
	names []string, dots *display.DotsDisplay) (game.Result, error) {
	if cfg.Seed != 0 {
		cfg.Seed += int64(i)
	}
	displays := []game.Display{display.NewLogDisplay(logger, cfg.Rules, names)}
	if dots != nil {
		displays = append(displays, dots)
	}
	dealer, err := game.NewDealer(cfg,
		game.WithLogger(logger),
		game.WithDisplay(game.NewMultiDisplay(displays...)))
	if err != nil {
		return game.Result{}, err
	}
	return dealer.Run(ctx)
}
