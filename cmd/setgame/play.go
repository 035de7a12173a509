package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lox/setgame/cmd/setgame/shared"
	"github.com/lox/setgame/internal/fileutil"
	"github.com/lox/setgame/internal/game"
	"github.com/lox/setgame/internal/spectator"
	"github.com/lox/setgame/internal/tui"
)

// PlayCmd runs an interactive game in the terminal.
type PlayCmd struct {
	Name     string `help:"Name of the human player" env:"SETGAME_NAME"`
	Bots     int    `help:"Number of bot opponents; negative keeps the config's seats" default:"-1"`
	Watch    bool   `help:"Only watch: every seat is a bot"`
	Hints    bool   `help:"Log the sets on the table whenever it changes"`
	Spectate string `help:"Serve a spectator feed on this address, e.g. :8080" env:"SETGAME_SPECTATE"`
	Summary  string `help:"Write the final result as JSON to this file" type:"path"`
}

// programSender forwards to a tea.Program that is created after the dealer.
type programSender struct {
	mu      sync.Mutex
	program *tea.Program
}

func (s *programSender) attach(p *tea.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.program = p
}

func (s *programSender) Send(msg tea.Msg) {
	s.mu.Lock()
	p := s.program
	s.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// seats applies the command line overrides to the configured players.
func (c *PlayCmd) seats(players []game.PlayerConfig) []game.PlayerConfig {
	if c.Bots >= 0 {
		seats := []game.PlayerConfig{{Name: "You", Human: true}}
		for i := range c.Bots {
			seats = append(seats, game.PlayerConfig{Name: fmt.Sprintf("bot-%d", i+1)})
		}
		players = seats
	} else {
		players = append([]game.PlayerConfig(nil), players...)
	}

	human := -1
	for i := range players {
		switch {
		case c.Watch:
			players[i].Human = false
		case players[i].Human && human < 0:
			human = i
		default:
			// Only one keyboard.
			players[i].Human = false
		}
	}
	if human >= 0 && c.Name != "" {
		players[human].Name = c.Name
	}
	return players
}

func humanSeat(players []game.PlayerConfig) int {
	for i, p := range players {
		if p.Human {
			return i
		}
	}
	return -1
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.gameConfig()
	if err != nil {
		return err
	}
	cfg.Players = c.seats(cfg.Players)
	cfg.Hints = cfg.Hints || c.Hints

	// The terminal belongs to the UI, so logs always go to a file.
	logPath := g.LogFile
	if logPath == "" {
		logPath = "setgame.log"
	}
	logFile, err := shared.OpenLogFile(logPath)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := shared.SetupLogger(logFile, g.Debug)

	ctx, stop := shared.SetupSignalHandler(logger)
	defer stop()

	names := make([]string, len(cfg.Players))
	for i, p := range cfg.Players {
		names[i] = p.Name
	}
	gameID := uuid.Must(uuid.NewV7()).String()

	sender := &programSender{}
	displays := []game.Display{tui.NewDisplay(sender)}
	var feed *spectator.Feed
	if c.Spectate != "" {
		feed = spectator.NewFeed(spectator.Options{
			GameID:    gameID,
			Rules:     cfg.Rules,
			TableSize: cfg.TableSize,
			Names:     names,
			Logger:    logger,
		})
		displays = append(displays, feed)
	}

	dealer, err := game.NewDealer(cfg,
		game.WithLogger(logger),
		game.WithGameID(gameID),
		game.WithDisplay(game.NewMultiDisplay(displays...)))
	if err != nil {
		return err
	}

	opts := tui.Options{
		Rules:     cfg.Rules,
		TableSize: cfg.TableSize,
		GameID:    gameID,
		Names:     names,
		Human:     humanSeat(cfg.Players),
		OnQuit:    dealer.Terminate,
		Logger:    logger,
	}
	if opts.Human >= 0 {
		opts.Selector = dealer.Players()[opts.Human]
	}
	program := tea.NewProgram(tui.NewModel(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	sender.attach(program)

	serveCtx, stopServe := context.WithCancel(ctx)
	defer stopServe()

	var (
		result game.Result
		eg     errgroup.Group
	)
	if feed != nil {
		eg.Go(func() error { return feed.Serve(serveCtx, c.Spectate) })
	}
	eg.Go(func() error {
		// The game cannot continue without its screen.
		defer dealer.Terminate()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	eg.Go(func() error {
		defer stopServe()
		var runErr error
		result, runErr = dealer.Run(ctx)
		program.Send(tui.GameOverMsg{Err: runErr})
		return runErr
	})
	if err := eg.Wait(); err != nil {
		return err
	}

	fmt.Print(renderResult(result))
	if c.Summary != "" {
		if err := fileutil.WriteJSONAtomic(c.Summary, result, 0o644); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
		fmt.Println(dimStyle.Render("Summary written to " + c.Summary))
	}
	return nil
}
