package main

import (
	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/muesli/termenv"

	"github.com/lox/setgame/internal/config"
	"github.com/lox/setgame/internal/game"
)

var version = "dev"

// Globals are the flags shared by every command.
type Globals struct {
	Config  string `short:"c" help:"HCL config file; missing files fall back to defaults" default:"setgame.hcl" env:"SETGAME_CONFIG" type:"path"`
	Debug   bool   `help:"Enable debug logging" env:"SETGAME_DEBUG"`
	LogFile string `help:"Write logs to this file" env:"SETGAME_LOG_FILE" type:"path"`
	NoColor bool   `help:"Disable colored output" env:"NO_COLOR"`
	Seed    int64  `help:"Seed for every random choice; 0 picks one from the clock" env:"SETGAME_SEED"`
}

// CLI is the top-level command line.
type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`

	Play     PlayCmd     `cmd:"" default:"withargs" help:"Play against bots in the terminal"`
	Simulate SimulateCmd `cmd:"" help:"Run headless games between bots and report statistics"`
	Sets     SetsCmd     `cmd:"" help:"Deal a random table and list the sets on it"`
}

// gameConfig loads the config file and applies the global overrides.
func (g *Globals) gameConfig() (game.Config, error) {
	file, err := config.Load(g.Config)
	if err != nil {
		return game.Config{}, err
	}
	if err := file.Validate(); err != nil {
		return game.Config{}, err
	}
	cfg, err := file.GameConfig()
	if err != nil {
		return game.Config{}, err
	}
	if g.Seed != 0 {
		cfg.Seed = g.Seed
	}
	return cfg, nil
}

// profile returns the color profile for plain terminal output.
func (g *Globals) profile() termenv.Profile {
	if g.NoColor {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

func main() {
	// A .env file is optional.
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("setgame"),
		kong.Description("The Set card game in your terminal: spot three cards before the bots do"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.Bind(&cli.Globals),
	)

	if cli.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	ctx.FatalIfErrorf(ctx.Run())
}
