// Package config loads game settings from an HCL file.
//
//	game {
//	  table_size     = 12
//	  round_duration = "60s"
//	  penalty_freeze = "3s"
//	}
//
//	player "alice" {
//	  human = true
//	}
//	player "bot-1" {}
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/setgame/cards"
	"github.com/lox/setgame/internal/game"
)

// File is the complete configuration file.
type File struct {
	Game    *GameSettings    `hcl:"game,block"`
	Players []PlayerSettings `hcl:"player,block"`
}

// GameSettings holds the game block. Durations are Go duration strings.
type GameSettings struct {
	FeatureSize  int `hcl:"feature_size,optional"`
	FeatureCount int `hcl:"feature_count,optional"`
	DeckSize     int `hcl:"deck_size,optional"`
	TableSize    int `hcl:"table_size,optional"`

	RoundDuration    string `hcl:"round_duration,optional"`
	WarningThreshold string `hcl:"warning_threshold,optional"`
	PointFreeze      string `hcl:"point_freeze,optional"`
	PenaltyFreeze    string `hcl:"penalty_freeze,optional"`
	Tick             string `hcl:"tick,optional"`
	WarningTick      string `hcl:"warning_tick,optional"`
	FreezeTick       string `hcl:"freeze_tick,optional"`
	BotInterval      string `hcl:"bot_interval,optional"`

	Hints bool  `hcl:"hints,optional"`
	Seed  int64 `hcl:"seed,optional"`
}

// PlayerSettings defines one seat.
type PlayerSettings struct {
	Name  string `hcl:"name,label"`
	Human bool   `hcl:"human,optional"`
}

// Default returns the classic setup as a File.
func Default() *File {
	f := &File{}
	f.applyDefaults()
	return f
}

// Load reads filename. A missing file yields Default.
func Load(filename string) (*File, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source and fills in defaults for anything not set.
func Parse(src []byte, filename string) (*File, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config File
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (f *File) applyDefaults() {
	def := game.DefaultConfig()
	if f.Game == nil {
		f.Game = &GameSettings{}
	}
	g := f.Game

	if g.FeatureSize == 0 {
		g.FeatureSize = def.Rules.FeatureSize
	}
	if g.FeatureCount == 0 {
		g.FeatureCount = def.Rules.FeatureCount
	}
	if g.TableSize == 0 {
		g.TableSize = def.TableSize
	}
	for _, d := range []struct {
		field *string
		value time.Duration
	}{
		{&g.RoundDuration, def.RoundDuration},
		{&g.WarningThreshold, def.WarningThreshold},
		{&g.PointFreeze, def.PointFreeze},
		{&g.PenaltyFreeze, def.PenaltyFreeze},
		{&g.Tick, def.Tick},
		{&g.WarningTick, def.WarningTick},
		{&g.FreezeTick, def.FreezeTick},
		{&g.BotInterval, def.BotInterval},
	} {
		if *d.field == "" {
			*d.field = d.value.String()
		}
	}

	if len(f.Players) == 0 {
		for _, p := range def.Players {
			f.Players = append(f.Players, PlayerSettings{Name: p.Name, Human: p.Human})
		}
	}
}

// GameConfig converts the file into a runtime configuration.
func (f *File) GameConfig() (game.Config, error) {
	g := f.Game
	if g == nil {
		return game.Config{}, fmt.Errorf("missing game block")
	}

	cfg := game.Config{
		Rules:     cards.Rules{FeatureSize: g.FeatureSize, FeatureCount: g.FeatureCount},
		DeckSize:  g.DeckSize,
		TableSize: g.TableSize,
		Hints:     g.Hints,
		Seed:      g.Seed,
	}
	for _, d := range []struct {
		name  string
		value string
		into  *time.Duration
	}{
		{"round_duration", g.RoundDuration, &cfg.RoundDuration},
		{"warning_threshold", g.WarningThreshold, &cfg.WarningThreshold},
		{"point_freeze", g.PointFreeze, &cfg.PointFreeze},
		{"penalty_freeze", g.PenaltyFreeze, &cfg.PenaltyFreeze},
		{"tick", g.Tick, &cfg.Tick},
		{"warning_tick", g.WarningTick, &cfg.WarningTick},
		{"freeze_tick", g.FreezeTick, &cfg.FreezeTick},
		{"bot_interval", g.BotInterval, &cfg.BotInterval},
	} {
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return game.Config{}, fmt.Errorf("%s: %w", d.name, err)
		}
		*d.into = parsed
	}

	for _, p := range f.Players {
		cfg.Players = append(cfg.Players, game.PlayerConfig{Name: p.Name, Human: p.Human})
	}
	return cfg, nil
}

// Validate checks the file, including the game rules it describes.
func (f *File) Validate() error {
	seen := make(map[string]bool, len(f.Players))
	for _, p := range f.Players {
		if seen[p.Name] {
			return fmt.Errorf("player %s: defined more than once", p.Name)
		}
		seen[p.Name] = true
	}

	cfg, err := f.GameConfig()
	if err != nil {
		return err
	}
	return cfg.Validate()
}
