package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/lox/setgame/cards"
)

// ErrInvalidConfig is wrapped by every Config validation failure.
var ErrInvalidConfig = errors.New("invalid game config")

// PlayerConfig describes one seat.
type PlayerConfig struct {
	Name  string
	Human bool
}

// Config holds the runtime parameters of a game.
type Config struct {
	// Rules define the deck; Rules.FeatureSize is the set size.
	Rules cards.Rules
	// DeckSize limits the deck to the first DeckSize card ids. Zero means the
	// full deck.
	DeckSize  int
	TableSize int

	RoundDuration    time.Duration
	WarningThreshold time.Duration
	PointFreeze      time.Duration
	PenaltyFreeze    time.Duration

	// Tick is the dealer's sleep between countdown updates; WarningTick
	// replaces it once the countdown is at or under WarningThreshold.
	Tick        time.Duration
	WarningTick time.Duration
	// FreezeTick is the display granularity of freeze countdowns.
	FreezeTick time.Duration
	// BotInterval is the pause between two automated key presses.
	BotInterval time.Duration

	// Hints logs the sets present on the table whenever it is redrawn.
	Hints bool
	// Seed drives every random choice. Zero picks a seed from the clock.
	Seed int64

	Players []PlayerConfig
}

// DefaultConfig returns the classic setup: 81 cards, 12 slots, a one minute
// round, one human and three bots.
func DefaultConfig() Config {
	return Config{
		Rules:            cards.Standard(),
		TableSize:        12,
		RoundDuration:    60 * time.Second,
		WarningThreshold: 5 * time.Second,
		PointFreeze:      1 * time.Second,
		PenaltyFreeze:    3 * time.Second,
		Tick:             400 * time.Millisecond,
		WarningTick:      10 * time.Millisecond,
		FreezeTick:       100 * time.Millisecond,
		BotInterval:      50 * time.Millisecond,
		Players: []PlayerConfig{
			{Name: "You", Human: true},
			{Name: "bot-1"},
			{Name: "bot-2"},
			{Name: "bot-3"},
		},
	}
}

// SetSize returns the number of cards in a set.
func (c Config) SetSize() int {
	return c.Rules.FeatureSize
}

// EffectiveDeckSize resolves DeckSize against the rules.
func (c Config) EffectiveDeckSize() int {
	full := c.Rules.DeckSize()
	if c.DeckSize <= 0 || c.DeckSize > full {
		return full
	}
	return c.DeckSize
}

// Validate checks the configuration for values the dealer cannot run with.
func (c Config) Validate() error {
	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.DeckSize > c.Rules.DeckSize() {
		return fmt.Errorf("%w: deck size %d exceeds the %d distinct cards", ErrInvalidConfig, c.DeckSize, c.Rules.DeckSize())
	}
	if c.TableSize < c.SetSize() {
		return fmt.Errorf("%w: table size %d is smaller than the set size %d", ErrInvalidConfig, c.TableSize, c.SetSize())
	}
	if c.RoundDuration <= 0 {
		return fmt.Errorf("%w: round duration must be positive", ErrInvalidConfig)
	}
	if c.WarningThreshold < 0 {
		return fmt.Errorf("%w: warning threshold must not be negative", ErrInvalidConfig)
	}
	if c.PointFreeze < 0 {
		return fmt.Errorf("%w: point freeze must not be negative", ErrInvalidConfig)
	}
	if c.PenaltyFreeze <= c.PointFreeze {
		return fmt.Errorf("%w: penalty freeze %v must be longer than point freeze %v", ErrInvalidConfig, c.PenaltyFreeze, c.PointFreeze)
	}
	for name, d := range map[string]time.Duration{
		"tick":         c.Tick,
		"warning tick": c.WarningTick,
		"freeze tick":  c.FreezeTick,
		"bot interval": c.BotInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, name)
		}
	}
	if len(c.Players) == 0 {
		return fmt.Errorf("%w: at least one player is required", ErrInvalidConfig)
	}
	return nil
}
