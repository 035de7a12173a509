package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/setgame/cards"
	"github.com/lox/setgame/internal/game"
	"github.com/lox/setgame/internal/statistics"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestGlobalsGameConfig(t *testing.T) {
	t.Run("missing file uses defaults", func(t *testing.T) {
		g := &Globals{Config: filepath.Join(t.TempDir(), "none.hcl"), Seed: 7}
		cfg, err := g.gameConfig()
		require.NoError(t, err)
		assert.Equal(t, int64(7), cfg.Seed)
		assert.Equal(t, game.DefaultConfig().TableSize, cfg.TableSize)
	})

	t.Run("file values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "setgame.hcl")
		src := `
game {
  table_size = 15
  seed       = 99
}

player "alice" {
  human = true
}

player "bot" {}
`
		require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
		cfg, err := (&Globals{Config: path}).gameConfig()
		require.NoError(t, err)
		assert.Equal(t, 15, cfg.TableSize)
		assert.Equal(t, int64(99), cfg.Seed)
		require.Len(t, cfg.Players, 2)
		assert.Equal(t, "alice", cfg.Players[0].Name)
	})

	t.Run("invalid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "setgame.hcl")
		require.NoError(t, os.WriteFile(path, []byte("game { table_size = 1 }"), 0o644))
		_, err := (&Globals{Config: path}).gameConfig()
		require.Error(t, err)
	})
}

func TestPlaySeats(t *testing.T) {
	configured := []game.PlayerConfig{
		{Name: "a", Human: true},
		{Name: "b", Human: true},
		{Name: "c"},
	}

	t.Run("single keyboard", func(t *testing.T) {
		seats := (&PlayCmd{Bots: -1, Name: "zoe"}).seats(configured)
		assert.Equal(t, []game.PlayerConfig{
			{Name: "zoe", Human: true},
			{Name: "b"},
			{Name: "c"},
		}, seats)
		assert.True(t, configured[1].Human, "config must not be modified")
		assert.Equal(t, 0, humanSeat(seats))
	})

	t.Run("bots override", func(t *testing.T) {
		seats := (&PlayCmd{Bots: 2}).seats(configured)
		assert.Equal(t, []game.PlayerConfig{
			{Name: "You", Human: true},
			{Name: "bot-1"},
			{Name: "bot-2"},
		}, seats)
	})

	t.Run("watch", func(t *testing.T) {
		seats := (&PlayCmd{Bots: -1, Watch: true}).seats(configured)
		assert.Equal(t, -1, humanSeat(seats))
	})
}

func TestScaledConfig(t *testing.T) {
	cfg := scaled(game.DefaultConfig(), 0.01)
	assert.Equal(t, 600*time.Millisecond, cfg.RoundDuration)
	assert.Equal(t, 10*time.Millisecond, cfg.PointFreeze)
	assert.Equal(t, 30*time.Millisecond, cfg.PenaltyFreeze)
	assert.Equal(t, 100*time.Microsecond, cfg.WarningTick)
	require.NoError(t, cfg.Validate())

	tiny := scaled(game.DefaultConfig(), 1e-9)
	assert.Greater(t, tiny.PenaltyFreeze, tiny.PointFreeze)
	require.NoError(t, tiny.Validate())

	assert.Equal(t, game.DefaultConfig().Tick, scaled(game.DefaultConfig(), 1).Tick)
}

func TestSimulateConfig(t *testing.T) {
	g := &Globals{Config: filepath.Join(t.TempDir(), "none.hcl")}

	cfg, err := (&SimulateCmd{Bots: 3, TimeScale: 1}).config(g)
	require.NoError(t, err)
	require.Len(t, cfg.Players, 3)
	for _, p := range cfg.Players {
		assert.False(t, p.Human)
	}

	cfg, err = (&SimulateCmd{TimeScale: 1}).config(g)
	require.NoError(t, err)
	require.Len(t, cfg.Players, len(game.DefaultConfig().Players))
	for _, p := range cfg.Players {
		assert.False(t, p.Human)
	}
	assert.True(t, game.DefaultConfig().Players[0].Human)
}

func TestSetsDeal(t *testing.T) {
	cmd := &SetsCmd{Cards: 12, FeatureCount: 4, FeatureSize: 3}
	rules, first, err := cmd.deal(5)
	require.NoError(t, err)
	assert.Equal(t, cards.Standard(), rules)
	assert.Len(t, first, 12)

	_, again, err := cmd.deal(5)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	_, _, err = (&SetsCmd{Cards: 82, FeatureCount: 4, FeatureSize: 3}).deal(5)
	require.Error(t, err)
	_, _, err = (&SetsCmd{Cards: 3, FeatureCount: 0, FeatureSize: 3}).deal(5)
	require.ErrorIs(t, err, cards.ErrInvalidRules)
}

func TestRenderResult(t *testing.T) {
	out := renderResult(game.Result{
		GameID:  "g1",
		Seed:    3,
		Reason:  game.ReasonNoSets,
		Winners: []int{1},
		Scores: []game.PlayerScore{
			{ID: 0, Name: "alice", Score: 2},
			{ID: 1, Name: "bob", Score: 5},
		},
		Rounds:    4,
		SetsFound: 7,
	})
	assert.Contains(t, out, "Game over")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "★ winner")
	assert.Equal(t, 1, strings.Count(out, "★"))
	assert.Contains(t, out, "seed 3")
}

func TestRenderStatistics(t *testing.T) {
	var stats statistics.Statistics
	for _, sets := range []int{3, 5} {
		stats.Add(game.Result{
			Reason:    game.ReasonNoSets,
			Winners:   []int{0},
			Scores:    []game.PlayerScore{{ID: 0, Name: "bot-1", Score: sets}},
			SetsFound: sets,
		})
	}
	out := renderStatistics(&stats)
	assert.Contains(t, out, "2 games")
	assert.Contains(t, out, "Sets per game: 4.00")
	assert.Contains(t, out, "no_sets=2")
	assert.Contains(t, out, "bot-1")
	assert.Contains(t, out, "100.0%")
}

func TestRenderSets(t *testing.T) {
	rules := cards.Standard()
	dealt := []cards.Card{0, 1, 2, 4}
	out := renderSets(rules, dealt, rules.FindSets(dealt, 0))
	assert.Contains(t, out, "4 cards, 1 sets")
	assert.Contains(t, out, "[0 1 2]")

	out = renderSets(rules, []cards.Card{0, 1}, nil)
	assert.Contains(t, out, "No sets on this table")
}

func TestProgramSenderBeforeAttach(t *testing.T) {
	// Messages sent before the program exists are dropped.
	(&programSender{}).Send(nil)
}
