package display

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"github.com/lox/setgame/cards"
	"github.com/lox/setgame/internal/game"
)

var _ game.Display = (*LogDisplay)(nil)
var _ game.Display = (*DotsDisplay)(nil)

func TestLogDisplay(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})
	d := NewLogDisplay(logger, cards.Standard(), []string{"alice", "bob"})

	d.PlaceToken(0, 3)
	d.SetCountdown(1200, true)
	d.SetScore(1, 2)
	d.SetCountdown(0, true)
	d.AnnounceWinners([]int{1, 7})

	out := buf.String()
	assert.NotContains(t, out, "Token placed", "token churn is debug only")
	assert.Contains(t, out, "player=bob")
	assert.Contains(t, out, "score=2")
	assert.Contains(t, out, "Round timed out")
	assert.Contains(t, out, "Winners")
	assert.Contains(t, out, "?")
}

func TestDotsDisplay(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	d := NewDotsDisplay(&buf, termenv.Ascii)
	d.lineWidth = 2

	d.SetScore(0, 1)
	d.SetScore(1, 1)
	d.SetScore(0, 2)
	d.AnnounceWinners([]int{0})

	assert.Equal(t, "●●\n●\nWinners: [0]\n", buf.String())
}
