package display

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/muesli/termenv"

	"github.com/lox/setgame/cards"
	"github.com/lox/setgame/internal/game"
)

// DotsDisplay prints one colored dot per accepted set and a line with the
// winners at the end of the game. Player colors cycle through a fixed palette.
type DotsDisplay struct {
	writer    io.Writer
	profile   termenv.Profile
	mu        sync.Mutex
	dotCount  int
	lineWidth int // wrap after this many dots
}

var dotPalette = []string{"#04B575", "#EE6FF8", "#FF6B6B", "#4ECDC4", "#FFD93D", "#6C8EBF"}

// NewDotsDisplay creates a dots display. A nil writer means stdout.
func NewDotsDisplay(writer io.Writer, profile termenv.Profile) *DotsDisplay {
	if writer == nil {
		writer = os.Stdout
	}
	return &DotsDisplay{
		writer:    writer,
		profile:   profile,
		lineWidth: 80,
	}
}

func (d *DotsDisplay) PlaceCard(cards.Card, int) {}
func (d *DotsDisplay) RemoveCard(int)            {}
func (d *DotsDisplay) PlaceToken(int, int)       {}
func (d *DotsDisplay) RemoveToken(int, int)      {}
func (d *DotsDisplay) SetCountdown(int64, bool)  {}
func (d *DotsDisplay) SetFreeze(int, int64)      {}
func (d *DotsDisplay) ShowTable(game.TableView)  {}

// SetScore implements game.Display.
func (d *DotsDisplay) SetScore(player, _ int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	color := d.profile.Color(dotPalette[player%len(dotPalette)])
	fmt.Fprint(d.writer, d.profile.String("●").Foreground(color).String())
	d.dotCount++
	if d.dotCount >= d.lineWidth {
		fmt.Fprintln(d.writer)
		d.dotCount = 0
	}
}

// AnnounceWinners implements game.Display.
func (d *DotsDisplay) AnnounceWinners(players []int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dotCount > 0 {
		fmt.Fprintln(d.writer)
		d.dotCount = 0
	}
	fmt.Fprintf(d.writer, "Winners: %v\n", players)
}
