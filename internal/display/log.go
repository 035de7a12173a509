// Package display provides headless game.Display implementations.
package display

import (
	"github.com/charmbracelet/log"

	"github.com/lox/setgame/cards"
	"github.com/lox/setgame/internal/game"
)

// LogDisplay writes game events as structured log lines. Token and card
// churn goes to debug; scores, countdown warnings and winners to info.
type LogDisplay struct {
	logger *log.Logger
	rules  cards.Rules
	names  []string
}

// NewLogDisplay creates a log display. names maps player ids to names.
func NewLogDisplay(logger *log.Logger, rules cards.Rules, names []string) *LogDisplay {
	return &LogDisplay{
		logger: logger.WithPrefix("display"),
		rules:  rules,
		names:  names,
	}
}

func (l *LogDisplay) name(player int) string {
	if player >= 0 && player < len(l.names) {
		return l.names[player]
	}
	return "?"
}

// PlaceCard implements game.Display.
func (l *LogDisplay) PlaceCard(card cards.Card, slot int) {
	l.logger.Debug("Card placed", "slot", slot, "card", l.rules.Format(card))
}

// RemoveCard implements game.Display.
func (l *LogDisplay) RemoveCard(slot int) {
	l.logger.Debug("Card removed", "slot", slot)
}

// PlaceToken implements game.Display.
func (l *LogDisplay) PlaceToken(player, slot int) {
	l.logger.Debug("Token placed", "player", l.name(player), "slot", slot)
}

// RemoveToken implements game.Display.
func (l *LogDisplay) RemoveToken(player, slot int) {
	l.logger.Debug("Token removed", "player", l.name(player), "slot", slot)
}

// SetCountdown implements game.Display. Only timeouts are logged.
func (l *LogDisplay) SetCountdown(millis int64, warn bool) {
	if millis == 0 {
		l.logger.Info("Round timed out")
	}
}

// SetFreeze implements game.Display.
func (l *LogDisplay) SetFreeze(player int, millis int64) {}

// SetScore implements game.Display.
func (l *LogDisplay) SetScore(player, score int) {
	l.logger.Info("Score", "player", l.name(player), "score", score)
}

// ShowTable implements game.Display.
func (l *LogDisplay) ShowTable(view game.TableView) {
	l.logger.Debug("Table", "cards", countCards(view.Slots), "deck", view.DeckRemaining, "sets", len(view.Hints))
}

// AnnounceWinners implements game.Display.
func (l *LogDisplay) AnnounceWinners(players []int) {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = l.name(p)
	}
	l.logger.Info("Winners", "players", names)
}

func countCards(slots []cards.Card) int {
	n := 0
	for _, c := range slots {
		if c.Valid() {
			n++
		}
	}
	return n
}
