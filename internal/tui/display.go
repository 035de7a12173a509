package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lox/setgame/cards"
	"github.com/lox/setgame/internal/game"
)

type (
	cardMsg struct {
		slot int
		card cards.Card
	}
	tokenMsg struct {
		player, slot int
		placed       bool
	}
	countdownMsg struct {
		millis int64
		warn   bool
	}
	freezeMsg struct {
		player int
		millis int64
	}
	scoreMsg struct {
		player, score int
	}
	tableMsg struct {
		view game.TableView
	}
	winnersMsg struct {
		players []int
	}
)

// Sender delivers messages to a running program. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// Display forwards game notifications to the Bubble Tea event loop.
type Display struct {
	sender Sender
}

// NewDisplay creates a display that sends to sender.
func NewDisplay(sender Sender) *Display {
	return &Display{sender: sender}
}

func (d *Display) PlaceCard(card cards.Card, slot int) {
	d.sender.Send(cardMsg{slot: slot, card: card})
}

func (d *Display) RemoveCard(slot int) {
	d.sender.Send(cardMsg{slot: slot, card: cards.None})
}

func (d *Display) PlaceToken(player, slot int) {
	d.sender.Send(tokenMsg{player: player, slot: slot, placed: true})
}

func (d *Display) RemoveToken(player, slot int) {
	d.sender.Send(tokenMsg{player: player, slot: slot})
}

func (d *Display) SetCountdown(millis int64, warn bool) {
	d.sender.Send(countdownMsg{millis: millis, warn: warn})
}

func (d *Display) SetFreeze(player int, millis int64) {
	d.sender.Send(freezeMsg{player: player, millis: millis})
}

func (d *Display) SetScore(player, score int) {
	d.sender.Send(scoreMsg{player: player, score: score})
}

func (d *Display) ShowTable(view game.TableView) {
	d.sender.Send(tableMsg{view: view})
}

func (d *Display) AnnounceWinners(players []int) {
	d.sender.Send(winnersMsg{players: players})
}
