package game

import "github.com/lox/setgame/cards"

// Display receives fire-and-forget notifications about the game. Calls come
// from the dealer and player goroutines concurrently; implementations must
// be safe for concurrent use and must not call back into the game.
type Display interface {
	// PlaceCard and RemoveCard mirror table slot changes.
	PlaceCard(card cards.Card, slot int)
	RemoveCard(slot int)

	// PlaceToken and RemoveToken mirror a player's marks.
	PlaceToken(player, slot int)
	RemoveToken(player, slot int)

	// SetCountdown reports the time left in the round. warn is set once the
	// countdown is at or under the warning threshold.
	SetCountdown(millis int64, warn bool)

	// SetFreeze reports a player's remaining freeze; zero ends the freeze.
	SetFreeze(player int, millis int64)

	// SetScore reports a player's new score.
	SetScore(player, score int)

	// ShowTable is the coalesced redraw hint raised after table changes.
	ShowTable(view TableView)

	// AnnounceWinners is called exactly once, at the end of the game.
	AnnounceWinners(players []int)
}

// TableView is a consistent copy of the table.
type TableView struct {
	// Slots holds the card in each slot, cards.None when empty.
	Slots []cards.Card
	// Marks maps a player id to the slots it has marked, in marking order.
	Marks map[int][]int
	// Hints lists groups of slots whose cards form a set.
	Hints [][]int
	// DeckRemaining is the number of cards left to draw.
	DeckRemaining int
}

// NullDisplay discards everything.
type NullDisplay struct{}

func (NullDisplay) PlaceCard(cards.Card, int) {}
func (NullDisplay) RemoveCard(int)            {}
func (NullDisplay) PlaceToken(int, int)       {}
func (NullDisplay) RemoveToken(int, int)      {}
func (NullDisplay) SetCountdown(int64, bool)  {}
func (NullDisplay) SetFreeze(int, int64)      {}
func (NullDisplay) SetScore(int, int)         {}
func (NullDisplay) ShowTable(TableView)       {}
func (NullDisplay) AnnounceWinners([]int)     {}

// MultiDisplay fans notifications out to several displays.
type MultiDisplay struct {
	displays []Display
}

// NewMultiDisplay builds a composite display, pruning nil entries and
// returning a NullDisplay when nothing is left.
func NewMultiDisplay(displays ...Display) Display {
	filtered := make([]Display, 0, len(displays))
	for _, d := range displays {
		if d != nil {
			filtered = append(filtered, d)
		}
	}

	switch len(filtered) {
	case 0:
		return NullDisplay{}
	case 1:
		return filtered[0]
	default:
		return MultiDisplay{displays: filtered}
	}
}

func (m MultiDisplay) PlaceCard(card cards.Card, slot int) {
	for _, d := range m.displays {
		d.PlaceCard(card, slot)
	}
}

func (m MultiDisplay) RemoveCard(slot int) {
	for _, d := range m.displays {
		d.RemoveCard(slot)
	}
}

func (m MultiDisplay) PlaceToken(player, slot int) {
	for _, d := range m.displays {
		d.PlaceToken(player, slot)
	}
}

func (m MultiDisplay) RemoveToken(player, slot int) {
	for _, d := range m.displays {
		d.RemoveToken(player, slot)
	}
}

func (m MultiDisplay) SetCountdown(millis int64, warn bool) {
	for _, d := range m.displays {
		d.SetCountdown(millis, warn)
	}
}

func (m MultiDisplay) SetFreeze(player int, millis int64) {
	for _, d := range m.displays {
		d.SetFreeze(player, millis)
	}
}

func (m MultiDisplay) SetScore(player, score int) {
	for _, d := range m.displays {
		d.SetScore(player, score)
	}
}

func (m MultiDisplay) ShowTable(view TableView) {
	for _, d := range m.displays {
		d.ShowTable(view)
	}
}

func (m MultiDisplay) AnnounceWinners(players []int) {
	for _, d := range m.displays {
		d.AnnounceWinners(players)
	}
}
