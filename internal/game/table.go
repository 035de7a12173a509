package game

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/lox/setgame/cards"
)

var (
	// ErrSlotOccupied is returned when placing a card on a filled slot.
	ErrSlotOccupied = errors.New("slot occupied")
	// ErrSlotOutOfRange is returned for slot indexes outside the table.
	ErrSlotOutOfRange = errors.New("slot out of range")
)

// Table is the shared surface: a fixed row of slots, each holding at most
// one card, plus every player's ordered marks. A slot's card and the marks
// on it change together under one lock, so readers never observe a mark on
// an empty slot.
//
// Display hints are sent after the state lock is released but in the order
// the mutations happened, so a display never sees a token placed on a slot
// after the removal that cleared it.
type Table struct {
	mu sync.RWMutex
	// notify is taken before mu is released and held while the hints of one
	// mutation are sent.
	notify  sync.Mutex
	slots   []cards.Card
	marks   [][]int // by player id, in marking order
	setSize int
	display Display
}

// NewTable creates an empty table with size slots for players players.
func NewTable(size, players, setSize int, display Display) *Table {
	if display == nil {
		display = NullDisplay{}
	}
	slots := make([]cards.Card, size)
	for i := range slots {
		slots[i] = cards.None
	}
	return &Table{
		slots:   slots,
		marks:   make([][]int, players),
		setSize: setSize,
		display: display,
	}
}

// Size returns the number of slots.
func (t *Table) Size() int {
	return len(t.slots)
}

// PlaceCard puts card on an empty slot.
func (t *Table) PlaceCard(card cards.Card, slot int) error {
	t.mu.Lock()
	if slot < 0 || slot >= len(t.slots) {
		t.mu.Unlock()
		return fmt.Errorf("place card %d on slot %d: %w", card, slot, ErrSlotOutOfRange)
	}
	if t.slots[slot].Valid() {
		t.mu.Unlock()
		return fmt.Errorf("place card %d on slot %d: %w", card, slot, ErrSlotOccupied)
	}
	t.slots[slot] = card
	t.unlockAndNotify(func() {
		t.display.PlaceCard(card, slot)
	})
	return nil
}

// RemoveCard empties slot and drops every player's mark on it. It returns
// the removed card and the players that lost a mark; ok is false when the
// slot was already empty.
func (t *Table) RemoveCard(slot int) (card cards.Card, affected []int, ok bool) {
	t.mu.Lock()
	if slot < 0 || slot >= len(t.slots) || !t.slots[slot].Valid() {
		t.mu.Unlock()
		return cards.None, nil, false
	}
	card = t.slots[slot]
	t.slots[slot] = cards.None
	for player, marked := range t.marks {
		if i := slices.Index(marked, slot); i >= 0 {
			t.marks[player] = slices.Delete(marked, i, i+1)
			affected = append(affected, player)
		}
	}
	t.unlockAndNotify(func() {
		for _, player := range affected {
			t.display.RemoveToken(player, slot)
		}
		t.display.RemoveCard(slot)
	})
	return card, affected, true
}

// Mark adds slot to player's selection. It is a no-op when the slot is out
// of range, empty, already marked by the player, or the player already holds
// a full selection. count is the player's mark count afterwards.
func (t *Table) Mark(player, slot int) (ok bool, count int) {
	t.mu.Lock()
	if !t.validPlayer(player) {
		t.mu.Unlock()
		return false, 0
	}
	marked := t.marks[player]
	if slot < 0 || slot >= len(t.slots) || !t.slots[slot].Valid() ||
		len(marked) >= t.setSize || slices.Contains(marked, slot) {
		t.mu.Unlock()
		return false, len(marked)
	}
	t.marks[player] = append(marked, slot)
	count = len(t.marks[player])
	t.unlockAndNotify(func() {
		t.display.PlaceToken(player, slot)
	})
	return true, count
}

// Unmark removes slot from player's selection, reporting whether it was marked.
func (t *Table) Unmark(player, slot int) bool {
	t.mu.Lock()
	if !t.validPlayer(player) {
		t.mu.Unlock()
		return false
	}
	i := slices.Index(t.marks[player], slot)
	if i < 0 {
		t.mu.Unlock()
		return false
	}
	t.marks[player] = slices.Delete(t.marks[player], i, i+1)
	t.unlockAndNotify(func() {
		t.display.RemoveToken(player, slot)
	})
	return true
}

// ClearMarks drops all of player's marks.
func (t *Table) ClearMarks(player int) {
	t.mu.Lock()
	if !t.validPlayer(player) {
		t.mu.Unlock()
		return
	}
	cleared := t.marks[player]
	t.marks[player] = nil
	t.unlockAndNotify(func() {
		for _, slot := range cleared {
			t.display.RemoveToken(player, slot)
		}
	})
}

// MarkCount returns how many slots player has marked.
func (t *Table) MarkCount(player int) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.validPlayer(player) {
		return 0
	}
	return len(t.marks[player])
}

// SelectedSlots returns player's marked slots in marking order.
func (t *Table) SelectedSlots(player int) []int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.validPlayer(player) {
		return nil
	}
	return slices.Clone(t.marks[player])
}

// Selection returns player's marked slots and the cards on them, read
// together under one lock.
func (t *Table) Selection(player int) (slots []int, cs []cards.Card) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.validPlayer(player) {
		return nil, nil
	}
	slots = slices.Clone(t.marks[player])
	cs = make([]cards.Card, len(slots))
	for i, slot := range slots {
		cs[i] = t.slots[slot]
	}
	return slots, cs
}

// Card returns the card on slot.
func (t *Table) Card(slot int) (cards.Card, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if slot < 0 || slot >= len(t.slots) || !t.slots[slot].Valid() {
		return cards.None, false
	}
	return t.slots[slot], true
}

// Cards returns the cards currently on the table in slot order.
func (t *Table) Cards() []cards.Card {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]cards.Card, 0, len(t.slots))
	for _, c := range t.slots {
		if c.Valid() {
			out = append(out, c)
		}
	}
	return out
}

// EmptySlots returns the empty slots in slot order.
func (t *Table) EmptySlots() []int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []int
	for i, c := range t.slots {
		if !c.Valid() {
			out = append(out, i)
		}
	}
	return out
}

// CountCards returns the number of occupied slots.
func (t *Table) CountCards() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, c := range t.slots {
		if c.Valid() {
			n++
		}
	}
	return n
}

// Reset empties every slot and clears every mark, returning the removed cards.
func (t *Table) Reset() []cards.Card {
	t.mu.Lock()
	var (
		removed      []cards.Card
		removedSlots []int
		tokens       [][2]int
	)
	for player, marked := range t.marks {
		for _, slot := range marked {
			tokens = append(tokens, [2]int{player, slot})
		}
		t.marks[player] = nil
	}
	for i, c := range t.slots {
		if c.Valid() {
			removed = append(removed, c)
			removedSlots = append(removedSlots, i)
			t.slots[i] = cards.None
		}
	}
	t.unlockAndNotify(func() {
		for _, tok := range tokens {
			t.display.RemoveToken(tok[0], tok[1])
		}
		for _, slot := range removedSlots {
			t.display.RemoveCard(slot)
		}
	})
	return removed
}

// Snapshot copies the slots and marks. Hints and DeckRemaining are left for
// the dealer to fill in.
func (t *Table) Snapshot() TableView {
	t.mu.RLock()
	defer t.mu.RUnlock()
	view := TableView{
		Slots: slices.Clone(t.slots),
		Marks: make(map[int][]int, len(t.marks)),
	}
	for player, marked := range t.marks {
		if len(marked) > 0 {
			view.Marks[player] = slices.Clone(marked)
		}
	}
	return view
}

// unlockAndNotify releases mu, which the caller holds for writing, and runs
// send with notify held. Taking notify before releasing mu orders the hints
// of concurrent mutations the same way as the mutations themselves.
func (t *Table) unlockAndNotify(send func()) {
	t.notify.Lock()
	t.mu.Unlock()
	defer t.notify.Unlock()
	send()
}

func (t *Table) validPlayer(player int) bool {
	return player >= 0 && player < len(t.marks)
}
