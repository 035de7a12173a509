package tui

import "github.com/charmbracelet/bubbles/key"

// slotKeys lays the slots out on the keyboard row by row, four per row.
const slotKeys = "qwerasdfzxcvuiopjkl;m,./"

type keyMap struct {
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Slots      []key.Binding
}

func newKeyMap(tableSize int) keyMap {
	km := keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("up", "pgup"),
			key.WithHelp("↑", "scroll log"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("down", "pgdown"),
			key.WithHelp("↓", "scroll log"),
		),
	}
	for slot := range min(tableSize, len(slotKeys)) {
		k := string(slotKeys[slot])
		km.Slots = append(km.Slots, key.NewBinding(key.WithKeys(k), key.WithHelp(k, "toggle slot")))
	}
	return km
}

// slotFor returns the slot bound to a key press.
func (km keyMap) slotFor(msg string) (int, bool) {
	for slot, b := range km.Slots {
		for _, k := range b.Keys() {
			if k == msg {
				return slot, true
			}
		}
	}
	return 0, false
}

// slotLabel returns the key that toggles slot, or a blank.
func (km keyMap) slotLabel(slot int) string {
	if slot < len(km.Slots) {
		return km.Slots[slot].Help().Key
	}
	return " "
}
