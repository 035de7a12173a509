package game

import (
	rand "math/rand/v2"
	"slices"

	"github.com/lox/setgame/cards"
)

// Deck is the draw pile: the cards not currently on the table. Only the
// dealer goroutine touches it, so it has no lock.
type Deck struct {
	cards []cards.Card
}

// NewDeck creates a draw pile holding cs.
func NewDeck(cs []cards.Card) *Deck {
	return &Deck{cards: slices.Clone(cs)}
}

// Len returns the number of cards left.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Draw removes and returns a uniformly random card.
func (d *Deck) Draw(rng *rand.Rand) (cards.Card, bool) {
	if len(d.cards) == 0 {
		return cards.None, false
	}
	i := rng.IntN(len(d.cards))
	card := d.cards[i]
	last := len(d.cards) - 1
	d.cards[i] = d.cards[last]
	d.cards = d.cards[:last]
	return card, true
}

// Return puts cards back on the pile.
func (d *Deck) Return(cs ...cards.Card) {
	d.cards = append(d.cards, cs...)
}

// Cards returns a copy of the pile.
func (d *Deck) Cards() []cards.Card {
	return slices.Clone(d.cards)
}
