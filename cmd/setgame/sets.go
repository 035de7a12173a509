package main

import (
	"fmt"

	"github.com/lox/setgame/cards"
	"github.com/lox/setgame/internal/randutil"
)

// SetsCmd deals one table and lists every set on it.
type SetsCmd struct {
	Cards        int `short:"n" help:"Number of cards to deal" default:"12"`
	FeatureCount int `help:"Features per card" default:"4"`
	FeatureSize  int `help:"Values per feature, which is also the set size" default:"3"`
}

// deal shuffles the deck with seed and returns the first n cards.
func (c *SetsCmd) deal(seed int64) (cards.Rules, []cards.Card, error) {
	rules := cards.Rules{FeatureCount: c.FeatureCount, FeatureSize: c.FeatureSize}
	if err := rules.Validate(); err != nil {
		return rules, nil, err
	}
	deck := rules.NewDeck()
	if c.Cards < 1 || c.Cards > len(deck) {
		return rules, nil, fmt.Errorf("cards must be between 1 and %d", len(deck))
	}
	cards.Shuffle(deck, randutil.New(seed))
	return rules, deck[:c.Cards], nil
}

func (c *SetsCmd) Run(g *Globals) error {
	seed, _ := randutil.Seed(g.Seed)
	rules, dealt, err := c.deal(seed)
	if err != nil {
		return err
	}
	fmt.Print(renderSets(rules, dealt, rules.FindSets(dealt, 0)))
	fmt.Println(dimStyle.Render(fmt.Sprintf("seed %d", seed)))
	return nil
}
