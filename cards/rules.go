package cards

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

// ErrInvalidRules is returned by Validate for unusable feature dimensions.
var ErrInvalidRules = errors.New("invalid rules")

// maxDeckSize bounds FeatureSize^FeatureCount so ids stay small.
const maxDeckSize = 1 << 20

// Rules describes the feature space of the deck. FeatureSize is both the
// number of values per feature and the number of cards in a set.
type Rules struct {
	FeatureSize  int
	FeatureCount int
}

// Standard returns the classic rule set: 4 features with 3 values, 81 cards.
func Standard() Rules {
	return Rules{FeatureSize: 3, FeatureCount: 4}
}

// Validate checks that the rule dimensions describe a playable deck.
func (r Rules) Validate() error {
	if r.FeatureSize < 2 {
		return fmt.Errorf("%w: feature size must be at least 2, got %d", ErrInvalidRules, r.FeatureSize)
	}
	if r.FeatureCount < 1 {
		return fmt.Errorf("%w: feature count must be at least 1, got %d", ErrInvalidRules, r.FeatureCount)
	}
	size := 1
	for range r.FeatureCount {
		size *= r.FeatureSize
		if size > maxDeckSize {
			return fmt.Errorf("%w: deck of %d^%d cards is too large", ErrInvalidRules, r.FeatureSize, r.FeatureCount)
		}
	}
	return nil
}

// DeckSize returns the number of distinct cards, FeatureSize^FeatureCount.
func (r Rules) DeckSize() int {
	size := 1
	for range r.FeatureCount {
		size *= r.FeatureSize
	}
	return size
}

// Contains reports whether c is a card of this deck.
func (r Rules) Contains(c Card) bool {
	return c >= 0 && int(c) < r.DeckSize()
}

// Features decodes c into its feature values.
func (r Rules) Features(c Card) []int {
	f := make([]int, r.FeatureCount)
	v := int(c)
	for i := range f {
		f[i] = v % r.FeatureSize
		v /= r.FeatureSize
	}
	return f
}

// CardOf encodes feature values back into a card id.
func (r Rules) CardOf(features []int) Card {
	id, mul := 0, 1
	for _, v := range features {
		id += v * mul
		mul *= r.FeatureSize
	}
	return Card(id)
}

// NewDeck returns the first size cards in id order. A size of zero or less
// yields the full deck.
func (r Rules) NewDeck(size ...int) []Card {
	n := r.DeckSize()
	if len(size) > 0 && size[0] > 0 && size[0] < n {
		n = size[0]
	}
	deck := make([]Card, n)
	for i := range deck {
		deck[i] = Card(i)
	}
	return deck
}

// Shuffle shuffles cards in place using Fisher-Yates.
func Shuffle(cs []Card, rng *rand.Rand) {
	for i := len(cs) - 1; i > 0; i-- {
		var j int
		if rng != nil {
			j = rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		cs[i], cs[j] = cs[j], cs[i]
	}
}

// TestSet reports whether cs is a set. It is a pure function of the group's
// content and does not depend on its order.
func (r Rules) TestSet(cs []Card) bool {
	if len(cs) != r.FeatureSize {
		return false
	}
	for i, c := range cs {
		if !r.Contains(c) {
			return false
		}
		for _, other := range cs[:i] {
			if other == c {
				return false
			}
		}
	}
	features := make([][]int, len(cs))
	for i, c := range cs {
		features[i] = r.Features(c)
	}
	for f := range r.FeatureCount {
		if !consistent(features, f, len(cs)) {
			return false
		}
	}
	return true
}

// consistent reports whether feature f of the first n cards is either all
// equal or all distinct.
func consistent(features [][]int, f, n int) bool {
	if n <= 1 {
		return true
	}
	same := true
	seen := make(map[int]struct{}, n)
	for i := range n {
		v := features[i][f]
		if v != features[0][f] {
			same = false
		}
		seen[v] = struct{}{}
	}
	return same || len(seen) == n
}

// FindSets returns sets found among cs, stopping after limit sets when limit is
// positive. Cards that are not part of the deck are ignored. The search
// prunes partial groups that already break a feature, so asking for a single
// set over a full deck is cheap.
func (r Rules) FindSets(cs []Card, limit int) [][]Card {
	pool := make([]Card, 0, len(cs))
	for _, c := range cs {
		if r.Contains(c) {
			pool = append(pool, c)
		}
	}
	if len(pool) < r.FeatureSize {
		return nil
	}

	features := make([][]int, len(pool))
	for i, c := range pool {
		features[i] = r.Features(c)
	}

	var (
		found   [][]Card
		idx     = make([]int, 0, r.FeatureSize)
		partial = make([][]int, 0, r.FeatureSize)
	)
	var search func(start int) bool
	search = func(start int) bool {
		if len(idx) == r.FeatureSize {
			set := make([]Card, len(idx))
			for i, j := range idx {
				set[i] = pool[j]
			}
			found = append(found, set)
			return limit > 0 && len(found) >= limit
		}
		need := r.FeatureSize - len(idx)
		for j := start; j <= len(pool)-need; j++ {
			if duplicate(pool, idx, j) {
				continue
			}
			idx = append(idx, j)
			partial = append(partial, features[j])
			ok := true
			for f := range r.FeatureCount {
				if !consistent(partial, f, len(partial)) {
					ok = false
					break
				}
			}
			if ok && search(j+1) {
				return true
			}
			idx = idx[:len(idx)-1]
			partial = partial[:len(partial)-1]
		}
		return false
	}
	search(0)
	return found
}

func duplicate(pool []Card, idx []int, j int) bool {
	for _, i := range idx {
		if pool[i] == pool[j] {
			return true
		}
	}
	return false
}
