package cards

import (
	"fmt"
	"strings"
)

// Card identifies a single card.
type Card int

// None marks the absence of a card, e.g. an empty table slot.
const None Card = -1

// Valid reports whether c refers to an actual card.
func (c Card) Valid() bool {
	return c >= 0
}

var (
	standardNumbers  = [3]string{"1", "2", "3"}
	standardColors   = [3]string{"red", "green", "purple"}
	standardShapes   = [3]string{"◆", "~", "●"}
	standardShadings = [3]string{"solid", "striped", "open"}
)

// Attributes is the human readable form of a card from the standard deck.
type Attributes struct {
	Number  string
	Color   string
	Shape   string
	Shading string
}

// Attributes returns the named attributes of c. ok is false unless r is the
// standard 4x3 rule set.
func (r Rules) Attributes(c Card) (Attributes, bool) {
	if r.FeatureCount != 4 || r.FeatureSize != 3 || !r.Contains(c) {
		return Attributes{}, false
	}
	f := r.Features(c)
	return Attributes{
		Number:  standardNumbers[f[0]],
		Color:   standardColors[f[1]],
		Shape:   standardShapes[f[2]],
		Shading: standardShadings[f[3]],
	}, true
}

// Format renders c for logs and terminals. Standard cards read like
// "2 red ◆ striped"; other rule sets fall back to the feature digits.
func (r Rules) Format(c Card) string {
	if !r.Contains(c) {
		return "--"
	}
	if a, ok := r.Attributes(c); ok {
		return fmt.Sprintf("%s %s %s %s", a.Number, a.Color, a.Shape, a.Shading)
	}
	var sb strings.Builder
	for _, v := range r.Features(c) {
		fmt.Fprintf(&sb, "%d", v)
	}
	return sb.String()
}
