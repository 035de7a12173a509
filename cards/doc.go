// Package cards defines the cards of the set game and the rule that decides
// whether a group of cards forms a set.
//
// A card is an integer id in [0, FeatureSize^FeatureCount). Its features are
// the base-FeatureSize digits of the id, least significant first. A group of
// FeatureSize cards is a set when, for every feature, the cards either all
// share the value or all have pairwise different values.
//
// # Basic Usage
//
//	r := cards.Standard()           // 4 features, 3 values each, 81 cards
//	ok := r.TestSet([]cards.Card{0, 1, 2})
//	sets := r.FindSets(r.NewDeck(), 1)
//
// Rules is a plain value with no internal state; every method is safe for
// concurrent use.
package cards
