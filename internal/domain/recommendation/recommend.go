// Package recommendation ranks menu items by how close their taste profile is
// to a customer's stated preference.
package recommendation

import (
	"sort"

	"github.com/tehraja/backend/internal/domain/catalog"
)

// DefaultTopN is the number of matches returned when the caller asks for none
const DefaultTopN = 3

// Match is a ranked product with its distance to the preference.
// Lower scores are better; zero is an exact match.
type Match struct {
	Product catalog.Product
	Score   float64
}

// Recommend returns up to topN products closest to pref, nearest first.
// Products with equal scores keep their catalog order. Availability plays no
// part in ranking: an out-of-stock best match is still reported.
func Recommend(pref catalog.TasteVector, products []catalog.Product, topN int) []Match {
	if topN <= 0 {
		topN = DefaultTopN
	}
	matches := make([]Match, len(products))
	for i, p := range products {
		matches[i] = Match{Product: p, Score: pref.DistanceTo(p.Taste)}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score < matches[j].Score
	})
	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches
}
