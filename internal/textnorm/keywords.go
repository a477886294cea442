package textnorm

import (
	"sort"
	"strings"
)

// Keywords returns up to limit of the most frequent non-stopword tokens of
// raw, most frequent first. Ties keep first-appearance order.
func (n *Normalizer) Keywords(raw string, limit int) []string {
	if limit <= 0 {
		return nil
	}

	counts := make(map[string]int)
	var order []string
	for _, tok := range strings.Fields(n.Normalize(raw)) {
		if len(tok) < 3 {
			continue
		}
		if _, stop := n.stopwords[tok]; stop {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	return order
}
