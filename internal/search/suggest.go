package search

import (
	"strings"

	"glowcart/internal/domain"
)

// suggest computes up to MaxSuggestions alternate queries for a search
// that matched nothing, by progressively relaxing the query and
// re-running the (cheap, in-memory) filter pass. Each relaxation costs
// one pass over the catalog, so total cost stays bounded by the number
// of tokens plus a small constant. Returns an empty slice when no
// relaxation helps; never an error.
func (s *Service) suggest(q Query, catalog []domain.Product) []string {
	max := s.cfg.MaxSuggestions
	if max < 1 {
		return []string{}
	}

	suggestions := []string{}
	seen := map[string]bool{}

	add := func(candidate Query, label string) {
		label = strings.TrimSpace(label)
		if label == "" || seen[strings.ToLower(label)] || len(suggestions) >= max {
			return
		}
		if len(s.evaluator.Apply(candidate, catalog)) == 0 {
			return
		}
		seen[strings.ToLower(label)] = true
		suggestions = append(suggestions, label)
	}

	// Multi-token terms: drop the least-frequent token, since it is the
	// most likely to be the over-constraining one.
	if len(q.Tokens) > 1 {
		drop := leastFrequentToken(q.Tokens, catalog)
		relaxed := q
		relaxed.Tokens = withoutIndex(q.Tokens, drop)
		relaxed.Term = strings.Join(relaxed.Tokens, " ")
		add(relaxed, echoTokens(q.OriginalTerm, drop))
	}

	// Price bounds are the next most common over-constraint.
	if q.Filters.MinPrice != nil || q.Filters.MaxPrice != nil {
		relaxed := q
		relaxed.Filters.MinPrice = nil
		relaxed.Filters.MaxPrice = nil
		add(relaxed, suggestionLabel(relaxed))
	}

	// Then boolean flags, one at a time.
	for _, clear := range []func(*Filters){
		func(f *Filters) { f.IsBestseller = nil },
		func(f *Filters) { f.IsNew = nil },
		func(f *Filters) { f.Featured = nil },
	} {
		relaxed := q
		clear(&relaxed.Filters)
		add(relaxed, suggestionLabel(relaxed))
	}

	// Finally the narrower structured dimensions.
	if q.Filters.Brand != "" {
		relaxed := q
		relaxed.Filters.Brand = ""
		add(relaxed, suggestionLabel(relaxed))
	}
	if q.Filters.SubCategory != "" {
		relaxed := q
		relaxed.Filters.SubCategory = ""
		add(relaxed, suggestionLabel(relaxed))
	}

	return suggestions
}

// suggestionLabel renders a relaxed query as the text the UI should echo
// back: the original-case term when one exists, otherwise the category.
func suggestionLabel(q Query) string {
	if q.OriginalTerm != "" {
		return q.OriginalTerm
	}
	if q.Filters.Category != "" {
		return q.Filters.Category
	}
	return q.Filters.Brand
}

// leastFrequentToken returns the index of the token matching the fewest
// catalog products.
func leastFrequentToken(tokens []string, catalog []domain.Product) int {
	best, bestCount := 0, -1
	for i, token := range tokens {
		count := 0
		for j := range catalog {
			if MatchesTerm(&catalog[j], []string{token}) {
				count++
			}
		}
		if bestCount == -1 || count < bestCount {
			best, bestCount = i, count
		}
	}
	return best
}

func withoutIndex(tokens []string, drop int) []string {
	out := make([]string, 0, len(tokens)-1)
	for i, t := range tokens {
		if i != drop {
			out = append(out, t)
		}
	}
	return out
}

// echoTokens rebuilds the suggestion from the original-case term with
// the dropped token removed, so the user sees their own casing.
func echoTokens(originalTerm string, drop int) string {
	originals := strings.Fields(originalTerm)
	if drop >= len(originals) {
		return originalTerm
	}
	return strings.Join(withoutIndex(originals, drop), " ")
}
