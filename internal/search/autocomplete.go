package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Autocomplete suggests completions for a partial query from product
// names, brands, and categories. Queries shorter than the configured
// minimum return an empty slice. Results are cached in the search log
// with a short TTL; cache trouble never fails the request.
func (s *Service) Autocomplete(ctx context.Context, partial string, limit int) ([]string, error) {
	partial = strings.ToLower(strings.TrimSpace(partial))
	if len([]rune(partial)) < s.cfg.AutocompleteMinChars {
		return []string{}, nil
	}
	if limit < 1 {
		limit = s.cfg.PopularSearchLimit
	}

	if s.searchLog != nil {
		if cached, ok := s.searchLog.CachedAutocomplete(ctx, partial); ok {
			if len(cached) > limit {
				cached = cached[:limit]
			}
			return cached, nil
		}
	}

	catalog, err := s.products.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	// Prefix matches rank ahead of mid-string matches.
	type scored struct {
		value  string
		prefix bool
	}
	seen := map[string]bool{}
	matches := []scored{}

	consider := func(value string) {
		lower := strings.ToLower(value)
		if value == "" || seen[lower] {
			return
		}
		if strings.HasPrefix(lower, partial) {
			seen[lower] = true
			matches = append(matches, scored{value: value, prefix: true})
		} else if strings.Contains(lower, partial) {
			seen[lower] = true
			matches = append(matches, scored{value: value})
		}
	}

	for i := range catalog {
		consider(catalog[i].Name)
		consider(catalog[i].Brand)
		consider(catalog[i].Category)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].prefix != matches[j].prefix {
			return matches[i].prefix
		}
		return strings.ToLower(matches[i].value) < strings.ToLower(matches[j].value)
	})

	suggestions := make([]string, 0, limit)
	for _, m := range matches {
		if len(suggestions) >= limit {
			break
		}
		suggestions = append(suggestions, m.value)
	}

	if s.searchLog != nil {
		if err := s.searchLog.CacheAutocomplete(ctx, partial, suggestions, s.cfg.AutocompleteCacheTTL); err != nil {
			s.logger.Warn("Failed to cache autocomplete suggestions", zap.Error(err))
		}
	}

	return suggestions, nil
}
