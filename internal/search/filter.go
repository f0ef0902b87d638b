package search

import (
	"sort"
	"strings"

	"glowcart/internal/domain"
)

// FacetCount is one value of a filterable dimension and the number of
// products that would match if the user picked it.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// PriceRange is the inclusive price span of a candidate set.
type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// FacetSummary describes the refinement options available for a query.
type FacetSummary struct {
	Categories []FacetCount `json:"categories"`
	Brands     []FacetCount `json:"brands"`
	PriceRange PriceRange   `json:"priceRange"`
}

// facetDimension identifies a filter dimension excluded while counting
// that dimension's own facet values.
type facetDimension int

const (
	facetNone facetDimension = iota
	facetCategory
	facetBrand
	facetPrice
)

// Evaluator applies the structured filter set of a canonical query and
// computes facet summaries. Text matching is a deliberately simple
// tokenized substring policy over name, description, and brand, not a
// full-text index.
type Evaluator struct {
	skinTags map[string][]string
}

func NewEvaluator(skinTags map[string][]string) *Evaluator {
	return &Evaluator{skinTags: skinTags}
}

// Apply returns the products satisfying every filter of the query. An
// empty result is a valid outcome, not an error.
func (e *Evaluator) Apply(q Query, products []domain.Product) []domain.Product {
	matched := make([]domain.Product, 0, len(products))
	for i := range products {
		if e.matches(q, &products[i], facetNone) {
			matched = append(matched, products[i])
		}
	}
	return matched
}

// Facets computes the facet summary for a query. Each dimension's counts
// are taken over the set filtered by every dimension except its own, so
// picking "category = skincare" does not hide skincare-only brands while
// other categories still show what picking them instead would yield.
func (e *Evaluator) Facets(q Query, products []domain.Product) FacetSummary {
	categoryCounts := map[string]int{}
	brandCounts := map[string]int{}
	var priceSeen bool
	var priceRange PriceRange

	for i := range products {
		p := &products[i]
		if e.matches(q, p, facetCategory) && p.Category != "" {
			categoryCounts[p.Category]++
		}
		if e.matches(q, p, facetBrand) && p.Brand != "" {
			brandCounts[p.Brand]++
		}
		if e.matches(q, p, facetPrice) {
			if !priceSeen {
				priceRange = PriceRange{Min: p.Price, Max: p.Price}
				priceSeen = true
			} else {
				if p.Price < priceRange.Min {
					priceRange.Min = p.Price
				}
				if p.Price > priceRange.Max {
					priceRange.Max = p.Price
				}
			}
		}
	}

	return FacetSummary{
		Categories: sortedFacets(categoryCounts),
		Brands:     sortedFacets(brandCounts),
		PriceRange: priceRange,
	}
}

// matches evaluates the conjunctive filter set against one product,
// skipping the given dimension.
func (e *Evaluator) matches(q Query, p *domain.Product, skip facetDimension) bool {
	f := q.Filters

	if skip != facetCategory {
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			return false
		}
		if f.SubCategory != "" && !strings.EqualFold(p.SubCategory, f.SubCategory) {
			return false
		}
	}
	if skip != facetBrand && f.Brand != "" && !strings.EqualFold(p.Brand, f.Brand) {
		return false
	}
	if skip != facetPrice {
		// Price bounds are inclusive on both ends.
		if f.MinPrice != nil && p.Price < *f.MinPrice {
			return false
		}
		if f.MaxPrice != nil && p.Price > *f.MaxPrice {
			return false
		}
	}

	if f.IsBestseller != nil && p.IsBestseller != *f.IsBestseller {
		return false
	}
	if f.IsNew != nil && p.IsNew != *f.IsNew {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}

	if f.SkinType != "" {
		if tags, ok := e.skinTags[f.SkinType]; ok && !hasAnyTag(p, tags) {
			return false
		}
		// Unknown skin types are tolerated as a no-op filter.
	}

	if q.HasTerm() && !MatchesTerm(p, q.Tokens) {
		return false
	}

	return true
}

// MatchesTerm reports whether every token is a case-insensitive substring
// of the product's name, description, or brand.
func MatchesTerm(p *domain.Product, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	name := strings.ToLower(p.Name)
	description := strings.ToLower(p.Description)
	brand := strings.ToLower(p.Brand)

	for _, token := range tokens {
		if !strings.Contains(name, token) &&
			!strings.Contains(description, token) &&
			!strings.Contains(brand, token) {
			return false
		}
	}
	return true
}

func hasAnyTag(p *domain.Product, tags []string) bool {
	for _, tag := range tags {
		if p.HasTag(tag) {
			return true
		}
	}
	return false
}

// sortedFacets orders facet values by count descending, then value
// ascending for a stable display order.
func sortedFacets(counts map[string]int) []FacetCount {
	out := make([]FacetCount, 0, len(counts))
	for value, count := range counts {
		out = append(out, FacetCount{Value: value, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}
