package search

import (
	"strconv"
	"strings"

	"glowcart/internal/config"
)

// SortMode selects the ordering applied to search results.
type SortMode string

const (
	SortRelevance  SortMode = "relevance"
	SortPriceAsc   SortMode = "price_asc"
	SortPriceDesc  SortMode = "price_desc"
	SortNewest     SortMode = "newest"
	SortRating     SortMode = "rating"
	SortBestseller SortMode = "bestseller"
)

// RawQuery carries query-string parameters exactly as received. Every
// field is a string; the Normalizer owns all coercion.
type RawQuery struct {
	Term         string
	Category     string
	SubCategory  string
	Brand        string
	MinPrice     string
	MaxPrice     string
	SkinType     string
	IsBestseller string
	IsNew        string
	Featured     string
	SortBy       string
	Page         string
	Limit        string
}

// Filters is the structured, conjunctive filter set of a canonical query.
// Nil pointer fields mean "not filtered on this dimension".
type Filters struct {
	Category     string
	SubCategory  string
	Brand        string
	MinPrice     *int64
	MaxPrice     *int64
	SkinType     string
	IsBestseller *bool
	IsNew        *bool
	Featured     *bool
}

// Query is the canonical form every downstream stage consumes. Term is
// lower-cased for matching; OriginalTerm preserves the user's casing for
// suggestion echoing.
type Query struct {
	Term         string
	OriginalTerm string
	Tokens       []string
	Filters      Filters
	Sort         SortMode
	Page         int
	PageSize     int
}

// HasTerm reports whether the query carries a non-empty free-text term.
func (q Query) HasTerm() bool { return q.Term != "" }

// Normalizer turns raw request parameters into a canonical Query. It is
// total: malformed input is coerced or dropped, never rejected.
type Normalizer struct {
	defaultPageSize int
	maxPageSize     int
}

func NewNormalizer(cfg config.SearchConfig) *Normalizer {
	defaultSize := cfg.DefaultPageSize
	if defaultSize < 1 {
		defaultSize = 20
	}
	maxSize := cfg.MaxPageSize
	if maxSize < 1 {
		maxSize = 100
	}
	return &Normalizer{defaultPageSize: defaultSize, maxPageSize: maxSize}
}

// Normalize produces a best-effort canonical query. It never fails.
func (n *Normalizer) Normalize(raw RawQuery) Query {
	original := strings.TrimSpace(raw.Term)
	term := strings.ToLower(original)

	q := Query{
		Term:         term,
		OriginalTerm: original,
		Tokens:       strings.Fields(term),
		Filters: Filters{
			Category:     strings.TrimSpace(raw.Category),
			SubCategory:  strings.TrimSpace(raw.SubCategory),
			Brand:        strings.TrimSpace(raw.Brand),
			MinPrice:     parsePrice(raw.MinPrice),
			MaxPrice:     parsePrice(raw.MaxPrice),
			SkinType:     strings.ToLower(strings.TrimSpace(raw.SkinType)),
			IsBestseller: parseFlag(raw.IsBestseller),
			IsNew:        parseFlag(raw.IsNew),
			Featured:     parseFlag(raw.Featured),
		},
		Sort:     parseSortMode(raw.SortBy),
		Page:     n.parsePage(raw.Page),
		PageSize: n.parsePageSize(raw.Limit),
	}

	// Inverted price bounds are swapped, not rejected.
	if q.Filters.MinPrice != nil && q.Filters.MaxPrice != nil && *q.Filters.MinPrice > *q.Filters.MaxPrice {
		q.Filters.MinPrice, q.Filters.MaxPrice = q.Filters.MaxPrice, q.Filters.MinPrice
	}

	return q
}

func (n *Normalizer) parsePage(s string) int {
	page, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (n *Normalizer) parsePageSize(s string) int {
	size, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return n.defaultPageSize
	}
	if size < 1 {
		return 1
	}
	if size > n.maxPageSize {
		return n.maxPageSize
	}
	return size
}

// parsePrice coerces a numeric filter string, discarding garbage and
// negative values rather than failing.
func parsePrice(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

func parseFlag(s string) *bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	default:
		return nil
	}
}

func parseSortMode(s string) SortMode {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case SortPriceAsc:
		return SortPriceAsc
	case SortPriceDesc:
		return SortPriceDesc
	case SortNewest:
		return SortNewest
	case SortRating:
		return SortRating
	case SortBestseller:
		return SortBestseller
	default:
		return SortRelevance
	}
}
