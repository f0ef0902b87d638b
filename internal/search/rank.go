package search

import (
	"math"
	"sort"
	"strings"
	"time"

	"glowcart/internal/config"
	"glowcart/internal/domain"
)

// Text-match strength tiers. Only their relative order matters; the
// configured text-match weight scales the whole component.
const (
	textMatchExactName  = 1.0
	textMatchPhraseName = 0.75
	textMatchTokensName = 0.6
	textMatchSecondary  = 0.35
)

// ScoreBreakdown records the contributing signals of a relevance score.
// Kept for explainability and tests, never shown to end users.
type ScoreBreakdown struct {
	TextMatch  float64 `json:"textMatch"`
	Recency    float64 `json:"recency"`
	Popularity float64 `json:"popularity"`
}

// RankedCandidate is a product plus its computed ordering score.
type RankedCandidate struct {
	Product   domain.Product `json:"product"`
	Score     float64        `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// Ranker orders candidate sets. All sort modes break ties by product ID
// ascending so the ordering is deterministic.
type Ranker struct {
	textWeight       float64
	recencyWeight    float64
	popularityWeight float64
	halfLife         time.Duration
	floor            float64
	now              func() time.Time
}

func NewRanker(cfg config.SearchConfig) *Ranker {
	text, recency, popularity := cfg.TextMatchWeight, cfg.RecencyWeight, cfg.PopularityWeight
	sum := text + recency + popularity
	if sum <= 0 {
		text, recency, popularity, sum = 0.5, 0.2, 0.3, 1.0
	}
	halfLife := cfg.RecencyHalfLife
	if halfLife <= 0 {
		halfLife = 45 * 24 * time.Hour
	}
	return &Ranker{
		textWeight:       text / sum,
		recencyWeight:    recency / sum,
		popularityWeight: popularity / sum,
		halfLife:         halfLife,
		floor:            cfg.RecencyFloor,
		now:              time.Now,
	}
}

// WithClock overrides the ranker's time source. Used by tests.
func (r *Ranker) WithClock(now func() time.Time) *Ranker {
	clone := *r
	clone.now = now
	return &clone
}

// Rank returns a totally ordered candidate sequence for the given sort
// mode. Tokens are the normalized query tokens; they only matter in
// relevance mode.
func (r *Ranker) Rank(products []domain.Product, mode SortMode, tokens []string) []RankedCandidate {
	ranked := make([]RankedCandidate, len(products))
	for i := range products {
		ranked[i] = RankedCandidate{Product: products[i]}
	}

	switch mode {
	case SortPriceAsc:
		for i := range ranked {
			ranked[i].Score = float64(ranked[i].Product.Price)
		}
		sortCandidates(ranked, func(a, b *RankedCandidate) int {
			return compareInt64(a.Product.Price, b.Product.Price)
		})
	case SortPriceDesc:
		for i := range ranked {
			ranked[i].Score = float64(ranked[i].Product.Price)
		}
		sortCandidates(ranked, func(a, b *RankedCandidate) int {
			return compareInt64(b.Product.Price, a.Product.Price)
		})
	case SortNewest:
		sortCandidates(ranked, func(a, b *RankedCandidate) int {
			return compareTime(b.Product.CreatedAt, a.Product.CreatedAt)
		})
	case SortRating:
		for i := range ranked {
			ranked[i].Score = ranked[i].Product.Rating.Average
		}
		sortCandidates(ranked, compareByRating)
	case SortBestseller:
		for i := range ranked {
			ranked[i].Score = float64(ranked[i].Product.WishlistCount)
		}
		sortCandidates(ranked, compareByBestseller)
	default:
		r.scoreRelevance(ranked, tokens)
		sortCandidates(ranked, func(a, b *RankedCandidate) int {
			return compareFloat(b.Score, a.Score)
		})
	}

	return ranked
}

// scoreRelevance computes the weighted relevance score for every
// candidate. Popularity is normalized against the candidate set's
// maximum so the component stays in [0, 1] regardless of catalog scale.
func (r *Ranker) scoreRelevance(ranked []RankedCandidate, tokens []string) {
	maxPopularity := 0.0
	for i := range ranked {
		if pop := r.PopularitySignal(&ranked[i].Product); pop > maxPopularity {
			maxPopularity = pop
		}
	}

	term := strings.Join(tokens, " ")
	for i := range ranked {
		p := &ranked[i].Product

		breakdown := ScoreBreakdown{
			TextMatch: textMatchStrength(p, term, tokens),
			Recency:   r.RecencySignal(p),
		}
		if maxPopularity > 0 {
			breakdown.Popularity = r.PopularitySignal(p) / maxPopularity
		}

		ranked[i].Breakdown = breakdown
		ranked[i].Score = r.textWeight*breakdown.TextMatch +
			r.recencyWeight*breakdown.Recency +
			r.popularityWeight*breakdown.Popularity
	}
}

// RecencySignal is an exponential decay over age since publication,
// bounded below so very old products are never zeroed out.
func (r *Ranker) RecencySignal(p *domain.Product) float64 {
	published := p.PublishedAt
	if published.IsZero() {
		published = p.CreatedAt
	}
	if published.IsZero() {
		return r.floor
	}
	age := r.now().Sub(published)
	if age < 0 {
		age = 0
	}
	decay := math.Pow(0.5, age.Hours()/r.halfLife.Hours())
	if decay < r.floor {
		return r.floor
	}
	return decay
}

// PopularitySignal combines wishlist count with a review signal damped by
// log(1 + count), so a single five-star review cannot outweigh hundreds
// of four-star reviews.
func (r *Ranker) PopularitySignal(p *domain.Product) float64 {
	return float64(p.WishlistCount) + p.Rating.Average*math.Log1p(float64(p.Rating.Count))
}

// textMatchStrength tiers: exact name match, term as phrase in name, all
// tokens in name, then matches only via description or brand. An empty
// term contributes nothing, degenerating relevance to a browse ordering.
func textMatchStrength(p *domain.Product, term string, tokens []string) float64 {
	if term == "" {
		return 0
	}
	name := strings.ToLower(p.Name)
	if name == term {
		return textMatchExactName
	}
	if strings.Contains(name, term) {
		return textMatchPhraseName
	}
	allInName := true
	for _, token := range tokens {
		if !strings.Contains(name, token) {
			allInName = false
			break
		}
	}
	if allInName {
		return textMatchTokensName
	}
	if MatchesTerm(p, tokens) {
		return textMatchSecondary
	}
	return 0
}

// sortCandidates applies cmp with the universal product-ID tie-break.
func sortCandidates(ranked []RankedCandidate, cmp func(a, b *RankedCandidate) int) {
	sort.SliceStable(ranked, func(i, j int) bool {
		if c := cmp(&ranked[i], &ranked[j]); c != 0 {
			return c < 0
		}
		return ranked[i].Product.ID < ranked[j].Product.ID
	})
}

// compareByRating puts products with zero review counts after all rated
// products regardless of their stored average.
func compareByRating(a, b *RankedCandidate) int {
	aRated, bRated := a.Product.Rating.Count > 0, b.Product.Rating.Count > 0
	if aRated != bRated {
		if aRated {
			return -1
		}
		return 1
	}
	return compareFloat(b.Product.Rating.Average, a.Product.Rating.Average)
}

func compareByBestseller(a, b *RankedCandidate) int {
	if a.Product.IsBestseller != b.Product.IsBestseller {
		if a.Product.IsBestseller {
			return -1
		}
		return 1
	}
	return b.Product.WishlistCount - a.Product.WishlistCount
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}
