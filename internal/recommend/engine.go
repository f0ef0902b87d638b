package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"glowcart/internal/config"
	"glowcart/internal/domain"
	"glowcart/internal/repository"
	"glowcart/internal/search"

	"go.uber.org/zap"
)

// Type tags one of the fixed recommendation strategies. The set is
// closed: the engine is a dispatcher over an enumerable variant set, not
// a plugin registry.
type Type string

const (
	TypePersonalized             Type = "personalized"
	TypeSimilar                  Type = "similar"
	TypeTrending                 Type = "trending"
	TypeSkinType                 Type = "skin-type"
	TypeBrowsingHistory          Type = "browsing-history"
	TypePurchaseHistory          Type = "purchase-history"
	TypeCategory                 Type = "category"
	TypeComplementary            Type = "complementary"
	TypeFrequentlyBoughtTogether Type = "frequently-bought-together"
	TypeNewArrivals              Type = "new-arrivals"
	TypeBestsellers              Type = "bestsellers"
)

var (
	ErrUnknownType = errors.New("unknown recommendation type")
)

// ParseType validates a type tag from the request path.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypePersonalized, TypeSimilar, TypeTrending, TypeSkinType,
		TypeBrowsingHistory, TypePurchaseHistory, TypeCategory,
		TypeComplementary, TypeFrequentlyBoughtTogether,
		TypeNewArrivals, TypeBestsellers:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}

// Request describes one recommendation call. Exclude lists product IDs
// that must never appear in the output; the anchor ProductID is excluded
// implicitly.
type Request struct {
	Type      Type
	UserID    string
	ProductID string
	Category  string
	Limit     int
	Exclude   []string
}

// Result is a ranked product list plus display metadata.
type Result struct {
	Products   []domain.Product
	Reason     string
	BasedOn    string
	Confidence float64
}

// Engine produces ranked candidate lists for every recommendation type.
// It reuses the search Ranker's recency/popularity scoring and the
// Paginator for truncation. Stateless per request; safe for concurrent
// use.
type Engine struct {
	products repository.ProductRepository
	history  repository.HistoryRepository
	ranker   *search.Ranker
	cfg      config.RecommendConfig
	logger   *zap.Logger
	now      func() time.Time
}

func NewEngine(
	products repository.ProductRepository,
	history repository.HistoryRepository,
	ranker *search.Ranker,
	cfg config.RecommendConfig,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		products: products,
		history:  history,
		ranker:   ranker,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the engine's time source. Used by tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	clone := *e
	clone.now = now
	return &clone
}

// Recommend dispatches to the strategy for the request's type. Missing
// personalization signals trigger the documented fallback chain; the
// only errors returned are unknown types, unknown anchor products, and
// data-source failures.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Result, error) {
	req.Limit = e.clampLimit(req.Limit)

	var (
		result *Result
		err    error
	)

	switch req.Type {
	case TypeTrending:
		result, err = e.trending(ctx, req.Category)
	case TypeSimilar:
		result, err = e.similar(ctx, req)
	case TypePersonalized:
		result, err = e.personalized(ctx, req)
	case TypeSkinType:
		result, err = e.skinType(ctx, req)
	case TypeBrowsingHistory:
		result, err = e.fromHistory(ctx, req, domain.EventView)
	case TypePurchaseHistory:
		result, err = e.fromHistory(ctx, req, domain.EventPurchase)
	case TypeCategory:
		result, err = e.byCategory(ctx, req.Category)
	case TypeComplementary:
		result, err = e.complementary(ctx, req)
	case TypeFrequentlyBoughtTogether:
		result, err = e.frequentlyBoughtTogether(ctx, req)
	case TypeNewArrivals:
		result, err = e.newArrivals(ctx, req.Category)
	case TypeBestsellers:
		result, err = e.bestsellers(ctx, req.Category)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, req.Type)
	}
	if err != nil {
		return nil, err
	}

	result.Products = e.truncate(e.applyExclusions(result.Products, req), req.Limit)
	return result, nil
}

func (e *Engine) clampLimit(limit int) int {
	if limit < 1 {
		return e.cfg.DefaultLimit
	}
	if limit > e.cfg.MaxLimit {
		return e.cfg.MaxLimit
	}
	return limit
}

// applyExclusions removes every excluded identifier plus the request's
// anchor product. Always runs, for every strategy and every fallback.
func (e *Engine) applyExclusions(products []domain.Product, req Request) []domain.Product {
	excluded := make(map[string]bool, len(req.Exclude)+1)
	for _, id := range req.Exclude {
		excluded[id] = true
	}
	if req.ProductID != "" {
		excluded[req.ProductID] = true
	}

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if !excluded[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

func (e *Engine) truncate(products []domain.Product, limit int) []domain.Product {
	page, _ := search.Paginate(products, 1, limit)
	return page
}

// rankedProducts drops scores after ordering; recommendations expose
// products only.
func rankedProducts(ranked []search.RankedCandidate) []domain.Product {
	products := make([]domain.Product, len(ranked))
	for i := range ranked {
		products[i] = ranked[i].Product
	}
	return products
}

func filterByCategory(products []domain.Product, category string) []domain.Product {
	if category == "" {
		return products
	}
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}
