package search

import (
	"context"
	"fmt"

	"glowcart/internal/config"
	"glowcart/internal/domain"
	"glowcart/internal/repository"

	"go.uber.org/zap"
)

// ResultEnvelope is the value a search returns: one page of products,
// pagination metadata, the facet summary, and alternate-query
// suggestions when the result set is empty. Constructed per request and
// never mutated after return.
type ResultEnvelope struct {
	Products    []domain.Product
	Suggestions []string
	Facets      FacetSummary
	Pagination  Pagination
}

// Service is the single entry point for product search. It composes the
// Normalizer, Evaluator, Ranker, and Paginator, and owns the
// zero-result suggestion policy. The catalog dependency is injected so
// tests can run against fixture catalogs.
type Service struct {
	products   repository.ProductRepository
	searchLog  repository.SearchLog
	normalizer *Normalizer
	evaluator  *Evaluator
	ranker     *Ranker
	cfg        config.SearchConfig
	logger     *zap.Logger
}

// NewService creates a search service. searchLog may be nil, in which
// case term recording and popular searches degrade to config fallbacks.
func NewService(
	products repository.ProductRepository,
	searchLog repository.SearchLog,
	cfg config.SearchConfig,
	skinTags map[string][]string,
	logger *zap.Logger,
) *Service {
	return &Service{
		products:   products,
		searchLog:  searchLog,
		normalizer: NewNormalizer(cfg),
		evaluator:  NewEvaluator(skinTags),
		ranker:     NewRanker(cfg),
		cfg:        cfg,
		logger:     logger,
	}
}

// Ranker exposes the service's ranker for reuse by the recommendation
// engine, which shares its recency/popularity scoring.
func (s *Service) Ranker() *Ranker { return s.ranker }

// Search runs the full pipeline. The only error it returns is catalog
// unavailability; empty results and malformed parameters are normal
// outcomes. Callers must be able to tell "no matches" from "search is
// down", so a store failure is never converted to an empty envelope.
func (s *Service) Search(ctx context.Context, raw RawQuery) (*ResultEnvelope, error) {
	q := s.normalizer.Normalize(raw)

	catalog, err := s.products.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	filtered := s.evaluator.Apply(q, catalog)
	facets := s.evaluator.Facets(q, catalog)
	ranked := s.ranker.Rank(filtered, q.Sort, q.Tokens)

	page, meta := Paginate(ranked, q.Page, q.PageSize)

	products := make([]domain.Product, len(page))
	for i := range page {
		products[i] = page[i].Product
	}

	envelope := &ResultEnvelope{
		Products:   products,
		Facets:     facets,
		Pagination: meta,
	}

	if meta.TotalCount == 0 {
		envelope.Suggestions = s.suggest(q, catalog)
	}

	s.recordSearch(ctx, q)

	return envelope, nil
}

// FacetDefaults computes the facet summary with no query applied. Backs
// the filter panel shown before the user has refined anything.
func (s *Service) FacetDefaults(ctx context.Context) (*FacetSummary, error) {
	catalog, err := s.products.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	facets := s.evaluator.Facets(Query{}, catalog)
	return &facets, nil
}

// PopularSearches returns the most-searched terms, falling back to the
// configured defaults when the log is empty or unavailable. Log failure
// is not a request failure.
func (s *Service) PopularSearches(ctx context.Context, limit int) []string {
	if limit < 1 || limit > s.cfg.PopularSearchLimit {
		limit = s.cfg.PopularSearchLimit
	}

	if s.searchLog != nil {
		terms, err := s.searchLog.Popular(ctx, limit)
		if err != nil {
			s.logger.Warn("Failed to fetch popular searches", zap.Error(err))
		} else if len(terms) > 0 {
			return terms
		}
	}

	fallback := s.cfg.PopularFallback
	if len(fallback) > limit {
		fallback = fallback[:limit]
	}
	return fallback
}

// recordSearch logs the executed term for popularity aggregation.
// Best-effort: failures are logged and swallowed.
func (s *Service) recordSearch(ctx context.Context, q Query) {
	if s.searchLog == nil || !q.HasTerm() {
		return
	}
	if err := s.searchLog.RecordSearch(ctx, q.Term); err != nil {
		s.logger.Warn("Failed to record search term", zap.String("term", q.Term), zap.Error(err))
	}
}
