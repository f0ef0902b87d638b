package recommend

import (
	"context"
	"fmt"
	"sort"

	"glowcart/internal/domain"
	"glowcart/internal/search"
)

// trending scores candidates by interaction velocity: interactions per
// day since publish, not raw totals, so an old perennial seller cannot
// permanently dominate the trending shelf. Candidates are products
// published within the window or interacted with inside it.
func (e *Engine) trending(ctx context.Context, category string) (*Result, error) {
	catalog, err := e.products.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	catalog = filterByCategory(catalog, category)

	since := e.now().Add(-e.cfg.TrendingWindow)
	counts, err := e.history.InteractionCounts(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load interaction counts: %w", err)
	}

	type velocity struct {
		product domain.Product
		score   float64
	}
	candidates := []velocity{}
	for _, p := range catalog {
		published := p.PublishedAt
		if published.IsZero() {
			published = p.CreatedAt
		}
		recent := published.After(since)
		interactions := counts[p.ID]
		if !recent && interactions == 0 {
			continue
		}
		days := e.now().Sub(published).Hours() / 24
		if days < 1 {
			days = 1
		}
		candidates = append(candidates, velocity{
			product: p,
			score:   float64(interactions) / days,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].product.ID < candidates[j].product.ID
	})

	products := make([]domain.Product, len(candidates))
	for i := range candidates {
		products[i] = candidates[i].product
	}

	return &Result{
		Products:   products,
		Reason:     "Trending now",
		BasedOn:    "recent interactions",
		Confidence: 0.7,
	}, nil
}

// similar finds products sharing the anchor's category and at least one
// ingredient/attribute tag, ordered by overlap then popularity. Falls
// back to trending within the anchor's category when nothing overlaps.
func (e *Engine) similar(ctx context.Context, req Request) (*Result, error) {
	anchor, err := e.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	siblings, err := e.products.ListByCategory(ctx, anchor.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to load category candidates: %w", err)
	}

	type overlap struct {
		product domain.Product
		shared  int
	}
	candidates := []overlap{}
	for _, p := range siblings {
		if p.ID == anchor.ID {
			continue
		}
		shared := sharedTags(anchor, &p)
		if shared > 0 {
			candidates = append(candidates, overlap{product: p, shared: shared})
		}
	}

	if len(candidates) == 0 {
		fallback, err := e.trending(ctx, anchor.Category)
		if err != nil {
			return nil, err
		}
		fallback.Reason = "Popular in " + anchor.Category
		fallback.BasedOn = anchor.Name
		fallback.Confidence = 0.4
		return fallback, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].shared != candidates[j].shared {
			return candidates[i].shared > candidates[j].shared
		}
		pi := e.ranker.PopularitySignal(&candidates[i].product)
		pj := e.ranker.PopularitySignal(&candidates[j].product)
		if pi != pj {
			return pi > pj
		}
		return candidates[i].product.ID < candidates[j].product.ID
	})

	products := make([]domain.Product, len(candidates))
	for i := range candidates {
		products[i] = candidates[i].product
	}

	return &Result{
		Products:   products,
		Reason:     "Similar to " + anchor.Name,
		BasedOn:    anchor.Name,
		Confidence: 0.8,
	}, nil
}

// personalized unions browsing- and purchase-derived candidates with a
// higher weight on purchase signals. An empty history falls back to
// trending so a fresh account still gets a sensible shelf.
func (e *Engine) personalized(ctx context.Context, req Request) (*Result, error) {
	views, err := e.history.RecentViews(ctx, req.UserID, e.cfg.HistoryDepth)
	if err != nil {
		return nil, fmt.Errorf("failed to load browsing history: %w", err)
	}
	purchases, err := e.history.RecentPurchases(ctx, req.UserID, e.cfg.HistoryDepth)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase history: %w", err)
	}

	if len(views) == 0 && len(purchases) == 0 {
		fallback, err := e.trending(ctx, req.Category)
		if err != nil {
			return nil, err
		}
		fallback.Reason = "Popular right now"
		fallback.Confidence = 0.4
		return fallback, nil
	}

	catalog, err := e.products.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	catalog = filterByCategory(catalog, req.Category)

	const purchaseWeight = 2.0
	scores := map[string]float64{}
	seen := map[string]bool{}
	e.accumulateHistoryScores(scores, seen, views, catalog, 1.0)
	e.accumulateHistoryScores(scores, seen, purchases, catalog, purchaseWeight)

	products := e.collectScored(catalog, scores, seen)
	return &Result{
		Products:   products,
		Reason:     "Picked for you",
		BasedOn:    "your browsing and purchase history",
		Confidence: 0.85,
	}, nil
}

// fromHistory recommends products in the same category/sub-category as
// the user's most recent views or purchases, excluding what the history
// already contains, scored by recency of the triggering event combined
// with popularity.
func (e *Engine) fromHistory(ctx context.Context, req Request, eventType domain.EventType) (*Result, error) {
	var events []domain.UserEvent
	var err error
	var reason, basedOn string

	switch eventType {
	case domain.EventPurchase:
		events, err = e.history.RecentPurchases(ctx, req.UserID, e.cfg.HistoryDepth)
		reason, basedOn = "Because you bought", "your purchase history"
	default:
		events, err = e.history.RecentViews(ctx, req.UserID, e.cfg.HistoryDepth)
		reason, basedOn = "Because you viewed", "your browsing history"
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	if len(events) == 0 {
		fallback, err := e.trending(ctx, req.Category)
		if err != nil {
			return nil, err
		}
		fallback.Confidence = 0.4
		return fallback, nil
	}

	catalog, err := e.products.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	catalog = filterByCategory(catalog, req.Category)

	scores := map[string]float64{}
	seen := map[string]bool{}
	e.accumulateHistoryScores(scores, seen, events, catalog, 1.0)

	products := e.collectScored(catalog, scores, seen)
	return &Result{
		Products:   products,
		Reason:     reason,
		BasedOn:    basedOn,
		Confidence: 0.75,
	}, nil
}

// skinType filters candidates to products whose tags are compatible with
// the user's declared skin type. No declared skin type, or an unmapped
// one, falls back to category-general trending.
func (e *Engine) skinType(ctx context.Context, req Request) (*Result, error) {
	declared, err := e.history.SkinType(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load skin type: %w", err)
	}

	tags, mapped := e.cfg.SkinTypeTags[declared]
	if declared == "" || !mapped {
		fallback, err := e.trending(ctx, req.Category)
		if err != nil {
			return nil, err
		}
		fallback.Confidence = 0.4
		return fallback, nil
	}

	catalog, err := e.products.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	catalog = filterByCategory(catalog, req.Category)

	compatible := []domain.Product{}
	for _, p := range catalog {
		for _, tag := range tags {
			if p.HasTag(tag) {
				compatible = append(compatible, p)
				break
			}
		}
	}

	ranked := e.ranker.Rank(compatible, search.SortRelevance, nil)
	return &Result{
		Products:   rankedProducts(ranked),
		Reason:     "For " + declared + " skin",
		BasedOn:    declared,
		Confidence: 0.8,
	}, nil
}

// byCategory ranks everything in a category with the default browse
// ordering (relevance with no term: recency plus popularity).
func (e *Engine) byCategory(ctx context.Context, category string) (*Result, error) {
	products, err := e.products.ListByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}

	ranked := e.ranker.Rank(products, search.SortRelevance, nil)
	return &Result{
		Products:   rankedProducts(ranked),
		Reason:     "More in " + category,
		BasedOn:    category,
		Confidence: 0.6,
	}, nil
}

// complementary suggests products from the categories configured as
// complements of the anchor's category.
func (e *Engine) complementary(ctx context.Context, req Request) (*Result, error) {
	anchor, err := e.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	related := e.cfg.ComplementaryCategories[anchor.Category]
	if len(related) == 0 {
		fallback, err := e.trending(ctx, anchor.Category)
		if err != nil {
			return nil, err
		}
		fallback.Confidence = 0.4
		return fallback, nil
	}

	candidates := []domain.Product{}
	for _, category := range related {
		products, err := e.products.ListByCategory(ctx, category)
		if err != nil {
			return nil, fmt.Errorf("failed to load complementary category: %w", err)
		}
		candidates = append(candidates, products...)
	}

	ranked := e.ranker.Rank(candidates, search.SortRelevance, nil)
	return &Result{
		Products:   rankedProducts(ranked),
		Reason:     "Goes well with " + anchor.Name,
		BasedOn:    anchor.Name,
		Confidence: 0.65,
	}, nil
}

// frequentlyBoughtTogether uses purchase co-occurrence counts, falling
// back to tag similarity when no co-purchase data exists yet.
func (e *Engine) frequentlyBoughtTogether(ctx context.Context, req Request) (*Result, error) {
	anchor, err := e.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	counts, err := e.history.CoPurchased(ctx, anchor.ID, e.cfg.MaxLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load co-purchases: %w", err)
	}
	if len(counts) == 0 {
		fallback, err := e.similar(ctx, req)
		if err != nil {
			return nil, err
		}
		fallback.Reason = "Often paired with " + anchor.Name
		return fallback, nil
	}

	catalog, err := e.products.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	type paired struct {
		product domain.Product
		count   int
	}
	candidates := []paired{}
	for _, p := range catalog {
		if count, ok := counts[p.ID]; ok {
			candidates = append(candidates, paired{product: p, count: count})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].product.ID < candidates[j].product.ID
	})

	products := make([]domain.Product, len(candidates))
	for i := range candidates {
		products[i] = candidates[i].product
	}

	return &Result{
		Products:   products,
		Reason:     "Frequently bought together",
		BasedOn:    anchor.Name,
		Confidence: 0.85,
	}, nil
}

// newArrivals surfaces products flagged new or published within the
// trending window, newest first.
func (e *Engine) newArrivals(ctx context.Context, category string) (*Result, error) {
	catalog, err := e.products.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	catalog = filterByCategory(catalog, category)

	since := e.now().Add(-e.cfg.TrendingWindow)
	arrivals := []domain.Product{}
	for _, p := range catalog {
		if p.IsNew || p.PublishedAt.After(since) {
			arrivals = append(arrivals, p)
		}
	}

	ranked := e.ranker.Rank(arrivals, search.SortNewest, nil)
	return &Result{
		Products:   rankedProducts(ranked),
		Reason:     "New arrivals",
		Confidence: 0.6,
	}, nil
}

func (e *Engine) bestsellers(ctx context.Context, category string) (*Result, error) {
	catalog, err := e.products.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	catalog = filterByCategory(catalog, category)

	ranked := e.ranker.Rank(catalog, search.SortBestseller, nil)
	return &Result{
		Products:   rankedProducts(ranked),
		Reason:     "Bestsellers",
		Confidence: 0.6,
	}, nil
}

// accumulateHistoryScores adds a score contribution for every catalog
// product sharing a category or sub-category with a history event's
// product. More recent events contribute more; products already in the
// history are marked seen and later skipped.
func (e *Engine) accumulateHistoryScores(
	scores map[string]float64,
	seen map[string]bool,
	events []domain.UserEvent,
	catalog []domain.Product,
	weight float64,
) {
	byID := make(map[string]*domain.Product, len(catalog))
	for i := range catalog {
		byID[catalog[i].ID] = &catalog[i]
	}

	for idx, event := range events {
		seen[event.ProductID] = true
		trigger, ok := byID[event.ProductID]
		if !ok {
			continue
		}
		// Events arrive newest first; decay by position.
		recency := 1.0 / float64(idx+1)
		for i := range catalog {
			p := &catalog[i]
			if p.ID == trigger.ID {
				continue
			}
			if p.Category == trigger.Category ||
				(trigger.SubCategory != "" && p.SubCategory == trigger.SubCategory) {
				scores[p.ID] += weight * recency
			}
		}
	}
}

// collectScored orders scored candidates descending, with a popularity
// then ID tie-break, skipping anything the user already interacted with.
func (e *Engine) collectScored(catalog []domain.Product, scores map[string]float64, seen map[string]bool) []domain.Product {
	type scored struct {
		product domain.Product
		score   float64
	}
	candidates := []scored{}
	for _, p := range catalog {
		score, ok := scores[p.ID]
		if !ok || seen[p.ID] {
			continue
		}
		candidates = append(candidates, scored{product: p, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		pi := e.ranker.PopularitySignal(&candidates[i].product)
		pj := e.ranker.PopularitySignal(&candidates[j].product)
		if pi != pj {
			return pi > pj
		}
		return candidates[i].product.ID < candidates[j].product.ID
	})

	products := make([]domain.Product, len(candidates))
	for i := range candidates {
		products[i] = candidates[i].product
	}
	return products
}

func sharedTags(a, b *domain.Product) int {
	shared := 0
	for _, tag := range a.Tags {
		if b.HasTag(tag) {
			shared++
		}
	}
	return shared
}
