package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"glowcart/internal/config"
	"glowcart/internal/domain"
	"glowcart/internal/repository"
	"glowcart/internal/search"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Mock repositories for testing
type mockProductRepository struct {
	products []domain.Product
}

func (m *mockProductRepository) All(ctx context.Context) ([]domain.Product, error) {
	return m.products, nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	for i := range m.products {
		if m.products[i].ID == id {
			return &m.products[i], nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	out := []domain.Product{}
	for _, p := range m.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockHistoryRepository struct {
	views        map[string][]domain.UserEvent
	purchases    map[string][]domain.UserEvent
	skinTypes    map[string]string
	interactions map[string]int
	coPurchases  map[string]map[string]int
	err          error
}

func newMockHistory() *mockHistoryRepository {
	return &mockHistoryRepository{
		views:        map[string][]domain.UserEvent{},
		purchases:    map[string][]domain.UserEvent{},
		skinTypes:    map[string]string{},
		interactions: map[string]int{},
		coPurchases:  map[string]map[string]int{},
	}
}

func (m *mockHistoryRepository) RecentViews(ctx context.Context, userID string, limit int) ([]domain.UserEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	events := m.views[userID]
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (m *mockHistoryRepository) RecentPurchases(ctx context.Context, userID string, limit int) ([]domain.UserEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	events := m.purchases[userID]
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (m *mockHistoryRepository) SkinType(ctx context.Context, userID string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.skinTypes[userID], nil
}

func (m *mockHistoryRepository) RecordEvent(ctx context.Context, event *domain.UserEvent) error {
	return m.err
}

func (m *mockHistoryRepository) InteractionCounts(ctx context.Context, since time.Time) (map[string]int, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.interactions, nil
}

func (m *mockHistoryRepository) CoPurchased(ctx context.Context, productID string, limit int) (map[string]int, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.coPurchases[productID], nil
}

func testRecommendConfig() config.RecommendConfig {
	return config.RecommendConfig{
		TrendingWindow: 30 * 24 * time.Hour,
		HistoryDepth:   10,
		DefaultLimit:   8,
		MaxLimit:       50,
		SkinTypeTags: map[string][]string{
			"dry": {"ceramide", "hyaluronic-acid"},
		},
		ComplementaryCategories: map[string][]string{
			"skincare": {"suncare"},
		},
	}
}

func testRanker() *search.Ranker {
	return search.NewRanker(config.SearchConfig{
		TextMatchWeight:  0.5,
		RecencyWeight:    0.2,
		PopularityWeight: 0.3,
		RecencyHalfLife:  45 * 24 * time.Hour,
		RecencyFloor:     0.05,
	})
}

func daysAgo(n int) time.Time {
	return time.Now().Add(-time.Duration(n) * 24 * time.Hour)
}

func event(userID, productID string, daysBack int) domain.UserEvent {
	return domain.UserEvent{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		CreatedAt: daysAgo(daysBack),
	}
}

func recommendCatalog() []domain.Product {
	return []domain.Product{
		{ID: "p-serum", Name: "Vitamin C Serum", Category: "skincare", SubCategory: "serum",
			Tags: []string{"vitamin-c", "brightening"}, WishlistCount: 100, PublishedAt: daysAgo(10)},
		{ID: "p-retinol", Name: "Retinol Serum", Category: "skincare", SubCategory: "serum",
			Tags: []string{"retinol", "brightening"}, WishlistCount: 200, PublishedAt: daysAgo(100)},
		{ID: "p-cream", Name: "Ceramide Cream", Category: "skincare", SubCategory: "moisturizer",
			Tags: []string{"ceramide", "hyaluronic-acid"}, WishlistCount: 50, PublishedAt: daysAgo(200)},
		{ID: "p-tint", Name: "Velvet Lip Tint", Category: "makeup", SubCategory: "lip",
			Tags: []string{"matte"}, WishlistCount: 400, PublishedAt: daysAgo(5)},
		{ID: "p-sun", Name: "Daily Sun Stick", Category: "suncare",
			Tags: []string{"spf"}, WishlistCount: 80, PublishedAt: daysAgo(15)},
	}
}

func newTestEngine(products []domain.Product, history *mockHistoryRepository) *Engine {
	return NewEngine(
		&mockProductRepository{products: products},
		history,
		testRanker(),
		testRecommendConfig(),
		zap.NewNop(),
	)
}

func TestParseTypeRejectsUnknown(t *testing.T) {
	_, err := ParseType("astrology")
	assert.ErrorIs(t, err, ErrUnknownType)

	for _, valid := range []string{
		"personalized", "similar", "trending", "skin-type", "browsing-history",
		"purchase-history", "category", "complementary",
		"frequently-bought-together", "new-arrivals", "bestsellers",
	} {
		_, err := ParseType(valid)
		assert.NoError(t, err, valid)
	}
}

// Personalized recommendations for a user with no history must equal the
// trending fallback for the same category and limit.
func TestPersonalizedEmptyHistoryEqualsTrending(t *testing.T) {
	history := newMockHistory()
	history.interactions = map[string]int{"p-serum": 40, "p-retinol": 10, "p-tint": 90}
	engine := newTestEngine(recommendCatalog(), history)
	ctx := context.Background()

	personalized, err := engine.Recommend(ctx, Request{
		Type: TypePersonalized, UserID: "fresh-user", Category: "skincare", Limit: 4,
	})
	require.NoError(t, err)

	trending, err := engine.Recommend(ctx, Request{
		Type: TypeTrending, Category: "skincare", Limit: 4,
	})
	require.NoError(t, err)

	assert.Equal(t, trending.Products, personalized.Products)
}

func TestPersonalizedUsesHistorySignals(t *testing.T) {
	history := newMockHistory()
	history.views["u1"] = []domain.UserEvent{event("u1", "p-serum", 1)}
	engine := newTestEngine(recommendCatalog(), history)

	result, err := engine.Recommend(context.Background(), Request{
		Type: TypePersonalized, UserID: "u1", Limit: 10,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Products)

	for _, p := range result.Products {
		assert.Equal(t, "skincare", p.Category, "candidates come from history categories")
		assert.NotEqual(t, "p-serum", p.ID, "already-viewed products are excluded")
	}
}

func TestSimilarOrdersByTagOverlap(t *testing.T) {
	engine := newTestEngine(recommendCatalog(), newMockHistory())

	result, err := engine.Recommend(context.Background(), Request{
		Type: TypeSimilar, ProductID: "p-serum", Limit: 4,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Products)

	// p-retinol shares "brightening" with the anchor; p-cream shares
	// nothing and must not outrank it.
	assert.Equal(t, "p-retinol", result.Products[0].ID)
	for _, p := range result.Products {
		assert.NotEqual(t, "p-serum", p.ID, "anchor is excluded")
	}
}

// An anchor with no tag overlap anywhere falls back to trending within
// its category and never errors.
func TestSimilarFallsBackToCategoryTrending(t *testing.T) {
	catalog := []domain.Product{
		{ID: "p-lone", Name: "Solo Balm", Category: "bodycare", Tags: []string{"unique"}, PublishedAt: daysAgo(3)},
		{ID: "p-other", Name: "Body Butter", Category: "bodycare", Tags: []string{"shea"}, PublishedAt: daysAgo(4)},
	}
	history := newMockHistory()
	history.interactions = map[string]int{"p-other": 5}
	engine := newTestEngine(catalog, history)

	result, err := engine.Recommend(context.Background(), Request{
		Type: TypeSimilar, ProductID: "p-lone", Limit: 4,
	})
	require.NoError(t, err)

	require.Len(t, result.Products, 1)
	assert.Equal(t, "p-other", result.Products[0].ID)
}

func TestSimilarUnknownAnchorReturnsNotFound(t *testing.T) {
	engine := newTestEngine(recommendCatalog(), newMockHistory())

	_, err := engine.Recommend(context.Background(), Request{
		Type: TypeSimilar, ProductID: "ghost",
	})
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestSkinTypeFallsBackWhenUndeclared(t *testing.T) {
	history := newMockHistory()
	history.interactions = map[string]int{"p-serum": 30}
	engine := newTestEngine(recommendCatalog(), history)
	ctx := context.Background()

	result, err := engine.Recommend(ctx, Request{
		Type: TypeSkinType, UserID: "no-profile", Category: "skincare", Limit: 4,
	})
	require.NoError(t, err)

	trending, err := engine.Recommend(ctx, Request{
		Type: TypeTrending, Category: "skincare", Limit: 4,
	})
	require.NoError(t, err)

	assert.Equal(t, trending.Products, result.Products)
}

func TestSkinTypeFiltersByCompatibleTags(t *testing.T) {
	history := newMockHistory()
	history.skinTypes["u-dry"] = "dry"
	engine := newTestEngine(recommendCatalog(), history)

	result, err := engine.Recommend(context.Background(), Request{
		Type: TypeSkinType, UserID: "u-dry", Limit: 10,
	})
	require.NoError(t, err)

	require.Len(t, result.Products, 1)
	assert.Equal(t, "p-cream", result.Products[0].ID)
	assert.Equal(t, "dry", result.BasedOn)
}

func TestTrendingScoresByVelocityNotTotals(t *testing.T) {
	catalog := []domain.Product{
		{ID: "p-old-hit", Name: "Classic Cream", Category: "skincare", PublishedAt: daysAgo(300)},
		{ID: "p-new-riser", Name: "New Essence", Category: "skincare", PublishedAt: daysAgo(5)},
	}
	history := newMockHistory()
	// The old product has more raw interactions, but the new one has far
	// more per day since publish.
	history.interactions = map[string]int{"p-old-hit": 60, "p-new-riser": 40}
	engine := newTestEngine(catalog, history)

	result, err := engine.Recommend(context.Background(), Request{Type: TypeTrending, Limit: 5})
	require.NoError(t, err)

	require.Len(t, result.Products, 2)
	assert.Equal(t, "p-new-riser", result.Products[0].ID)
}

func TestFrequentlyBoughtTogetherUsesCoOccurrence(t *testing.T) {
	history := newMockHistory()
	history.coPurchases["p-serum"] = map[string]int{"p-sun": 12, "p-cream": 3}
	engine := newTestEngine(recommendCatalog(), history)

	result, err := engine.Recommend(context.Background(), Request{
		Type: TypeFrequentlyBoughtTogether, ProductID: "p-serum", Limit: 5,
	})
	require.NoError(t, err)

	require.Len(t, result.Products, 2)
	assert.Equal(t, "p-sun", result.Products[0].ID)
	assert.Equal(t, "p-cream", result.Products[1].ID)
}

func TestComplementaryUsesCategoryMap(t *testing.T) {
	engine := newTestEngine(recommendCatalog(), newMockHistory())

	result, err := engine.Recommend(context.Background(), Request{
		Type: TypeComplementary, ProductID: "p-serum", Limit: 5,
	})
	require.NoError(t, err)

	require.NotEmpty(t, result.Products)
	for _, p := range result.Products {
		assert.Equal(t, "suncare", p.Category)
	}
}

func TestBestsellersAndNewArrivals(t *testing.T) {
	catalog := recommendCatalog()
	catalog[1].IsBestseller = true
	engine := newTestEngine(catalog, newMockHistory())
	ctx := context.Background()

	best, err := engine.Recommend(ctx, Request{Type: TypeBestsellers, Limit: 3})
	require.NoError(t, err)
	require.NotEmpty(t, best.Products)
	assert.Equal(t, "p-retinol", best.Products[0].ID)

	arrivals, err := engine.Recommend(ctx, Request{Type: TypeNewArrivals, Limit: 3})
	require.NoError(t, err)
	for _, p := range arrivals.Products {
		assert.True(t, p.IsNew || p.PublishedAt.After(daysAgo(30)), p.ID)
	}
}

func TestHistoryRepositoryFailurePropagates(t *testing.T) {
	history := newMockHistory()
	history.err = errors.New("connection reset")
	engine := newTestEngine(recommendCatalog(), history)

	_, err := engine.Recommend(context.Background(), Request{
		Type: TypePersonalized, UserID: "u1",
	})
	assert.Error(t, err)
}

// No recommendation call, for any type or fallback path, may return a
// product in its exclusion set.
func TestProperty_ExclusionsAlwaysHonored(t *testing.T) {
	catalog := recommendCatalog()
	history := newMockHistory()
	history.views["u1"] = []domain.UserEvent{event("u1", "p-serum", 1)}
	history.purchases["u1"] = []domain.UserEvent{event("u1", "p-tint", 2)}
	history.skinTypes["u1"] = "dry"
	history.interactions = map[string]int{"p-serum": 20, "p-tint": 50, "p-sun": 5}
	history.coPurchases["p-serum"] = map[string]int{"p-sun": 4}
	engine := newTestEngine(catalog, history)

	types := []Type{
		TypePersonalized, TypeSimilar, TypeTrending, TypeSkinType,
		TypeBrowsingHistory, TypePurchaseHistory, TypeCategory,
		TypeComplementary, TypeFrequentlyBoughtTogether,
		TypeNewArrivals, TypeBestsellers,
	}

	properties := gopter.NewProperties(nil)

	properties.Property("excluded identifiers never appear", prop.ForAll(
		func(typeIdx int, excludeMask int, limit int) bool {
			recType := types[typeIdx%len(types)]

			exclude := []string{}
			for i, p := range catalog {
				if excludeMask&(1<<i) != 0 {
					exclude = append(exclude, p.ID)
				}
			}

			req := Request{
				Type:     recType,
				UserID:   "u1",
				Category: "skincare",
				Limit:    limit,
				Exclude:  exclude,
			}
			if recType == TypeSimilar || recType == TypeComplementary || recType == TypeFrequentlyBoughtTogether {
				req.ProductID = "p-serum"
			}

			result, err := engine.Recommend(context.Background(), req)
			if err != nil {
				return false
			}

			excluded := map[string]bool{}
			for _, id := range exclude {
				excluded[id] = true
			}
			if req.ProductID != "" {
				excluded[req.ProductID] = true
			}
			for _, p := range result.Products {
				if excluded[p.ID] {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, len(types)-1),
		gen.IntRange(0, 31),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
