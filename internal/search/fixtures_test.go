package search

import (
	"context"
	"errors"
	"time"

	"glowcart/internal/config"
	"glowcart/internal/domain"
	"glowcart/internal/repository"

	"go.uber.org/zap"
)

func zapNop() *zap.Logger { return zap.NewNop() }

// Mock catalog for testing
type mockProductRepository struct {
	products []domain.Product
	err      error
}

func (m *mockProductRepository) All(ctx context.Context) ([]domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.products {
		if m.products[i].ID == id {
			return &m.products[i], nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []domain.Product{}
	for _, p := range m.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

var errStoreDown = errors.New("connection refused")

func testConfig() config.SearchConfig {
	return config.SearchConfig{
		DefaultPageSize:      20,
		MaxPageSize:          100,
		TextMatchWeight:      0.5,
		RecencyWeight:        0.2,
		PopularityWeight:     0.3,
		RecencyHalfLife:      45 * 24 * time.Hour,
		RecencyFloor:         0.05,
		MaxSuggestions:       5,
		AutocompleteMinChars: 2,
		AutocompleteCacheTTL: 5 * time.Minute,
		PopularSearchLimit:   10,
		PopularFallback:      []string{"vitamin c serum", "sunscreen"},
	}
}

func testSkinTags() map[string][]string {
	return map[string][]string{
		"dry":  {"hyaluronic-acid", "ceramide"},
		"oily": {"niacinamide", "salicylic-acid"},
	}
}

func daysAgo(n int) time.Time {
	return time.Now().Add(-time.Duration(n) * 24 * time.Hour)
}

// fixtureCatalog is a small cosmetics catalog exercising every filter
// dimension.
func fixtureCatalog() []domain.Product {
	return []domain.Product{
		{
			ID: "prod-serum-vitc", Name: "Vitamin C Serum", Brand: "Glow Lab",
			Description: "Brightening serum with 15% vitamin C", Category: "skincare",
			SubCategory: "serum", Price: 68000, Stock: 12, IsNew: true,
			Rating: domain.Rating{Average: 4.6, Count: 214}, WishlistCount: 180,
			Tags:      []string{"vitamin-c", "antioxidant", "brightening"},
			CreatedAt: daysAgo(20), PublishedAt: daysAgo(18),
		},
		{
			ID: "prod-serum-retinol", Name: "Retinol Serum", Brand: "Dermaline",
			Description: "Overnight renewal serum with encapsulated retinol", Category: "skincare",
			SubCategory: "serum", Price: 85000, Stock: 7, IsBestseller: true,
			Rating: domain.Rating{Average: 4.8, Count: 97}, WishlistCount: 240,
			Tags:      []string{"retinol", "anti-aging"},
			CreatedAt: daysAgo(200), PublishedAt: daysAgo(190),
		},
		{
			ID: "prod-cream-ceramide", Name: "Ceramide Barrier Cream", Brand: "Dermaline",
			Description: "Rich moisturizer for dry skin", Category: "skincare",
			SubCategory: "moisturizer", Price: 42000, Stock: 30,
			Rating: domain.Rating{Average: 4.2, Count: 55}, WishlistCount: 60,
			Tags:      []string{"ceramide", "hyaluronic-acid", "hydrating"},
			CreatedAt: daysAgo(400), PublishedAt: daysAgo(390),
		},
		{
			ID: "prod-perfume-rose", Name: "Rose Eau de Parfum", Brand: "Maison Fleur",
			Description: "Damask rose with a cedar base", Category: "향수",
			Price: 95000, Stock: 4, Featured: true,
			Rating: domain.Rating{Average: 4.9, Count: 12}, WishlistCount: 90,
			Tags:      []string{"rose", "woody"},
			CreatedAt: daysAgo(60), PublishedAt: daysAgo(55),
		},
		{
			ID: "prod-tint-velvet", Name: "Velvet Lip Tint", Brand: "Glow Lab",
			Description: "Long-wear matte tint", Category: "makeup",
			SubCategory: "lip", Price: 19000, Stock: 50, IsBestseller: true,
			Rating: domain.Rating{Average: 4.4, Count: 320}, WishlistCount: 410,
			Tags:      []string{"matte", "long-wear"},
			CreatedAt: daysAgo(90), PublishedAt: daysAgo(88),
		},
		{
			ID: "prod-foam-niacinamide", Name: "Niacinamide Foam Cleanser", Brand: "Puredew",
			Description: "Gentle foaming cleanser for oily skin", Category: "skincare",
			SubCategory: "cleanser", Price: 23000, Stock: 0, IsNew: true,
			Rating: domain.Rating{Count: 0}, WishlistCount: 15,
			Tags:      []string{"niacinamide", "oil-free"},
			CreatedAt: daysAgo(5), PublishedAt: daysAgo(3),
		},
	}
}

func newTestService(products []domain.Product) *Service {
	return newTestServiceWithRepo(&mockProductRepository{products: products})
}

func newTestServiceWithRepo(repo repository.ProductRepository) *Service {
	return NewService(repo, nil, testConfig(), testSkinTags(), zapNop())
}
