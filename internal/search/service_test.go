package search

import (
	"context"
	"reflect"
	"testing"

	"glowcart/internal/domain"
)

func TestSearchSerumByPriceAscending(t *testing.T) {
	svc := newTestService([]domain.Product{
		{ID: "prod-1", Name: "Vitamin C Serum", Price: 68000, IsNew: true, Category: "skincare"},
		{ID: "prod-2", Name: "Retinol Serum", Price: 85000, Category: "skincare"},
	})

	envelope, err := svc.Search(context.Background(), RawQuery{Term: "serum", SortBy: "price_asc"})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	if len(envelope.Products) != 2 {
		t.Fatalf("got %d products, want 2", len(envelope.Products))
	}
	if envelope.Products[0].Name != "Vitamin C Serum" || envelope.Products[1].Name != "Retinol Serum" {
		t.Errorf("order = [%s, %s], want [Vitamin C Serum, Retinol Serum]",
			envelope.Products[0].Name, envelope.Products[1].Name)
	}
	if envelope.Pagination.TotalCount != 2 {
		t.Errorf("TotalCount = %d, want 2", envelope.Pagination.TotalCount)
	}
}

// A price filter that excludes the only fragrance must yield an empty
// envelope with a suggestion for the relaxed query, not an error.
func TestSearchOverConstrainedPriceSuggestsRelaxation(t *testing.T) {
	svc := newTestService([]domain.Product{
		{ID: "prod-rose", Name: "Rose Eau de Parfum", Price: 95000, Category: "향수"},
		{ID: "prod-serum", Name: "Vitamin C Serum", Price: 68000, Category: "skincare"},
	})

	envelope, err := svc.Search(context.Background(), RawQuery{
		Category: "향수",
		MinPrice: "100000",
	})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	if len(envelope.Products) != 0 || envelope.Pagination.TotalCount != 0 {
		t.Fatalf("expected empty result, got %d products", len(envelope.Products))
	}
	if len(envelope.Suggestions) == 0 {
		t.Fatal("expected suggestions for an over-constrained query")
	}

	found := false
	for _, s := range envelope.Suggestions {
		if s == "향수" {
			found = true
		}
	}
	if !found {
		t.Errorf("suggestions = %v, want the price filter dropped (향수)", envelope.Suggestions)
	}
}

func TestSearchMultiTokenSuggestionDropsLeastFrequentToken(t *testing.T) {
	svc := newTestService([]domain.Product{
		{ID: "prod-1", Name: "Vitamin C Serum", Category: "skincare"},
		{ID: "prod-2", Name: "Retinol Serum", Category: "skincare"},
	})

	envelope, err := svc.Search(context.Background(), RawQuery{Term: "Serum Unobtainium"})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	if len(envelope.Products) != 0 {
		t.Fatalf("expected no matches, got %d", len(envelope.Products))
	}
	want := "Serum"
	found := false
	for _, s := range envelope.Suggestions {
		if s == want {
			found = true
		}
	}
	if !found {
		t.Errorf("suggestions = %v, want %q (original casing, rare token dropped)", envelope.Suggestions, want)
	}
}

func TestSearchEmptyCatalogYieldsNoSuggestions(t *testing.T) {
	svc := newTestService(nil)

	envelope, err := svc.Search(context.Background(), RawQuery{Term: "anything"})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(envelope.Suggestions) != 0 {
		t.Errorf("suggestions = %v, want none when no relaxation can help", envelope.Suggestions)
	}
}

// "No matches" and "search is down" are different answers; a store
// failure must surface as an error, never as an empty envelope.
func TestSearchStoreFailurePropagates(t *testing.T) {
	svc := newTestServiceWithRepo(&mockProductRepository{err: errStoreDown})

	envelope, err := svc.Search(context.Background(), RawQuery{Term: "serum"})
	if err == nil {
		t.Fatalf("expected error, got envelope %+v", envelope)
	}
}

func TestSearchDeterministicAcrossRuns(t *testing.T) {
	svc := newTestService(fixtureCatalog())
	raw := RawQuery{Term: "serum"}

	first, err := svc.Search(context.Background(), raw)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	firstIDs := make([]string, len(first.Products))
	for i, p := range first.Products {
		firstIDs[i] = p.ID
	}

	for i := 0; i < 3; i++ {
		again, err := svc.Search(context.Background(), raw)
		if err != nil {
			t.Fatalf("Search returned error: %v", err)
		}
		againIDs := make([]string, len(again.Products))
		for j, p := range again.Products {
			againIDs[j] = p.ID
		}
		if !reflect.DeepEqual(firstIDs, againIDs) {
			t.Fatalf("run %d ordering differs: %v vs %v", i, firstIDs, againIDs)
		}
	}
}

func TestAutocomplete(t *testing.T) {
	svc := newTestService(fixtureCatalog())
	ctx := context.Background()

	short, err := svc.Autocomplete(ctx, "v", 10)
	if err != nil {
		t.Fatalf("Autocomplete returned error: %v", err)
	}
	if len(short) != 0 {
		t.Errorf("single-character query should return no suggestions, got %v", short)
	}

	got, err := svc.Autocomplete(ctx, "vel", 10)
	if err != nil {
		t.Fatalf("Autocomplete returned error: %v", err)
	}
	if len(got) == 0 || got[0] != "Velvet Lip Tint" {
		t.Errorf("suggestions = %v, want prefix match Velvet Lip Tint first", got)
	}

	limited, err := svc.Autocomplete(ctx, "se", 1)
	if err != nil {
		t.Fatalf("Autocomplete returned error: %v", err)
	}
	if len(limited) > 1 {
		t.Errorf("limit not honored: %v", limited)
	}
}

func TestPopularSearchesFallsBackToConfig(t *testing.T) {
	svc := newTestService(nil)

	got := svc.PopularSearches(context.Background(), 5)
	want := []string{"vitamin c serum", "sunscreen"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PopularSearches = %v, want config fallback %v", got, want)
	}
}

func TestFacetDefaultsCoverWholeCatalog(t *testing.T) {
	svc := newTestService(fixtureCatalog())

	facets, err := svc.FacetDefaults(context.Background())
	if err != nil {
		t.Fatalf("FacetDefaults returned error: %v", err)
	}
	if len(facets.Categories) != 3 {
		t.Errorf("got %d categories, want 3", len(facets.Categories))
	}
	if facets.PriceRange.Min != 19000 || facets.PriceRange.Max != 95000 {
		t.Errorf("price range = %+v, want 19000..95000", facets.PriceRange)
	}
}
