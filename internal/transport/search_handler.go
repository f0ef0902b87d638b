package transport

import (
	"net/http"
	"strconv"

	"glowcart/internal/domain"
	"glowcart/internal/middleware"
	"glowcart/internal/search"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FiltersResponse is the facet summary shape consumed by the storefront
// filter panel.
type FiltersResponse struct {
	Categories []string                       `json:"categories"`
	Brands     []string                       `json:"brands"`
	PriceRange search.PriceRange              `json:"priceRange"`
	Counts     map[string][]search.FacetCount `json:"counts,omitempty"`
}

// SearchResponse is the full result envelope for GET /search.
type SearchResponse struct {
	Products    []domain.Product  `json:"products"`
	Suggestions []string          `json:"suggestions,omitempty"`
	Filters     FiltersResponse   `json:"filters"`
	Pagination  search.Pagination `json:"pagination"`
}

// AutocompleteResponse is the shape for GET /search/autocomplete.
type AutocompleteResponse struct {
	Suggestions []string `json:"suggestions"`
}

// PopularSearchesResponse is the shape for GET /search/popular.
type PopularSearchesResponse struct {
	PopularSearches []string `json:"popularSearches"`
	Title           string   `json:"title"`
}

// SearchHandler handles HTTP requests for product search
type SearchHandler struct {
	searchService *search.Service
	logger        *zap.Logger
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(searchService *search.Service, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		logger:        logger,
	}
}

// RegisterRoutes registers all search routes
func (h *SearchHandler) RegisterRoutes(r chi.Router) {
	r.Route("/search", func(r chi.Router) {
		r.Get("/", h.Search)
		r.Get("/autocomplete", h.Autocomplete)
		r.Get("/popular", h.Popular)
		r.Get("/filters", h.Filters)
	})
}

// Search handles GET /search. Parameter coercion is total, so malformed
// numerics never produce a 4xx; the only failure is catalog
// unavailability, which must stay distinguishable from an empty result.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	raw := search.RawQuery{
		Term:         params.Get("q"),
		Category:     params.Get("category"),
		SubCategory:  params.Get("subCategory"),
		Brand:        params.Get("brand"),
		MinPrice:     params.Get("minPrice"),
		MaxPrice:     params.Get("maxPrice"),
		SkinType:     params.Get("skinType"),
		IsBestseller: params.Get("isBestseller"),
		IsNew:        params.Get("isNew"),
		Featured:     params.Get("featured"),
		SortBy:       params.Get("sortBy"),
		Page:         params.Get("page"),
		Limit:        params.Get("limit"),
	}

	envelope, err := h.searchService.Search(r.Context(), raw)
	if err != nil {
		h.logger.Error("Search failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "search is temporarily unavailable")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, SearchResponse{
		Products:    envelope.Products,
		Suggestions: envelope.Suggestions,
		Filters:     toFiltersResponse(envelope.Facets),
		Pagination:  envelope.Pagination,
	})
}

// Autocomplete handles GET /search/autocomplete
func (h *SearchHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	suggestions, err := h.searchService.Autocomplete(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		h.logger.Error("Autocomplete failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "search is temporarily unavailable")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, AutocompleteResponse{Suggestions: suggestions})
}

// Popular handles GET /search/popular
func (h *SearchHandler) Popular(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	middleware.RespondWithJSON(w, http.StatusOK, PopularSearchesResponse{
		PopularSearches: h.searchService.PopularSearches(r.Context(), limit),
		Title:           "Popular searches",
	})
}

// Filters handles GET /search/filters: the facet summary with no query
// applied.
func (h *SearchHandler) Filters(w http.ResponseWriter, r *http.Request) {
	facets, err := h.searchService.FacetDefaults(r.Context())
	if err != nil {
		h.logger.Error("Filter summary failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "search is temporarily unavailable")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]FiltersResponse{
		"filters": toFiltersResponse(*facets),
	})
}

func toFiltersResponse(facets search.FacetSummary) FiltersResponse {
	categories := make([]string, len(facets.Categories))
	for i, f := range facets.Categories {
		categories[i] = f.Value
	}
	brands := make([]string, len(facets.Brands))
	for i, f := range facets.Brands {
		brands[i] = f.Value
	}

	return FiltersResponse{
		Categories: categories,
		Brands:     brands,
		PriceRange: facets.PriceRange,
		Counts: map[string][]search.FacetCount{
			"categories": facets.Categories,
			"brands":     facets.Brands,
		},
	}
}
