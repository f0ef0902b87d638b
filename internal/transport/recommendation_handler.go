package transport

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"glowcart/internal/domain"
	"glowcart/internal/middleware"
	"glowcart/internal/recommend"
	"glowcart/internal/repository"
	"glowcart/internal/tracking"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RecommendationResponse is the shape for GET /recommendations/{type}.
type RecommendationResponse struct {
	Products   []domain.Product `json:"products"`
	Reason     string           `json:"reason,omitempty"`
	BasedOn    string           `json:"basedOn,omitempty"`
	Confidence float64          `json:"confidence,omitempty"`
}

// TrackRequest is the payload for the tracking endpoints.
type TrackRequest struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId" validate:"required"`
	EventType string `json:"eventType" validate:"omitempty,oneof=view purchase click wishlist"`
	Source    string `json:"source"`
}

// RecommendationHandler handles HTTP requests for recommendations and
// analytics tracking.
type RecommendationHandler struct {
	engine  *recommend.Engine
	tracker *tracking.Tracker
	logger  *zap.Logger
}

// NewRecommendationHandler creates a new RecommendationHandler
func NewRecommendationHandler(engine *recommend.Engine, tracker *tracking.Tracker, logger *zap.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		engine:  engine,
		tracker: tracker,
		logger:  logger,
	}
}

// RegisterRoutes registers all recommendation routes
func (h *RecommendationHandler) RegisterRoutes(r chi.Router) {
	r.Route("/recommendations", func(r chi.Router) {
		r.Post("/track", h.Track)
		r.Post("/track-interaction", h.TrackInteraction)
		r.Get("/{type}", h.Recommend)
	})
}

// Recommend handles GET /recommendations/{type}
func (h *RecommendationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	recType, err := recommend.ParseType(chi.URLParam(r, "type"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "unknown recommendation type")
		return
	}

	params := r.URL.Query()
	limit, _ := strconv.Atoi(params.Get("limit"))

	req := recommend.Request{
		Type:      recType,
		UserID:    params.Get("userId"),
		ProductID: params.Get("productId"),
		Category:  params.Get("category"),
		Limit:     limit,
		Exclude:   splitExclude(params.Get("exclude")),
	}

	result, err := h.engine.Recommend(r.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Recommendation failed",
			zap.String("type", string(recType)),
			zap.Error(err),
		)
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "recommendations are temporarily unavailable")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, RecommendationResponse{
		Products:   result.Products,
		Reason:     result.Reason,
		BasedOn:    result.BasedOn,
		Confidence: result.Confidence,
	})
}

// Track handles POST /recommendations/track. Ingestion is
// fire-and-forget: the caller gets 202 as soon as the payload parses;
// storage failures are logged and swallowed downstream.
func (h *RecommendationHandler) Track(w http.ResponseWriter, r *http.Request) {
	h.track(w, r, domain.EventView)
}

// TrackInteraction handles POST /recommendations/track-interaction
func (h *RecommendationHandler) TrackInteraction(w http.ResponseWriter, r *http.Request) {
	h.track(w, r, domain.EventClick)
}

func (h *RecommendationHandler) track(w http.ResponseWriter, r *http.Request, defaultType domain.EventType) {
	var req TrackRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Tracking validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	eventType := defaultType
	if req.EventType != "" {
		eventType = domain.EventType(req.EventType)
	}

	h.tracker.Track(req.UserID, req.ProductID, eventType, req.Source)

	middleware.RespondWithJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func splitExclude(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
