package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"glowcart/internal/config"
	"glowcart/internal/database"
	custommiddleware "glowcart/internal/middleware"
	"glowcart/internal/recommend"
	"glowcart/internal/repository"
	"glowcart/internal/search"
	"glowcart/internal/tracking"
	"glowcart/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *database.Service
	redis  *redis.Client
}

// NewServer wires repositories, services, and handlers. Dependencies are
// constructor-injected throughout; nothing reads ambient state, so tests
// can assemble the same pipeline over fixture catalogs.
func NewServer(cfg *config.Config, logger *zap.Logger, db *database.Service, redisClient *redis.Client) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env != "production"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	if redisClient != nil {
		router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "ratelimit",
		}, logger))
	}

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(db.Health(r.Context()))
	})

	// Initialize repositories
	productRepo := repository.NewProductRepository(db.DB())
	historyRepo := repository.NewHistoryRepository(db.DB())
	var searchLog repository.SearchLog
	if redisClient != nil {
		searchLog = repository.NewSearchLog(redisClient)
	}

	// Initialize services
	searchService := search.NewService(productRepo, searchLog, cfg.Search, cfg.Recommend.SkinTypeTags, logger)
	engine := recommend.NewEngine(productRepo, historyRepo, searchService.Ranker(), cfg.Recommend, logger)
	tracker := tracking.NewTracker(historyRepo, logger)

	// Initialize handlers and register routes
	transport.NewSearchHandler(searchService, logger).RegisterRoutes(router)
	transport.NewRecommendationHandler(engine, tracker, logger).RegisterRoutes(router)

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
