package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Search    SearchConfig
	Recommend RecommendConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// SearchConfig holds the tunable parts of the search pipeline. The
// relevance weights are deliberately configuration, not code, so ranking
// can be re-tuned without a deploy.
type SearchConfig struct {
	DefaultPageSize int
	MaxPageSize     int

	// Relevance score weights. They are normalized at load time, so only
	// their ratios matter.
	TextMatchWeight  float64
	RecencyWeight    float64
	PopularityWeight float64

	// RecencyHalfLife controls how fast the recency component decays;
	// RecencyFloor bounds it so old products are never zeroed out.
	RecencyHalfLife time.Duration
	RecencyFloor    float64

	MaxSuggestions       int
	AutocompleteMinChars int
	AutocompleteCacheTTL time.Duration
	PopularSearchLimit   int
	PopularFallback      []string
}

// RecommendConfig holds the tunable parts of the recommendation engine.
type RecommendConfig struct {
	TrendingWindow time.Duration
	HistoryDepth   int
	DefaultLimit   int
	MaxLimit       int

	// SkinTypeTags maps a declared skin type to the ingredient/attribute
	// tags considered compatible with it.
	SkinTypeTags map[string][]string

	// ComplementaryCategories maps a category to the categories whose
	// products complement it (e.g. skincare -> suncare).
	ComplementaryCategories map[string][]string
}

type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("SEARCH_DEFAULT_PAGE_SIZE", 20)
	viper.SetDefault("SEARCH_MAX_PAGE_SIZE", 100)
	viper.SetDefault("SEARCH_TEXT_MATCH_WEIGHT", 0.5)
	viper.SetDefault("SEARCH_RECENCY_WEIGHT", 0.2)
	viper.SetDefault("SEARCH_POPULARITY_WEIGHT", 0.3)
	viper.SetDefault("SEARCH_RECENCY_HALF_LIFE_DAYS", 45)
	viper.SetDefault("SEARCH_RECENCY_FLOOR", 0.05)
	viper.SetDefault("SEARCH_MAX_SUGGESTIONS", 5)
	viper.SetDefault("SEARCH_AUTOCOMPLETE_MIN_CHARS", 2)
	viper.SetDefault("SEARCH_AUTOCOMPLETE_CACHE_TTL_SECONDS", 300)
	viper.SetDefault("SEARCH_POPULAR_LIMIT", 10)
	viper.SetDefault("SEARCH_POPULAR_FALLBACK", []string{
		"vitamin c serum", "retinol", "sunscreen", "lip tint", "cleansing oil",
	})

	viper.SetDefault("RECOMMEND_TRENDING_WINDOW_DAYS", 30)
	viper.SetDefault("RECOMMEND_HISTORY_DEPTH", 10)
	viper.SetDefault("RECOMMEND_DEFAULT_LIMIT", 8)
	viper.SetDefault("RECOMMEND_MAX_LIMIT", 50)

	viper.SetDefault("RATE_LIMIT_REQUESTS", 120)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Search: SearchConfig{
			DefaultPageSize:      viper.GetInt("SEARCH_DEFAULT_PAGE_SIZE"),
			MaxPageSize:          viper.GetInt("SEARCH_MAX_PAGE_SIZE"),
			TextMatchWeight:      viper.GetFloat64("SEARCH_TEXT_MATCH_WEIGHT"),
			RecencyWeight:        viper.GetFloat64("SEARCH_RECENCY_WEIGHT"),
			PopularityWeight:     viper.GetFloat64("SEARCH_POPULARITY_WEIGHT"),
			RecencyHalfLife:      time.Duration(viper.GetInt("SEARCH_RECENCY_HALF_LIFE_DAYS")) * 24 * time.Hour,
			RecencyFloor:         viper.GetFloat64("SEARCH_RECENCY_FLOOR"),
			MaxSuggestions:       viper.GetInt("SEARCH_MAX_SUGGESTIONS"),
			AutocompleteMinChars: viper.GetInt("SEARCH_AUTOCOMPLETE_MIN_CHARS"),
			AutocompleteCacheTTL: time.Duration(viper.GetInt("SEARCH_AUTOCOMPLETE_CACHE_TTL_SECONDS")) * time.Second,
			PopularSearchLimit:   viper.GetInt("SEARCH_POPULAR_LIMIT"),
			PopularFallback:      viper.GetStringSlice("SEARCH_POPULAR_FALLBACK"),
		},
		Recommend: RecommendConfig{
			TrendingWindow:          time.Duration(viper.GetInt("RECOMMEND_TRENDING_WINDOW_DAYS")) * 24 * time.Hour,
			HistoryDepth:            viper.GetInt("RECOMMEND_HISTORY_DEPTH"),
			DefaultLimit:            viper.GetInt("RECOMMEND_DEFAULT_LIMIT"),
			MaxLimit:                viper.GetInt("RECOMMEND_MAX_LIMIT"),
			SkinTypeTags:            skinTypeTags(),
			ComplementaryCategories: complementaryCategories(),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:            time.Duration(viper.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
	}
}

// skinTypeTags returns the compatibility map between declared skin types and
// ingredient/attribute tags. Overridable per key via environment, e.g.
// SKIN_TYPE_TAGS_DRY="hyaluronic-acid,ceramide".
func skinTypeTags() map[string][]string {
	defaults := map[string][]string{
		"dry":         {"hyaluronic-acid", "ceramide", "squalane", "shea-butter", "hydrating"},
		"oily":        {"niacinamide", "salicylic-acid", "clay", "oil-free", "mattifying"},
		"combination": {"niacinamide", "hyaluronic-acid", "lightweight", "balancing"},
		"sensitive":   {"centella", "fragrance-free", "panthenol", "madecassoside", "soothing"},
		"normal":      {"vitamin-c", "antioxidant", "spf", "peptide"},
	}

	out := make(map[string][]string, len(defaults))
	for skinType, tags := range defaults {
		key := "SKIN_TYPE_TAGS_" + upperSnake(skinType)
		viper.SetDefault(key, tags)
		out[skinType] = viper.GetStringSlice(key)
	}
	return out
}

func complementaryCategories() map[string][]string {
	defaults := map[string][]string{
		"skincare":  {"suncare", "masks"},
		"makeup":    {"skincare", "tools"},
		"suncare":   {"skincare"},
		"haircare":  {"tools"},
		"fragrance": {"bodycare"},
		"bodycare":  {"fragrance"},
	}

	out := make(map[string][]string, len(defaults))
	for category, related := range defaults {
		key := "COMPLEMENTARY_CATEGORIES_" + upperSnake(category)
		viper.SetDefault(key, related)
		out[category] = viper.GetStringSlice(key)
	}
	return out
}

func upperSnake(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		} else if c == '-' || c == ' ' {
			b[i] = '_'
		}
	}
	return string(b)
}
