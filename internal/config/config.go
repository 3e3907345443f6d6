package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// AI provider names accepted by AI_PROVIDER
const (
	ProviderAnthropic = "anthropic"
	ProviderLorem     = "lorem"
	ProviderCanned    = "canned"
)

type Config struct {
	Port            string
	Environment     string
	SupabaseURL     string
	SupabaseJWKSURL string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	SupabaseKey     string // Service role key, only used by cmd/seed
	DatabaseURL     string
	CORSOrigins     string
	TablePrefix     string
	// Guest mode
	RedisURL string
	GuestTTL time.Duration
	// Editing session
	SaveDebounce time.Duration
	// AI Configuration
	AIProvider      string
	AIModel         string
	AnthropicAPIKey string
	AITimeout       time.Duration
	AIRateRPS       float64
	AIRateBurst     int
	// Logging
	LogDir      string
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	supabaseURL := getEnv("SUPABASE_URL", "")

	// Construct JWKS URL from Supabase URL
	jwksURL := ""
	if supabaseURL != "" {
		jwksURL = supabaseURL + "/auth/v1/.well-known/jwks.json"
	}

	anthropicKey := getEnv("ANTHROPIC_API_KEY", "")
	provider := getEnv("AI_PROVIDER", getDefaultProvider(anthropicKey))

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     env,
		SupabaseURL:     supabaseURL,
		SupabaseJWKSURL: jwksURL,
		SupabaseKey:     getEnv("SUPABASE_KEY", ""),
		DatabaseURL:     getEnv("DATABASE_URL", getEnv("SUPABASE_DB_URL", "")),
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:     tablePrefix,
		// Guest mode
		RedisURL: getEnv("REDIS_URL", ""),
		GuestTTL: getDuration("GUEST_TTL", 72*time.Hour),
		// Editing session
		SaveDebounce: getDuration("SAVE_DEBOUNCE", time.Second),
		// AI Configuration
		AIProvider:      provider,
		AIModel:         getEnv("AI_MODEL", getDefaultModel(provider)),
		AnthropicAPIKey: anthropicKey,
		AITimeout:       getDuration("AI_TIMEOUT", 60*time.Second),
		AIRateRPS:       getFloat("AI_RATE_RPS", 1),
		AIRateBurst:     getInt("AI_RATE_BURST", 5),
		// Logging
		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getInt("LOG_MAX_FILES", 10),
	}
}

// getDefaultProvider picks the offline generator unless an API key is present
func getDefaultProvider(anthropicKey string) string {
	if anthropicKey != "" {
		return ProviderAnthropic
	}
	return ProviderCanned
}

// getDefaultModel returns the default model for a provider
func getDefaultModel(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "claude-haiku-4-5-20251001"
	case ProviderLorem:
		return "lorem-fast"
	default:
		return ""
	}
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	// Auto-generate based on environment
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	case "dev":
		return "dev_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		slog.Warn("invalid integer, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return n
}

func getFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f <= 0 {
		slog.Warn("invalid number, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return f
}
