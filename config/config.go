package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	Environment       string
	DBUrl             string
	SupabaseUrl       string
	SupabaseJWTSecret string
	FrontendURL       string
	// Redis/Upstash Configuration (realtime fan-out, rate limiting)
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Queue Redis for background notification delivery. Falls back to UPSTASH_REDIS_URL.
	QueueRedisURL string
	// Storage
	QueryTimeout time.Duration
	AutoMigrate  bool
	// Realtime
	WSPingInterval    time.Duration
	WSLivenessTimeout time.Duration
	PresenceSweepSpec string
	// Rate Limiting Configuration
	MessageRateLimit       int
	RateLimitWindowSeconds int
}

func LoadConfig() (*Config, error) {
	// Only effective locally; production injects env directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", getEnv("ENV", "development")),
		DBUrl:       getEnv("DATABASE_URL", ""),
		// Strip trailing slash to avoid double slashes when building the JWKS URL
		SupabaseUrl:       strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", getEnv("SUPABASE_JWT_KEY", "")),
		FrontendURL:       strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		QueueRedisURL:        getEnv("QUEUE_REDIS_URL", getEnv("UPSTASH_REDIS_URL", "")),
		// Storage
		QueryTimeout: getEnvDuration("QUERY_TIMEOUT", 5*time.Second),
		AutoMigrate:  getEnvBool("AUTO_MIGRATE", false),
		// Realtime
		WSPingInterval:    getEnvDuration("WS_PING_INTERVAL", 30*time.Second),
		WSLivenessTimeout: getEnvDuration("WS_LIVENESS_TIMEOUT", 90*time.Second),
		PresenceSweepSpec: getEnv("PRESENCE_SWEEP_SPEC", "@every 30s"),
		// Rate Limiting Configuration
		MessageRateLimit:       getEnvInt("MESSAGE_RATE_LIMIT", 30),        // messages per window
		RateLimitWindowSeconds: getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60), // 1 minute window
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Realtime fan-out and rate limiting stay in-process.")
	}
	if cfg.QueueRedisURL == "" {
		log.Println("WARNING: QUEUE_REDIS_URL not configured. Notifications are delivered in-process.")
	}
	if cfg.WSLivenessTimeout <= cfg.WSPingInterval {
		log.Println("WARNING: WS_LIVENESS_TIMEOUT should exceed WS_PING_INTERVAL; using 3x ping interval.")
		cfg.WSLivenessTimeout = 3 * cfg.WSPingInterval
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("5s") or bare seconds ("5").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
