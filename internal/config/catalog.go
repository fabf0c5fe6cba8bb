package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultMigrationsPath  = "migrations/catalog"
	defaultShutdownTimeout = 10 * time.Second

	defaultDBMaxOpenConns    = 25
	defaultDBMaxIdleConns    = 5
	defaultDBConnMaxLifetime = 5 * time.Minute
	defaultDBPingTimeout     = 5 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second

	defaultRedisCacheTTL = 5 * time.Minute
	defaultGroqAPIURL    = "https://api.groq.com/openai/v1/chat/completions"
	defaultGroqModel     = "llama-3.3-70b-versatile"
	defaultAITimeout     = 20 * time.Second
)

type Catalog struct {
	DatabaseURL       string
	HTTPAddr          string
	MigrationsPath    string
	ShutdownTimeout   time.Duration
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBPingTimeout     time.Duration
	ReadHeaderTimeout time.Duration

	// Optional integrations; empty disables them.
	RabbitMQURL string
	RedisAddr   string
	GroqAPIKey  string

	RedisPassword string
	RedisCacheTTL time.Duration
	GroqAPIURL    string
	GroqModel     string
	AITimeout     time.Duration
	SEOOnCreate   bool
}

func LoadCatalog() (Catalog, error) {
	cfg := Catalog{
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		HTTPAddr:          getEnv("HTTP_ADDR", defaultHTTPAddr),
		MigrationsPath:    getEnv("MIGRATIONS_PATH", defaultMigrationsPath),
		DBMaxOpenConns:    defaultDBMaxOpenConns,
		DBMaxIdleConns:    defaultDBMaxIdleConns,
		DBConnMaxLifetime: defaultDBConnMaxLifetime,
		DBPingTimeout:     defaultDBPingTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		RabbitMQURL:       getEnv("RABBITMQ_URL", ""),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		GroqAPIKey:        getEnv("GROQ_API_KEY", ""),
		GroqAPIURL:        getEnv("GROQ_API_URL", defaultGroqAPIURL),
		GroqModel:         getEnv("GROQ_MODEL", defaultGroqModel),
	}

	var err error
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", defaultShutdownTimeout); err != nil {
		return Catalog{}, err
	}
	if cfg.RedisCacheTTL, err = getDuration("REDIS_CACHE_TTL", defaultRedisCacheTTL); err != nil {
		return Catalog{}, err
	}
	if cfg.AITimeout, err = getDuration("AI_TIMEOUT", defaultAITimeout); err != nil {
		return Catalog{}, err
	}
	if cfg.SEOOnCreate, err = getBool("SEO_ON_CREATE", true); err != nil {
		return Catalog{}, err
	}

	if cfg.DatabaseURL == "" {
		return Catalog{}, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, raw)
	}
	return d, nil
}

func getBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, raw)
	}
	return b, nil
}
