package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoadCatalog(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
		check   func(t *testing.T, cfg Catalog)
	}{
		{
			name:    "missing DATABASE_URL",
			env:     map[string]string{"RABBITMQ_URL": "amqp://localhost"},
			wantErr: "DATABASE_URL is required",
		},
		{
			name: "optional integrations may be absent",
			env:  map[string]string{"DATABASE_URL": "postgres://localhost/db"},
			check: func(t *testing.T, cfg Catalog) {
				if cfg.RabbitMQURL != "" || cfg.RedisAddr != "" || cfg.GroqAPIKey != "" {
					t.Fatalf("want integrations disabled, got %+v", cfg)
				}
				if cfg.HTTPAddr != defaultHTTPAddr || cfg.MigrationsPath != defaultMigrationsPath {
					t.Fatalf("unexpected defaults: %+v", cfg)
				}
				if cfg.DBMaxOpenConns != defaultDBMaxOpenConns || cfg.ShutdownTimeout != defaultShutdownTimeout {
					t.Fatalf("unexpected pool defaults: %+v", cfg)
				}
				if cfg.GroqModel != defaultGroqModel || cfg.AITimeout != defaultAITimeout || !cfg.SEOOnCreate {
					t.Fatalf("unexpected ai defaults: %+v", cfg)
				}
				if cfg.RedisCacheTTL != defaultRedisCacheTTL {
					t.Fatalf("want ttl %v, got %v", defaultRedisCacheTTL, cfg.RedisCacheTTL)
				}
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				"DATABASE_URL":    "postgres://localhost/db",
				"HTTP_ADDR":       ":9090",
				"REDIS_ADDR":      "localhost:6379",
				"REDIS_CACHE_TTL": "30s",
				"GROQ_API_KEY":    "k",
				"AI_TIMEOUT":      "5s",
				"SEO_ON_CREATE":   "false",
			},
			check: func(t *testing.T, cfg Catalog) {
				if cfg.HTTPAddr != ":9090" || cfg.RedisAddr != "localhost:6379" || cfg.GroqAPIKey != "k" {
					t.Fatalf("overrides not applied: %+v", cfg)
				}
				if cfg.RedisCacheTTL != 30*time.Second || cfg.AITimeout != 5*time.Second || cfg.SEOOnCreate {
					t.Fatalf("typed overrides not applied: %+v", cfg)
				}
			},
		},
		{
			name:    "bad duration",
			env:     map[string]string{"DATABASE_URL": "postgres://localhost/db", "AI_TIMEOUT": "soon"},
			wantErr: `AI_TIMEOUT must be a positive duration, got "soon"`,
		},
		{
			name:    "bad bool",
			env:     map[string]string{"DATABASE_URL": "postgres://localhost/db", "SEO_ON_CREATE": "maybe"},
			wantErr: `SEO_ON_CREATE must be a boolean, got "maybe"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadCatalog()
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error %q, got nil", tt.wantErr)
				}
				if err.Error() != tt.wantErr {
					t.Fatalf("want error %q, got %q", tt.wantErr, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.DatabaseURL != tt.env["DATABASE_URL"] {
				t.Fatalf("want DatabaseURL %q, got %q", tt.env["DATABASE_URL"], cfg.DatabaseURL)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadNotifications(t *testing.T) {
	tests := []struct {
		name       string
		env        map[string]string
		wantErr    string
		wantQueues []string
	}{
		{
			name:    "missing RABBITMQ_URL",
			env:     map[string]string{},
			wantErr: "RABBITMQ_URL is required",
		},
		{
			name: "valid config",
			env:  map[string]string{"RABBITMQ_URL": "amqp://localhost"},
		},
		{
			name: "queue override",
			env: map[string]string{
				"RABBITMQ_URL":         "amqp://localhost",
				"NOTIFICATIONS_QUEUES": " orders.events, ,products.events ",
			},
			wantQueues: []string{"orders.events", "products.events"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadNotifications()
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if err.Error() != tt.wantErr {
					t.Fatalf("want error %q, got %q", tt.wantErr, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.RabbitMQURL != tt.env["RABBITMQ_URL"] {
				t.Fatalf("want RabbitMQURL %q, got %q", tt.env["RABBITMQ_URL"], cfg.RabbitMQURL)
			}
			if cfg.ShutdownTimeout != defaultShutdownTimeout {
				t.Fatalf("want ShutdownTimeout %v, got %v", defaultShutdownTimeout, cfg.ShutdownTimeout)
			}
			if strings.Join(cfg.Queues, ",") != strings.Join(tt.wantQueues, ",") {
				t.Fatalf("want queues %v, got %v", tt.wantQueues, cfg.Queues)
			}
		})
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "RABBITMQ_URL", "HTTP_ADDR", "MIGRATIONS_PATH", "SHUTDOWN_TIMEOUT",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_CACHE_TTL",
		"GROQ_API_KEY", "GROQ_API_URL", "GROQ_MODEL", "AI_TIMEOUT", "SEO_ON_CREATE",
		"NOTIFICATIONS_QUEUES",
	} {
		if val, ok := os.LookupEnv(key); ok {
			t.Setenv(key, val)
		}
		os.Unsetenv(key)
	}
}
