// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/marquee/config.yaml",
	"/etc/marquee/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Storage: StorageConfig{
			Backend:       "memory",
			BadgerPath:    "/data/marquee",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "marquee",
			MongoTimeout:  10 * time.Second,
			SeedDemo:      false,
		},
		Redis: RedisConfig{
			Enabled:  false,
			Addr:     "localhost:6379",
			DB:       0,
			GenreTTL: 10 * time.Minute,
		},
		ML: MLConfig{
			URL:                  "http://ml-service:8000",
			Timeout:              5 * time.Second,
			BreakerEnabled:       true,
			BreakerMaxRequests:   3,
			BreakerInterval:      time.Minute,
			BreakerOpenTimeout:   30 * time.Second,
			BreakerMinRequests:   10,
			BreakerFailureRatio:  0.6,
			RateLimitPerSecond:   0,
			RateLimitBurst:       10,
			HealthProbeInterval:  30 * time.Second,
			FeedbackForwarding:   true,
			FeedbackRetryCount:   3,
			FeedbackRetryBackoff: 500 * time.Millisecond,
		},
		Recommend: RecommendConfig{
			DefaultLimit:   20,
			SimilarLimit:   10,
			FallbackGenres: []string{"Action", "Drama", "Comedy"},
		},
		Events: EventsConfig{
			Enabled:       true,
			NATSURL:       "",
			QueueGroup:    "marquee",
			DurableName:   "marquee-feedback",
			Subscribers:   2,
			CloseTimeout:  10 * time.Second,
			FeedbackTopic: "marquee-feedback-rating",
			WatchTopic:    "marquee-feedback-watch",
		},
		Security: SecurityConfig{
			AuthMode:        "jwt",
			TokenTTL:        7 * 24 * time.Hour,
			BcryptCost:      10,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads defaults, then the YAML file, then environment
// variables, and validates the merged result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are split on commas when supplied as a single string.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"recommend.fallback_genres",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	"api_default_page_size": "api.default_page_size",
	"api_max_page_size":     "api.max_page_size",

	"storage_backend": "storage.backend",
	"badger_path":     "storage.badger_path",
	"mongodb_uri":     "storage.mongo_uri",
	"mongodb_db":      "storage.mongo_database",
	"mongodb_timeout": "storage.mongo_timeout",
	"seed_demo_data":  "storage.seed_demo",

	"redis_enabled":   "redis.enabled",
	"redis_addr":      "redis.addr",
	"redis_password":  "redis.password",
	"redis_db":        "redis.db",
	"genre_cache_ttl": "redis.genre_ttl",

	"ml_service_url":            "ml.url",
	"ml_timeout":                "ml.timeout",
	"ml_breaker_enabled":        "ml.breaker_enabled",
	"ml_breaker_max_requests":   "ml.breaker_max_requests",
	"ml_breaker_interval":       "ml.breaker_interval",
	"ml_breaker_open_timeout":   "ml.breaker_open_timeout",
	"ml_breaker_min_requests":   "ml.breaker_min_requests",
	"ml_breaker_failure_ratio":  "ml.breaker_failure_ratio",
	"ml_rate_limit":             "ml.rate_limit_per_second",
	"ml_rate_limit_burst":       "ml.rate_limit_burst",
	"ml_health_interval":        "ml.health_probe_interval",
	"ml_feedback_forwarding":    "ml.feedback_forwarding",
	"ml_feedback_retry_count":   "ml.feedback_retry_count",
	"ml_feedback_retry_backoff": "ml.feedback_retry_backoff",

	"recommend_default_limit":   "recommend.default_limit",
	"recommend_similar_limit":   "recommend.similar_limit",
	"recommend_fallback_genres": "recommend.fallback_genres",

	"events_enabled":        "events.enabled",
	"nats_url":              "events.nats_url",
	"nats_queue_group":      "events.queue_group",
	"nats_durable_name":     "events.durable_name",
	"nats_subscribers":      "events.subscribers",
	"events_close_timeout":  "events.close_timeout",
	"events_feedback_topic": "events.feedback_topic",
	"events_watch_topic":    "events.watch_topic",

	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"token_ttl":           "security.token_ttl",
	"bcrypt_cost":         "security.bcrypt_cost",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
	"casbin_model_path":   "security.casbin_model_path",
	"casbin_policy_path":  "security.casbin_policy_path",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
