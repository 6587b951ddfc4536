// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package config loads Marquee configuration from layered sources using koanf.
//
// Precedence, lowest to highest:
//
//  1. Built-in defaults (defaultConfig)
//  2. YAML file (CONFIG_PATH, config.yaml, /etc/marquee/config.yaml)
//  3. Environment variables (explicit mapping table, see envTransformFunc)
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("configuration")
//	}
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	API       APIConfig       `koanf:"api"`
	Storage   StorageConfig   `koanf:"storage"`
	Redis     RedisConfig     `koanf:"redis"`
	ML        MLConfig        `koanf:"ml"`
	Recommend RecommendConfig `koanf:"recommend"`
	Events    EventsConfig    `koanf:"events"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// APIConfig holds pagination settings.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// StorageConfig selects and configures the catalog/profile backend.
type StorageConfig struct {
	Backend       string        `koanf:"backend"` // memory, badger, mongo
	BadgerPath    string        `koanf:"badger_path"`
	MongoURI      string        `koanf:"mongo_uri"`
	MongoDatabase string        `koanf:"mongo_database"`
	MongoTimeout  time.Duration `koanf:"mongo_timeout"`
	SeedDemo      bool          `koanf:"seed_demo"`
}

// RedisConfig configures the optional genre list cache.
type RedisConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	GenreTTL time.Duration `koanf:"genre_ttl"`
}

// MLConfig configures the external scoring service client.
type MLConfig struct {
	URL                  string        `koanf:"url"`
	Timeout              time.Duration `koanf:"timeout"`
	BreakerEnabled       bool          `koanf:"breaker_enabled"`
	BreakerMaxRequests   uint32        `koanf:"breaker_max_requests"`
	BreakerInterval      time.Duration `koanf:"breaker_interval"`
	BreakerOpenTimeout   time.Duration `koanf:"breaker_open_timeout"`
	BreakerMinRequests   uint32        `koanf:"breaker_min_requests"`
	BreakerFailureRatio  float64       `koanf:"breaker_failure_ratio"`
	RateLimitPerSecond   float64       `koanf:"rate_limit_per_second"` // 0 disables
	RateLimitBurst       int           `koanf:"rate_limit_burst"`
	HealthProbeInterval  time.Duration `koanf:"health_probe_interval"`
	FeedbackForwarding   bool          `koanf:"feedback_forwarding"`
	FeedbackRetryCount   int           `koanf:"feedback_retry_count"`
	FeedbackRetryBackoff time.Duration `koanf:"feedback_retry_backoff"`
}

// RecommendConfig configures recommendation defaults.
type RecommendConfig struct {
	DefaultLimit   int      `koanf:"default_limit"`
	SimilarLimit   int      `koanf:"similar_limit"`
	FallbackGenres []string `koanf:"fallback_genres"`
}

// EventsConfig configures feedback event publishing.
type EventsConfig struct {
	Enabled       bool          `koanf:"enabled"`
	NATSURL       string        `koanf:"nats_url"` // empty selects the in-process transport
	QueueGroup    string        `koanf:"queue_group"`
	DurableName   string        `koanf:"durable_name"`
	Subscribers   int           `koanf:"subscribers"`
	CloseTimeout  time.Duration `koanf:"close_timeout"`
	FeedbackTopic string        `koanf:"feedback_topic"`
	WatchTopic    string        `koanf:"watch_topic"`
}

// SecurityConfig holds authentication and authorization settings.
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"` // jwt, none
	JWTSecret         string        `koanf:"jwt_secret"`
	TokenTTL          time.Duration `koanf:"token_ttl"`
	BcryptCost        int           `koanf:"bcrypt_cost"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	CasbinModelPath   string        `koanf:"casbin_model_path"`
	CasbinPolicyPath  string        `koanf:"casbin_policy_path"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from all sources and validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether the server runs in production mode.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}
