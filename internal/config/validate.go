// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

const minJWTSecretLength = 32

// Validate checks the merged configuration for consistency.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateAPI,
		c.validateStorage,
		c.validateRedis,
		c.validateML,
		c.validateRecommend,
		c.validateEvents,
		c.validateSecurity,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be one of development, staging, production (got %q)", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be at least 1")
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API_MAX_PAGE_SIZE must be >= API_DEFAULT_PAGE_SIZE")
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case "memory":
		return nil
	case "badger":
		if c.Storage.BadgerPath == "" {
			return fmt.Errorf("BADGER_PATH is required when STORAGE_BACKEND=badger")
		}
		return nil
	case "mongo":
		if !strings.HasPrefix(c.Storage.MongoURI, "mongodb://") && !strings.HasPrefix(c.Storage.MongoURI, "mongodb+srv://") {
			return fmt.Errorf("MONGODB_URI must start with mongodb:// or mongodb+srv://")
		}
		if c.Storage.MongoDatabase == "" {
			return fmt.Errorf("MONGODB_DB is required when STORAGE_BACKEND=mongo")
		}
		return nil
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of memory, badger, mongo (got %q)", c.Storage.Backend)
	}
}

func (c *Config) validateRedis() error {
	if !c.Redis.Enabled {
		return nil
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required when REDIS_ENABLED=true")
	}
	if c.Redis.GenreTTL <= 0 {
		return fmt.Errorf("GENRE_CACHE_TTL must be positive")
	}
	return nil
}

func (c *Config) validateML() error {
	u, err := url.Parse(c.ML.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("ML_SERVICE_URL is invalid: %q", c.ML.URL)
	}
	if c.ML.Timeout <= 0 || c.ML.Timeout > time.Minute {
		return fmt.Errorf("ML_TIMEOUT must be between 1ms and 1m")
	}
	if c.ML.BreakerEnabled {
		if c.ML.BreakerFailureRatio <= 0 || c.ML.BreakerFailureRatio > 1 {
			return fmt.Errorf("ML_BREAKER_FAILURE_RATIO must be in (0, 1]")
		}
		if c.ML.BreakerMinRequests == 0 {
			return fmt.Errorf("ML_BREAKER_MIN_REQUESTS must be at least 1")
		}
	}
	if c.ML.RateLimitPerSecond < 0 {
		return fmt.Errorf("ML_RATE_LIMIT must be non-negative")
	}
	if c.ML.RateLimitPerSecond > 0 && c.ML.RateLimitBurst < 1 {
		return fmt.Errorf("ML_RATE_LIMIT_BURST must be at least 1 when ML_RATE_LIMIT is set")
	}
	if c.ML.HealthProbeInterval < time.Second {
		return fmt.Errorf("ML_HEALTH_INTERVAL must be at least 1s")
	}
	if c.ML.FeedbackRetryCount < 0 {
		return fmt.Errorf("ML_FEEDBACK_RETRY_COUNT must be non-negative")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if c.Recommend.DefaultLimit < 1 {
		return fmt.Errorf("RECOMMEND_DEFAULT_LIMIT must be at least 1")
	}
	if c.Recommend.SimilarLimit < 1 {
		return fmt.Errorf("RECOMMEND_SIMILAR_LIMIT must be at least 1")
	}
	if len(c.Recommend.FallbackGenres) == 0 {
		return fmt.Errorf("RECOMMEND_FALLBACK_GENRES must name at least one genre")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	if c.Events.NATSURL != "" {
		u, err := url.Parse(c.Events.NATSURL)
		if err != nil || (u.Scheme != "nats" && u.Scheme != "tls") {
			return fmt.Errorf("NATS_URL is invalid: %q", c.Events.NATSURL)
		}
	}
	if c.Events.Subscribers < 1 || c.Events.Subscribers > 32 {
		return fmt.Errorf("NATS_SUBSCRIBERS must be between 1 and 32")
	}
	if c.Events.FeedbackTopic == "" || c.Events.WatchTopic == "" {
		return fmt.Errorf("EVENTS_FEEDBACK_TOPIC and EVENTS_WATCH_TOPIC are required")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	switch c.Security.AuthMode {
	case "jwt":
		if len(c.Security.JWTSecret) < minJWTSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d characters when AUTH_MODE=jwt", minJWTSecretLength)
		}
		if c.Security.TokenTTL <= 0 {
			return fmt.Errorf("TOKEN_TTL must be positive")
		}
	case "none":
		if c.Server.IsProduction() {
			return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be one of jwt, none (got %q)", c.Security.AuthMode)
	}

	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 || c.Security.RateLimitReqs > 100000 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be between 1 and 100000")
		}
		if c.Security.RateLimitWindow < time.Second {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s")
		}
	}

	if c.Server.IsProduction() && slices.Contains(c.Security.CORSOrigins, "*") {
		return fmt.Errorf("CORS_ORIGINS must not contain * when ENVIRONMENT=production")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL is invalid: %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
	return nil
}
