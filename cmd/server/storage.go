// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/store"
	"github.com/tomtom215/marquee/internal/store/badgerstore"
	"github.com/tomtom215/marquee/internal/store/mongostore"
)

// Storage backends accepted by storage.backend.
const (
	backendMemory = "memory"
	backendBadger = "badger"
	backendMongo  = "mongo"
)

// openStore opens the configured persistence backend.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (store.Store, error) {
	switch cfg.Storage.Backend {
	case backendMemory, "":
		logging.Warn().Msg("Using in-memory storage; data is lost on restart")
		return store.NewMemory(), nil
	case backendBadger:
		st, err := badgerstore.Open(cfg.Storage.BadgerPath, logger)
		if err != nil {
			return nil, fmt.Errorf("open badger at %s: %w", cfg.Storage.BadgerPath, err)
		}
		logging.Info().Str("path", cfg.Storage.BadgerPath).Msg("BadgerDB storage opened")
		return st, nil
	case backendMongo:
		st, err := mongostore.Open(ctx, mongostore.Options{
			URI:      cfg.Storage.MongoURI,
			Database: cfg.Storage.MongoDatabase,
			Timeout:  cfg.Storage.MongoTimeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("open mongo database %s: %w", cfg.Storage.MongoDatabase, err)
		}
		logging.Info().Str("database", cfg.Storage.MongoDatabase).Msg("MongoDB storage connected")
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// seedDemo loads the demo catalog into an empty store.
func seedDemo(ctx context.Context, st store.Store) (int, error) {
	return store.SeedDemoCatalog(ctx, st)
}

// openCache returns the genre cache and its release function. Redis is
// used when enabled; a failed ping is fatal so a misconfigured address
// surfaces at startup instead of as silent cache misses.
func openCache(ctx context.Context, cfg *config.Config) (cache.Cacher, func(), error) {
	if !cfg.Redis.Enabled {
		local := cache.NewLocal(time.Minute)
		return local, func() { _ = local.Close() }, nil
	}

	r := cache.NewRedis(cache.NewRedisClient(cache.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}), "marquee:")

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.Ping(pingCtx); err != nil {
		_ = r.Close()
		return nil, nil, fmt.Errorf("ping redis at %s: %w", cfg.Redis.Addr, err)
	}
	logging.Info().Str("addr", cfg.Redis.Addr).Msg("Redis cache connected")

	return r, func() {
		if err := r.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing Redis client")
		}
	}, nil
}
