// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package recommend produces personalized and "more like this" content
// lists.
//
// Recommend asks the ML scoring service first and falls back to a
// deterministic rule-based ranking when the service fails for any reason.
// The provenance of every result ("ml-model" or "rule-based") is part of the
// output. Similar is purely rule-based.
//
// The engine holds no mutable state of its own; each call reads the store
// and the scorer and returns. It is safe for concurrent use.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/mlclient"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/store"
)

var (
	// ErrProfileNotFound is returned when the (user, profile) pair is unknown.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrContentNotFound is returned by Similar when the source item is unknown.
	ErrContentNotFound = errors.New("content not found")
)

// Source is the provenance of a recommendation list.
type Source string

const (
	SourceMLModel   Source = "ml-model"
	SourceRuleBased Source = "rule-based"
)

// Result is an ordered recommendation list with its provenance.
type Result struct {
	Items  []models.ContentItem
	Source Source
}

// Scorer ranks content ids for a profile. *mlclient.Client implements it.
// Any error means "no ML answer"; the engine does not inspect it beyond
// logging.
type Scorer interface {
	Score(ctx context.Context, req mlclient.ScoreRequest) ([]string, error)
}

// Config holds engine defaults.
type Config struct {
	DefaultLimit   int
	SimilarLimit   int
	FallbackGenres []string
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		DefaultLimit:   20,
		SimilarLimit:   10,
		FallbackGenres: []string{"Action", "Drama", "Comedy"},
	}
}

// Engine is the hybrid recommender.
type Engine struct {
	catalog  store.CatalogStore
	profiles store.ProfileStore
	scorer   Scorer
	cfg      Config
	logger   zerolog.Logger
}

// NewEngine creates an engine. scorer may be nil, in which case every
// request takes the rule-based path.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(catalog store.CatalogStore, profiles store.ProfileStore, scorer Scorer, cfg Config, logger zerolog.Logger) *Engine {
	defaults := DefaultConfig()
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = defaults.DefaultLimit
	}
	if cfg.SimilarLimit <= 0 {
		cfg.SimilarLimit = defaults.SimilarLimit
	}
	if len(cfg.FallbackGenres) == 0 {
		cfg.FallbackGenres = defaults.FallbackGenres
	}
	return &Engine{
		catalog:  catalog,
		profiles: profiles,
		scorer:   scorer,
		cfg:      cfg,
		logger:   logger.With().Str("component", "recommend").Logger(),
	}
}

// Recommend returns up to limit items for the profile. limit <= 0 selects
// the default.
//
// An ML failure never surfaces as an error; only an unknown profile
// (ErrProfileNotFound) or a catalog failure does.
func (e *Engine) Recommend(ctx context.Context, userID, profileID string, limit int) (*Result, error) {
	start := time.Now()

	profile, err := e.profiles.GetProfile(ctx, userID, profileID)
	if errors.Is(err, store.ErrProfileNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}
	snapshot := watchSnapshot(profile.WatchHistory)
	logger := e.logger.With().Str("profile_id", profileID).Int("limit", limit).Logger()

	if result, ok, err := e.fromModel(ctx, userID, profile, snapshot, limit, logger); err != nil {
		return nil, err
	} else if ok {
		metrics.RecordRecommendation(string(result.Source), time.Since(start))
		return result, nil
	}

	items, err := e.fallback(ctx, profile.Preferences.Genres, snapshot, limit)
	if err != nil {
		return nil, err
	}
	result := &Result{Items: items, Source: SourceRuleBased}
	metrics.RecordRecommendation(string(result.Source), time.Since(start))
	return result, nil
}

// fromModel tries the scorer. ok is false when the caller should fall back.
func (e *Engine) fromModel(ctx context.Context, userID string, profile *models.Profile, snapshot []mlclient.WatchedItem, limit int, logger zerolog.Logger) (*Result, bool, error) {
	if e.scorer == nil {
		metrics.RecordFallback("disabled")
		return nil, false, nil
	}

	ids, err := e.scorer.Score(ctx, mlclient.ScoreRequest{
		UserID:    userID,
		ProfileID: profile.ID,
		Preferences: mlclient.Preferences{
			Genres:       slices.Clone(profile.Preferences.Genres),
			WatchHistory: snapshot,
		},
		Limit: limit,
	})
	if err != nil || len(ids) == 0 {
		reason := mlclient.ReasonEmpty
		if err != nil {
			reason = mlclient.Reason(err)
		}
		metrics.RecordFallback(reason)
		logger.Info().Err(err).Str("reason", reason).Msg("ml scoring unavailable, using rule-based fallback")
		return nil, false, nil
	}

	items, err := e.resolveInOrder(ctx, ids)
	if err != nil {
		return nil, false, err
	}
	logger.Debug().Int("scored", len(ids)).Int("resolved", len(items)).Msg("ml recommendations resolved")
	return &Result{Items: items, Source: SourceMLModel}, true, nil
}

// resolveInOrder loads ids from the catalog, drops unknown ids and keeps
// the model's order.
func (e *Engine) resolveInOrder(ctx context.Context, ids []string) ([]models.ContentItem, error) {
	found, err := e.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve scored content: %w", err)
	}

	byID := make(map[string]int, len(found))
	for i := range found {
		byID[found[i].ID] = i
	}

	out := make([]models.ContentItem, 0, len(found))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		idx, ok := byID[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, found[idx])
	}
	return out, nil
}

// fallback is the deterministic rule-based path.
func (e *Engine) fallback(ctx context.Context, genres []string, snapshot []mlclient.WatchedItem, limit int) ([]models.ContentItem, error) {
	if len(genres) == 0 {
		genres = e.cfg.FallbackGenres
	}

	// Any watched id is excluded, completed or not.
	watched := make([]string, len(snapshot))
	for i, w := range snapshot {
		watched[i] = w.ContentID
	}

	candidates, err := e.catalog.FindByGenreExcluding(ctx, genres, watched)
	if err != nil {
		return nil, fmt.Errorf("load fallback candidates: %w", err)
	}
	return RankByPopularityAndRating(candidates, limit), nil
}

// watchSnapshot reduces a watch history to the fields the model sees.
func watchSnapshot(history []models.WatchEntry) []mlclient.WatchedItem {
	out := make([]mlclient.WatchedItem, len(history))
	for i, h := range history {
		out[i] = mlclient.WatchedItem{ContentID: h.ContentID, Completed: h.Completed}
	}
	return out
}
