// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package catalog serves content browsing, ratings, view counting and
// stream resolution on top of a store.CatalogStore.
//
// The distinct genre list is the only cached read. It is invalidated when an
// item is inserted and otherwise expires after Config.GenreTTL.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/events"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/store"
	"github.com/tomtom215/marquee/internal/validation"
)

const genresCacheKey = "genres"

// RatingPublisher emits a feedback event after a rating is stored.
// *events.Publisher satisfies it.
type RatingPublisher interface {
	PublishRating(ctx context.Context, ev events.RatingEvent)
}

// Config holds listing and cache settings.
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
	GenreTTL        time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		DefaultPageSize: 20,
		MaxPageSize:     100,
		GenreTTL:        10 * time.Minute,
	}
}

// Service implements the catalog operations.
type Service struct {
	store     store.CatalogStore
	cache     cache.Cacher
	publisher RatingPublisher
	cfg       Config
	logger    zerolog.Logger
}

// NewService creates a catalog service. cache and publisher may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(catalog store.CatalogStore, c cache.Cacher, publisher RatingPublisher, cfg Config, logger zerolog.Logger) *Service {
	defaults := DefaultConfig()
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = defaults.DefaultPageSize
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = max(defaults.MaxPageSize, cfg.DefaultPageSize)
	}
	return &Service{
		store:     catalog,
		cache:     c,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger.With().Str("component", "catalog").Logger(),
	}
}

// ListQuery is the parsed query string of GET /content.
type ListQuery struct {
	Type       string `json:"type" validate:"omitempty,oneof=movie series"`
	Genre      string `json:"genre" validate:"max=40"`
	Search     string `json:"search" validate:"max=200"`
	Featured   *bool  `json:"featured"`
	Trending   *bool  `json:"trending"`
	NewRelease *bool  `json:"newRelease"`
	Limit      int    `json:"limit" validate:"gte=0"`
	Page       int    `json:"page" validate:"gte=0"`
}

// Listing is one page of catalog items.
type Listing struct {
	Items []models.ContentItem
	Count int
	Total int64
	Page  int
	Pages int
}

// List returns one page of items. Limit 0 selects the default page size and
// values above the maximum are clamped.
//
//nolint:gocritic // hugeParam: query is copied once per request
func (s *Service) List(ctx context.Context, q ListQuery) (*Listing, error) {
	if verr := validation.ValidateStruct(q); verr != nil {
		return nil, verr
	}

	limit := q.Limit
	switch {
	case limit == 0:
		limit = s.cfg.DefaultPageSize
	case limit > s.cfg.MaxPageSize:
		limit = s.cfg.MaxPageSize
	}
	page := max(q.Page, 1)

	result, err := s.store.List(ctx, models.ContentFilter{
		Type:       models.ContentType(q.Type),
		Genre:      q.Genre,
		Search:     q.Search,
		Featured:   q.Featured,
		Trending:   q.Trending,
		NewRelease: q.NewRelease,
		Limit:      limit,
		Page:       page,
	})
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}

	items := result.Items
	if items == nil {
		items = []models.ContentItem{}
	}
	return &Listing{
		Items: items,
		Count: len(items),
		Total: result.Total,
		Page:  page,
		Pages: int((result.Total + int64(limit) - 1) / int64(limit)),
	}, nil
}

// Get returns one item or store.ErrContentNotFound.
func (s *Service) Get(ctx context.Context, id string) (*models.ContentItem, error) {
	return s.store.FindByID(ctx, id)
}

// Genres returns the sorted distinct genres, from cache when possible.
// Cache failures degrade to a store read.
func (s *Service) Genres(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		genres, ok, err := cache.GetJSON[[]string](ctx, s.cache, genresCacheKey)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Genre cache read failed")
		}
		if ok {
			return genres, nil
		}
	}

	genres, err := s.store.Genres(ctx)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	if genres == nil {
		genres = []string{}
	}

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, genresCacheKey, genres, s.cfg.GenreTTL); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Genre cache write failed")
		}
	}
	return genres, nil
}

// View counts one view and returns the updated item.
func (s *Service) View(ctx context.Context, id string) (*models.ContentItem, error) {
	return s.store.IncrementViews(ctx, id)
}

// RateInput is a rating submission. Rating is a pointer so a missing value
// is distinguishable from zero.
type RateInput struct {
	UserID    string   `json:"-"`
	ProfileID string   `json:"profileId" validate:"max=64"`
	ContentID string   `json:"-"`
	Rating    *float64 `json:"rating" validate:"required,gte=0,lte=10"`
}

// Rate validates the value, folds it into the item's average and publishes
// a content.rated event. Publishing problems never fail the call.
func (s *Service) Rate(ctx context.Context, in RateInput) (*models.ContentItem, error) {
	if verr := validation.ValidateStruct(in); verr != nil {
		return nil, verr
	}

	item, err := s.store.ApplyRating(ctx, in.ContentID, *in.Rating)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishRating(ctx, events.RatingEvent{
			UserID:    in.UserID,
			ProfileID: in.ProfileID,
			ContentID: in.ContentID,
			Rating:    *in.Rating,
		})
	}
	return item, nil
}

// Insert validates and stores a new item, then drops the cached genre list.
func (s *Service) Insert(ctx context.Context, item *models.ContentItem) (*models.ContentItem, error) {
	if verr := validation.ValidateStruct(item); verr != nil {
		return nil, verr
	}

	created, err := s.store.Insert(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("insert content: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, genresCacheKey); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Genre cache invalidation failed")
		}
	}
	s.logger.Info().Str("content_id", created.ID).Str("title", created.Title).Msg("Content inserted")
	return created, nil
}
