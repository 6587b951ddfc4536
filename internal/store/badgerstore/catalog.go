// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/store"
)

func contentKey(id string) string {
	return contentKeyPrefix + id
}

func (s *Store) FindByID(_ context.Context, id string) (*models.ContentItem, error) {
	var item models.ContentItem
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, contentKey(id), &item)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrContentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get content %s: %w", id, err)
	}
	return &item, nil
}

func (s *Store) FindByIDs(_ context.Context, ids []string) ([]models.ContentItem, error) {
	out := make([]models.ContentItem, 0, len(ids))
	err := s.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			var item models.ContentItem
			err := getJSON(txn, contentKey(id), &item)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("get content %s: %w", id, err)
			}
			out = append(out, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) FindByGenreExcluding(_ context.Context, genres, excludeIDs []string) ([]models.ContentItem, error) {
	var out []models.ContentItem
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, contentKeyPrefix, func(item *models.ContentItem) error {
			if !slices.Contains(excludeIDs, item.ID) && item.HasAnyGenre(genres) {
				out = append(out, *item)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("scan content by genre: %w", err)
	}
	return out, nil
}

//nolint:gocritic // hugeParam: matches the store.CatalogStore signature
func (s *Store) List(_ context.Context, filter models.ContentFilter) (*models.ContentPage, error) {
	var matched []models.ContentItem
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, contentKeyPrefix, func(item *models.ContentItem) error {
			if store.MatchesFilter(item, filter) {
				matched = append(matched, *item)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	store.SortForListing(matched)
	return store.Paginate(matched, filter), nil
}

func (s *Store) Genres(context.Context) ([]string, error) {
	var all []models.ContentItem
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, contentKeyPrefix, func(item *models.ContentItem) error {
			all = append(all, models.ContentItem{Genres: item.Genres})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("scan genres: %w", err)
	}
	return store.DistinctGenres(all), nil
}

func (s *Store) IncrementViews(ctx context.Context, id string) (*models.ContentItem, error) {
	return s.mutateItem(ctx, id, func(item *models.ContentItem) {
		item.ViewCount++
	})
}

func (s *Store) ApplyRating(ctx context.Context, id string, value float64) (*models.ContentItem, error) {
	return s.mutateItem(ctx, id, func(item *models.ContentItem) {
		item.Rating = item.Rating.ApplyRating(value)
		item.UpdatedAt = s.now()
	})
}

func (s *Store) mutateItem(ctx context.Context, id string, fn func(*models.ContentItem)) (*models.ContentItem, error) {
	var item models.ContentItem
	err := s.update(ctx, func(txn *badger.Txn) error {
		item = models.ContentItem{}
		if err := getJSON(txn, contentKey(id), &item); err != nil {
			return err
		}
		fn(&item)
		return setJSON(txn, contentKey(id), &item)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrContentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update content %s: %w", id, err)
	}
	return &item, nil
}

func (s *Store) Insert(ctx context.Context, item *models.ContentItem) (*models.ContentItem, error) {
	c := item.Clone()
	if c.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("generate content id: %w", err)
		}
		c.ID = id.String()
	}
	now := s.now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	err := s.update(ctx, func(txn *badger.Txn) error {
		return setJSON(txn, contentKey(c.ID), &c)
	})
	if err != nil {
		return nil, fmt.Errorf("insert content: %w", err)
	}
	return &c, nil
}
