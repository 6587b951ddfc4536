// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/store"
)

// RankByPopularityAndRating stable-sorts items by popularity descending, then
// rating average descending, and truncates to limit. Ties keep input order.
// items is sorted in place.
func RankByPopularityAndRating(items []models.ContentItem, limit int) []models.ContentItem {
	slices.SortStableFunc(items, func(a, b models.ContentItem) int {
		if c := cmp.Compare(b.Popularity, a.Popularity); c != 0 {
			return c
		}
		return cmp.Compare(b.Rating.Average, a.Rating.Average)
	})
	return truncate(items, limit)
}

// RankByPopularity stable-sorts items by popularity descending only.
func RankByPopularity(items []models.ContentItem, limit int) []models.ContentItem {
	slices.SortStableFunc(items, func(a, b models.ContentItem) int {
		return cmp.Compare(b.Popularity, a.Popularity)
	})
	return truncate(items, limit)
}

func truncate(items []models.ContentItem, limit int) []models.ContentItem {
	if limit >= 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// Similar returns up to limit items of the same type as contentID that share
// at least one genre with it, most popular first. limit <= 0 selects the
// default.
func (e *Engine) Similar(ctx context.Context, contentID string, limit int) ([]models.ContentItem, error) {
	source, err := e.catalog.FindByID(ctx, contentID)
	if errors.Is(err, store.ErrContentNotFound) {
		return nil, ErrContentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load source content: %w", err)
	}
	if limit <= 0 {
		limit = e.cfg.SimilarLimit
	}

	candidates, err := e.catalog.FindByGenreExcluding(ctx, source.Genres, []string{source.ID})
	if err != nil {
		return nil, fmt.Errorf("load similar candidates: %w", err)
	}

	sameType := candidates[:0]
	for i := range candidates {
		if candidates[i].Type == source.Type {
			sameType = append(sameType, candidates[i])
		}
	}
	return RankByPopularity(sameType, limit), nil
}
