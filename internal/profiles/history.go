// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package profiles

import (
	"context"
	"fmt"

	"github.com/tomtom215/marquee/internal/events"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/validation"
)

// WatchInput is the body of PUT /profiles/{id}/watch-history.
type WatchInput struct {
	ContentID string   `json:"contentId" validate:"required,max=64"`
	Progress  *float64 `json:"progress" validate:"required,gte=0,lte=1"`
	Completed bool     `json:"completed"`
}

// HistoryItem is a watch entry with its catalog item resolved. Content is
// nil when the item has since been removed from the catalog.
type HistoryItem struct {
	models.WatchEntry
	Content *models.ContentItem `json:"content"`
}

// RecordWatch upserts the entry for in.ContentID and returns the full
// history. Completed entries publish a watch.completed event.
func (s *Service) RecordWatch(ctx context.Context, userID, profileID string, in WatchInput) ([]models.WatchEntry, error) {
	if verr := validation.ValidateStruct(in); verr != nil {
		return nil, verr
	}
	if _, err := s.catalog.FindByID(ctx, in.ContentID); err != nil {
		return nil, err
	}

	profile, err := s.accounts.UpsertWatchHistory(ctx, userID, profileID, models.WatchEntry{
		ContentID: in.ContentID,
		Progress:  *in.Progress,
		Completed: in.Completed,
	})
	if err != nil {
		return nil, err
	}

	if in.Completed && s.publisher != nil {
		s.publisher.PublishWatchCompleted(ctx, events.WatchEvent{
			UserID:    userID,
			ProfileID: profileID,
			ContentID: in.ContentID,
			Progress:  *in.Progress,
		})
	}
	return profile.WatchHistory, nil
}

// WatchHistory returns the history in insertion order with content resolved.
func (s *Service) WatchHistory(ctx context.Context, userID, profileID string) ([]HistoryItem, error) {
	profile, err := s.accounts.GetProfile(ctx, userID, profileID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(profile.WatchHistory))
	for i, entry := range profile.WatchHistory {
		ids[i] = entry.ContentID
	}
	byID, err := s.resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]HistoryItem, len(profile.WatchHistory))
	for i, entry := range profile.WatchHistory {
		out[i] = HistoryItem{WatchEntry: entry, Content: byID[entry.ContentID]}
	}
	return out, nil
}

func (s *Service) resolve(ctx context.Context, ids []string) (map[string]*models.ContentItem, error) {
	byID := make(map[string]*models.ContentItem, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}
	items, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve content: %w", err)
	}
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	return byID, nil
}
