// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package profiles

import (
	"context"

	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/validation"
)

// MyListInput is the body of POST /profiles/{id}/my-list.
type MyListInput struct {
	ContentID string `json:"contentId" validate:"required,max=64"`
}

// AddToMyList bookmarks a title. Adding a title twice is a no-op.
func (s *Service) AddToMyList(ctx context.Context, userID, profileID string, in MyListInput) ([]string, error) {
	if verr := validation.ValidateStruct(in); verr != nil {
		return nil, verr
	}
	if _, err := s.catalog.FindByID(ctx, in.ContentID); err != nil {
		return nil, err
	}
	profile, err := s.accounts.AddToMyList(ctx, userID, profileID, in.ContentID)
	if err != nil {
		return nil, err
	}
	return nonNil(profile.MyList), nil
}

// RemoveFromMyList drops a bookmark. Removing an absent title is a no-op.
func (s *Service) RemoveFromMyList(ctx context.Context, userID, profileID, contentID string) ([]string, error) {
	profile, err := s.accounts.RemoveFromMyList(ctx, userID, profileID, contentID)
	if err != nil {
		return nil, err
	}
	return nonNil(profile.MyList), nil
}

// MyList returns the bookmarked items in the order they were added,
// skipping titles no longer in the catalog.
func (s *Service) MyList(ctx context.Context, userID, profileID string) ([]models.ContentItem, error) {
	profile, err := s.accounts.GetProfile(ctx, userID, profileID)
	if err != nil {
		return nil, err
	}
	byID, err := s.resolve(ctx, profile.MyList)
	if err != nil {
		return nil, err
	}

	out := make([]models.ContentItem, 0, len(profile.MyList))
	for _, id := range profile.MyList {
		if item, ok := byID[id]; ok {
			out = append(out, *item)
		}
	}
	return out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
