// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package store

import (
	"slices"
	"sort"
	"strings"

	"github.com/tomtom215/marquee/internal/models"
)

// Helpers shared by the backends that evaluate queries in process
// (memory, badger). The Mongo backend pushes the same semantics into the
// query planner.

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// MatchesFilter reports whether item satisfies every set field of f.
//
//nolint:gocritic // hugeParam: filter is read-only and copied once per call site
func MatchesFilter(item *models.ContentItem, f models.ContentFilter) bool {
	if f.Type != "" && item.Type != f.Type {
		return false
	}
	if f.Genre != "" && !slices.Contains(item.Genres, f.Genre) {
		return false
	}
	if f.Featured != nil && item.Featured != *f.Featured {
		return false
	}
	if f.Trending != nil && item.Trending != *f.Trending {
		return false
	}
	if f.NewRelease != nil && item.NewRelease != *f.NewRelease {
		return false
	}
	if f.Search != "" && !matchesSearch(item, strings.ToLower(f.Search)) {
		return false
	}
	return true
}

func matchesSearch(item *models.ContentItem, needle string) bool {
	if strings.Contains(strings.ToLower(item.Title), needle) ||
		strings.Contains(strings.ToLower(item.Description), needle) {
		return true
	}
	for _, tag := range item.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// SortForListing orders items by popularity descending, then createdAt
// descending. The sort is stable.
func SortForListing(items []models.ContentItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Popularity != items[j].Popularity {
			return items[i].Popularity > items[j].Popularity
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

// Paginate slices a sorted listing according to f.
//
//nolint:gocritic // hugeParam
func Paginate(items []models.ContentItem, f models.ContentFilter) *models.ContentPage {
	total := int64(len(items))
	offset := f.Offset()
	if offset >= len(items) {
		return &models.ContentPage{Items: []models.ContentItem{}, Total: total}
	}
	end := len(items)
	if f.Limit > 0 && offset+f.Limit < end {
		end = offset + f.Limit
	}
	return &models.ContentPage{Items: items[offset:end], Total: total}
}

// DistinctGenres returns the sorted set of genres across items.
func DistinctGenres(items []models.ContentItem) []string {
	seen := make(map[string]struct{})
	for i := range items {
		for _, g := range items[i].Genres {
			seen[g] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}
