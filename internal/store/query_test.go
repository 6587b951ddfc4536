// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package store

import (
	"slices"
	"testing"

	"github.com/tomtom215/marquee/internal/models"
)

func TestMatchesFilter(t *testing.T) {
	t.Parallel()

	yes, no := true, false
	c := &models.ContentItem{
		Title:       "Harbor Lights",
		Description: "A fishing town",
		Type:        models.ContentTypeSeries,
		Genres:      []string{"Drama"},
		Tags:        []string{"Coastal"},
		Trending:    true,
	}

	tests := []struct {
		name   string
		filter models.ContentFilter
		want   bool
	}{
		{"empty filter", models.ContentFilter{}, true},
		{"type match", models.ContentFilter{Type: models.ContentTypeSeries}, true},
		{"type mismatch", models.ContentFilter{Type: models.ContentTypeMovie}, false},
		{"genre match", models.ContentFilter{Genre: "Drama"}, true},
		{"genre is case-sensitive", models.ContentFilter{Genre: "drama"}, false},
		{"trending true", models.ContentFilter{Trending: &yes}, true},
		{"trending false", models.ContentFilter{Trending: &no}, false},
		{"search title", models.ContentFilter{Search: "harbor"}, true},
		{"search description", models.ContentFilter{Search: "FISHING"}, true},
		{"search tag", models.ContentFilter{Search: "coast"}, true},
		{"search miss", models.ContentFilter{Search: "desert"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := MatchesFilter(c, tt.filter); got != tt.want {
				t.Errorf("MatchesFilter = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	items := make([]models.ContentItem, 5)
	for i := range items {
		items[i].ID = string(rune('a' + i))
	}

	page := Paginate(items, models.ContentFilter{Limit: 2, Page: 3})
	if page.Total != 5 || len(page.Items) != 1 || page.Items[0].ID != "e" {
		t.Errorf("page 3 = %+v", page)
	}
	page = Paginate(items, models.ContentFilter{})
	if len(page.Items) != 5 {
		t.Errorf("unlimited page len = %d", len(page.Items))
	}
}

func TestDistinctGenres(t *testing.T) {
	t.Parallel()

	got := DistinctGenres([]models.ContentItem{
		{Genres: []string{"Drama", "Action"}},
		{Genres: []string{"Action", "Comedy"}},
	})
	if want := []string{"Action", "Comedy", "Drama"}; !slices.Equal(got, want) {
		t.Errorf("DistinctGenres = %v, want %v", got, want)
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	if got := NormalizeEmail("  Foo@Bar.COM "); got != "foo@bar.com" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}
