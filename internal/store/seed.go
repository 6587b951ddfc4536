// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/marquee/internal/models"
)

const (
	demoVideo   = "https://media.marquee.example/demo/sample-720p.mp4"
	demoTrailer = "https://media.marquee.example/demo/sample-480p.mp4"
)

func demoArt(kind, slug string) string {
	return fmt.Sprintf("https://media.marquee.example/art/%s/%s.jpg", kind, slug)
}

// DemoCatalog returns a small catalog for local development.
func DemoCatalog() []models.ContentItem {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []models.ContentItem{
		{
			Title:          "Signal Lost",
			Description:    "A deep-space relay crew loses contact with Earth and must decide who to trust.",
			Type:           models.ContentTypeMovie,
			Genres:         []string{"Sci-Fi", "Thriller", "Action"},
			ReleaseYear:    2024,
			Duration:       128,
			MaturityRating: "PG-13",
			Thumbnail:      demoArt("thumb", "signal-lost"),
			Banner:         demoArt("banner", "signal-lost"),
			VideoURL:       demoVideo,
			TrailerURL:     demoTrailer,
			Cast:           []models.CastMember{{Name: "Ada Okafor", Role: "Commander Reyes"}},
			Director:       "Lena Marsh",
			Tags:           []string{"space", "survival"},
			Rating:         models.Rating{Average: 8.1, Count: 940},
			Popularity:     92,
			Featured:       true,
			Trending:       true,
			NewRelease:     true,
			CreatedAt:      base,
		},
		{
			Title:          "Harbor Lights",
			Description:    "Three generations of a fishing family keep a failing harbor town alive.",
			Type:           models.ContentTypeSeries,
			Genres:         []string{"Drama", "Family"},
			ReleaseYear:    2023,
			MaturityRating: "TV-PG",
			Thumbnail:      demoArt("thumb", "harbor-lights"),
			VideoURL:       demoVideo,
			Director:       "Tomas Vidal",
			Seasons: []models.Season{
				{SeasonNumber: 1, Episodes: []models.Episode{
					{EpisodeNumber: 1, Title: "Low Tide", Duration: 51, VideoURL: demoVideo},
					{EpisodeNumber: 2, Title: "Nets", Duration: 47, VideoURL: demoVideo},
				}},
			},
			Tags:       []string{"family", "coastal"},
			Rating:     models.Rating{Average: 8.7, Count: 2100},
			Popularity: 88,
			Trending:   true,
			CreatedAt:  base.Add(time.Hour),
		},
		{
			Title:          "Desk Job",
			Description:    "An office temp accidentally becomes the most important person in a tech startup.",
			Type:           models.ContentTypeMovie,
			Genres:         []string{"Comedy"},
			ReleaseYear:    2025,
			Duration:       97,
			MaturityRating: "PG",
			Thumbnail:      demoArt("thumb", "desk-job"),
			VideoURL:       demoVideo,
			Tags:           []string{"workplace"},
			Rating:         models.Rating{Average: 7.2, Count: 560},
			Popularity:     75,
			NewRelease:     true,
			CreatedAt:      base.Add(2 * time.Hour),
		},
		{
			Title:          "Iron Meridian",
			Description:    "A retired courier is pulled back for one last crossing of a closed border.",
			Type:           models.ContentTypeMovie,
			Genres:         []string{"Action", "Crime"},
			ReleaseYear:    2022,
			Duration:       115,
			MaturityRating: "R",
			Thumbnail:      demoArt("thumb", "iron-meridian"),
			VideoURL:       demoVideo,
			Rating:         models.Rating{Average: 7.8, Count: 1320},
			Popularity:     81,
			CreatedAt:      base.Add(3 * time.Hour),
		},
		{
			Title:          "The Quiet Orchard",
			Description:    "A botanist inherits an orchard where the trees remember every visitor.",
			Type:           models.ContentTypeSeries,
			Genres:         []string{"Fantasy", "Drama"},
			ReleaseYear:    2024,
			MaturityRating: "TV-14",
			Thumbnail:      demoArt("thumb", "quiet-orchard"),
			VideoURL:       demoVideo,
			Seasons: []models.Season{
				{SeasonNumber: 1, Episodes: []models.Episode{
					{EpisodeNumber: 1, Title: "Grafting", Duration: 44, VideoURL: demoVideo},
				}},
			},
			Rating:     models.Rating{Average: 8.9, Count: 780},
			Popularity: 70,
			Featured:   true,
			CreatedAt:  base.Add(4 * time.Hour),
		},
		{
			Title:          "Night Shift Stories",
			Description:    "Anthology of short comedies set in an all-night diner.",
			Type:           models.ContentTypeSeries,
			Genres:         []string{"Comedy", "Drama"},
			ReleaseYear:    2021,
			MaturityRating: "TV-14",
			Thumbnail:      demoArt("thumb", "night-shift"),
			VideoURL:       demoVideo,
			Seasons: []models.Season{
				{SeasonNumber: 1, Episodes: []models.Episode{
					{EpisodeNumber: 1, Title: "Open All Night", Duration: 24, VideoURL: demoVideo},
					{EpisodeNumber: 2, Title: "Refills", Duration: 23, VideoURL: demoVideo},
				}},
			},
			Rating:     models.Rating{Average: 6.9, Count: 310},
			Popularity: 64,
			CreatedAt:  base.Add(5 * time.Hour),
		},
	}
}

// SeedDemoCatalog inserts DemoCatalog into cs when the catalog is empty. It
// returns the number of items inserted.
func SeedDemoCatalog(ctx context.Context, cs CatalogStore) (int, error) {
	page, err := cs.List(ctx, models.ContentFilter{Limit: 1, Page: 1})
	if err != nil {
		return 0, fmt.Errorf("check catalog: %w", err)
	}
	if page.Total > 0 {
		return 0, nil
	}

	demo := DemoCatalog()
	for i := range demo {
		if _, err := cs.Insert(ctx, &demo[i]); err != nil {
			return i, fmt.Errorf("insert %q: %w", demo[i].Title, err)
		}
	}
	return len(demo), nil
}
