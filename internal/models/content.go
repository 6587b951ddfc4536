// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package models defines the catalog, account and profile records shared by
// the stores, services and HTTP layer. JSON tags follow the public wire
// format (camelCase); bson tags are used by the MongoDB backend.
package models

import (
	"slices"
	"time"
)

// ContentType distinguishes movies from series.
type ContentType string

const (
	ContentTypeMovie  ContentType = "movie"
	ContentTypeSeries ContentType = "series"
)

// MaturityRatings lists accepted maturityRating values.
var MaturityRatings = []string{
	"G", "PG", "PG-13", "R", "NC-17",
	"TV-Y", "TV-Y7", "TV-G", "TV-PG", "TV-14", "TV-MA",
}

// Rating is the aggregate viewer rating of a content item.
type Rating struct {
	Average float64 `json:"average" bson:"average"` // [0,10]
	Count   int64   `json:"count" bson:"count"`
}

// CastMember is one credited performer.
type CastMember struct {
	Name string `json:"name" bson:"name" validate:"required,max=200"`
	Role string `json:"role,omitempty" bson:"role,omitempty" validate:"max=200"`
}

// Episode is a single episode of a series season.
type Episode struct {
	EpisodeNumber int    `json:"episodeNumber" bson:"episodeNumber" validate:"gte=1"`
	Title         string `json:"title" bson:"title" validate:"required,max=300"`
	Description   string `json:"description,omitempty" bson:"description,omitempty"`
	Duration      int    `json:"duration,omitempty" bson:"duration,omitempty" validate:"gte=0"`
	VideoURL      string `json:"videoUrl,omitempty" bson:"videoUrl,omitempty" validate:"omitempty,url"`
	Thumbnail     string `json:"thumbnail,omitempty" bson:"thumbnail,omitempty" validate:"omitempty,url"`
}

// Season groups the episodes of a series.
type Season struct {
	SeasonNumber int       `json:"seasonNumber" bson:"seasonNumber" validate:"gte=1"`
	Episodes     []Episode `json:"episodes" bson:"episodes" validate:"dive"`
}

// ContentItem is a catalog entry. The recommendation core only reads it;
// rating and view counters change through the store.
type ContentItem struct {
	ID             string       `json:"id" bson:"_id"`
	Title          string       `json:"title" bson:"title" validate:"required,max=300"`
	Description    string       `json:"description" bson:"description" validate:"required,max=5000"`
	Type           ContentType  `json:"type" bson:"type" validate:"required,oneof=movie series"`
	Genres         []string     `json:"genres" bson:"genres" validate:"max=20,dive,required,max=40"`
	ReleaseYear    int          `json:"releaseYear,omitempty" bson:"releaseYear,omitempty" validate:"omitempty,gte=1870,lte=2100"`
	Duration       int          `json:"duration,omitempty" bson:"duration,omitempty" validate:"gte=0"`
	MaturityRating string       `json:"maturityRating,omitempty" bson:"maturityRating,omitempty" validate:"omitempty,oneof=G PG PG-13 R NC-17 TV-Y TV-Y7 TV-G TV-PG TV-14 TV-MA"`
	Thumbnail      string       `json:"thumbnail" bson:"thumbnail" validate:"required,url"`
	Banner         string       `json:"banner,omitempty" bson:"banner,omitempty" validate:"omitempty,url"`
	VideoURL       string       `json:"videoUrl" bson:"videoUrl" validate:"required,url"`
	TrailerURL     string       `json:"trailerUrl,omitempty" bson:"trailerUrl,omitempty" validate:"omitempty,url"`
	Cast           []CastMember `json:"cast,omitempty" bson:"cast,omitempty" validate:"dive"`
	Director       string       `json:"director,omitempty" bson:"director,omitempty"`
	Seasons        []Season     `json:"seasons,omitempty" bson:"seasons,omitempty" validate:"dive"`
	Tags           []string     `json:"tags,omitempty" bson:"tags,omitempty"`
	Rating         Rating       `json:"rating" bson:"rating"`
	Popularity     float64      `json:"popularity" bson:"popularity" validate:"gte=0"`
	Featured       bool         `json:"featured" bson:"featured"`
	Trending       bool         `json:"trending" bson:"trending"`
	NewRelease     bool         `json:"newRelease" bson:"newRelease"`
	ViewCount      int64        `json:"viewCount" bson:"viewCount"`
	CreatedAt      time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// HasAnyGenre reports whether the item carries at least one of genres.
func (c *ContentItem) HasAnyGenre(genres []string) bool {
	for _, g := range c.Genres {
		if slices.Contains(genres, g) {
			return true
		}
	}
	return false
}

// Episode looks up an episode by season and episode number.
func (c *ContentItem) Episode(season, episode int) (*Season, *Episode) {
	for i := range c.Seasons {
		if c.Seasons[i].SeasonNumber != season {
			continue
		}
		s := &c.Seasons[i]
		for j := range s.Episodes {
			if s.Episodes[j].EpisodeNumber == episode {
				return s, &s.Episodes[j]
			}
		}
		return s, nil
	}
	return nil, nil
}

// Clone returns a deep copy so callers may not alias store-owned slices.
func (c *ContentItem) Clone() ContentItem {
	out := *c
	out.Genres = slices.Clone(c.Genres)
	out.Tags = slices.Clone(c.Tags)
	out.Cast = slices.Clone(c.Cast)
	if c.Seasons != nil {
		out.Seasons = make([]Season, len(c.Seasons))
		for i, s := range c.Seasons {
			out.Seasons[i] = Season{SeasonNumber: s.SeasonNumber, Episodes: slices.Clone(s.Episodes)}
		}
	}
	return out
}

// ApplyRating folds one new rating into the running average.
func (r Rating) ApplyRating(value float64) Rating {
	return Rating{
		Average: (r.Average*float64(r.Count) + value) / float64(r.Count+1),
		Count:   r.Count + 1,
	}
}

// ContentFilter selects catalog listings. Zero values mean "no filter".
type ContentFilter struct {
	Type       ContentType
	Genre      string
	Search     string
	Featured   *bool
	Trending   *bool
	NewRelease *bool
	Limit      int
	Page       int // 1-based
}

// Offset returns the number of items to skip for the filter's page.
func (f ContentFilter) Offset() int {
	if f.Page < 1 || f.Limit < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// ContentPage is one page of a catalog listing.
type ContentPage struct {
	Items []ContentItem
	Total int64
}
