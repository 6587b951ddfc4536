// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import (
	"context"
	"errors"

	"github.com/tomtom215/marquee/internal/models"
)

var (
	// ErrNotSeries is returned when an episode is requested from a movie.
	ErrNotSeries = errors.New("content is not a series")

	// ErrSeasonNotFound and ErrEpisodeNotFound report a missing season or
	// episode on an existing series.
	ErrSeasonNotFound  = errors.New("season not found")
	ErrEpisodeNotFound = errors.New("episode not found")
)

// Stream locates the playable asset of a title.
type Stream struct {
	ContentID    string             `json:"contentId"`
	Title        string             `json:"title"`
	StreamingURL string             `json:"streamingUrl"`
	Type         models.ContentType `json:"type"`
	Duration     int                `json:"duration"`
	Thumbnail    string             `json:"thumbnail"`
}

// EpisodeStream locates one episode of a series.
type EpisodeStream struct {
	ContentID    string `json:"contentId"`
	Title        string `json:"title"`
	EpisodeTitle string `json:"episodeTitle"`
	StreamingURL string `json:"streamingUrl"`
	Season       int    `json:"season"`
	Episode      int    `json:"episode"`
	Duration     int    `json:"duration"`
	Thumbnail    string `json:"thumbnail"`
}

// Stream returns the direct video URL of an item.
// TODO: issue signed, expiring URLs once the CDN origin supports them.
func (s *Service) Stream(ctx context.Context, id string) (*Stream, error) {
	item, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Stream{
		ContentID:    item.ID,
		Title:        item.Title,
		StreamingURL: item.VideoURL,
		Type:         item.Type,
		Duration:     item.Duration,
		Thumbnail:    item.Thumbnail,
	}, nil
}

// EpisodeStream returns the video URL of one episode.
func (s *Service) EpisodeStream(ctx context.Context, id string, season, episode int) (*EpisodeStream, error) {
	item, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Type != models.ContentTypeSeries {
		return nil, ErrNotSeries
	}

	seasonRef, ep := item.Episode(season, episode)
	switch {
	case seasonRef == nil:
		return nil, ErrSeasonNotFound
	case ep == nil:
		return nil, ErrEpisodeNotFound
	}

	return &EpisodeStream{
		ContentID:    item.ID,
		Title:        item.Title,
		EpisodeTitle: ep.Title,
		StreamingURL: ep.VideoURL,
		Season:       season,
		Episode:      episode,
		Duration:     ep.Duration,
		Thumbnail:    ep.Thumbnail,
	}, nil
}
