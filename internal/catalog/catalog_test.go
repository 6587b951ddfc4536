// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/events"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/store"
	"github.com/tomtom215/marquee/internal/validation"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []events.RatingEvent
}

func (f *fakePublisher) PublishRating(_ context.Context, ev events.RatingEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func validItem(id string, typ models.ContentType, popularity float64, genres ...string) models.ContentItem {
	return models.ContentItem{
		ID:          id,
		Title:       "Title " + id,
		Description: "Description of " + id,
		Type:        typ,
		Genres:      genres,
		Duration:    90,
		Thumbnail:   "https://cdn.example.com/" + id + ".jpg",
		VideoURL:    "https://cdn.example.com/" + id + ".mp4",
		Popularity:  popularity,
	}
}

func series(id string) models.ContentItem {
	it := validItem(id, models.ContentTypeSeries, 50, "Mystery")
	it.Seasons = []models.Season{{
		SeasonNumber: 1,
		Episodes: []models.Episode{
			{EpisodeNumber: 1, Title: "Pilot", Duration: 45, VideoURL: "https://cdn.example.com/s1e1.mp4", Thumbnail: "https://cdn.example.com/s1e1.jpg"},
			{EpisodeNumber: 2, Title: "Second", Duration: 42, VideoURL: "https://cdn.example.com/s1e2.mp4"},
		},
	}}
	return it
}

func newTestService(t *testing.T, c cache.Cacher, pub RatingPublisher, items ...models.ContentItem) (*Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	for i := range items {
		if _, err := mem.Insert(context.Background(), &items[i]); err != nil {
			t.Fatalf("Insert error = %v", err)
		}
	}
	return NewService(mem, c, pub, Config{DefaultPageSize: 2, MaxPageSize: 3, GenreTTL: time.Minute}, zerolog.Nop()), mem
}

func TestService_List(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil, nil,
		validItem("a", models.ContentTypeMovie, 10, "Action"),
		validItem("b", models.ContentTypeMovie, 30, "Drama"),
		validItem("c", models.ContentTypeSeries, 20, "Drama"),
		validItem("d", models.ContentTypeMovie, 40, "Comedy"),
		validItem("e", models.ContentTypeMovie, 5, "Action"),
	)
	ctx := context.Background()

	tests := []struct {
		name      string
		query     ListQuery
		wantIDs   []string
		wantTotal int64
		wantPages int
		wantPage  int
	}{
		{"default page size", ListQuery{}, []string{"d", "b"}, 5, 3, 1},
		{"second page", ListQuery{Page: 2}, []string{"c", "a"}, 5, 3, 2},
		{"limit clamped", ListQuery{Limit: 50}, []string{"d", "b", "c"}, 5, 2, 1},
		{"type filter", ListQuery{Type: "series"}, []string{"c"}, 1, 1, 1},
		{"genre filter", ListQuery{Genre: "Action", Limit: 3}, []string{"a", "e"}, 2, 1, 1},
		{"page past end", ListQuery{Page: 9}, []string{}, 5, 3, 9},
		{"no match", ListQuery{Genre: "Horror"}, []string{}, 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.List(ctx, tt.query)
			if err != nil {
				t.Fatalf("List error = %v", err)
			}
			ids := make([]string, 0, len(got.Items))
			for _, it := range got.Items {
				ids = append(ids, it.ID)
			}
			if !slices.Equal(ids, tt.wantIDs) {
				t.Errorf("ids = %v, want %v", ids, tt.wantIDs)
			}
			if got.Count != len(tt.wantIDs) || got.Total != tt.wantTotal || got.Pages != tt.wantPages || got.Page != tt.wantPage {
				t.Errorf("listing = count %d total %d pages %d page %d", got.Count, got.Total, got.Pages, got.Page)
			}
		})
	}
}

func TestService_List_InvalidType(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil, nil)
	_, err := svc.List(context.Background(), ListQuery{Type: "podcast"})
	var verr *validation.RequestValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("List error = %v, want validation error", err)
	}
}

func TestService_GenresCached(t *testing.T) {
	t.Parallel()

	local := cache.NewLocal(time.Minute)
	t.Cleanup(func() { _ = local.Close() })

	svc, mem := newTestService(t, local, nil,
		validItem("a", models.ContentTypeMovie, 1, "Drama", "Action"),
		validItem("b", models.ContentTypeMovie, 1, "Comedy"),
	)
	ctx := context.Background()

	genres, err := svc.Genres(ctx)
	if err != nil {
		t.Fatalf("Genres error = %v", err)
	}
	if want := []string{"Action", "Comedy", "Drama"}; !slices.Equal(genres, want) {
		t.Fatalf("genres = %v, want %v", genres, want)
	}

	// Writes that bypass the service are not visible until invalidation.
	extra := validItem("c", models.ContentTypeMovie, 1, "Horror")
	if _, err := mem.Insert(ctx, &extra); err != nil {
		t.Fatal(err)
	}
	if genres, _ := svc.Genres(ctx); slices.Contains(genres, "Horror") {
		t.Errorf("cached genres = %v, expected stale read", genres)
	}

	doc := validItem("d", models.ContentTypeMovie, 1, "Documentary")
	if _, err := svc.Insert(ctx, &doc); err != nil {
		t.Fatalf("Insert error = %v", err)
	}
	genres, _ = svc.Genres(ctx)
	if !slices.Contains(genres, "Horror") || !slices.Contains(genres, "Documentary") {
		t.Errorf("genres after insert = %v", genres)
	}
}

func TestService_GenresWithoutCache(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil, nil)
	genres, err := svc.Genres(context.Background())
	if err != nil {
		t.Fatalf("Genres error = %v", err)
	}
	if genres == nil || len(genres) != 0 {
		t.Errorf("genres = %#v, want empty non-nil", genres)
	}
}

func TestService_Rate(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	svc, mem := newTestService(t, nil, pub, validItem("a", models.ContentTypeMovie, 1, "Drama"))
	ctx := context.Background()
	rating := func(v float64) *float64 { return &v }

	for _, bad := range []*float64{nil, rating(-0.5), rating(10.5)} {
		_, err := svc.Rate(ctx, RateInput{UserID: "u1", ContentID: "a", Rating: bad})
		var verr *validation.RequestValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Rate(%v) error = %v, want validation error", bad, err)
		}
	}
	if item, _ := mem.FindByID(ctx, "a"); item.Rating.Count != 0 {
		t.Fatalf("invalid ratings reached the store: %+v", item.Rating)
	}

	for _, v := range []float64{8, 10, 0} {
		if _, err := svc.Rate(ctx, RateInput{UserID: "u1", ProfileID: "p1", ContentID: "a", Rating: rating(v)}); err != nil {
			t.Fatalf("Rate(%v) error = %v", v, err)
		}
	}
	item, _ := mem.FindByID(ctx, "a")
	if item.Rating.Count != 3 || math.Abs(item.Rating.Average-6) > 1e-9 {
		t.Errorf("rating = %+v, want avg 6 over 3", item.Rating)
	}

	if len(pub.events) != 3 {
		t.Fatalf("published %d events, want 3", len(pub.events))
	}
	if ev := pub.events[0]; ev.UserID != "u1" || ev.ProfileID != "p1" || ev.ContentID != "a" || ev.Rating != 8 {
		t.Errorf("event = %+v", ev)
	}

	if _, err := svc.Rate(ctx, RateInput{UserID: "u1", ContentID: "missing", Rating: rating(5)}); !errors.Is(err, store.ErrContentNotFound) {
		t.Errorf("Rate(missing) error = %v, want ErrContentNotFound", err)
	}
	if len(pub.events) != 3 {
		t.Error("failed rating must not publish")
	}
}

func TestService_RateConcurrent(t *testing.T) {
	t.Parallel()

	svc, mem := newTestService(t, nil, nil, validItem("a", models.ContentTypeMovie, 1, "Drama"))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(v float64) {
			defer wg.Done()
			if _, err := svc.Rate(ctx, RateInput{ContentID: "a", Rating: &v}); err != nil {
				t.Error(err)
			}
		}(float64(i % 11))
	}
	wg.Wait()

	item, _ := mem.FindByID(ctx, "a")
	if item.Rating.Count != 50 {
		t.Errorf("count = %d, want 50", item.Rating.Count)
	}
}

func TestService_View(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil, nil, validItem("a", models.ContentTypeMovie, 1, "Drama"))
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		item, err := svc.View(ctx, "a")
		if err != nil {
			t.Fatalf("View error = %v", err)
		}
		if item.ViewCount != int64(i) {
			t.Errorf("viewCount = %d, want %d", item.ViewCount, i)
		}
	}
	if _, err := svc.View(ctx, "missing"); !errors.Is(err, store.ErrContentNotFound) {
		t.Errorf("View(missing) error = %v", err)
	}
}

func TestService_InsertValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil, nil)
	bad := validItem("", models.ContentTypeMovie, 1, "Drama")
	bad.VideoURL = "not a url"
	bad.Type = "podcast"

	_, err := svc.Insert(context.Background(), &bad)
	var verr *validation.RequestValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Insert error = %v, want validation error", err)
	}
	if n := len(verr.Errors()); n != 2 {
		t.Errorf("field errors = %d, want 2", n)
	}

	good := validItem("", models.ContentTypeMovie, 1, "Drama")
	created, err := svc.Insert(context.Background(), &good)
	if err != nil {
		t.Fatalf("Insert error = %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Errorf("created = %+v", created)
	}
}

func TestService_Streams(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil, nil, validItem("m", models.ContentTypeMovie, 1, "Drama"), series("s"))
	ctx := context.Background()

	stream, err := svc.Stream(ctx, "m")
	if err != nil {
		t.Fatalf("Stream error = %v", err)
	}
	if stream.StreamingURL != "https://cdn.example.com/m.mp4" || stream.Type != models.ContentTypeMovie || stream.Duration != 90 {
		t.Errorf("stream = %+v", stream)
	}

	ep, err := svc.EpisodeStream(ctx, "s", 1, 2)
	if err != nil {
		t.Fatalf("EpisodeStream error = %v", err)
	}
	if ep.EpisodeTitle != "Second" || ep.StreamingURL != "https://cdn.example.com/s1e2.mp4" || ep.Season != 1 || ep.Episode != 2 {
		t.Errorf("episode = %+v", ep)
	}

	tests := []struct {
		id              string
		season, episode int
		want            error
	}{
		{"missing", 1, 1, store.ErrContentNotFound},
		{"m", 1, 1, ErrNotSeries},
		{"s", 2, 1, ErrSeasonNotFound},
		{"s", 1, 9, ErrEpisodeNotFound},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d/%d", tt.id, tt.season, tt.episode), func(t *testing.T) {
			if _, err := svc.EpisodeStream(ctx, tt.id, tt.season, tt.episode); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}
