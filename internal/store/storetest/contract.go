// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package storetest holds the behavioural test suite every store.Store
// backend must pass.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/store"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) store.Store

// Run executes the full contract suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("Catalog", func(t *testing.T) { testCatalog(t, newStore) })
	t.Run("CatalogListing", func(t *testing.T) { testListing(t, newStore) })
	t.Run("CatalogCounters", func(t *testing.T) { testCounters(t, newStore) })
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore) })
	t.Run("Profiles", func(t *testing.T) { testProfiles(t, newStore) })
	t.Run("WatchHistoryConcurrency", func(t *testing.T) { testWatchHistoryConcurrency(t, newStore) })
}

func item(title string, typ models.ContentType, popularity float64, genres ...string) *models.ContentItem {
	return &models.ContentItem{
		Title:       title,
		Description: title + " description",
		Type:        typ,
		Genres:      genres,
		Thumbnail:   "https://img.example/" + title + ".jpg",
		VideoURL:    "https://video.example/" + title + ".mp4",
		Popularity:  popularity,
	}
}

func mustInsert(t *testing.T, s store.Store, c *models.ContentItem) *models.ContentItem {
	t.Helper()
	out, err := s.Insert(context.Background(), c)
	if err != nil {
		t.Fatalf("Insert(%q) error = %v", c.Title, err)
	}
	if out.ID == "" {
		t.Fatalf("Insert(%q) did not assign an id", c.Title)
	}
	return out
}

func ids(items []models.ContentItem) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].ID
	}
	return out
}

func testCatalog(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t)

	a := mustInsert(t, s, item("alpha", models.ContentTypeMovie, 10, "Action", "Drama"))
	b := mustInsert(t, s, item("bravo", models.ContentTypeSeries, 20, "Comedy"))
	c := mustInsert(t, s, item("charlie", models.ContentTypeMovie, 30, "Horror"))

	got, err := s.FindByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("FindByID error = %v", err)
	}
	if got.Title != "alpha" || !slices.Equal(got.Genres, []string{"Action", "Drama"}) {
		t.Errorf("FindByID = %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("Insert should set CreatedAt")
	}

	if _, err := s.FindByID(ctx, "missing-id"); !errors.Is(err, store.ErrContentNotFound) {
		t.Errorf("FindByID(missing) error = %v, want ErrContentNotFound", err)
	}

	found, err := s.FindByIDs(ctx, []string{c.ID, "missing-id", a.ID})
	if err != nil {
		t.Fatalf("FindByIDs error = %v", err)
	}
	gotIDs := ids(found)
	slices.Sort(gotIDs)
	wantIDs := []string{a.ID, c.ID}
	slices.Sort(wantIDs)
	if !slices.Equal(gotIDs, wantIDs) {
		t.Errorf("FindByIDs = %v, want %v", gotIDs, wantIDs)
	}

	if found, err = s.FindByIDs(ctx, nil); err != nil || len(found) != 0 {
		t.Errorf("FindByIDs(nil) = %v, %v", found, err)
	}

	candidates, err := s.FindByGenreExcluding(ctx, []string{"Action", "Comedy"}, []string{b.ID})
	if err != nil {
		t.Fatalf("FindByGenreExcluding error = %v", err)
	}
	if got := ids(candidates); !slices.Equal(got, []string{a.ID}) {
		t.Errorf("FindByGenreExcluding = %v, want [%s]", got, a.ID)
	}

	candidates, err = s.FindByGenreExcluding(ctx, []string{"Western"}, nil)
	if err != nil || len(candidates) != 0 {
		t.Errorf("FindByGenreExcluding(no match) = %v, %v", candidates, err)
	}

	genres, err := s.Genres(ctx)
	if err != nil {
		t.Fatalf("Genres error = %v", err)
	}
	if want := []string{"Action", "Comedy", "Drama", "Horror"}; !slices.Equal(genres, want) {
		t.Errorf("Genres = %v, want %v", genres, want)
	}
}

func testListing(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, spec := range []struct {
		title      string
		typ        models.ContentType
		popularity float64
		featured   bool
		genre      string
	}{
		{"one", models.ContentTypeMovie, 50, true, "Drama"},
		{"two", models.ContentTypeSeries, 90, false, "Drama"},
		{"three", models.ContentTypeMovie, 50, false, "Comedy"},
		{"four", models.ContentTypeMovie, 10, true, "Drama"},
		{"five space opera", models.ContentTypeSeries, 70, false, "Sci-Fi"},
	} {
		c := item(spec.title, spec.typ, spec.popularity, spec.genre)
		c.Featured = spec.featured
		c.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		mustInsert(t, s, c)
	}

	titles := func(p *models.ContentPage) []string {
		out := make([]string, len(p.Items))
		for i := range p.Items {
			out[i] = p.Items[i].Title
		}
		return out
	}

	yes := true
	tests := []struct {
		name      string
		filter    models.ContentFilter
		want      []string
		wantTotal int64
	}{
		{"all sorted by popularity then newest", models.ContentFilter{Limit: 10, Page: 1},
			[]string{"two", "five space opera", "three", "one", "four"}, 5},
		{"type filter", models.ContentFilter{Type: models.ContentTypeMovie, Limit: 10, Page: 1},
			[]string{"three", "one", "four"}, 3},
		{"genre filter", models.ContentFilter{Genre: "Drama", Limit: 10, Page: 1},
			[]string{"two", "one", "four"}, 3},
		{"featured", models.ContentFilter{Featured: &yes, Limit: 10, Page: 1},
			[]string{"one", "four"}, 2},
		{"search is case-insensitive", models.ContentFilter{Search: "SPACE", Limit: 10, Page: 1},
			[]string{"five space opera"}, 1},
		{"second page", models.ContentFilter{Limit: 2, Page: 2},
			[]string{"three", "one"}, 5},
		{"page past end", models.ContentFilter{Limit: 2, Page: 9},
			[]string{}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := s.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List error = %v", err)
			}
			if got := titles(page); !slices.Equal(got, tt.want) {
				t.Errorf("List titles = %v, want %v", got, tt.want)
			}
			if page.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", page.Total, tt.wantTotal)
			}
		})
	}
}

func testCounters(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t)

	c := item("counted", models.ContentTypeMovie, 1, "Drama")
	c.Rating = models.Rating{Average: 6, Count: 3}
	c = mustInsert(t, s, c)

	updated, err := s.ApplyRating(ctx, c.ID, 10)
	if err != nil {
		t.Fatalf("ApplyRating error = %v", err)
	}
	if math.Abs(updated.Rating.Average-7) > 1e-9 || updated.Rating.Count != 4 {
		t.Errorf("rating = %+v, want avg 7 count 4", updated.Rating)
	}

	if _, err := s.ApplyRating(ctx, "missing-id", 5); !errors.Is(err, store.ErrContentNotFound) {
		t.Errorf("ApplyRating(missing) error = %v", err)
	}

	viewed, err := s.IncrementViews(ctx, c.ID)
	if err != nil {
		t.Fatalf("IncrementViews error = %v", err)
	}
	if viewed.ViewCount != 1 {
		t.Errorf("ViewCount = %d, want 1", viewed.ViewCount)
	}
	if _, err := s.IncrementViews(ctx, "missing-id"); !errors.Is(err, store.ErrContentNotFound) {
		t.Errorf("IncrementViews(missing) error = %v", err)
	}

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.ApplyRating(ctx, c.ID, 7); err != nil {
				t.Errorf("concurrent ApplyRating error = %v", err)
			}
			if _, err := s.IncrementViews(ctx, c.ID); err != nil {
				t.Errorf("concurrent IncrementViews error = %v", err)
			}
		}()
	}
	wg.Wait()

	final, err := s.FindByID(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if final.Rating.Count != 4+workers {
		t.Errorf("rating count = %d, want %d", final.Rating.Count, 4+workers)
	}
	if math.Abs(final.Rating.Average-7) > 1e-9 {
		t.Errorf("rating average = %v, want 7", final.Rating.Average)
	}
	if final.ViewCount != 1+workers {
		t.Errorf("view count = %d, want %d", final.ViewCount, 1+workers)
	}
}

func testUsers(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t)

	u, err := s.CreateUser(ctx, &models.User{
		Email:        "  Viewer@Example.com ",
		PasswordHash: "hash",
		Username:     "viewer",
		Subscription: models.SubscriptionBasic,
		Role:         models.RoleViewer,
	})
	if err != nil {
		t.Fatalf("CreateUser error = %v", err)
	}
	if u.ID == "" || u.Email != "viewer@example.com" {
		t.Errorf("CreateUser = %+v", u)
	}

	if _, err := s.CreateUser(ctx, &models.User{Email: "VIEWER@example.com"}); !errors.Is(err, store.ErrEmailTaken) {
		t.Errorf("duplicate CreateUser error = %v, want ErrEmailTaken", err)
	}

	byEmail, err := s.FindUserByEmail(ctx, "viewer@EXAMPLE.com")
	if err != nil || byEmail.ID != u.ID || byEmail.PasswordHash != "hash" {
		t.Errorf("FindUserByEmail = %+v, %v", byEmail, err)
	}
	if _, err := s.FindUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, store.ErrUserNotFound) {
		t.Errorf("FindUserByEmail(missing) error = %v", err)
	}
	if _, err := s.FindUserByID(ctx, "missing-id"); !errors.Is(err, store.ErrUserNotFound) {
		t.Errorf("FindUserByID(missing) error = %v", err)
	}

	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := s.TouchLogin(ctx, u.ID, at); err != nil {
		t.Fatalf("TouchLogin error = %v", err)
	}
	byID, err := s.FindUserByID(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if byID.LastLogin == nil || !byID.LastLogin.Equal(at) {
		t.Errorf("LastLogin = %v, want %v", byID.LastLogin, at)
	}
}

func newUser(t *testing.T, s store.Store, email string) *models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), &models.User{Email: email, Username: "u", Role: models.RoleViewer})
	if err != nil {
		t.Fatalf("CreateUser error = %v", err)
	}
	return u
}

func testProfiles(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t)
	u := newUser(t, s, "profiles@example.com")

	var first *models.Profile
	for i := 0; i < models.MaxProfilesPerUser; i++ {
		p, err := s.CreateProfile(ctx, u.ID, &models.Profile{
			Name:        fmt.Sprintf("p%d", i),
			Preferences: models.Preferences{Genres: []string{}, MaturityLevel: models.MaturityAll},
		})
		if err != nil {
			t.Fatalf("CreateProfile #%d error = %v", i, err)
		}
		if first == nil {
			first = p
		}
	}
	if _, err := s.CreateProfile(ctx, u.ID, &models.Profile{Name: "extra"}); !errors.Is(err, store.ErrProfileLimit) {
		t.Errorf("sixth CreateProfile error = %v, want ErrProfileLimit", err)
	}
	if _, err := s.CreateProfile(ctx, "missing-user", &models.Profile{Name: "x"}); !errors.Is(err, store.ErrUserNotFound) {
		t.Errorf("CreateProfile(missing user) error = %v", err)
	}

	if _, err := s.GetProfile(ctx, u.ID, "missing-profile"); !errors.Is(err, store.ErrProfileNotFound) {
		t.Errorf("GetProfile(missing) error = %v", err)
	}
	if _, err := s.GetProfile(ctx, "missing-user", first.ID); !errors.Is(err, store.ErrProfileNotFound) {
		t.Errorf("GetProfile(missing user) error = %v", err)
	}

	prefs := models.Preferences{Genres: []string{"Drama", "Sci-Fi"}, MaturityLevel: models.MaturityTeen}
	p, err := s.UpdatePreferences(ctx, u.ID, first.ID, prefs)
	if err != nil {
		t.Fatalf("UpdatePreferences error = %v", err)
	}
	if !slices.Equal(p.Preferences.Genres, prefs.Genres) || p.Preferences.MaturityLevel != models.MaturityTeen {
		t.Errorf("Preferences = %+v", p.Preferences)
	}

	// Upsert: append two, then overwrite the first in place.
	for _, e := range []models.WatchEntry{
		{ContentID: "c1", Progress: 0.3},
		{ContentID: "c2", Progress: 0.6},
		{ContentID: "c1", Progress: 1, Completed: true},
	} {
		if p, err = s.UpsertWatchHistory(ctx, u.ID, first.ID, e); err != nil {
			t.Fatalf("UpsertWatchHistory error = %v", err)
		}
	}
	if len(p.WatchHistory) != 2 {
		t.Fatalf("watch history len = %d, want 2", len(p.WatchHistory))
	}
	if h := p.WatchHistory[0]; h.ContentID != "c1" || h.Progress != 1 || !h.Completed || h.WatchedAt.IsZero() {
		t.Errorf("first entry = %+v, want c1 updated in place", h)
	}
	if h := p.WatchHistory[1]; h.ContentID != "c2" || h.Progress != 0.6 {
		t.Errorf("second entry = %+v", h)
	}
	if _, err := s.UpsertWatchHistory(ctx, u.ID, "missing-profile", models.WatchEntry{ContentID: "c1"}); !errors.Is(err, store.ErrProfileNotFound) {
		t.Errorf("UpsertWatchHistory(missing) error = %v", err)
	}

	for _, id := range []string{"m1", "m2", "m1"} {
		if p, err = s.AddToMyList(ctx, u.ID, first.ID, id); err != nil {
			t.Fatalf("AddToMyList error = %v", err)
		}
	}
	if !slices.Equal(p.MyList, []string{"m1", "m2"}) {
		t.Errorf("MyList = %v, want [m1 m2]", p.MyList)
	}
	if p, err = s.RemoveFromMyList(ctx, u.ID, first.ID, "m1"); err != nil {
		t.Fatalf("RemoveFromMyList error = %v", err)
	}
	if !slices.Equal(p.MyList, []string{"m2"}) {
		t.Errorf("MyList after remove = %v, want [m2]", p.MyList)
	}

	got, err := s.GetProfile(ctx, u.ID, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.WatchHistory) != 2 || !slices.Equal(got.MyList, []string{"m2"}) {
		t.Errorf("GetProfile after mutations = %+v", got)
	}
}

func testWatchHistoryConcurrency(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t)
	u := newUser(t, s, "concurrent@example.com")
	p, err := s.CreateProfile(ctx, u.ID, &models.Profile{Name: "main"})
	if err != nil {
		t.Fatal(err)
	}

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			entry := models.WatchEntry{ContentID: "shared", Progress: float64(i) / workers}
			if _, err := s.UpsertWatchHistory(ctx, u.ID, p.ID, entry); err != nil {
				t.Errorf("shared upsert error = %v", err)
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			entry := models.WatchEntry{ContentID: fmt.Sprintf("own-%d", i), Progress: 0.5}
			if _, err := s.UpsertWatchHistory(ctx, u.ID, p.ID, entry); err != nil {
				t.Errorf("distinct upsert error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, err := s.GetProfile(ctx, u.ID, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	shared := 0
	for _, e := range got.WatchHistory {
		if e.ContentID == "shared" {
			shared++
		}
	}
	if shared != 1 {
		t.Errorf("shared entries = %d, want exactly 1", shared)
	}
	if len(got.WatchHistory) != workers+1 {
		t.Errorf("history len = %d, want %d", len(got.WatchHistory), workers+1)
	}
}
