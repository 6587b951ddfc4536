// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package store_test

import (
	"context"
	"testing"

	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/store"
	"github.com/tomtom215/marquee/internal/store/storetest"
)

func TestMemoryContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return store.NewMemory()
	})
}

func TestMemory_FindByGenreExcludingKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	var want []string
	for _, title := range []string{"z", "a", "m"} {
		out, err := s.Insert(ctx, &models.ContentItem{Title: title, Genres: []string{"Drama"}})
		if err != nil {
			t.Fatal(err)
		}
		want = append(want, out.ID)
	}

	got, err := s.FindByGenreExcluding(ctx, []string{"Drama"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("order = %v, want insertion order %v", got, want)
		}
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	in, err := s.Insert(ctx, &models.ContentItem{Title: "t", Genres: []string{"Drama"}})
	if err != nil {
		t.Fatal(err)
	}
	got, _ := s.FindByID(ctx, in.ID)
	got.Genres[0] = "Mutated"

	again, _ := s.FindByID(ctx, in.ID)
	if again.Genres[0] != "Drama" {
		t.Error("caller mutation leaked into the store")
	}
}

func TestSeedDemoCatalog(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	n, err := store.SeedDemoCatalog(ctx, s)
	if err != nil {
		t.Fatalf("SeedDemoCatalog error = %v", err)
	}
	if n != len(store.DemoCatalog()) {
		t.Errorf("seeded %d, want %d", n, len(store.DemoCatalog()))
	}

	again, err := store.SeedDemoCatalog(ctx, s)
	if err != nil || again != 0 {
		t.Errorf("second seed = %d, %v; want 0, nil", again, err)
	}
}
