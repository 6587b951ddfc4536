// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/events"
	"github.com/tomtom215/marquee/internal/store"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		st, err := openStore(ctx, &config.Config{Storage: config.StorageConfig{Backend: backendMemory}}, zerolog.Nop())
		if err != nil {
			t.Fatalf("openStore error = %v", err)
		}
		if _, ok := st.(*store.Memory); !ok {
			t.Errorf("store = %T, want *store.Memory", st)
		}
	})

	t.Run("badger", func(t *testing.T) {
		cfg := &config.Config{Storage: config.StorageConfig{
			Backend:    backendBadger,
			BadgerPath: filepath.Join(t.TempDir(), "badger"),
		}}
		st, err := openStore(ctx, cfg, zerolog.Nop())
		if err != nil {
			t.Fatalf("openStore error = %v", err)
		}
		defer st.Close()

		seeded, err := seedDemo(ctx, st)
		if err != nil {
			t.Fatalf("seedDemo error = %v", err)
		}
		if seeded == 0 {
			t.Error("seedDemo inserted nothing into an empty store")
		}
		if err := st.Ping(ctx); err != nil {
			t.Errorf("Ping error = %v", err)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := openStore(ctx, &config.Config{Storage: config.StorageConfig{Backend: "sqlite"}}, zerolog.Nop()); err == nil {
			t.Error("expected error for unknown backend")
		}
	})
}

func TestOpenCache_Local(t *testing.T) {
	c, closeFn, err := openCache(context.Background(), &config.Config{})
	if err != nil {
		t.Fatalf("openCache error = %v", err)
	}
	defer closeFn()
	if _, ok := c.(*cache.Local); !ok {
		t.Errorf("cache = %T, want *cache.Local", c)
	}
}

func TestNewFeedback(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		fc, err := newFeedback(&config.Config{}, nil, zerolog.Nop())
		if err != nil {
			t.Fatalf("newFeedback error = %v", err)
		}
		if fc.Transport != nil || fc.Publisher != nil || fc.Router != nil {
			t.Errorf("components = %+v, want all nil", fc)
		}
		fc.Close()
	})

	t.Run("in-process", func(t *testing.T) {
		cfg := &config.Config{
			Events: config.EventsConfig{Enabled: true, FeedbackTopic: "test.feedback"},
			ML:     config.MLConfig{FeedbackForwarding: true, FeedbackRetryCount: 1},
		}
		fc, err := newFeedback(cfg, nil, zerolog.Nop())
		if err != nil {
			t.Fatalf("newFeedback error = %v", err)
		}
		defer fc.Close()

		if fc.Transport.Kind != events.KindGoChannel {
			t.Errorf("transport = %s, want %s", fc.Transport.Kind, events.KindGoChannel)
		}
		if fc.Publisher == nil || fc.Router == nil {
			t.Fatal("publisher and router should be built")
		}
	})
}
