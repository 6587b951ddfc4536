// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

//go:build integration

package mongostore

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/store"
	"github.com/tomtom215/marquee/internal/store/storetest"
	"github.com/tomtom215/marquee/internal/testinfra"
)

func TestMongoContract(t *testing.T) {
	testinfra.SkipIfNoDocker(t)

	ctx := context.Background()
	container, err := testinfra.NewMongoContainer(ctx)
	if err != nil {
		t.Fatalf("start mongo: %v", err)
	}
	testinfra.CleanupContainer(t, container)

	var n atomic.Int32
	storetest.Run(t, func(t *testing.T) store.Store {
		// One database per subtest keeps the suites isolated.
		db := fmt.Sprintf("marquee_test_%d", n.Add(1))
		s, err := Open(ctx, Options{URI: container.URI, Database: db, Timeout: 30 * time.Second}, zerolog.Nop())
		if err != nil {
			t.Fatalf("Open error = %v", err)
		}
		t.Cleanup(func() {
			_ = s.db.Drop(context.Background())
			_ = s.Close()
		})
		return s
	})
}
