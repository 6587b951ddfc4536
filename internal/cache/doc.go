// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package cache provides the small read-through caches used outside the
recommendation core.

Two implementations share the Cacher interface:

  - Redis: shared across replicas, backed by go-redis
  - Local: process-local TTL map, used when Redis is disabled

Values are stored as JSON bytes; GetJSON and SetJSON wrap the encoding.

# Usage

	var c cache.Cacher = cache.NewRedis(client, "marquee:")
	genres, hit, err := cache.GetJSON[[]string](ctx, c, "genres")
	if !hit {
	    genres = loadGenres()
	    _ = cache.SetJSON(ctx, c, "genres", genres, 10*time.Minute)
	}

The recommendation engine never reads through a cache. Only listing data
that tolerates staleness (the genre list) is cached, and writes that change
it invalidate the key.
*/
package cache
