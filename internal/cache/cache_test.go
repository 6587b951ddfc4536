// Marquee - Streaming Catalog and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package cache

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *Redis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedis(client, "test:")
}

func TestRedis_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	mr, c := newMiniRedis(t)

	if _, ok, err := c.Get(ctx, "genres"); ok || err != nil {
		t.Fatalf("Get on empty = %v, %v; want miss", ok, err)
	}

	if err := c.Set(ctx, "genres", []byte(`["Drama"]`), time.Minute); err != nil {
		t.Fatalf("Set error = %v", err)
	}
	if !mr.Exists("test:genres") {
		t.Error("key should be stored with the prefix")
	}

	data, ok, err := c.Get(ctx, "genres")
	if err != nil || !ok || string(data) != `["Drama"]` {
		t.Errorf("Get = %q, %v, %v", data, ok, err)
	}

	if err := c.Delete(ctx, "genres"); err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	if _, ok, _ := c.Get(ctx, "genres"); ok {
		t.Error("Get after Delete should miss")
	}
}

func TestRedis_TTLExpires(t *testing.T) {
	ctx := context.Background()
	mr, c := newMiniRedis(t)

	if err := c.Set(ctx, "genres", []byte("x"), 10*time.Second); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(11 * time.Second)

	if _, ok, _ := c.Get(ctx, "genres"); ok {
		t.Error("entry should expire after its TTL")
	}
}

func TestRedis_ErrorWhenServerDown(t *testing.T) {
	ctx := context.Background()
	mr, c := newMiniRedis(t)
	mr.Close()

	if _, _, err := c.Get(ctx, "genres"); err == nil {
		t.Error("Get against a stopped server should error")
	}
	if err := c.Ping(ctx); err == nil {
		t.Error("Ping against a stopped server should error")
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	_, c := newMiniRedis(t)

	want := []string{"Action", "Drama"}
	if err := SetJSON(ctx, c, "genres", want, time.Minute); err != nil {
		t.Fatalf("SetJSON error = %v", err)
	}
	got, ok, err := GetJSON[[]string](ctx, c, "genres")
	if err != nil || !ok || !slices.Equal(got, want) {
		t.Errorf("GetJSON = %v, %v, %v", got, ok, err)
	}

	if _, ok, err := GetJSON[[]string](ctx, c, "missing"); ok || err != nil {
		t.Errorf("GetJSON(missing) = %v, %v", ok, err)
	}

	if err := c.Set(ctx, "corrupt", []byte("{not json"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, _, err := GetJSON[[]string](ctx, c, "corrupt"); err == nil {
		t.Error("GetJSON should fail on a corrupt value")
	}
}

func TestLocal(t *testing.T) {
	ctx := context.Background()
	c := NewLocal(0)
	defer c.Close()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "short", []byte("a"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "forever", []byte("b"), 0); err != nil {
		t.Fatal(err)
	}

	if data, ok, _ := c.Get(ctx, "short"); !ok || string(data) != "a" {
		t.Errorf("Get(short) = %q, %v", data, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "short"); ok {
		t.Error("short should have expired")
	}
	if _, ok, _ := c.Get(ctx, "forever"); !ok {
		t.Error("zero TTL should never expire")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1 after lazy eviction", c.Len())
	}

	_ = c.Delete(ctx, "forever")
	if c.Len() != 0 {
		t.Errorf("Len after Delete = %d", c.Len())
	}
}

func TestLocal_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c := NewLocal(0)
	defer c.Close()

	buf := []byte("abc")
	_ = c.Set(ctx, "k", buf, 0)
	buf[0] = 'x'

	got, _, _ := c.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value aliased caller buffer: %q", got)
	}
}

func TestLocal_Sweep(t *testing.T) {
	ctx := context.Background()
	c := NewLocal(0)
	defer c.Close()

	now := time.Now()
	c.now = func() time.Time { return now }
	_ = c.Set(ctx, "a", []byte("1"), time.Second)
	_ = c.Set(ctx, "b", []byte("2"), time.Hour)

	now = now.Add(time.Minute)
	c.sweep()

	if c.Len() != 1 {
		t.Errorf("Len after sweep = %d, want 1", c.Len())
	}
}
