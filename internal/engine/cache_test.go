package engine

import (
	"context"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStoreAt(t.TempDir(), "")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRoundtrip(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	t.Run("set then get", func(t *testing.T) {
		s.Set(ctx, "search:abc", []byte(`{"q":"weex"}`), time.Hour)
		data, ok := s.Get(ctx, "search:abc")
		if !ok {
			t.Fatal("expected hit")
		}
		if string(data) != `{"q":"weex"}` {
			t.Errorf("unexpected payload: %s", data)
		}
	})

	t.Run("miss on unknown key", func(t *testing.T) {
		if _, ok := s.Get(ctx, "search:nope"); ok {
			t.Error("expected miss")
		}
	})

	t.Run("expired entries evict", func(t *testing.T) {
		s.Set(ctx, "search:stale", []byte("x"), time.Millisecond)
		time.Sleep(10 * time.Millisecond)
		if _, ok := s.Get(ctx, "search:stale"); ok {
			t.Error("expected expired entry to miss")
		}
	})

	t.Run("survives l1 loss", func(t *testing.T) {
		s.Set(ctx, "channel:uc1", []byte("durable"), time.Hour)
		s.l1.Delete("channel:uc1")
		data, ok := s.Get(ctx, "channel:uc1")
		if !ok || string(data) != "durable" {
			t.Errorf("expected sqlite backfill, got ok=%v data=%s", ok, data)
		}
		// The read repopulates L1.
		if _, ok := s.l1.Load("channel:uc1"); !ok {
			t.Error("expected L1 backfill after durable hit")
		}
	})

	t.Run("delete removes everywhere", func(t *testing.T) {
		s.Set(ctx, "video:v1", []byte("x"), time.Hour)
		s.Delete(ctx, "video:v1")
		if _, ok := s.Get(ctx, "video:v1"); ok {
			t.Error("expected miss after delete")
		}
	})

	t.Run("overwrite updates", func(t *testing.T) {
		s.Set(ctx, "search:ow", []byte("one"), time.Hour)
		s.Set(ctx, "search:ow", []byte("two"), time.Hour)
		data, _ := s.Get(ctx, "search:ow")
		if string(data) != "two" {
			t.Errorf("expected overwrite, got %s", data)
		}
	})
}

func TestClearNamespace(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	s.Set(ctx, "search:a", []byte("1"), time.Hour)
	s.Set(ctx, "search:b", []byte("2"), time.Hour)
	s.Set(ctx, "channel:c", []byte("3"), time.Hour)

	if n := s.ClearNamespace(ctx, "search:"); n != 2 {
		t.Errorf("expected 2 removed, got %d", n)
	}
	if _, ok := s.Get(ctx, "search:a"); ok {
		t.Error("search entry should be gone")
	}
	if _, ok := s.Get(ctx, "channel:c"); !ok {
		t.Error("channel entry should survive")
	}
}

func TestStoreStats(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	s.Set(ctx, "search:a", []byte("1"), time.Hour)
	s.Set(ctx, "video:v", []byte("2"), time.Hour)
	s.Set(ctx, "video:w", []byte("3"), time.Hour)

	stats := s.Stats(ctx)
	if stats["search"].Count != 1 {
		t.Errorf("expected 1 search entry, got %d", stats["search"].Count)
	}
	if stats["video"].Count != 2 {
		t.Errorf("expected 2 video entries, got %d", stats["video"].Count)
	}
}

func TestCacheLayers(t *testing.T) {
	Init(Config{SearchCacheTTL: time.Hour, DetailCacheTTL: time.Hour})
	ctx := context.Background()
	s := testStore(t)

	t.Run("search layer", func(t *testing.T) {
		rec := SearchRecord{
			Query:      "weex crypto perps partnership",
			Competitor: "weex",
			ChannelIDs: []string{"UC1", "UC2"},
			VideoIDs:   []string{"v1"},
			FetchedAt:  time.Now(),
		}
		s.SetSearch(ctx, rec)

		got, ok := s.GetSearch(ctx, "WEEX", "weex  crypto perps PARTNERSHIP")
		if !ok {
			t.Fatal("expected hit under normalized key")
		}
		if len(got.ChannelIDs) != 2 || got.ChannelIDs[0] != "UC1" {
			t.Errorf("unexpected record: %+v", got)
		}
	})

	t.Run("channel batch partitions hits and misses", func(t *testing.T) {
		s.SetChannel(ctx, ChannelStats{ChannelID: "UCa", Title: "Alpha"})
		s.SetChannel(ctx, ChannelStats{ChannelID: "UCb", Title: "Beta"})

		hits, missing := s.GetChannelsBatch(ctx, []string{"UCa", "UCb", "UCc"})
		if len(hits) != 2 || len(missing) != 1 || missing[0] != "UCc" {
			t.Errorf("unexpected partition: hits=%d missing=%v", len(hits), missing)
		}
		if hits["UCa"].Title != "Alpha" {
			t.Errorf("unexpected channel: %+v", hits["UCa"])
		}
	})

	t.Run("video batch roundtrip", func(t *testing.T) {
		s.SetVideosBatch(ctx, []VideoStats{
			{VideoID: "v1", Title: "Funding rate explained"},
			{VideoID: "v2", Title: "WEEX referral"},
		})
		hits, missing := s.GetVideosBatch(ctx, []string{"v1", "v2", "v3"})
		if len(hits) != 2 || len(missing) != 1 {
			t.Errorf("unexpected partition: hits=%d missing=%v", len(hits), missing)
		}
	})
}

func TestCacheJSONHelpers(t *testing.T) {
	Init(Config{SearchCacheTTL: time.Hour, DetailCacheTTL: time.Hour, CacheDir: t.TempDir()})
	ctx := context.Background()
	if _, err := InitStore(); err != nil {
		t.Skipf("store unavailable: %v", err)
	}

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	CacheStoreJSON(ctx, "helper_test", payload{Name: "weex", Count: 3})
	got, ok := CacheLoadJSON[payload](ctx, "helper_test")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Name != "weex" || got.Count != 3 {
		t.Errorf("unexpected payload: %+v", got)
	}

	if _, ok := CacheLoadJSON[payload](ctx, "absent"); ok {
		t.Error("expected miss")
	}
}
