package engine

import (
	"sync"
	"testing"
)

func TestBudgetPresets(t *testing.T) {
	cases := []struct {
		name      string
		queries   int
		pages     int
		videos    int
		channels  int
		finalists int
	}{
		{"ultra-saving", 1, 1, 10, 10, 3},
		{"test", 2, 1, 20, 20, 5},
		{"standard", 3, 1, 50, 50, 10},
		{"full", 5, 2, 100, 80, 15},
	}
	for _, c := range cases {
		b := Budget(c.name)
		if b.MaxQueries != c.queries || b.PagesPerQuery != c.pages ||
			b.MaxVideos != c.videos || b.MaxChannels != c.channels || b.MaxFinalists != c.finalists {
			t.Errorf("%s: unexpected preset %+v", c.name, b)
		}
	}

	if b := Budget("unknown"); b.Name != "standard" {
		t.Errorf("expected standard fallback, got %+v", b)
	}
}

func TestBudgetManager(t *testing.T) {
	t.Run("records and costs", func(t *testing.T) {
		m := NewBudgetManager("standard")
		m.RecordSearchCall(false)
		m.RecordSearchCall(true)
		m.RecordVideosCall()
		m.RecordChannelsCall()

		u := m.Usage()
		if u.SearchCalls != 1 || u.CachedSearch != 1 {
			t.Errorf("unexpected search usage: %+v", u)
		}
		if u.UnitsSpent != 102 {
			t.Errorf("expected 102 units, got %d", u.UnitsSpent)
		}
	})

	t.Run("cached searches are free", func(t *testing.T) {
		m := NewBudgetManager("ultra-saving")
		for i := 0; i < 10; i++ {
			m.RecordSearchCall(true)
		}
		if m.Usage().UnitsSpent != 0 {
			t.Errorf("cached searches should cost nothing, got %d", m.Usage().UnitsSpent)
		}
		if !m.SearchAllowed() {
			t.Error("cached searches should not consume the allowance")
		}
	})

	t.Run("search allowance", func(t *testing.T) {
		m := NewBudgetManager("ultra-saving") // 1 query x 1 page
		if !m.SearchAllowed() {
			t.Fatal("fresh manager should allow a search")
		}
		m.RecordSearchCall(false)
		if m.SearchAllowed() {
			t.Error("allowance exhausted after one search")
		}
	})

	t.Run("full run cost", func(t *testing.T) {
		m := NewBudgetManager("standard")
		// 3*1*100 + ceil(50/50) + ceil(50/50)
		if got := m.EstimateFullRunCost(); got != 302 {
			t.Errorf("expected 302, got %d", got)
		}
	})

	t.Run("concurrent recording", func(t *testing.T) {
		m := NewBudgetManager("full")
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				m.RecordSearchCall(false)
				m.RecordVideosCall()
			}()
		}
		wg.Wait()
		u := m.Usage()
		if u.SearchCalls != 50 || u.VideosCalls != 50 {
			t.Errorf("lost updates: %+v", u)
		}
	})

	t.Run("report mentions preset", func(t *testing.T) {
		m := NewBudgetManager("test")
		if out := m.Report(); out == "" {
			t.Error("expected report text")
		}
	})
}
