package engine

import (
	"strings"
	"testing"
)

func TestGuardPreset(t *testing.T) {
	t.Run("known presets", func(t *testing.T) {
		g := GuardPreset("relaxed")
		if g.MaxSearchUnits != 500 || g.MaxPagesPerQuery != 3 || g.MaxResultsPerPage != 25 || !g.AllowPagination {
			t.Errorf("unexpected relaxed preset: %+v", g)
		}
		if g.MinQueries != 3 || !g.AutoDowngrade {
			t.Errorf("unexpected relaxed downgrade params: %+v", g)
		}
		g = GuardPreset("ultra-strict")
		if g.MaxSearchUnits != 100 || g.MaxPagesPerQuery != 1 || g.MaxResultsPerPage != 10 || g.AllowPagination {
			t.Errorf("unexpected ultra-strict preset: %+v", g)
		}
		if g.MinQueries != 1 {
			t.Errorf("unexpected ultra-strict query floor: %+v", g)
		}
	})

	t.Run("unknown falls back to standard", func(t *testing.T) {
		g := GuardPreset("bogus")
		if g.Preset != "standard" || g.MaxSearchUnits != 300 || g.MinQueries != 2 {
			t.Errorf("expected standard fallback, got %+v", g)
		}
	})

	t.Run("name normalization", func(t *testing.T) {
		if g := GuardPreset("  STRICT "); g.Preset != "strict" {
			t.Errorf("expected strict, got %+v", g)
		}
	})
}

func TestEstimate(t *testing.T) {
	t.Run("search dominates", func(t *testing.T) {
		g := GuardPreset("standard") // 300 units, 20 results/page
		est := Estimate(3, 1, g)
		if est.SearchCalls != 3 || est.SearchUnits != 300 {
			t.Errorf("unexpected search cost: %+v", est)
		}
		// ceil(3*20/50) = 2, ceil(3*20*0.5/50) = 1
		if est.VideosUnits != 2 || est.ChannelsUnits != 1 {
			t.Errorf("unexpected detail cost: %+v", est)
		}
		if est.TotalUnits != 303 {
			t.Errorf("expected total 303, got %d", est.TotalUnits)
		}
		if est.ExceedsBudget {
			t.Error("300 search units fit a 300-unit budget")
		}
	})

	t.Run("detail units do not trip the budget", func(t *testing.T) {
		// Search units alone are compared against the budget; the 303
		// total above stays within a 300 budget.
		est := Estimate(4, 1, GuardPreset("standard"))
		if !est.ExceedsBudget {
			t.Error("400 search units should exceed a 300-unit budget")
		}
	})

	t.Run("pages clamped to preset", func(t *testing.T) {
		est := Estimate(2, 10, GuardPreset("standard")) // max 2 pages
		if est.PagesPerQuery != 2 || est.SearchCalls != 4 {
			t.Errorf("expected clamp to 2 pages, got %+v", est)
		}
	})

	t.Run("zero queries", func(t *testing.T) {
		est := Estimate(0, 1, GuardPreset("standard"))
		if est.TotalUnits != 0 || est.ExceedsBudget {
			t.Errorf("expected free empty plan, got %+v", est)
		}
	})
}

func TestCheckAndDowngrade(t *testing.T) {
	t.Run("fitting plan passes through", func(t *testing.T) {
		d := CheckAndDowngrade(2, 1, GuardPreset("standard"))
		if !d.CanProceed || d.Queries != 2 || d.PagesPerQuery != 1 {
			t.Errorf("expected untouched plan, got %+v", d)
		}
		if len(d.Actions) != 0 {
			t.Errorf("fitting plan should record no actions, got %v", d.Actions)
		}
	})

	t.Run("trims queries to the preset floor", func(t *testing.T) {
		d := CheckAndDowngrade(5, 1, GuardPreset("standard")) // 500 > 300, floor 2
		if !d.CanProceed {
			t.Fatal("expected downgraded plan to proceed")
		}
		if d.Queries != 2 || d.PagesPerQuery != 1 {
			t.Errorf("expected 2x1, got %dx%d", d.Queries, d.PagesPerQuery)
		}
		if d.Adjusted.ExceedsBudget {
			t.Error("adjusted plan must fit")
		}
		if len(d.Actions) == 0 || !strings.Contains(d.Actions[0], "reduced queries 5 -> 2") {
			t.Errorf("expected query trim action, got %v", d.Actions)
		}
	})

	t.Run("disables pagination after the query floor", func(t *testing.T) {
		g := Guard{Preset: "custom", MaxSearchUnits: 200, AutoDowngrade: true, MinQueries: 2,
			MaxPagesPerQuery: 3, MaxResultsPerPage: 25}
		d := CheckAndDowngrade(3, 3, g) // 900 units; 2x3 still over, 2x1 fits
		if !d.CanProceed {
			t.Fatal("expected downgraded plan to proceed")
		}
		if d.Queries != 2 || d.PagesPerQuery != 1 {
			t.Errorf("expected 2x1, got %dx%d", d.Queries, d.PagesPerQuery)
		}
		if len(d.Actions) != 2 {
			t.Errorf("expected trim and pagination actions, got %v", d.Actions)
		}
	})

	t.Run("pagination survives when the preset allows it", func(t *testing.T) {
		// Relaxed keeps pagination, so a deep plan can only shed queries
		// and blocks when depth alone exceeds the budget.
		d := CheckAndDowngrade(4, 3, GuardPreset("relaxed")) // floor 3, 3x3 = 900 > 500
		if d.CanProceed {
			t.Errorf("expected refusal, got %+v", d)
		}
		if d.PagesPerQuery != 3 {
			t.Errorf("pagination should be untouched under relaxed, got %d pages", d.PagesPerQuery)
		}
	})

	t.Run("blocked when downgrading is disabled", func(t *testing.T) {
		g := Guard{Preset: "custom", MaxSearchUnits: 100, AutoDowngrade: false, MinQueries: 1,
			MaxPagesPerQuery: 2, MaxResultsPerPage: 10}
		d := CheckAndDowngrade(5, 1, g)
		if d.CanProceed {
			t.Fatalf("expected refusal, got %+v", d)
		}
		if d.Queries != 5 || d.PagesPerQuery != 1 {
			t.Errorf("refused plan should be unmodified, got %dx%d", d.Queries, d.PagesPerQuery)
		}
		for _, want := range []string{"offline", "midnight UTC", "stricter"} {
			if !strings.Contains(d.Recommendation, want) {
				t.Errorf("recommendation missing %q: %s", want, d.Recommendation)
			}
		}
	})

	t.Run("blocked when the floor still exceeds the budget", func(t *testing.T) {
		g := Guard{Preset: "custom", MaxSearchUnits: 100, AutoDowngrade: true, MinQueries: 2,
			MaxPagesPerQuery: 1, MaxResultsPerPage: 10}
		d := CheckAndDowngrade(5, 1, g) // floor 2x1 = 200 > 100
		if d.CanProceed {
			t.Errorf("expected refusal, got %+v", d)
		}
		if !strings.Contains(d.Recommendation, "offline") {
			t.Errorf("expected offline replay advice, got %s", d.Recommendation)
		}
	})

	t.Run("recommendation explains the change", func(t *testing.T) {
		d := CheckAndDowngrade(5, 1, GuardPreset("standard"))
		if !strings.Contains(d.Recommendation, "downgraded") {
			t.Errorf("expected downgrade summary, got %q", d.Recommendation)
		}
	})
}

func TestApplyDowngrade(t *testing.T) {
	queries := []string{"a", "b", "c", "d", "e"}
	d := CheckAndDowngrade(5, 1, GuardPreset("standard"))
	got := ApplyDowngrade(queries, d)
	if len(got) != 2 {
		t.Errorf("expected 2 queries, got %d", len(got))
	}
	if got[0] != "a" || got[1] != "b" {
		t.Errorf("expected prefix kept, got %v", got)
	}

	fits := CheckAndDowngrade(2, 1, GuardPreset("standard"))
	if got := ApplyDowngrade(queries[:2], fits); len(got) != 2 {
		t.Errorf("fitting plan should keep all queries, got %d", len(got))
	}
}

func TestGuardReport(t *testing.T) {
	g := GuardPreset("strict")
	out := g.Report(Estimate(2, 1, g))
	if out == "" {
		t.Fatal("expected report text")
	}
	for _, want := range []string{"strict", "200", "2 queries", "min 2 queries"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}
