package engine

import (
	"fmt"
	"strings"
)

// Guard caps how much API quota a single run may spend. Presets trade
// discovery breadth against daily quota headroom; search.list costs 100
// units per call, so search dominates every estimate.
type Guard struct {
	Preset            string `json:"preset"`
	MaxSearchUnits    int    `json:"max_search_units"`
	AutoDowngrade     bool   `json:"auto_downgrade"`
	MinQueries        int    `json:"min_queries"`
	MaxPagesPerQuery  int    `json:"max_pages_per_query"`
	MaxResultsPerPage int    `json:"max_results_per_page"`
	AllowPagination   bool   `json:"allow_pagination"`
}

var guardPresets = map[string]Guard{
	"relaxed":      {Preset: "relaxed", MaxSearchUnits: 500, AutoDowngrade: true, MinQueries: 3, MaxPagesPerQuery: 3, MaxResultsPerPage: 25, AllowPagination: true},
	"standard":     {Preset: "standard", MaxSearchUnits: 300, AutoDowngrade: true, MinQueries: 2, MaxPagesPerQuery: 2, MaxResultsPerPage: 20},
	"strict":       {Preset: "strict", MaxSearchUnits: 200, AutoDowngrade: true, MinQueries: 2, MaxPagesPerQuery: 2, MaxResultsPerPage: 15},
	"ultra-strict": {Preset: "ultra-strict", MaxSearchUnits: 100, AutoDowngrade: true, MinQueries: 1, MaxPagesPerQuery: 1, MaxResultsPerPage: 10},
}

// GuardPreset resolves a preset by name. Unknown names fall back to
// standard.
func GuardPreset(name string) Guard {
	if g, ok := guardPresets[strings.ToLower(strings.TrimSpace(name))]; ok {
		return g
	}
	return guardPresets["standard"]
}

// GuardPresetNames lists the known presets.
func GuardPresetNames() []string {
	return []string{"relaxed", "standard", "strict", "ultra-strict"}
}

// QuotaEstimate is a pre-flight cost projection for a planned run.
type QuotaEstimate struct {
	Queries       int  `json:"queries"`
	PagesPerQuery int  `json:"pages_per_query"`
	SearchCalls   int  `json:"search_calls"`
	SearchUnits   int  `json:"search_units"`
	VideosUnits   int  `json:"videos_units"`
	ChannelsUnits int  `json:"channels_units"`
	TotalUnits    int  `json:"total_units"`
	ExceedsBudget bool `json:"exceeds_budget"`
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// Estimate projects the quota cost of queries×pages search calls under g.
// Detail calls batch 50 IDs per unit; channel lookups assume roughly half
// as many distinct channels as videos. Only search units count against the
// guard budget because detail calls are two orders of magnitude cheaper.
func Estimate(queries, pagesPerQuery int, g Guard) QuotaEstimate {
	if queries < 0 {
		queries = 0
	}
	if pagesPerQuery < 1 {
		pagesPerQuery = 1
	}
	if pagesPerQuery > g.MaxPagesPerQuery {
		pagesPerQuery = g.MaxPagesPerQuery
	}
	calls := queries * pagesPerQuery
	est := QuotaEstimate{
		Queries:       queries,
		PagesPerQuery: pagesPerQuery,
		SearchCalls:   calls,
		SearchUnits:   calls * 100,
	}
	if calls > 0 {
		est.VideosUnits = ceilDiv(calls*g.MaxResultsPerPage, 50)
		est.ChannelsUnits = ceilDiv(calls*g.MaxResultsPerPage/2, 50)
	}
	est.TotalUnits = est.SearchUnits + est.VideosUnits + est.ChannelsUnits
	est.ExceedsBudget = est.SearchUnits > g.MaxSearchUnits
	return est
}

// DowngradeDecision is the outcome of CheckAndDowngrade: either the plan
// fits, or a reduced plan that fits, or a refusal when even the downgraded
// plan blows the budget or downgrading is disabled.
type DowngradeDecision struct {
	CanProceed     bool          `json:"can_proceed"`
	Original       QuotaEstimate `json:"original"`
	Adjusted       QuotaEstimate `json:"adjusted"`
	Queries        int           `json:"queries"`
	PagesPerQuery  int           `json:"pages_per_query"`
	Actions        []string      `json:"actions,omitempty"`
	Recommendation string        `json:"recommendation"`
}

// CheckAndDowngrade shrinks an over-budget plan in fixed order: trim the
// query list to the preset's per-competitor minimum, then disable
// pagination unless the preset allows it. The per-page result ceiling is
// always in force through MaxResultsPerPage, so it needs no separate step.
// A plan still over budget after both steps is refused, as is any
// over-budget plan when the preset disables downgrading.
func CheckAndDowngrade(queries, pagesPerQuery int, g Guard) DowngradeDecision {
	original := Estimate(queries, pagesPerQuery, g)
	d := DowngradeDecision{
		Original:      original,
		Adjusted:      original,
		Queries:       original.Queries,
		PagesPerQuery: original.PagesPerQuery,
	}
	if !original.ExceedsBudget {
		d.CanProceed = true
		d.Recommendation = "plan fits the quota budget"
		return d
	}
	if !g.AutoDowngrade {
		d.Recommendation = blockedAdvice(original.SearchUnits, g)
		return d
	}

	q := original.Queries
	pages := original.PagesPerQuery
	if q > g.MinQueries {
		d.Actions = append(d.Actions, fmt.Sprintf("reduced queries %d -> %d", q, g.MinQueries))
		q = g.MinQueries
	}
	if pages > 1 && !g.AllowPagination {
		d.Actions = append(d.Actions, fmt.Sprintf("disabled pagination %d -> 1", pages))
		pages = 1
	}

	adjusted := Estimate(q, pages, g)
	d.Adjusted = adjusted
	d.Queries = adjusted.Queries
	d.PagesPerQuery = adjusted.PagesPerQuery
	if adjusted.ExceedsBudget {
		d.Recommendation = blockedAdvice(adjusted.SearchUnits, g)
		return d
	}
	d.CanProceed = true
	d.Recommendation = fmt.Sprintf("downgraded from %d queries x %d pages to %d x %d to fit %d search units",
		original.Queries, original.PagesPerQuery, adjusted.Queries, adjusted.PagesPerQuery, g.MaxSearchUnits)
	return d
}

func blockedAdvice(units int, g Guard) string {
	return fmt.Sprintf("estimated %d search units exceeds the %d unit budget; "+
		"replay cached or offline snapshot data, wait for the quota reset at midnight UTC, "+
		"switch API keys, or use a stricter guard preset", units, g.MaxSearchUnits)
}

// ApplyDowngrade trims a query list to the decision's query count.
func ApplyDowngrade(queries []string, d DowngradeDecision) []string {
	if d.Queries >= len(queries) {
		return queries
	}
	return queries[:d.Queries]
}

// Report renders a guard and estimate as a short text block for tool
// output.
func (g Guard) Report(est QuotaEstimate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "preset: %s (max %d search units, %d pages/query, %d results/page, min %d queries)\n",
		g.Preset, g.MaxSearchUnits, g.MaxPagesPerQuery, g.MaxResultsPerPage, g.MinQueries)
	fmt.Fprintf(&b, "planned: %d queries x %d pages = %d search calls\n", est.Queries, est.PagesPerQuery, est.SearchCalls)
	fmt.Fprintf(&b, "cost: search %d + videos %d + channels %d = %d units\n",
		est.SearchUnits, est.VideosUnits, est.ChannelsUnits, est.TotalUnits)
	if est.ExceedsBudget {
		b.WriteString("over budget: yes\n")
	} else {
		b.WriteString("over budget: no\n")
	}
	return b.String()
}
