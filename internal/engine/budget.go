package engine

import (
	"fmt"
	"strings"
	"sync"
)

// BudgetPreset bounds how much work a discovery run performs, independent
// of the quota guard: the guard caps API units, the budget caps volume
// (queries, detail lookups, reported finalists).
type BudgetPreset struct {
	Name          string `json:"name"`
	MaxQueries    int    `json:"max_queries"`
	PagesPerQuery int    `json:"pages_per_query"`
	MaxVideos     int    `json:"max_videos"`
	MaxChannels   int    `json:"max_channels"`
	MaxFinalists  int    `json:"max_finalists"`
}

var budgetPresets = map[string]BudgetPreset{
	"ultra-saving": {Name: "ultra-saving", MaxQueries: 1, PagesPerQuery: 1, MaxVideos: 10, MaxChannels: 10, MaxFinalists: 3},
	"test":         {Name: "test", MaxQueries: 2, PagesPerQuery: 1, MaxVideos: 20, MaxChannels: 20, MaxFinalists: 5},
	"standard":     {Name: "standard", MaxQueries: 3, PagesPerQuery: 1, MaxVideos: 50, MaxChannels: 50, MaxFinalists: 10},
	"full":         {Name: "full", MaxQueries: 5, PagesPerQuery: 2, MaxVideos: 100, MaxChannels: 80, MaxFinalists: 15},
}

// Budget resolves a preset by name, defaulting to standard.
func Budget(name string) BudgetPreset {
	if b, ok := budgetPresets[strings.ToLower(strings.TrimSpace(name))]; ok {
		return b
	}
	return budgetPresets["standard"]
}

// BudgetPresetNames lists the known budget presets.
func BudgetPresetNames() []string {
	return []string{"ultra-saving", "test", "standard", "full"}
}

// UsageStats is a snapshot of one run's recorded API activity.
type UsageStats struct {
	SearchCalls   int `json:"search_calls"`
	CachedSearch  int `json:"cached_searches"`
	VideosCalls   int `json:"videos_calls"`
	ChannelsCalls int `json:"channels_calls"`
	UnitsSpent    int `json:"units_spent"`
}

// BudgetManager records actual API usage during a run and answers whether
// the next call still fits the preset. Safe for concurrent use.
type BudgetManager struct {
	mu     sync.Mutex
	preset BudgetPreset
	usage  UsageStats
}

// NewBudgetManager builds a manager for the named preset.
func NewBudgetManager(name string) *BudgetManager {
	return &BudgetManager{preset: Budget(name)}
}

// Preset returns the active preset.
func (m *BudgetManager) Preset() BudgetPreset {
	return m.preset
}

// RecordSearchCall notes one search. Cached hits count separately and cost
// nothing.
func (m *BudgetManager) RecordSearchCall(cached bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cached {
		m.usage.CachedSearch++
		return
	}
	m.usage.SearchCalls++
	m.usage.UnitsSpent += 100
}

// RecordVideosCall notes one videos.list batch.
func (m *BudgetManager) RecordVideosCall() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage.VideosCalls++
	m.usage.UnitsSpent++
}

// RecordChannelsCall notes one channels.list batch.
func (m *BudgetManager) RecordChannelsCall() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage.ChannelsCalls++
	m.usage.UnitsSpent++
}

// Usage returns a snapshot of recorded activity.
func (m *BudgetManager) Usage() UsageStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usage
}

// SearchAllowed reports whether another uncached search fits the preset.
func (m *BudgetManager) SearchAllowed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usage.SearchCalls < m.preset.MaxQueries*m.preset.PagesPerQuery
}

// EstimateFullRunCost projects the worst-case unit cost of running the
// preset to completion with no cache hits.
func (m *BudgetManager) EstimateFullRunCost() int {
	p := m.preset
	searchUnits := p.MaxQueries * p.PagesPerQuery * 100
	videoUnits := ceilDiv(p.MaxVideos, 50)
	channelUnits := ceilDiv(p.MaxChannels, 50)
	return searchUnits + videoUnits + channelUnits
}

// Report renders usage against the preset as a short text block.
func (m *BudgetManager) Report() string {
	m.mu.Lock()
	u := m.usage
	p := m.preset
	m.mu.Unlock()
	var b strings.Builder
	fmt.Fprintf(&b, "budget: %s (max %d queries x %d pages, %d videos, %d channels, top %d)\n",
		p.Name, p.MaxQueries, p.PagesPerQuery, p.MaxVideos, p.MaxChannels, p.MaxFinalists)
	fmt.Fprintf(&b, "used: %d searches (%d cached), %d video batches, %d channel batches\n",
		u.SearchCalls, u.CachedSearch, u.VideosCalls, u.ChannelsCalls)
	fmt.Fprintf(&b, "units spent: %d (full run worst case %d)\n", u.UnitsSpent, m.EstimateFullRunCost())
	return b.String()
}
