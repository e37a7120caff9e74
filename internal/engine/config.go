package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	YouTubeAPIKey         string
	YouTubeAPIKeyFallback string

	CompetitorsPath string // path to competitors.yaml

	CacheDir       string // directory for the embedded cache store
	RedisURL       string // optional remote cache tier; empty = disabled
	SearchCacheTTL time.Duration
	DetailCacheTTL time.Duration

	GuardPreset  string // relaxed | standard | strict | ultra-strict
	BudgetPreset string // ultra-saving | test | standard | full

	MaxSearchConcurrency int     // simultaneous in-flight search calls
	SearchRatePerSec     float64 // search call pacing
	QuotaCooldown        time.Duration

	OfflineDir string // offline snapshot directory

	HTTPClient *http.Client
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (discover, sources).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.SearchCacheTTL <= 0 {
		c.SearchCacheTTL = 24 * time.Hour
	}
	if c.DetailCacheTTL <= 0 {
		c.DetailCacheTTL = 7 * 24 * time.Hour
	}
	if c.MaxSearchConcurrency <= 0 {
		c.MaxSearchConcurrency = 2
	}
	if c.SearchRatePerSec <= 0 {
		c.SearchRatePerSec = 1
	}
	if c.QuotaCooldown <= 0 {
		c.QuotaCooldown = 12 * time.Hour
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	cfg = c
	Cfg = &cfg
}
