// go_scout — YouTube partner discovery MCP server.
//
// Finds channels likely running paid partnerships with competitor crypto
// derivatives exchanges: templated search, evidence scoring, ranked
// shortlists. Runs as HTTP MCP server or stdio transport.
package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_scout/internal/engine"
	"github.com/anatolykoptev/go_scout/internal/scoutserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	initEngine()

	slog.Info("starting go_scout",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_scout",
		Version: version,
	}, nil)

	scoutserver.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", 9))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_scout",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		YouTubeAPIKey:         env.Str("YOUTUBE_API_KEY", ""),
		YouTubeAPIKeyFallback: env.Str("YOUTUBE_API_KEY_FALLBACK", ""),
		CompetitorsPath:       env.Str("COMPETITORS_PATH", "config/competitors.yaml"),
		CacheDir:              env.Str("CACHE_DIR", ""),
		OfflineDir:            env.Str("OFFLINE_DIR", ""),
		RedisURL:              env.Str("REDIS_URL", ""),
		SearchCacheTTL:        env.Duration("SEARCH_CACHE_TTL", 24*time.Hour),
		DetailCacheTTL:        env.Duration("DETAIL_CACHE_TTL", 7*24*time.Hour),
		GuardPreset:           env.Str("QUOTA_GUARD_PRESET", "standard"),
		BudgetPreset:          env.Str("BUDGET_PRESET", "standard"),
		MaxSearchConcurrency:  env.Int("MAX_SEARCH_CONCURRENCY", 2),
		SearchRatePerSec:      env.Float("SEARCH_RATE_PER_SEC", 1.0),
		QuotaCooldown:         env.Duration("QUOTA_COOLDOWN", 12*time.Hour),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
	engine.Init(c)

	if _, err := engine.InitStore(); err != nil {
		slog.Error("cache store init failed", slog.Any("error", err))
	}
	if _, err := engine.Competitors(); err != nil {
		slog.Warn("competitor registry load failed", slog.Any("error", err))
	}
	if c.YouTubeAPIKey == "" {
		slog.Warn("no YouTube API key configured, discovery runs will fail until one is set")
	}
}
