package scoutserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_scout/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerCacheStats(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "cache_stats",
		Description: "Per-namespace cache entry counts (search, channel, video, tool) plus process hit/miss counters.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.CacheStatsInput) (*mcp.CallToolResult, engine.CacheStatsOutput, error) {
		store, err := engine.CacheStore()
		if err != nil {
			return nil, engine.CacheStatsOutput{}, err
		}
		return nil, engine.CacheStatsOutput{
			Namespaces: store.Stats(ctx),
			Metrics:    engine.GetMetrics(),
		}, nil
	})
}

func registerCacheClear(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "cache_clear",
		Description: "Clear one cache namespace (search, channel, video, tool) or all of them. Search entries go stale fastest; channel and video details usually survive a week.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.CacheClearInput) (*mcp.CallToolResult, engine.CacheClearOutput, error) {
		store, err := engine.CacheStore()
		if err != nil {
			return nil, engine.CacheClearOutput{}, err
		}
		ns := strings.ToLower(strings.TrimSpace(input.Namespace))
		if ns == "" {
			ns = "search"
		}
		var removed int
		switch ns {
		case "search", "channel", "video", "tool":
			removed = store.ClearNamespace(ctx, ns+":")
		case "all":
			for _, p := range []string{"search:", "channel:", "video:", "tool:"} {
				removed += store.ClearNamespace(ctx, p)
			}
		default:
			return nil, engine.CacheClearOutput{}, fmt.Errorf("unknown namespace %q (search, channel, video, tool, all)", input.Namespace)
		}
		return nil, engine.CacheClearOutput{Namespace: ns, Removed: removed}, nil
	})
}
