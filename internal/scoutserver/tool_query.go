package scoutserver

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_scout/internal/engine"
	"github.com/anatolykoptev/go_scout/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerBuildSearchQuery(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "build_search_query",
		Description: "Build the YouTube search query for a competitor and template without running it: brand OR-anchor, industry anchor, commercial terms, and any exclusion block. With explore=true returns the full variant set a discovery run would use.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.BuildSearchQueryInput) (*mcp.CallToolResult, engine.BuildSearchQueryOutput, error) {
		if input.Competitor == "" {
			return nil, engine.BuildSearchQueryOutput{}, fmt.Errorf("competitor is required")
		}
		reg, err := engine.Competitors()
		if err != nil {
			return nil, engine.BuildSearchQueryOutput{}, err
		}
		comp, err := reg.Get(input.Competitor)
		if err != nil {
			return nil, engine.BuildSearchQueryOutput{}, err
		}
		template := toolutil.NormTemplate(input.Template)

		cacheKey := toolutil.ToolCacheKey("build_search_query", comp.ID, template, fmt.Sprintf("explore_%t", input.Explore))
		if out, ok := engine.CacheLoadJSON[engine.BuildSearchQueryOutput](ctx, cacheKey); ok {
			return nil, out, nil
		}

		out := engine.BuildSearchQueryOutput{
			Competitor: comp.ID,
			Template:   template,
		}
		if input.Explore {
			out.Queries = engine.BuildExploreQueries(comp, template)
		} else {
			out.Queries = []string{engine.BuildQuery(comp, template)}
		}
		engine.CacheStoreJSON(ctx, cacheKey, out)
		return nil, out, nil
	})
}
