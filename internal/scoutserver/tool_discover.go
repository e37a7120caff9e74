package scoutserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_scout/internal/engine"
	"github.com/anatolykoptev/go_scout/internal/engine/discover"
	"github.com/anatolykoptev/go_scout/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerDiscoverPartners(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "discover_partners",
		Description: "Find YouTube channels likely running paid partnerships with a competitor exchange. Searches with templated queries, scores channels on derivatives vocabulary and commercial intent, and returns a ranked shortlist with per-channel evidence. Respects the quota guard; an over-budget plan is downgraded or refused, never silently executed.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.DiscoverPartnersInput) (*mcp.CallToolResult, discover.Result, error) {
		if input.Competitor == "" {
			return nil, discover.Result{}, fmt.Errorf("competitor is required")
		}
		template := toolutil.NormTemplate(input.Template)

		res, err := discover.Run(ctx, discover.Request{
			CompetitorID: input.Competitor,
			TemplateID:   template,
			GuardPreset:  input.GuardPreset,
			BudgetPreset: input.BudgetPreset,
			ForceRefresh: input.ForceRefresh,
			UseRSS:       input.UseRSS,
		})
		if err != nil {
			return nil, discover.Result{}, err
		}

		if input.Snapshot && !res.Blocked {
			if _, err := discover.SaveSnapshot(res); err != nil {
				slog.Warn("discover_partners: snapshot failed", slog.Any("error", err))
			}
		}
		return nil, *res, nil
	})
}
