package scoutserver

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_scout/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerEstimateQuota(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "estimate_quota",
		Description: "Project the API unit cost of a planned discovery run (search.list dominates at 100 units per call) and show what the quota guard would do with it: proceed, downgrade to a smaller plan, or refuse.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.EstimateQuotaInput) (*mcp.CallToolResult, engine.EstimateQuotaOutput, error) {
		if input.Queries < 1 {
			return nil, engine.EstimateQuotaOutput{}, fmt.Errorf("queries must be at least 1")
		}
		guardName := input.GuardPreset
		if guardName == "" {
			guardName = engine.Cfg.GuardPreset
		}
		guard := engine.GuardPreset(guardName)
		pages := input.PagesPerQuery
		if pages < 1 {
			pages = 1
		}
		est := engine.Estimate(input.Queries, pages, guard)
		decision := engine.CheckAndDowngrade(input.Queries, pages, guard)
		return nil, engine.EstimateQuotaOutput{
			Guard:    guard,
			Estimate: est,
			Decision: decision,
			Report:   guard.Report(est),
		}, nil
	})
}

func registerQuotaReport(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "quota_report",
		Description: "Report the active quota guard, whether the shared quota state is tripped, and the process API-call counters.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.QuotaReportInput) (*mcp.CallToolResult, engine.QuotaReportOutput, error) {
		guardName := input.GuardPreset
		if guardName == "" {
			guardName = engine.Cfg.GuardPreset
		}
		guard := engine.GuardPreset(guardName)
		exhausted := engine.SharedQuota().Exhausted()
		report := guard.Report(engine.Estimate(0, 1, guard))
		if exhausted {
			report += "quota state: exhausted\n"
		} else {
			report += "quota state: ok\n"
		}
		return nil, engine.QuotaReportOutput{
			Guard:          guard,
			QuotaExhausted: exhausted,
			Metrics:        engine.GetMetrics(),
			Report:         report,
		}, nil
	})
}

func registerQuotaReset(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "quota_reset",
		Description: "Clear the tripped quota state without waiting for the cooldown. Use after the daily quota replenishes at midnight UTC or after switching API keys.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.QuotaResetInput) (*mcp.CallToolResult, engine.QuotaResetOutput, error) {
		was := engine.SharedQuota().Exhausted()
		engine.SharedQuota().Reset()
		return nil, engine.QuotaResetOutput{WasExhausted: was}, nil
	})
}
