package scoutserver

import (
	"context"

	"github.com/anatolykoptev/go_scout/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerCompetitorList(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "competitor_list",
		Description: "List the configured competitor exchanges (IDs, brand names, query and exclusion terms) and the available query templates.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.CompetitorListInput) (*mcp.CallToolResult, engine.CompetitorListOutput, error) {
		reg, err := engine.Competitors()
		if err != nil {
			return nil, engine.CompetitorListOutput{}, err
		}
		return nil, engine.CompetitorListOutput{
			Competitors: reg.All(),
			Templates:   engine.TemplateIDs(),
		}, nil
	})
}
