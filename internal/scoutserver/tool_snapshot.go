package scoutserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_scout/internal/engine"
	"github.com/anatolykoptev/go_scout/internal/engine/discover"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerOfflineSnapshot(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "offline_snapshot",
		Description: "Work with saved run snapshots: list the available files, load one back, or hydrate the detail cache from one so its channels can be re-scored without API calls.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.OfflineSnapshotInput) (*mcp.CallToolResult, engine.OfflineSnapshotOutput, error) {
		switch strings.ToLower(strings.TrimSpace(input.Action)) {
		case "list":
			files, err := discover.ListSnapshots()
			if err != nil {
				return nil, engine.OfflineSnapshotOutput{}, err
			}
			return nil, engine.OfflineSnapshotOutput{Snapshots: files}, nil

		case "load":
			if input.Path == "" {
				return nil, engine.OfflineSnapshotOutput{}, fmt.Errorf("path is required for load")
			}
			snap, err := discover.LoadSnapshot(input.Path)
			if err != nil {
				return nil, engine.OfflineSnapshotOutput{}, err
			}
			return nil, engine.OfflineSnapshotOutput{Result: snap}, nil

		case "hydrate":
			if input.Path == "" {
				return nil, engine.OfflineSnapshotOutput{}, fmt.Errorf("path is required for hydrate")
			}
			snap, err := discover.LoadSnapshot(input.Path)
			if err != nil {
				return nil, engine.OfflineSnapshotOutput{}, err
			}
			store, err := engine.CacheStore()
			if err != nil {
				return nil, engine.OfflineSnapshotOutput{}, err
			}
			n := discover.HydrateCache(ctx, store, snap)
			return nil, engine.OfflineSnapshotOutput{Hydrated: n}, nil

		default:
			return nil, engine.OfflineSnapshotOutput{}, fmt.Errorf("unknown action %q (list, load, hydrate)", input.Action)
		}
	})
}
