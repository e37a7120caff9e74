// Package scoutserver registers the partner-discovery MCP tools.
package scoutserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterTools registers all discovery tools on the given MCP server:
// discover_partners, build_search_query, estimate_quota, quota_report,
// quota_reset, competitor_list, cache_stats, cache_clear,
// offline_snapshot.
func RegisterTools(server *mcp.Server) {
	registerDiscoverPartners(server)
	registerBuildSearchQuery(server)
	registerEstimateQuota(server)
	registerQuotaReport(server)
	registerQuotaReset(server)
	registerCompetitorList(server)
	registerCacheStats(server)
	registerCacheClear(server)
	registerOfflineSnapshot(server)
}
