// Package toolutil provides shared helper functions for go_scout MCP tools.
package toolutil

import (
	"strings"

	"github.com/anatolykoptev/go_scout/internal/engine"
)

// NormTemplate normalises a template field: empty string falls back to
// partnership, unknown IDs pass through (the query builder treats them as
// promotion).
func NormTemplate(template string) string {
	t := strings.ToLower(strings.TrimSpace(template))
	if t == "" {
		return engine.TemplatePartnership
	}
	return t
}

// ToolCacheKey builds a tool-namespace cache key from name and args.
func ToolCacheKey(name string, args ...string) string {
	return engine.QueryCacheKey("tool_"+name, strings.Join(args, "|"))
}
