package engine

// MCP tool input/output types.

type DiscoverPartnersInput struct {
	Competitor   string `json:"competitor" jsonschema:"Competitor ID to hunt partners for (see competitor_list)"`
	Template     string `json:"template,omitempty" jsonschema:"Query template: partnership, referral, rebate, review, promotion (default: partnership)"`
	GuardPreset  string `json:"guard_preset,omitempty" jsonschema:"Quota guard preset: relaxed, standard, strict, ultra-strict (default from config)"`
	BudgetPreset string `json:"budget_preset,omitempty" jsonschema:"Run budget preset: ultra-saving, test, standard, full (default from config)"`
	ForceRefresh bool   `json:"force_refresh,omitempty" jsonschema:"Skip the search cache and hit the API"`
	UseRSS       bool   `json:"use_rss,omitempty" jsonschema:"Pull uploads via RSS for channels with no videos in the search window (zero quota)"`
	Snapshot     bool   `json:"snapshot,omitempty" jsonschema:"Save the run result as an offline snapshot"`
}

type BuildSearchQueryInput struct {
	Competitor string `json:"competitor" jsonschema:"Competitor ID"`
	Template   string `json:"template,omitempty" jsonschema:"Query template: partnership, referral, rebate, review, promotion (default: partnership)"`
	Explore    bool   `json:"explore,omitempty" jsonschema:"Return the full explore set (up to 4 variants) instead of one query"`
}

type BuildSearchQueryOutput struct {
	Competitor string   `json:"competitor"`
	Template   string   `json:"template"`
	Queries    []string `json:"queries"`
}

type EstimateQuotaInput struct {
	Queries       int    `json:"queries" jsonschema:"Number of search queries planned"`
	PagesPerQuery int    `json:"pages_per_query,omitempty" jsonschema:"Pages per query (default 1)"`
	GuardPreset   string `json:"guard_preset,omitempty" jsonschema:"Quota guard preset: relaxed, standard, strict, ultra-strict (default from config)"`
}

type EstimateQuotaOutput struct {
	Guard    Guard             `json:"guard"`
	Estimate QuotaEstimate     `json:"estimate"`
	Decision DowngradeDecision `json:"decision"`
	Report   string            `json:"report"`
}

type QuotaReportInput struct {
	GuardPreset string `json:"guard_preset,omitempty" jsonschema:"Preset to report on (default from config)"`
}

type QuotaReportOutput struct {
	Guard          Guard   `json:"guard"`
	QuotaExhausted bool    `json:"quota_exhausted"`
	Metrics        Metrics `json:"metrics"`
	Report         string  `json:"report"`
}

type CompetitorListInput struct{}

type CompetitorListOutput struct {
	Competitors []Competitor `json:"competitors"`
	Templates   []string     `json:"templates"`
}

type CacheStatsInput struct{}

type CacheStatsOutput struct {
	Namespaces map[string]NamespaceStats `json:"namespaces"`
	Metrics    Metrics                   `json:"metrics"`
}

type CacheClearInput struct {
	Namespace string `json:"namespace,omitempty" jsonschema:"Namespace to clear: search, channel, video, tool, all (default: search)"`
}

type CacheClearOutput struct {
	Namespace string `json:"namespace"`
	Removed   int    `json:"removed"`
}

type OfflineSnapshotInput struct {
	Action string `json:"action" jsonschema:"Snapshot action: list, load, hydrate"`
	Path   string `json:"path,omitempty" jsonschema:"Snapshot JSON path (for load and hydrate)"`
}

type OfflineSnapshotOutput struct {
	Snapshots []string `json:"snapshots,omitempty"`
	Result    any      `json:"result,omitempty"`
	Hydrated  int      `json:"hydrated,omitempty"`
}

type QuotaResetInput struct{}

type QuotaResetOutput struct {
	WasExhausted bool `json:"was_exhausted"`
}
