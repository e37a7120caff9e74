package discover

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/anatolykoptev/go_scout/internal/engine"
	"github.com/anatolykoptev/go_scout/internal/engine/sources"
)

// The discovery pipeline: expand templates into queries, run them through
// the cache and quota guard, hydrate candidate details in batches, then
// extract, score, and rank.

// Request selects what one discovery run covers. Empty preset names fall
// back to the configured defaults.
type Request struct {
	CompetitorID string
	TemplateID   string
	GuardPreset  string
	BudgetPreset string
	ForceRefresh bool
	UseRSS       bool
}

// Result is the full outcome of one run.
type Result struct {
	RunID      string                   `json:"run_id"`
	Competitor string                   `json:"competitor"`
	Template   string                   `json:"template"`
	Queries    []string                 `json:"queries"`
	Decision   engine.DowngradeDecision `json:"decision"`
	Blocked    bool                     `json:"blocked"`
	Partners   []engine.ScoringResult   `json:"partners"`
	Scanned    int                      `json:"channels_scanned"`
	Usage      engine.UsageStats        `json:"usage"`
	Elapsed    time.Duration            `json:"elapsed"`
}

// Run executes the pipeline for one competitor and template.
func Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	run := engine.NewRun()
	log := slog.With(slog.String("run", run.ID), slog.String("competitor", req.CompetitorID))

	reg, err := engine.Competitors()
	if err != nil {
		return nil, err
	}
	comp, err := reg.Get(req.CompetitorID)
	if err != nil {
		return nil, err
	}

	guardName := req.GuardPreset
	if guardName == "" {
		guardName = engine.Cfg.GuardPreset
	}
	budgetName := req.BudgetPreset
	if budgetName == "" {
		budgetName = engine.Cfg.BudgetPreset
	}
	guard := engine.GuardPreset(guardName)
	budget := engine.NewBudgetManager(budgetName)

	queries := engine.BuildExploreQueries(comp, req.TemplateID)
	if max := budget.Preset().MaxQueries; len(queries) > max {
		queries = queries[:max]
	}

	decision := engine.CheckAndDowngrade(len(queries), budget.Preset().PagesPerQuery, guard)
	res := &Result{
		RunID:      run.ID,
		Competitor: comp.ID,
		Template:   req.TemplateID,
		Decision:   decision,
	}
	if !decision.CanProceed {
		res.Blocked = true
		res.Queries = queries
		res.Elapsed = time.Since(start)
		log.Warn("run blocked by quota guard", slog.String("reason", decision.Recommendation))
		return res, nil
	}
	queries = engine.ApplyDowngrade(queries, decision)
	res.Queries = queries

	store, err := engine.InitStore()
	if err != nil {
		return nil, err
	}

	records, err := runSearches(ctx, run, store, budget, comp, queries, decision, guard, req.ForceRefresh, log)
	if err != nil && len(records) == 0 {
		return nil, err
	}
	searchErr := err

	videoIDs, channelIDs := collectIDs(records, budget.Preset())

	candidates, err := hydrate(ctx, run, store, budget, videoIDs, channelIDs, req.UseRSS, log)
	if err != nil && len(candidates) == 0 {
		if searchErr != nil {
			return nil, searchErr
		}
		return nil, err
	}

	lex := engine.DefaultLexicon()
	scored := make([]engine.ScoringResult, 0, len(candidates))
	for _, cand := range candidates {
		ev := engine.ExtractChannelEvidence(lex, cand, comp.BrandNames)
		sr := engine.Score(cand, ev, engine.DefaultThresholds)
		if !sr.Relevance.Passed {
			continue
		}
		scored = append(scored, sr)
	}
	topN := budget.Preset().MaxFinalists
	if topN <= 0 {
		topN = engine.DefaultTopN
	}
	res.Partners = engine.Rank(scored, topN)
	res.Scanned = len(candidates)
	res.Usage = budget.Usage()
	res.Elapsed = time.Since(start)
	log.Info("run complete",
		slog.Int("queries", len(queries)),
		slog.Int("scanned", res.Scanned),
		slog.Int("partners", len(res.Partners)),
		slog.Duration("elapsed", res.Elapsed))

	var qe *engine.QuotaExhaustedError
	if searchErr != nil && !errors.As(searchErr, &qe) {
		return res, searchErr
	}
	return res, nil
}

// runSearches resolves each query against the search cache, then fans the
// misses out through the limiter. A quota trip stops new calls but keeps
// whatever already landed.
func runSearches(ctx context.Context, run *engine.RunContext, store *engine.Store, budget *engine.BudgetManager,
	comp engine.Competitor, queries []string, decision engine.DowngradeDecision, guard engine.Guard,
	forceRefresh bool, log *slog.Logger) ([]engine.SearchRecord, error) {

	records := make([]engine.SearchRecord, 0, len(queries))
	var misses []string
	for _, q := range queries {
		if !forceRefresh {
			if rec, ok := store.GetSearch(ctx, comp.ID, q); ok {
				budget.RecordSearchCall(true)
				records = append(records, rec)
				continue
			}
		}
		misses = append(misses, q)
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		lastErr error
	)
	for _, q := range misses {
		if run.CheckQuota() != nil || !budget.SearchAllowed() {
			break
		}
		wg.Add(1)
		go func(query string) {
			defer wg.Done()
			rec, err := searchQuery(ctx, run, budget, comp.ID, query, decision.PagesPerQuery, guard)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				lastErr = err
				log.Debug("search failed", slog.String("query", query), slog.Any("error", err))
				return
			}
			store.SetSearch(ctx, rec)
			records = append(records, rec)
		}(q)
	}
	wg.Wait()
	return records, lastErr
}

// searchQuery runs one query across its allotted pages, recording each
// page fetch against the budget.
func searchQuery(ctx context.Context, run *engine.RunContext, budget *engine.BudgetManager,
	competitorID, query string, pages int, guard engine.Guard) (engine.SearchRecord, error) {
	rec := engine.SearchRecord{
		Query:      query,
		Competitor: competitorID,
		FetchedAt:  time.Now(),
	}
	token := ""
	for p := 0; p < pages; p++ {
		if !budget.SearchAllowed() {
			break
		}
		budget.RecordSearchCall(false)
		page, err := sources.Search(ctx, run, query, guard.MaxResultsPerPage, token)
		if err != nil {
			if len(rec.VideoIDs) > 0 {
				return rec, nil
			}
			return rec, err
		}
		rec.VideoIDs = append(rec.VideoIDs, page.VideoIDs...)
		rec.ChannelIDs = append(rec.ChannelIDs, page.ChannelIDs...)
		token = page.NextPageToken
		if token == "" || !guard.AllowPagination {
			break
		}
	}
	return rec, nil
}

// detailCalls is how many API calls a detail fetch of n IDs takes at the
// client's chunk size. Budget recording mirrors it one-for-one.
func detailCalls(n int) int {
	return (n + sources.BatchSize - 1) / sources.BatchSize
}

// collectIDs merges and dedups the ID lists from all search records,
// capped by the budget preset.
func collectIDs(records []engine.SearchRecord, preset engine.BudgetPreset) (videoIDs, channelIDs []string) {
	seenV := make(map[string]struct{})
	seenC := make(map[string]struct{})
	for _, rec := range records {
		for _, id := range rec.VideoIDs {
			if _, ok := seenV[id]; ok || len(videoIDs) >= preset.MaxVideos {
				continue
			}
			seenV[id] = struct{}{}
			videoIDs = append(videoIDs, id)
		}
		for _, id := range rec.ChannelIDs {
			if _, ok := seenC[id]; ok || len(channelIDs) >= preset.MaxChannels {
				continue
			}
			seenC[id] = struct{}{}
			channelIDs = append(channelIDs, id)
		}
	}
	return videoIDs, channelIDs
}

// hydrate fills candidate channels with detail data, cache first, batched
// API calls for the rest. With UseRSS, channels whose videos all missed
// the search window get their uploads feed pulled at zero quota cost.
func hydrate(ctx context.Context, run *engine.RunContext, store *engine.Store, budget *engine.BudgetManager,
	videoIDs, channelIDs []string, useRSS bool, log *slog.Logger) ([]engine.CandidateChannel, error) {

	videos, missingV := store.GetVideosBatch(ctx, videoIDs)
	if len(missingV) > 0 {
		for i := 0; i < detailCalls(len(missingV)); i++ {
			budget.RecordVideosCall()
		}
		fetched, err := sources.VideosBatch(ctx, run, missingV)
		if err != nil {
			log.Debug("videos batch failed", slog.Any("error", err))
		}
		store.SetVideosBatch(ctx, fetched)
		for _, v := range fetched {
			videos[v.VideoID] = v
		}
	}

	channels, missingC := store.GetChannelsBatch(ctx, channelIDs)
	if len(missingC) > 0 {
		for i := 0; i < detailCalls(len(missingC)); i++ {
			budget.RecordChannelsCall()
		}
		fetched, err := sources.ChannelsBatch(ctx, run, missingC)
		if err != nil {
			log.Debug("channels batch failed", slog.Any("error", err))
		}
		store.SetChannelsBatch(ctx, fetched)
		for _, ch := range fetched {
			channels[ch.ChannelID] = ch
		}
	}

	byChannel := make(map[string][]engine.VideoStats)
	for _, id := range videoIDs {
		v, ok := videos[id]
		if !ok || v.ChannelID == "" {
			continue
		}
		byChannel[v.ChannelID] = append(byChannel[v.ChannelID], v)
	}

	candidates := make([]engine.CandidateChannel, 0, len(channelIDs))
	for _, id := range channelIDs {
		ch, ok := channels[id]
		if !ok {
			continue
		}
		vids := byChannel[id]
		if len(vids) == 0 && useRSS {
			uploads, err := sources.FetchChannelUploads(ctx, id)
			if err != nil {
				log.Debug("rss uploads failed", slog.String("channel", id), slog.Any("error", err))
			} else {
				vids = uploads
			}
		}
		candidates = append(candidates, engine.CandidateChannel{Channel: ch, Videos: vids})
	}
	return candidates, nil
}
