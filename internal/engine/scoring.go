package engine

import (
	"math"
	"sort"
)

// DefaultTopN is the shortlist size when no run budget overrides it.
const DefaultTopN = 5

// Relevance is the quick context check run alongside full scoring: a
// bounded 0-100 score plus a pass flag requiring two of the three signals
// (commercial vocabulary, contract vocabulary, external links).
type Relevance struct {
	Score         int  `json:"score"`
	Passed        bool `json:"passed"`
	ConditionsMet int  `json:"conditions_met"`
}

// ScoringResult is the per-candidate scoring outcome: an integer total, a
// per-type breakdown, the relevance check, and whether every threshold
// gate passed.
type ScoringResult struct {
	ChannelID string               `json:"channel_id"`
	Total     int                  `json:"total"`
	Breakdown map[EvidenceType]int `json:"breakdown"`
	Meets     bool                 `json:"meets_thresholds"`
	Relevance Relevance            `json:"relevance"`
	Evidence  ChannelEvidence      `json:"evidence"`
	Channel   ChannelStats         `json:"channel"`
}

// evidenceCountCap limits how much a single repeated keyword can contribute.
const evidenceCountCap = 3

// AssessRelevance scores the broad partnership signals: +8 per distinct
// contract keyword, +10 per distinct commercial keyword, +15 for any
// external link, +8 per quality indicator, -20 per risk flag, clamped to
// 0..100. Passing needs at least two of commercial vocabulary, contract
// vocabulary, and external links.
func AssessRelevance(ev ChannelEvidence) Relevance {
	var contract, commercial int
	for _, item := range ev.Items {
		switch item.Type {
		case EvidenceContract:
			contract++
		case EvidenceCommercial:
			commercial++
		}
	}

	score := contract*8 + commercial*10 + len(ev.Quality)*8 - len(ev.RiskFlags)*20
	if ev.HasLinks {
		score += 15
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	conditions := 0
	if commercial > 0 {
		conditions++
	}
	if contract > 0 {
		conditions++
	}
	if ev.HasLinks {
		conditions++
	}
	return Relevance{Score: score, Passed: conditions >= 2, ConditionsMet: conditions}
}

// Score computes a candidate's weighted total. Each evidence item
// contributes weight * min(count, cap) * source multiplier; category
// subtotals are rounded to integers and the total is their signed sum.
// The hit-count gates use the raw uncapped counts.
func Score(cand CandidateChannel, ev ChannelEvidence, th Thresholds) ScoringResult {
	res := ScoringResult{
		ChannelID: cand.Channel.ChannelID,
		Breakdown: make(map[EvidenceType]int),
		Relevance: AssessRelevance(ev),
		Evidence:  ev,
		Channel:   cand.Channel,
	}
	raw := make(map[EvidenceType]float64)
	var contractHits, commercialHits int
	for _, item := range ev.Items {
		count := item.Count
		if count > evidenceCountCap {
			count = evidenceCountCap
		}
		mult, ok := SourceMultipliers[item.Source]
		if !ok {
			mult = 1.0
		}
		raw[item.Type] += float64(item.Weight) * float64(count) * mult
		switch item.Type {
		case EvidenceContract:
			contractHits += item.Count
		case EvidenceCommercial:
			commercialHits += item.Count
		}
	}
	for typ, pts := range raw {
		sub := int(math.Round(pts))
		res.Breakdown[typ] = sub
		res.Total += sub
	}
	res.Meets = cand.Channel.SubscriberCount >= th.MinSubscribers &&
		contractHits >= th.MinContractWords &&
		commercialHits >= th.MinCommercialWords &&
		res.Total >= th.MinTotalScore
	return res
}

// Rank filters to candidates that meet every threshold gate, sorts by total
// score descending (stable, so input order breaks ties), and returns at
// most max results. max <= 0 means no limit.
func Rank(results []ScoringResult, max int) []ScoringResult {
	var passed []ScoringResult
	for _, r := range results {
		if r.Meets {
			passed = append(passed, r)
		}
	}
	sort.SliceStable(passed, func(i, j int) bool { return passed[i].Total > passed[j].Total })
	if max > 0 && len(passed) > max {
		passed = passed[:max]
	}
	return passed
}
