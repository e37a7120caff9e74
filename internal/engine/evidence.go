package engine

import (
	"sort"
	"strings"
)

// Evidence is one weighted keyword or competitor brand match in a
// candidate's text. Count is the raw occurrence count; scoring applies its
// own cap.
type Evidence struct {
	Type    EvidenceType   `json:"type"`
	Keyword string         `json:"keyword"`
	Count   int            `json:"count"`
	Source  EvidenceSource `json:"source"`
	Weight  int            `json:"weight"`
}

// ChannelEvidence is the full extraction result for one candidate: merged
// keyword evidence plus the flags the relevance filter reads. Links,
// quality indicators, and risk flags are carried separately from keyword
// evidence so they never leak into the keyword hit-count gates.
type ChannelEvidence struct {
	Items     []Evidence `json:"items"`
	HasLinks  bool       `json:"has_external_links"`
	LinkKinds []string   `json:"link_kinds,omitempty"`
	Quality   []string   `json:"quality_indicators,omitempty"`
	RiskFlags []string   `json:"risk_flags,omitempty"`
}

// ExtractEvidence scans one text with the lexicon and reports every keyword
// hit and competitor brand mention. Empty text yields nil.
func ExtractEvidence(lex *Lexicon, text string, source EvidenceSource, competitorBrands []string) []Evidence {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []Evidence
	for _, typ := range []EvidenceType{EvidenceContract, EvidenceMechanism, EvidenceCommercial, EvidenceNegative} {
		for _, ck := range lex.tables[typ] {
			n := len(ck.re.FindAllStringIndex(text, -1))
			if n == 0 {
				continue
			}
			out = append(out, Evidence{
				Type:    typ,
				Keyword: ck.keyword,
				Count:   n,
				Source:  source,
				Weight:  ck.weight,
			})
		}
	}
	for _, brand := range competitorBrands {
		if strings.TrimSpace(brand) == "" {
			continue
		}
		re := keywordRegexp(brand)
		n := len(re.FindAllStringIndex(text, -1))
		if n == 0 {
			continue
		}
		out = append(out, Evidence{
			Type:    EvidenceCompetitor,
			Keyword: strings.ToLower(brand),
			Count:   n,
			Source:  source,
			Weight:  3,
		})
	}
	return out
}

// DetectLinks reports whether text carries any external link and which
// categories matched, in recognizer order without duplicates.
func DetectLinks(text string) (bool, []string) {
	var kinds []string
	seen := make(map[string]struct{}, len(linkPatterns))
	for _, lp := range linkPatterns {
		if !lp.re.MatchString(text) {
			continue
		}
		if _, ok := seen[lp.category]; ok {
			continue
		}
		seen[lp.category] = struct{}{}
		kinds = append(kinds, lp.category)
	}
	return len(kinds) > 0, kinds
}

// DetectTerms returns the terms appearing in text as case-insensitive
// substrings, preserving list order.
func DetectTerms(text string, terms []string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, t := range terms {
		if strings.Contains(lower, strings.ToLower(t)) {
			out = append(out, t)
		}
	}
	return out
}

// MergeEvidence combines lists, summing counts of entries that share
// (type, keyword) regardless of source. The first-seen entry keeps its
// source and weight; order of first appearance is preserved.
func MergeEvidence(lists ...[]Evidence) []Evidence {
	type key struct {
		typ     EvidenceType
		keyword string
	}
	idx := make(map[key]int)
	var out []Evidence
	for _, list := range lists {
		for _, ev := range list {
			k := key{ev.Type, ev.Keyword}
			if i, ok := idx[k]; ok {
				out[i].Count += ev.Count
				continue
			}
			idx[k] = len(out)
			out = append(out, ev)
		}
	}
	return out
}

// ExtractChannelEvidence runs extraction over a candidate's channel
// description plus the title and description of up to ten of its
// most-recent videos, merged into one result. Links are detected in the
// channel and video descriptions; quality and risk terms across all
// scanned text.
func ExtractChannelEvidence(lex *Lexicon, cand CandidateChannel, competitorBrands []string) ChannelEvidence {
	lists := [][]Evidence{
		ExtractEvidence(lex, cand.Channel.Description, SourceChannelDesc, competitorBrands),
	}
	videos := recentVideos(cand.Videos, 10)

	var buf strings.Builder
	buf.WriteString(cand.Channel.Description)
	linkText := cand.Channel.Description
	for _, v := range videos {
		lists = append(lists,
			ExtractEvidence(lex, v.Title, SourceTitle, competitorBrands),
			ExtractEvidence(lex, v.Description, SourceDescription, competitorBrands))
		buf.WriteByte(' ')
		buf.WriteString(v.Title)
		buf.WriteByte(' ')
		buf.WriteString(v.Description)
		linkText += " " + v.Description
	}

	hasLinks, kinds := DetectLinks(linkText)
	allText := buf.String()
	return ChannelEvidence{
		Items:     MergeEvidence(lists...),
		HasLinks:  hasLinks,
		LinkKinds: kinds,
		Quality:   DetectTerms(allText, QualityIndicators),
		RiskFlags: DetectTerms(allText, RiskFlagTerms),
	}
}

// recentVideos returns up to n videos, newest publish date first. The
// input slice is not mutated.
func recentVideos(videos []VideoStats, n int) []VideoStats {
	sorted := make([]VideoStats, len(videos))
	copy(sorted, videos)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].PublishedAt.After(sorted[j].PublishedAt) })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// FormatEvidence renders a short human-readable summary for reports: the
// positive evidence grouped by type, highest counts first. Negative
// evidence is omitted.
func FormatEvidence(evidence []Evidence) string {
	order := []EvidenceType{EvidenceCommercial, EvidenceContract, EvidenceMechanism, EvidenceCompetitor}
	var parts []string
	for _, typ := range order {
		var hits []Evidence
		for _, ev := range evidence {
			if ev.Type == typ {
				hits = append(hits, ev)
			}
		}
		if len(hits) == 0 {
			continue
		}
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].Count > hits[j].Count })
		labels := make([]string, 0, len(hits))
		for _, h := range hits {
			labels = append(labels, h.Keyword)
		}
		parts = append(parts, string(typ)+": "+strings.Join(labels, ", "))
	}
	return strings.Join(parts, "; ")
}
