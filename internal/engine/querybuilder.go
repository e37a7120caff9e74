package engine

import (
	"strings"
)

// Query templates select which commercial anchor terms a search query
// carries. Template IDs are matched by substring, so composite IDs like
// contract_partnership resolve to the partnership table; anything
// unmatched falls back to promotion.
const (
	TemplatePartnership = "partnership"
	TemplateReferral    = "referral"
	TemplateRebate      = "rebate"
	TemplateReview      = "review"
	TemplatePromotion   = "promotion"
)

// commercialAnchors maps template ID to its anchor term set, strongest
// first. BuildQuery OR-joins the top two.
var commercialAnchors = map[string][]string{
	TemplatePartnership: {"partnership", "partner program", "collaborate", "sponsored"},
	TemplateReferral:    {"referral", "referral code", "ref code", "invite code", "sign up bonus"},
	TemplateRebate:      {"rebate", "fee discount", "cashback", "commission", "reward"},
	TemplateReview:      {"review", "tutorial", "how to use", "guide"},
	TemplatePromotion:   {"promo", "promo code", "discount", "bonus", "offer"},
}

// TemplateIDs lists the known query templates.
func TemplateIDs() []string {
	return []string{TemplatePartnership, TemplateReferral, TemplateRebate, TemplateReview, TemplatePromotion}
}

func anchorsFor(templateID string) []string {
	id := strings.ToLower(templateID)
	switch {
	case strings.Contains(id, "partnership"):
		return commercialAnchors[TemplatePartnership]
	case strings.Contains(id, "referral"), strings.Contains(id, "code"):
		return commercialAnchors[TemplateReferral]
	case strings.Contains(id, "rebate"):
		return commercialAnchors[TemplateRebate]
	case strings.Contains(id, "review"), strings.Contains(id, "tutorial"):
		return commercialAnchors[TemplateReview]
	}
	return commercialAnchors[TemplatePromotion]
}

// brandAnchor builds the OR-group from the first three distinct brand
// names, lower-cased. A single name stays bare; multiples get parentheses.
func brandAnchor(brandNames []string) string {
	seen := make(map[string]struct{}, 3)
	var kept []string
	for _, b := range brandNames {
		b = strings.ToLower(strings.TrimSpace(b))
		if b == "" {
			continue
		}
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		kept = append(kept, b)
		if len(kept) == 3 {
			break
		}
	}
	if len(kept) == 0 {
		return ""
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return "(" + strings.Join(kept, " OR ") + ")"
}

// industryAnchor narrows results to derivatives content. Templates aimed
// at contract or futures trading use the futures phrasing, the rest use
// perps.
func industryAnchor(templateID string) string {
	id := strings.ToLower(templateID)
	if strings.Contains(id, "futures") || strings.Contains(id, "contract") {
		return "crypto futures"
	}
	return "crypto perps"
}

// commercialAnchor OR-joins the template's top two terms.
func commercialAnchor(templateID string) string {
	anchors := anchorsFor(templateID)
	if len(anchors) > 2 {
		anchors = anchors[:2]
	}
	return strings.Join(anchors, " OR ")
}

// negativeBlock renders the competitor's exclusion terms as -term tokens.
func negativeBlock(riskTerms []string) string {
	var parts []string
	for _, t := range riskTerms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		parts = append(parts, "-"+t)
	}
	return strings.Join(parts, " ")
}

// BuildQuery assembles the search query for one competitor and template:
// brand OR-anchor, industry anchor, the template's top two commercial
// terms, then any exclusion terms the competitor carries. Competitors with
// ambiguous brand names (LBank matching banking content) rely on the
// exclusion block to keep results on topic.
func BuildQuery(comp Competitor, templateID string) string {
	parts := make([]string, 0, 4)
	if anchor := brandAnchor(comp.BrandNames); anchor != "" {
		parts = append(parts, anchor)
	}
	parts = append(parts, industryAnchor(templateID), commercialAnchor(templateID))
	if neg := negativeBlock(comp.RiskTerms); neg != "" {
		parts = append(parts, neg)
	}
	return strings.Join(parts, " ")
}

// BuildExploreQueries produces up to four distinct queries for a wider
// sweep: the base query, a tutorial-angled variant, a swapped commercial
// anchor, and a simplified brand-plus-industry query. Duplicates collapse.
func BuildExploreQueries(comp Competitor, templateID string) []string {
	base := BuildQuery(comp, templateID)
	candidates := []string{base}

	id := strings.ToLower(templateID)
	if !strings.Contains(id, "review") {
		candidates = append(candidates, base+" tutorial")
	}

	// Partnership and referral wording surface different channel pools;
	// try the sibling phrasing too.
	if strings.Contains(id, "partnership") {
		candidates = append(candidates, BuildQuery(comp, TemplateReferral))
	} else if strings.Contains(id, "referral") {
		candidates = append(candidates, BuildQuery(comp, TemplatePartnership))
	}

	simple := make([]string, 0, 2)
	if anchor := brandAnchor(comp.BrandNames); anchor != "" {
		simple = append(simple, anchor)
	}
	simple = append(simple, industryAnchor(templateID))
	candidates = append(candidates, strings.Join(simple, " "))

	seen := make(map[string]struct{}, len(candidates))
	var out []string
	for _, q := range candidates {
		norm := Normalize(q)
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, q)
		if len(out) == 4 {
			break
		}
	}
	return out
}
