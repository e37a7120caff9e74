package engine

import (
	"regexp"
	"strings"
	"sync"
)

// Weighted keyword tables. These are domain constants tuned against real
// crypto-derivatives channels; they are loaded once and never mutated at
// runtime.

// EvidenceType categorizes a keyword/link/brand match.
type EvidenceType string

const (
	EvidenceContract   EvidenceType = "contract"
	EvidenceMechanism  EvidenceType = "mechanism"
	EvidenceCommercial EvidenceType = "commercial"
	EvidenceCompetitor EvidenceType = "competitor"
	EvidenceNegative   EvidenceType = "negative"
)

// EvidenceSource identifies which text a match came from.
type EvidenceSource string

const (
	SourceTitle       EvidenceSource = "title"
	SourceDescription EvidenceSource = "description"
	SourceChannelDesc EvidenceSource = "channelDescription"
)

// ContractWeights — derivatives core terms.
var ContractWeights = map[string]int{
	"futures":           3,
	"perps":             3,
	"perpetual":         3,
	"derivatives":       2,
	"perpetual futures": 4,
	"futures trading":   3,
	"leverage":          2,
	"margin":            1,
	"short position":    2,
	"long position":     2,
}

// MechanismWeights — terms only real contract traders use.
var MechanismWeights = map[string]int{
	"funding rate":    3,
	"open interest":   3,
	"liquidation":     2,
	"mark price":      2,
	"order book":      2,
	"cross margin":    2,
	"isolated margin": 2,
	"take profit":     1,
	"stop loss":       1,
	"limit order":     1,
}

// CommercialWeights — partnership/monetization intent.
var CommercialWeights = map[string]int{
	"partnership":     4,
	"partner program": 4,
	"referral":        3,
	"referral code":   4,
	"promo code":      3,
	"rebate":          3,
	"fee discount":    3,
	"sign up bonus":   2,
	"cashback":        2,
	"commission":      2,
	"sponsored":       3,
	"collaborate":     2,
}

// NegativeWeights — off-topic noise (banking, music) scored as penalties.
var NegativeWeights = map[string]int{
	"loan":         -3,
	"mortgage":     -3,
	"credit":       -2,
	"lyrics":       -4,
	"song":         -4,
	"music":        -3,
	"banking":      -2,
	"bank account": -3,
}

// QualityIndicators mark topical authority (reviews, fee breakdowns,
// comparisons). Detected as case-insensitive substrings.
var QualityIndicators = []string{
	"review",
	"fees",
	"best exchange",
	"comparison",
	"vs",
	"tutorial",
	"guide",
	"how to",
	"analysis",
	"trading strategy",
}

// RiskFlagTerms mark hype channels (guaranteed returns, moonshot
// promises) that are poor partnership targets.
var RiskFlagTerms = []string{
	"guaranteed",
	"100x",
	"1000x",
	"10000x",
	"get rich",
	"easy money",
	"no risk",
	"sure profit",
	"guaranteed profit",
	"never lose",
	"can't lose",
	"risk free",
	"instant millionaire",
}

// Thresholds are the hard gates a candidate must pass regardless of its
// numeric score.
type Thresholds struct {
	MinSubscribers     int64 `json:"min_subscribers"`
	MinContractWords   int   `json:"min_contract_words"`
	MinCommercialWords int   `json:"min_commercial_words"`
	MinTotalScore      int   `json:"min_total_score"`
}

// DefaultThresholds gate ranking; see Rank.
var DefaultThresholds = Thresholds{
	MinSubscribers:     10000,
	MinContractWords:   2,
	MinCommercialWords: 1,
	MinTotalScore:      12,
}

// Per-source score multipliers. Titles are a stronger relevance signal than
// boilerplate descriptions; channel descriptions are weakest. Empirically
// chosen, kept configurable.
var SourceMultipliers = map[EvidenceSource]float64{
	SourceTitle:       1.5,
	SourceDescription: 1.0,
	SourceChannelDesc: 0.8,
}

// External-link recognizers. Matched categories surface as link flags on
// the extraction result, not as keyword evidence.
type linkPattern struct {
	re       *regexp.Regexp
	category string
}

var linkPatterns = []linkPattern{
	{regexp.MustCompile(`(?i)https?://`), "http_link"},
	{regexp.MustCompile(`(?i)bit\.ly/`), "bitly"},
	{regexp.MustCompile(`(?i)linktr\.ee/`), "linktree"},
	{regexp.MustCompile(`(?i)t\.me/`), "telegram"},
	{regexp.MustCompile(`(?i)discord\.(gg|com)/`), "discord"},
	{regexp.MustCompile(`(?i)(twitter|x)\.com/`), "twitter"},
}

// Lexicon holds the compiled keyword tables used by the extractor. Keyword
// regexps are whole-word and case-insensitive, with internal whitespace
// matching one-or-more whitespace characters.
type Lexicon struct {
	tables map[EvidenceType][]compiledKeyword
}

type compiledKeyword struct {
	keyword string
	weight  int
	re      *regexp.Regexp
}

var (
	defaultLexicon     *Lexicon
	defaultLexiconOnce sync.Once
)

// DefaultLexicon compiles the package keyword tables once.
func DefaultLexicon() *Lexicon {
	defaultLexiconOnce.Do(func() {
		defaultLexicon = NewLexicon(map[EvidenceType]map[string]int{
			EvidenceContract:   ContractWeights,
			EvidenceMechanism:  MechanismWeights,
			EvidenceCommercial: CommercialWeights,
			EvidenceNegative:   NegativeWeights,
		})
	})
	return defaultLexicon
}

// NewLexicon compiles arbitrary weighted tables.
func NewLexicon(tables map[EvidenceType]map[string]int) *Lexicon {
	lex := &Lexicon{tables: make(map[EvidenceType][]compiledKeyword, len(tables))}
	for typ, table := range tables {
		compiled := make([]compiledKeyword, 0, len(table))
		for kw, w := range table {
			compiled = append(compiled, compiledKeyword{
				keyword: kw,
				weight:  w,
				re:      keywordRegexp(kw),
			})
		}
		lex.tables[typ] = compiled
	}
	return lex
}

// Weight returns the configured weight for a (type, keyword) pair, or 0.
func (l *Lexicon) Weight(typ EvidenceType, keyword string) int {
	for _, ck := range l.tables[typ] {
		if ck.keyword == keyword {
			return ck.weight
		}
	}
	return 0
}

func keywordRegexp(keyword string) *regexp.Regexp {
	parts := strings.Fields(keyword)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)\b` + strings.Join(parts, `\s+`) + `\b`)
}
