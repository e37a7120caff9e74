package engine

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Competitor describes one exchange whose partner channels we hunt for.
// BrandNames feed the query anchor and brand-mention evidence; RiskTerms
// are query exclusions for brands that collide with unrelated content.
type Competitor struct {
	ID                  string   `yaml:"id" json:"id"`
	Name                string   `yaml:"name" json:"name"`
	BrandNames          []string `yaml:"brand_names" json:"brand_names"`
	QueryTerms          []string `yaml:"query_terms" json:"query_terms,omitempty"`
	IntentTerms         []string `yaml:"intent_terms" json:"intent_terms,omitempty"`
	PartnershipPatterns []string `yaml:"partnership_patterns" json:"partnership_patterns,omitempty"`
	SponsorTerms        []string `yaml:"sponsor_terms" json:"sponsor_terms,omitempty"`
	RiskTerms           []string `yaml:"risk_terms" json:"risk_terms,omitempty"`
}

// Registry holds the loaded competitor set, keyed by lowercased ID.
type Registry struct {
	byID  map[string]Competitor
	order []string
}

type competitorsFile struct {
	Competitors []Competitor `yaml:"competitors"`
}

var (
	registry     *Registry
	registryOnce sync.Once
	registryErr  error
)

// Competitors loads the registry from Cfg.CompetitorsPath once.
func Competitors() (*Registry, error) {
	registryOnce.Do(func() {
		registry, registryErr = LoadCompetitors(Cfg.CompetitorsPath)
	})
	return registry, registryErr
}

// LoadCompetitors parses a competitors YAML file into a registry.
func LoadCompetitors(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read competitors: %w", err)
	}
	var f competitorsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse competitors: %w", err)
	}
	if len(f.Competitors) == 0 {
		return nil, fmt.Errorf("competitors file %s defines no competitors", path)
	}
	r := &Registry{byID: make(map[string]Competitor, len(f.Competitors))}
	for _, c := range f.Competitors {
		id := strings.ToLower(strings.TrimSpace(c.ID))
		if id == "" {
			return nil, fmt.Errorf("competitors file %s: entry %q missing id", path, c.Name)
		}
		if _, dup := r.byID[id]; dup {
			return nil, fmt.Errorf("competitors file %s: duplicate id %q", path, id)
		}
		if len(c.BrandNames) == 0 {
			c.BrandNames = []string{c.Name}
		}
		c.ID = id
		r.byID[id] = c
		r.order = append(r.order, id)
	}
	return r, nil
}

// Get looks a competitor up by ID, case-insensitive.
func (r *Registry) Get(id string) (Competitor, error) {
	c, ok := r.byID[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Competitor{}, &CompetitorNotFoundError{ID: id, Available: r.IDs()}
	}
	return c, nil
}

// IDs returns the known competitor IDs in file order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns every competitor, sorted by ID.
func (r *Registry) All() []Competitor {
	out := make([]Competitor, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
