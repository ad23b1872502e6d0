package analyzer

import (
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/blackwell-systems/focuslens/internal/activity"
)

// Rule match sources.
const (
	RuleSourceCommunity = "community"
	RuleSourceNone      = "none"
)

// CommunityRule maps a glob pattern to a category. Popularity orders rules;
// more popular rules are tried first.
type CommunityRule struct {
	Pattern    string `json:"pattern"`
	Category   string `json:"category"`
	Popularity int    `json:"popularity,omitempty"`
}

// RuleMatch is the outcome of matching an event against a RuleSet.
type RuleMatch struct {
	MatchedRule *CommunityRule `json:"matched_rule"`
	Category    *string        `json:"category"`
	Source      string         `json:"source"`

	// Field names the event field that matched: app, title, or url.
	Field string `json:"field,omitempty"`
}

type compiledRule struct {
	rule CommunityRule
	g    glob.Glob
}

// RuleSet is a compiled, read-only list of community rules.
type RuleSet struct {
	rules []compiledRule
}

// NewRuleSet compiles rules as case-insensitive globs over the whole field.
// Rules are ordered by popularity, highest first; equal popularity keeps
// input order.
func NewRuleSet(rules []CommunityRule) (*RuleSet, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		if strings.TrimSpace(r.Pattern) == "" {
			return nil, &activity.InvalidInputError{Index: i, Field: "pattern", Reason: "empty"}
		}
		if strings.TrimSpace(r.Category) == "" {
			return nil, &activity.InvalidInputError{Index: i, Field: "category", Reason: "empty"}
		}
		g, err := glob.Compile(strings.ToLower(r.Pattern))
		if err != nil {
			return nil, &activity.InvalidInputError{Index: i, Field: "pattern", Reason: err.Error()}
		}
		compiled = append(compiled, compiledRule{rule: r, g: g})
	}
	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].rule.Popularity > compiled[j].rule.Popularity
	})
	return &RuleSet{rules: compiled}, nil
}

// Len reports the number of rules.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// Match returns the first rule matching the event's app, then title, then
// URL. A nil RuleSet matches nothing.
func (rs *RuleSet) Match(text EventText) RuleMatch {
	if rs != nil {
		fields := []struct {
			name  string
			value string
		}{
			{"app", text.App},
			{"title", text.Title},
			{"url", text.URL},
		}
		for _, r := range rs.rules {
			for _, f := range fields {
				if f.value == "" || !r.g.Match(strings.ToLower(f.value)) {
					continue
				}
				rule := r.rule
				category := rule.Category
				return RuleMatch{
					MatchedRule: &rule,
					Category:    &category,
					Source:      RuleSourceCommunity,
					Field:       f.name,
				}
			}
		}
	}
	return RuleMatch{Source: RuleSourceNone}
}
