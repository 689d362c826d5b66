// Package style applies presentation classes to a board page: a board class
// picked from the document title, a class per list picked from its header
// name, and a separator treatment for cards holding a run of hyphens.
package style

import (
	"fmt"
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Rule maps a title pattern to a class. Patterns are regular expressions
// matched case-insensitively anywhere in the text.
type Rule struct {
	Pattern string `yaml:"pattern"`
	Class   string `yaml:"class"`
}

type compiledRule struct {
	re    *regexp.Regexp
	class string
}

// RuleSet is an ordered rule table. The first matching rule wins.
type RuleSet struct {
	rules []compiledRule
}

// Compile builds a RuleSet from rules, keeping their order.
func Compile(rules []Rule) (*RuleSet, error) {
	rs := &RuleSet{}
	for i, r := range rules {
		if r.Class == "" {
			return nil, fmt.Errorf("rule %d (%q): empty class", i, r.Pattern)
		}
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%q): %w", i, r.Pattern, err)
		}
		rs.rules = append(rs.rules, compiledRule{re: re, class: r.Class})
	}
	return rs, nil
}

// MustCompile is Compile that panics; for package defaults and tests.
func MustCompile(rules []Rule) *RuleSet {
	rs, err := Compile(rules)
	if err != nil {
		panic(err)
	}
	return rs
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// Match returns the class of the first rule matching text.
func (rs *RuleSet) Match(text string) (string, bool) {
	if rs == nil {
		return "", false
	}
	// A Caser is stateful, so one is made per call. Lowering keeps letters
	// such as ß and ligatures intact, where full case folding expands them.
	lowered := cases.Lower(language.Und).String(text)
	for _, r := range rs.rules {
		if r.re.MatchString(lowered) {
			return r.class, true
		}
	}
	return "", false
}

// DefaultBoardRules are the board title rules.
func DefaultBoardRules() []Rule {
	return []Rule{
		{Pattern: "eagle|affiliate", Class: "eagle"},
		{Pattern: "trusted reviews", Class: "trusted-reviews"},
		{Pattern: "decanter", Class: "decanter"},
	}
}

// DefaultListRules are the list header rules.
func DefaultListRules() []Rule {
	return []Rule{
		{Pattern: "^sprint", Class: "current-sprint"},
		{Pattern: "blocked|hold", Class: "blocked"},
		{Pattern: "doing|play|progress", Class: "doing"},
		{Pattern: "review", Class: "review"},
		{Pattern: "uat|validating", Class: "validating"},
		{Pattern: "ready", Class: "ready"},
		{Pattern: "done", Class: "done"},
	}
}
