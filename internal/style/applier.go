package style

import (
	"fmt"
	"regexp"
	"strings"

	"scrumtool/internal/board"
	"scrumtool/internal/dom"
	"scrumtool/internal/logging"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultSeparatorPattern matches a run of two or more hyphens.
const DefaultSeparatorPattern = `-{2,}`

// DefaultSeparatorClass tags cards that were turned into separators.
const DefaultSeparatorClass = "separator-card"

// Config is the serialisable form of an Applier.
type Config struct {
	BoardRules       []Rule `yaml:"board_rules"`
	ListRules        []Rule `yaml:"list_rules"`
	SeparatorPattern string `yaml:"separator_pattern"`
	SeparatorClass   string `yaml:"separator_class"`
}

// DefaultConfig returns the stock rule tables.
func DefaultConfig() Config {
	return Config{
		BoardRules:       DefaultBoardRules(),
		ListRules:        DefaultListRules(),
		SeparatorPattern: DefaultSeparatorPattern,
		SeparatorClass:   DefaultSeparatorClass,
	}
}

// Applier mutates a board page's presentation classes.
type Applier struct {
	Board          *RuleSet
	Lists          *RuleSet
	Separator      *regexp.Regexp
	SeparatorClass string
}

// NewApplier compiles cfg.
func NewApplier(cfg Config) (*Applier, error) {
	boardRules, err := Compile(cfg.BoardRules)
	if err != nil {
		return nil, fmt.Errorf("board rules: %w", err)
	}
	listRules, err := Compile(cfg.ListRules)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	pattern := cfg.SeparatorPattern
	if pattern == "" {
		pattern = DefaultSeparatorPattern
	}
	sep, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("separator pattern %q: %w", pattern, err)
	}
	if sep.MatchString("") {
		return nil, fmt.Errorf("separator pattern %q matches empty text", pattern)
	}
	class := cfg.SeparatorClass
	if class == "" {
		class = DefaultSeparatorClass
	}
	return &Applier{Board: boardRules, Lists: listRules, Separator: sep, SeparatorClass: class}, nil
}

// Result summarises one Apply pass.
type Result struct {
	BoardClass  string
	ListClasses map[string]string // list header name -> class
	Separators  int
}

// Apply runs the three styling passes over doc. It is safe to call
// repeatedly on the same tree: classes are only added once and replaced
// hyphen runs are gone on the next pass.
func (a *Applier) Apply(doc *html.Node, sel *board.Compiled) Result {
	res := Result{ListClasses: make(map[string]string)}
	log := logging.Get(logging.CategoryStyle)

	if title := dom.FindFirst(doc, sel.Title); title != nil {
		if class, ok := a.Board.Match(dom.Text(title)); ok {
			res.BoardClass = class
			for _, container := range dom.FindAll(doc, sel.BoardContainer) {
				dom.AddClass(container, class)
			}
			log.Debugf("board class %q", class)
		}
	}

	for _, header := range dom.FindAll(doc, sel.ListHeaderName) {
		name := dom.Text(header)
		class, ok := a.Lists.Match(name)
		if !ok {
			continue
		}
		list := dom.Closest(header, sel.ListContainer)
		if list == nil {
			log.Debugf("list %q has no container", name)
			continue
		}
		dom.AddClass(list, class)
		res.ListClasses[name] = class
	}

	if a.Separator != nil {
		for _, c := range dom.FindAll(doc, sel.Card) {
			if a.separate(c) {
				res.Separators++
			}
		}
	}
	return res
}

// ApplyDefault is Apply with the default selectors.
func (a *Applier) ApplyDefault(doc *html.Node) (Result, error) {
	sel, err := board.DefaultSelectors().Compile()
	if err != nil {
		return Result{}, err
	}
	return a.Apply(doc, sel), nil
}

// separate replaces every separator run in the card's text with a rule
// element and tags the card. It reports whether anything was replaced.
// Runs are matched over the card's whole text, so a run split by inline
// markup such as -<b>-</b>- is still found.
func (a *Applier) separate(card *html.Node) bool {
	nodes := dom.TextNodes(card)
	offsets := make([]int, len(nodes))
	var text strings.Builder
	for i, tn := range nodes {
		offsets[i] = text.Len()
		text.WriteString(tn.Data)
	}
	runs := a.Separator.FindAllStringIndex(text.String(), -1)
	if len(runs) == 0 {
		return false
	}
	for i, tn := range nodes {
		splitTextNode(tn, offsets[i], runs)
	}
	dom.AddClass(card, a.SeparatorClass)
	return true
}

// splitTextNode cuts the parts of runs that fall inside tn, which starts at
// offset lo of the card text. The <hr> goes where a run begins.
func splitTextNode(tn *html.Node, lo int, runs [][]int) {
	parent := tn.Parent
	if parent == nil {
		return
	}
	data := tn.Data
	hi := lo + len(data)
	last := lo
	touched := false
	for _, r := range runs {
		if r[1] <= lo || r[0] >= hi {
			continue
		}
		touched = true
		from := max(r[0], lo)
		if from > last {
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: data[last-lo : from-lo]}, tn)
		}
		if r[0] >= lo {
			parent.InsertBefore(&html.Node{Type: html.ElementNode, DataAtom: atom.Hr, Data: "hr"}, tn)
		}
		last = min(r[1], hi)
	}
	if !touched {
		return
	}
	if last < hi {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: data[last-lo:]}, tn)
	}
	parent.RemoveChild(tn)
}
