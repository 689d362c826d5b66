package board

import (
	"fmt"

	"scrumtool/internal/dom"
)

// Selectors names the structural conventions of the board page.
type Selectors struct {
	Title          string `yaml:"title"`
	BoardContainer string `yaml:"board_container"`
	List           string `yaml:"list"`
	ListTitle      string `yaml:"list_title"`
	ListHeaderName string `yaml:"list_header_name"`
	ListContainer  string `yaml:"list_container"`
	ListPoints     string `yaml:"list_points"`
	Card           string `yaml:"card"`
	CardPoints     string `yaml:"card_points"`
	CardMember     string `yaml:"card_member"`
	CardMemberAttr string `yaml:"card_member_attr"`
	CardLinkAttr   string `yaml:"card_link_attr"`
}

// DefaultSelectors returns the Trello + Scrummer conventions.
func DefaultSelectors() Selectors {
	return Selectors{
		Title:          "title",
		BoardContainer: ".board-wrapper",
		List:           ".list-wrapper:not(.mod-add)",
		ListTitle:      ".list-header h2",
		ListHeaderName: ".list-header-name-assist",
		ListContainer:  ".list",
		ListPoints:     ".scrummer-list-points",
		Card:           ".list-card",
		CardPoints:     ".scrummer-points",
		CardMember:     ".member-avatar",
		CardMemberAttr: "title",
		CardLinkAttr:   "href",
	}
}

// Compiled holds ready-to-match selectors.
type Compiled struct {
	Title          *dom.Selector
	BoardContainer *dom.Selector
	List           *dom.Selector
	ListTitle      *dom.Selector
	ListHeaderName *dom.Selector
	ListContainer  *dom.Selector
	ListPoints     *dom.Selector
	Card           *dom.Selector
	CardPoints     *dom.Selector
	CardMember     *dom.Selector
	CardMemberAttr string
	CardLinkAttr   string
}

// Compile validates and compiles every selector. Empty fields fall back to
// the defaults.
func (s Selectors) Compile() (*Compiled, error) {
	s = s.withDefaults()
	c := &Compiled{
		CardMemberAttr: s.CardMemberAttr,
		CardLinkAttr:   s.CardLinkAttr,
	}
	fields := []struct {
		name string
		src  string
		dst  **dom.Selector
	}{
		{"title", s.Title, &c.Title},
		{"board_container", s.BoardContainer, &c.BoardContainer},
		{"list", s.List, &c.List},
		{"list_title", s.ListTitle, &c.ListTitle},
		{"list_header_name", s.ListHeaderName, &c.ListHeaderName},
		{"list_container", s.ListContainer, &c.ListContainer},
		{"list_points", s.ListPoints, &c.ListPoints},
		{"card", s.Card, &c.Card},
		{"card_points", s.CardPoints, &c.CardPoints},
		{"card_member", s.CardMember, &c.CardMember},
	}
	for _, f := range fields {
		sel, err := dom.Compile(f.src)
		if err != nil {
			return nil, fmt.Errorf("selector %s: %w", f.name, err)
		}
		*f.dst = sel
	}
	return c, nil
}

func (s Selectors) withDefaults() Selectors {
	d := DefaultSelectors()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&s.Title, d.Title)
	fill(&s.BoardContainer, d.BoardContainer)
	fill(&s.List, d.List)
	fill(&s.ListTitle, d.ListTitle)
	fill(&s.ListHeaderName, d.ListHeaderName)
	fill(&s.ListContainer, d.ListContainer)
	fill(&s.ListPoints, d.ListPoints)
	fill(&s.Card, d.Card)
	fill(&s.CardPoints, d.CardPoints)
	fill(&s.CardMember, d.CardMember)
	fill(&s.CardMemberAttr, d.CardMemberAttr)
	fill(&s.CardLinkAttr, d.CardLinkAttr)
	return s
}
