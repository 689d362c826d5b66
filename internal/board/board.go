// Package board reads the structural conventions of a kanban board page
// (lists, cards, declared points, member avatars) out of an HTML tree.
package board

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"scrumtool/internal/dom"
	"scrumtool/internal/logging"

	"golang.org/x/net/html"
)

// Board is the read-only view of one board page.
type Board struct {
	Title  string
	Origin string
	Lists  []List
}

// List is one column of cards.
type List struct {
	Name       string
	PointsText string
	HasPoints  bool
	Cards      []Card
}

// Card is one work item.
type Card struct {
	URL        string
	PointsText string
	HasPoints  bool
	Members    []string
}

// Link returns the absolute card URL used in diagnostics.
func (c Card) Link(origin string) string {
	if c.URL == "" {
		return ""
	}
	if strings.HasPrefix(c.URL, "http://") || strings.HasPrefix(c.URL, "https://") {
		return c.URL
	}
	return strings.TrimRight(origin, "/") + c.URL
}

// ListNames returns the names of lists in board order.
func (b *Board) ListNames() []string {
	names := make([]string, 0, len(b.Lists))
	for _, l := range b.Lists {
		names = append(names, l.Name)
	}
	return names
}

// CardCount returns the number of cards across all lists.
func (b *Board) CardCount() int {
	n := 0
	for _, l := range b.Lists {
		n += len(l.Cards)
	}
	return n
}

// Parse extracts the board model from a parsed document.
func Parse(doc *html.Node, sel Selectors) (*Board, error) {
	c, err := sel.Compile()
	if err != nil {
		return nil, err
	}
	b := parseCompiled(doc, c)
	logging.Get(logging.CategoryBoard).Debugf("parsed board %s", b.Summary())
	return b, nil
}

func parseCompiled(doc *html.Node, c *Compiled) *Board {
	b := &Board{}
	if t := dom.FindFirst(doc, c.Title); t != nil {
		b.Title = strings.TrimSpace(dom.Text(t))
	}

	for _, listNode := range dom.FindAll(doc, c.List) {
		l := List{}
		if t := dom.FindFirst(listNode, c.ListTitle); t != nil {
			l.Name = strings.TrimSpace(dom.Text(t))
		}
		if p := dom.FindFirst(listNode, c.ListPoints); p != nil {
			l.HasPoints = true
			l.PointsText = strings.TrimSpace(dom.Text(p))
		}
		for _, cardNode := range dom.FindAll(listNode, c.Card) {
			l.Cards = append(l.Cards, parseCard(cardNode, c))
		}
		b.Lists = append(b.Lists, l)
	}
	return b
}

func parseCard(n *html.Node, c *Compiled) Card {
	card := Card{}
	card.URL, _ = dom.Attr(n, c.CardLinkAttr)
	if p := dom.FindFirst(n, c.CardPoints); p != nil {
		card.HasPoints = true
		card.PointsText = strings.TrimSpace(dom.Text(p))
	}
	for _, m := range dom.FindAll(n, c.CardMember) {
		name, _ := dom.Attr(m, c.CardMemberAttr)
		card.Members = append(card.Members, strings.TrimSpace(name))
	}
	return card
}

// ParsePoints parses a declared point value such as "3" or "0.5".
// Negative, infinite and non-numeric values are rejected.
func ParsePoints(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, "()[]")
	if text == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

// Summary is a one-line description used in logs.
func (b *Board) Summary() string {
	return fmt.Sprintf("%q: %d lists, %d cards", b.Title, len(b.Lists), b.CardCount())
}

// Read parses an HTML document from r and extracts the board model.
func Read(r io.Reader, sel Selectors) (*Board, error) {
	doc, err := dom.Parse(r)
	if err != nil {
		return nil, err
	}
	return Parse(doc, sel)
}
