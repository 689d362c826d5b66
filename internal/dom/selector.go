package dom

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// DOMError is returned for selectors and documents the package cannot handle.
type DOMError string

func (e DOMError) Error() string {
	return string(e)
}

const (
	ErrUnsupportedSelector DOMError = "unsupported selector"
	ErrEmptySelector       DOMError = "empty selector"
)

// Matcher reports whether a node satisfies a selector.
type Matcher interface {
	Match(n *html.Node) bool
}

// MatcherFunc adapts a function to Matcher.
type MatcherFunc func(n *html.Node) bool

// Match implements Matcher.
func (f MatcherFunc) Match(n *html.Node) bool {
	return f(n)
}

// Selector is a compiled CSS selector group.
type Selector struct {
	raw string
	sel cascadia.Selector
}

// Compile parses a CSS selector.
func Compile(sel string) (*Selector, error) {
	if strings.TrimSpace(sel) == "" {
		return nil, ErrEmptySelector
	}
	s, err := cascadia.Compile(sel)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnsupportedSelector, sel, err)
	}
	return &Selector{raw: sel, sel: s}, nil
}

// MustCompile is like Compile but panics on error. Intended for package-level
// defaults only.
func MustCompile(sel string) *Selector {
	s, err := Compile(sel)
	if err != nil {
		panic(err)
	}
	return s
}

// String returns the selector source.
func (s *Selector) String() string {
	return s.raw
}

// Match implements Matcher.
func (s *Selector) Match(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && s.sel.Match(n)
}
