package report

import "fmt"

// Kind classifies a diagnostic.
type Kind string

const (
	MissingListPoints  Kind = "missing_list_points"
	MissingCardMembers Kind = "missing_card_members"
	MissingCardPoints  Kind = "missing_card_points"
	EmptyMemberSet     Kind = "empty_member_set"
	EmptyListSet       Kind = "empty_list_set"
	MalformedPoints    Kind = "malformed_points"
)

// Diagnostic is a non-fatal notice about missing or malformed board data.
type Diagnostic struct {
	Kind    Kind   `json:"kind"`
	List    string `json:"list,omitempty"`
	Card    string `json:"card,omitempty"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s", d.Kind, d.Message)
}

// DiagnosticSink receives diagnostics as they are raised.
type DiagnosticSink interface {
	Diagnose(d Diagnostic)
}

// DiagnosticFunc adapts a function to DiagnosticSink.
type DiagnosticFunc func(d Diagnostic)

// Diagnose implements DiagnosticSink.
func (f DiagnosticFunc) Diagnose(d Diagnostic) {
	f(d)
}

// Discard drops every diagnostic.
var Discard DiagnosticSink = DiagnosticFunc(func(Diagnostic) {})

// Collector records diagnostics in arrival order.
type Collector struct {
	Diagnostics []Diagnostic
}

// Diagnose implements DiagnosticSink.
func (c *Collector) Diagnose(d Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
}

// Kinds returns the kinds seen, in order.
func (c *Collector) Kinds() []Kind {
	kinds := make([]Kind, 0, len(c.Diagnostics))
	for _, d := range c.Diagnostics {
		kinds = append(kinds, d.Kind)
	}
	return kinds
}

// Count returns how many diagnostics of kind k were recorded.
func (c *Collector) Count(k Kind) int {
	n := 0
	for _, d := range c.Diagnostics {
		if d.Kind == k {
			n++
		}
	}
	return n
}
