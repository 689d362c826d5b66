// Package render writes a report as styled terminal text, Markdown or JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"scrumtool/internal/report"
)

// Format selects an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat accepts text, markdown (md) and json.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "text":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, markdown or json)", s)
	}
}

// Options controls rendering.
type Options struct {
	// NoColor disables terminal styling in text output.
	NoColor bool

	// TrackLists is set when the report was built with per-list tallies; an
	// empty list section is then worth a diagnostic.
	TrackLists bool

	// Pretty renders Markdown for the terminal.
	Pretty bool
	// GlamourStyle names a glamour style ("auto" when empty).
	GlamourStyle string
	Width        int

	// Sink receives empty-section diagnostics. Nil discards them.
	Sink report.DiagnosticSink
}

func (o Options) sink() report.DiagnosticSink {
	if o.Sink == nil {
		return report.Discard
	}
	return o.Sink
}

// Write renders rep in the requested format.
func Write(w io.Writer, f Format, rep *report.Report, opts Options) error {
	switch f {
	case FormatText, "":
		return Text(w, rep, opts)
	case FormatMarkdown:
		return Markdown(w, rep, opts)
	case FormatJSON:
		return JSON(w, rep)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

// JSON writes the report as indented JSON.
func JSON(w io.Writer, rep *report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// checkEmpty raises the empty-section diagnostics shared by all text formats.
func checkEmpty(rep *report.Report, opts Options) {
	sink := opts.sink()
	if opts.TrackLists && len(rep.Lists) == 0 && !hasKind(rep.Diagnostics, report.EmptyListSet) {
		sink.Diagnose(report.Diagnostic{Kind: report.EmptyListSet, Message: "No lists in report"})
	}
	for _, l := range rep.Lists {
		if len(l.Members) == 0 {
			sink.Diagnose(report.Diagnostic{
				Kind:    report.EmptyMemberSet,
				List:    l.Name,
				Message: "No members in list " + l.Name,
			})
		}
	}
	if len(rep.Members) == 0 {
		sink.Diagnose(report.Diagnostic{Kind: report.EmptyMemberSet, Message: "No members in report"})
	}
}

// hasKind reports whether the builder already raised a diagnostic of kind k.
func hasKind(diags []report.Diagnostic, k report.Kind) bool {
	for _, d := range diags {
		if d.Kind == k {
			return true
		}
	}
	return false
}

func points(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
