package render

import (
	"fmt"
	"io"
	"strings"

	"scrumtool/internal/report"

	"github.com/charmbracelet/glamour"
)

// Markdown writes the report as Markdown tables. With opts.Pretty the
// Markdown is rendered for the terminal through glamour.
func Markdown(w io.Writer, rep *report.Report, opts Options) error {
	checkEmpty(rep, opts)
	md := markdown(rep)

	if !opts.Pretty {
		_, err := io.WriteString(w, md)
		return err
	}

	styleOpt := glamour.WithAutoStyle()
	if opts.GlamourStyle != "" && opts.GlamourStyle != "auto" {
		styleOpt = glamour.WithStandardStyle(opts.GlamourStyle)
	}
	width := opts.Width
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func markdown(rep *report.Report) string {
	var sb strings.Builder
	sb.WriteString("# Scrum report for current sprint\n\n")
	if rep.Board != "" {
		fmt.Fprintf(&sb, "Board: **%s**\n\n", escape(rep.Board))
	}

	sb.WriteString("| Cards | Points | Lists | Members |\n|---:|---:|---:|---:|\n")
	fmt.Fprintf(&sb, "| %d | %s | %d | %d |\n\n", rep.Cards, points(rep.Points), len(rep.Lists), len(rep.Members))

	if len(rep.Lists) > 0 {
		sb.WriteString("## Lists\n\n| List | Cards | Points | Members |\n|---|---:|---:|---|\n")
		for _, l := range rep.Lists {
			names := make([]string, 0, len(l.Members))
			for _, m := range l.Members {
				names = append(names, fmt.Sprintf("%s (%s)", escape(m.Name), points(m.Points)))
			}
			fmt.Fprintf(&sb, "| %s | %d | %s | %s |\n", escape(l.Name), l.Cards, points(l.Points), strings.Join(names, ", "))
		}
		sb.WriteString("\n")
	}

	if len(rep.Members) > 0 {
		sb.WriteString("## Members\n\n| Member | Cards | Points |\n|---|---:|---:|\n")
		for _, m := range rep.Members {
			fmt.Fprintf(&sb, "| %s | %d | %s |\n", escape(m.Name), m.Cards, points(m.Points))
		}
		sb.WriteString("\n")
	}

	if len(rep.Diagnostics) > 0 {
		sb.WriteString("## Diagnostics\n\n")
		for _, d := range rep.Diagnostics {
			fmt.Fprintf(&sb, "- `%s` %s\n", d.Kind, escape(d.Message))
		}
	}
	return sb.String()
}

var mdEscaper = strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`)

func escape(s string) string {
	return mdEscaper.Replace(s)
}
