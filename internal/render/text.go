package render

import (
	"fmt"
	"io"
	"strings"

	"scrumtool/internal/report"

	"github.com/charmbracelet/lipgloss"
)

// Console colours of the report.
var (
	ink   = lipgloss.Color("#262626")
	paper = lipgloss.Color("#ffffff")
)

type textStyles struct {
	title    func(...string) string
	subtitle func(...string) string
	header   func(...string) string
	normal   func(...string) string
}

func plain(s ...string) string {
	return strings.Join(s, " ")
}

func newTextStyles(w io.Writer, noColor bool) textStyles {
	if noColor {
		return textStyles{title: plain, subtitle: plain, header: plain, normal: plain}
	}
	r := lipgloss.NewRenderer(w)
	return textStyles{
		title:    r.NewStyle().Bold(true).Render,
		subtitle: r.NewStyle().Bold(true).Background(ink).Foreground(paper).Render,
		header:   r.NewStyle().Bold(true).Foreground(ink).Render,
		normal:   r.NewStyle().Render,
	}
}

// Text writes the console report: banner, global totals, each list with its
// members, then every report member.
func Text(w io.Writer, rep *report.Report, opts Options) error {
	checkEmpty(rep, opts)
	st := newTextStyles(w, opts.NoColor)

	var sb strings.Builder
	line := func(s string) {
		sb.WriteString(s)
		sb.WriteByte('\n')
	}
	stat := func(label string, v interface{}) {
		line(st.normal(fmt.Sprintf("  %s: %v", label, v)))
	}

	line("===================================")
	line(st.title(" SCRUM REPORT FOR CURRENT SPRINT "))
	line("===================================")
	if rep.Board != "" {
		line(st.normal("  Board: " + rep.Board))
	}

	line(st.subtitle(" Global "))
	stat("Cards", rep.Cards)
	stat("Points", points(rep.Points))
	stat("Lists", len(rep.Lists))
	stat("Members", len(rep.Members))

	for _, l := range rep.Lists {
		line(st.subtitle(" " + l.Name + " "))
		stat("Cards", l.Cards)
		stat("Points", points(l.Points))
		for _, m := range l.Members {
			line(st.header("  " + m.Name))
			stat("  Cards", m.Cards)
			stat("  Points", points(m.Points))
		}
	}

	if len(rep.Members) > 0 {
		line(st.subtitle(" Members "))
		for _, m := range rep.Members {
			line(st.header("  " + m.Name))
			stat("  Cards", m.Cards)
			stat("  Points", points(m.Points))
		}
	}

	line("===============")
	line("===== END =====")
	line("===============")

	_, err := io.WriteString(w, sb.String())
	return err
}
