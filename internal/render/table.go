package render

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const columnGap = "  "

// Column describes one table column.
type Column struct {
	Header string
	// Numeric columns are right aligned.
	Numeric bool
	// MaxWidth truncates longer cells with an ellipsis. Zero means no limit.
	MaxWidth int
}

// TextColumn is a left aligned column.
func TextColumn(header string) Column { return Column{Header: header} }

// NumberColumn is a right aligned column of counts or points.
func NumberColumn(header string) Column { return Column{Header: header, Numeric: true} }

// Table renders archived report rows under a header rule, with an optional
// totals footer.
type Table struct {
	Title   string
	Columns []Column
	Rows    [][]string
	Footer  []string
}

// NewTable creates a Table with the given title and columns.
func NewTable(title string, cols ...Column) *Table {
	return &Table{Title: title, Columns: cols}
}

// AddRow adds a row. Missing trailing cells render blank.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// SetFooter sets the totals row drawn below a second rule.
func (t *Table) SetFooter(cells ...string) {
	t.Footer = cells
}

// Write renders the table. An empty table writes nothing.
func (t *Table) Write(w io.Writer, noColor bool) error {
	if len(t.Rows) == 0 {
		return nil
	}

	r := lipgloss.NewRenderer(w)
	title, head, body, rule := r.NewStyle(), r.NewStyle(), r.NewStyle(), r.NewStyle()
	ruleChar := "-"
	if !noColor {
		title = title.Bold(true).Foreground(ink)
		head = head.Bold(true)
		rule = rule.Faint(true)
		ruleChar = "─"
	}

	widths := t.widths()
	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(title.Render(t.Title) + "\n")
	}
	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = c.Header
	}
	t.writeLine(&sb, head, widths, headers)
	t.writeRule(&sb, rule, widths, ruleChar)
	for _, row := range t.Rows {
		t.writeLine(&sb, body, widths, row)
	}
	if len(t.Footer) > 0 {
		t.writeRule(&sb, rule, widths, ruleChar)
		t.writeLine(&sb, head, widths, t.Footer)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (t *Table) cell(i int, cells []string) string {
	if i >= len(cells) {
		return ""
	}
	if limit := t.Columns[i].MaxWidth; limit > 0 {
		return runewidth.Truncate(cells[i], limit, "...")
	}
	return cells[i]
}

func (t *Table) widths() []int {
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = max(lipgloss.Width(c.Header), lipgloss.Width(t.cell(i, t.Footer)))
		for _, row := range t.Rows {
			widths[i] = max(widths[i], lipgloss.Width(t.cell(i, row)))
		}
	}
	return widths
}

func (t *Table) writeLine(sb *strings.Builder, style lipgloss.Style, widths []int, cells []string) {
	parts := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		align := lipgloss.Left
		if c.Numeric {
			align = lipgloss.Right
		}
		parts[i] = style.Width(widths[i]).Align(align).Render(t.cell(i, cells))
	}
	sb.WriteString(strings.TrimRight(strings.Join(parts, columnGap), " ") + "\n")
}

func (t *Table) writeRule(sb *strings.Builder, style lipgloss.Style, widths []int, char string) {
	parts := make([]string, len(widths))
	for i, n := range widths {
		parts[i] = strings.Repeat(char, n)
	}
	sb.WriteString(style.Render(strings.Join(parts, columnGap)) + "\n")
}
