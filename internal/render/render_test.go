package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"scrumtool/internal/board"
	"scrumtool/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *report.Report {
	rep := &report.Report{ID: "r1", Board: "Sprint 4"}
	doing := &report.List{Name: "Doing"}
	ana := doing.Member("Ana Lima")
	ana.AddCard()
	ana.AddPoints(5)
	doing.AddCard()
	doing.AddPoints(5)
	rep.AddList(doing)
	rep.AddList(&report.List{Name: "Done"})

	m := rep.Member("Ana Lima")
	m.AddCard()
	m.AddPoints(2.5)
	rep.AddCard()
	rep.AddPoints(7.5)
	return rep
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "text": FormatText, "md": FormatMarkdown, "markdown": FormatMarkdown, "json": FormatJSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestText_Plain(t *testing.T) {
	var buf bytes.Buffer
	var col report.Collector
	require.NoError(t, Text(&buf, sampleReport(), Options{NoColor: true, TrackLists: true, Sink: &col}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "===================================\n SCRUM REPORT FOR CURRENT SPRINT \n"))
	assert.Contains(t, out, "  Board: Sprint 4\n")
	assert.Contains(t, out, " Global \n  Cards: 1\n  Points: 7.5\n  Lists: 2\n  Members: 1\n")
	assert.Contains(t, out, " Doing \n  Cards: 1\n  Points: 5\n  Ana Lima\n    Cards: 1\n    Points: 5\n")
	assert.Contains(t, out, " Members \n  Ana Lima\n    Cards: 1\n    Points: 2.5\n")
	assert.True(t, strings.HasSuffix(out, "===== END =====\n===============\n"))

	require.Len(t, col.Diagnostics, 1)
	assert.Equal(t, report.EmptyMemberSet, col.Diagnostics[0].Kind)
	assert.Equal(t, "No members in list Done", col.Diagnostics[0].Message)
}

func TestText_EmptyReport(t *testing.T) {
	var buf bytes.Buffer
	var col report.Collector
	require.NoError(t, Text(&buf, &report.Report{}, Options{NoColor: true, TrackLists: true, Sink: &col}))

	assert.Equal(t, []report.Kind{report.EmptyListSet, report.EmptyMemberSet}, col.Kinds())
	assert.NotContains(t, buf.String(), " Members \n")

	col = report.Collector{}
	require.NoError(t, Text(&buf, &report.Report{}, Options{NoColor: true, Sink: &col}))
	assert.Equal(t, []report.Kind{report.EmptyMemberSet}, col.Kinds())
}

func TestText_MissingDoneListDiagnosedOnce(t *testing.T) {
	var col report.Collector
	opts := report.DefaultOptions()
	opts.FirstDoneList = "Shipped"
	opts.TrackLists = true
	rep := report.NewBuilder(opts, &col).Build([]board.List{{Name: "Backlog"}})

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, rep, Options{NoColor: true, TrackLists: true, Sink: &col}))
	assert.Equal(t, 1, col.Count(report.EmptyListSet))
	assert.Equal(t, 1, col.Count(report.EmptyMemberSet))
}

func TestText_Styled(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, sampleReport(), Options{}))
	assert.Contains(t, buf.String(), "SCRUM REPORT FOR CURRENT SPRINT")
	assert.Contains(t, buf.String(), "Ana Lima")
}

func TestMarkdown_Raw(t *testing.T) {
	rep := sampleReport()
	rep.Diagnostics = []report.Diagnostic{{Kind: report.MissingCardPoints, Message: "No points on card a|b"}}

	var buf bytes.Buffer
	require.NoError(t, Markdown(&buf, rep, Options{}))
	out := buf.String()

	assert.Contains(t, out, "# Scrum report for current sprint\n")
	assert.Contains(t, out, "| 1 | 7.5 | 2 | 1 |\n")
	assert.Contains(t, out, "| Doing | 1 | 5 | Ana Lima (5) |\n")
	assert.Contains(t, out, "| Done | 0 | 0 |  |\n")
	assert.Contains(t, out, "| Ana Lima | 1 | 2.5 |\n")
	assert.Contains(t, out, "- `missing_card_points` No points on card a\\|b\n")
}

func TestMarkdown_Pretty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Markdown(&buf, sampleReport(), Options{Pretty: true, GlamourStyle: "notty", Width: 80}))
	assert.Contains(t, buf.String(), "Ana Lima")
	assert.NotContains(t, buf.String(), "|---")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleReport(), Options{}))

	var got struct {
		ID     string  `json:"id"`
		Board  string  `json:"board"`
		Points float64 `json:"points"`
		Lists  []struct {
			Name    string `json:"name"`
			Members []struct {
				Name string `json:"name"`
			} `json:"members"`
		} `json:"lists"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "r1", got.ID)
	assert.Equal(t, "Sprint 4", got.Board)
	assert.Equal(t, 7.5, got.Points)
	require.Len(t, got.Lists, 2)
	assert.Equal(t, "Ana Lima", got.Lists[0].Members[0].Name)
}
